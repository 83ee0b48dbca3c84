// Package alpmdb decodes pacman repository databases.
//
// A pacman database is a stream of desc blocks: a %TOKEN% line followed by
// value lines, ended by a blank line. Records are delimited by the
// reappearance of a header token (FILENAME in sync databases, NAME in the
// local database). The decoder reads the stream line by line, holds one
// record of lookahead so the handler learns which call is the last, and can
// filter records by a regular expression over any field.
//
// Basic usage:
//
//	import (
//		"github.com/git-pkgs/alpmdb"
//		_ "github.com/git-pkgs/alpmdb/all"
//	)
//
//	search, err := alpmdb.CompileSearch("^python-", "Name")
//	if err != nil {
//		log.Fatal(err)
//	}
//	dec, err := alpmdb.New("sync", alpmdb.WithSearch(search))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	rc, err := alpmdb.Open("/var/lib/pacman/sync/extra.db")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer rc.Close()
//
//	src := alpmdb.Source{Path: "extra.db", Repository: "extra"}
//	_, err = dec.Decode(rc, src, func(rec *alpmdb.Record, ordinal int, isLast bool) error {
//		if rec != nil {
//			fmt.Println(rec.Name(), rec.Version())
//		}
//		return nil
//	})
//
// To register every supported database format, import the all subpackage.
package alpmdb

import (
	"context"
	"io"

	"github.com/git-pkgs/purl"

	"github.com/git-pkgs/alpmdb/client"
	"github.com/git-pkgs/alpmdb/internal/core"
	"github.com/git-pkgs/alpmdb/internal/dbarchive"
)

// Re-export types from internal/core
type (
	// Kind is the value kind of an attribute: String, Array or Numeric.
	Kind = core.Kind

	// AttributeSpec describes one attribute token of a database format.
	AttributeSpec = core.AttributeSpec

	// Catalog maps attribute tokens to their specs.
	Catalog = core.Catalog

	// Value is a decoded attribute value.
	Value = core.Value

	// Record is one decoded package entry.
	Record = core.Record

	// Source identifies the database a stream was read from.
	Source = core.Source

	// Search filters records by a regular expression over one field.
	Search = core.Search

	// Decoder decodes desc streams of one format.
	Decoder = core.Decoder

	// DecoderOption configures a Decoder.
	DecoderOption = core.DecoderOption

	// Handler receives decoded records.
	Handler = core.Handler

	// Format is a registered database layout.
	Format = core.Format

	// Collector receives records from BulkDecode.
	Collector = core.Collector

	// AlpmPURL is a parsed pkg:alpm package URL.
	AlpmPURL = core.PURL
)

// Re-export types from client
type (
	// URLBuilder constructs mirror URLs for a repository.
	URLBuilder = client.URLBuilder

	// Mirror is one pacman server URL with $repo/$arch placeholders.
	Mirror = client.Mirror
)

// Re-export constants
const (
	String  = core.String
	Array   = core.Array
	Numeric = core.Numeric

	LabelSourcePath = core.LabelSourcePath
	LabelRepository = core.LabelRepository
)

// Re-export errors
var (
	ErrMalformedStream = core.ErrMalformedStream
	ErrInvalidPattern  = core.ErrInvalidPattern
	ErrUnknownHeader   = core.ErrUnknownHeader
	ErrUnknownFormat   = core.ErrUnknownFormat
	ErrNotDatabase     = dbarchive.ErrNotDatabase
)

// Error types
type (
	MalformedStreamError = core.MalformedStreamError
)

// Decoder options
var (
	WithSearch      = core.WithSearch
	WithWarnFunc    = core.WithWarnFunc
	WithMaxLineSize = core.WithMaxLineSize
)

// New creates a decoder for the named database format.
//
// Supported formats: "sync", "local"
func New(format string, opts ...DecoderOption) (*Decoder, error) {
	f, err := core.LookupFormat(format)
	if err != nil {
		return nil, err
	}
	return f.NewDecoder(opts...)
}

// NewDecoder creates a decoder over a custom catalog. header is the token
// that starts each record and must be a string attribute of catalog.
func NewDecoder(catalog *Catalog, header string, opts ...DecoderOption) (*Decoder, error) {
	return core.NewDecoder(catalog, header, opts...)
}

// NewCatalog builds a catalog from attribute specs.
func NewCatalog(specs ...AttributeSpec) *Catalog {
	return core.NewCatalog(specs...)
}

// NewRecord returns an empty record tagged with src.
func NewRecord(src Source) *Record {
	return core.NewRecord(src)
}

// LookupFormat returns the registered format with the given name.
func LookupFormat(name string) (Format, error) {
	return core.LookupFormat(name)
}

// SupportedFormats returns all registered format names.
// Note: formats must be imported to be registered.
func SupportedFormats() []string {
	return core.SupportedFormats()
}

// CompileSearch compiles pattern for matching against field. An empty
// pattern matches every record that carries the field.
func CompileSearch(pattern, field string) (*Search, error) {
	return core.CompileSearch(pattern, field)
}

// Matches reports whether v satisfies pattern. Absent fields never match.
func Matches(pattern string, v Value, present bool) (bool, error) {
	return core.Matches(pattern, v, present)
}

// Encode writes rec as desc blocks, header first.
func Encode(w io.Writer, rec *Record, catalog *Catalog, header string) error {
	return core.Encode(w, rec, catalog, header)
}

// Open returns the concatenated desc stream of a database file (gzip, xz,
// zstd or plain tar) or an extracted database directory.
func Open(path string) (io.ReadCloser, error) {
	return dbarchive.Open(path)
}

// RepoName derives a repository name from a database path,
// e.g. "/var/lib/pacman/sync/core.db" gives "core".
func RepoName(path string) string {
	return dbarchive.RepoName(path)
}

// SourceFor returns the Source of the database at path.
func SourceFor(path string) Source {
	return Source{Path: path, Repository: dbarchive.RepoName(path)}
}

// BulkDecode decodes the databases at paths in parallel and hands every
// matching record to collect. Calls to collect are serialized.
// Returns a map of repository name to record count.
func BulkDecode(ctx context.Context, d *Decoder, paths []string, collect Collector) (map[string]int, error) {
	return core.BulkDecode(ctx, d, sources(paths), dbarchive.Open, collect)
}

// BulkDecodeWithConcurrency decodes databases with a custom concurrency limit.
func BulkDecodeWithConcurrency(ctx context.Context, d *Decoder, paths []string, collect Collector, concurrency int) (map[string]int, error) {
	return core.BulkDecodeWithConcurrency(ctx, d, sources(paths), dbarchive.Open, collect, concurrency)
}

func sources(paths []string) []Source {
	srcs := make([]Source, len(paths))
	for i, p := range paths {
		srcs[i] = SourceFor(p)
	}
	return srcs
}

// BuildURLs returns a map of all non-empty URLs for a package.
// Keys are "package", "signature", and "purl".
func BuildURLs(urls URLBuilder, repo, arch string, rec *Record) map[string]string {
	return client.BuildURLs(urls, repo, arch, rec.Name(), rec.Version(), rec.Filename())
}

// PURL represents a parsed Package URL of any type.
type PURL = purl.PURL

// ParsePURL parses a Package URL string into its components.
func ParsePURL(purlStr string) (*PURL, error) {
	return purl.Parse(purlStr)
}

// ParseAlpmPURL parses a pkg:alpm package URL, rejecting other types.
func ParseAlpmPURL(purlStr string) (*AlpmPURL, error) {
	return core.ParsePURL(purlStr)
}

// RecordPURL returns the pkg:alpm package URL of rec within distro.
func RecordPURL(rec *Record, distro string) string {
	return core.RecordPURL(rec, distro)
}

// CheckLicenses validates every License entry of rec as an SPDX expression.
// It returns false and the offending entries when any is invalid.
func CheckLicenses(rec *Record) (bool, []string) {
	return core.CheckLicenses(rec)
}
