// Package dbarchive reads pacman database files and exposes their desc
// entries as one concatenated text stream.
//
// A database is a tar archive, optionally compressed, holding one directory
// per package with a desc file inside (sync databases built with --files
// also carry a files entry). The local database is an unpacked directory of
// the same shape.
package dbarchive

import (
	"archive/tar"
	"bufio"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Compression identifies the compression of a database file.
type Compression string

const (
	CompressionNone Compression = ""
	CompressionGZIP Compression = "gz"
	CompressionXZ   Compression = "xz"
	CompressionZSTD Compression = "zst"
)

var (
	magicGZIP = []byte{0x1f, 0x8b}
	magicXZ   = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
	magicZSTD = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// ErrNotDatabase is returned when a file is neither a tar archive nor a
// compressed one.
var ErrNotDatabase = errors.New("not a pacman database")

// Detect sniffs the compression from the leading bytes of a file.
func Detect(head []byte) Compression {
	switch {
	case bytes.HasPrefix(head, magicGZIP):
		return CompressionGZIP
	case bytes.HasPrefix(head, magicXZ):
		return CompressionXZ
	case bytes.HasPrefix(head, magicZSTD):
		return CompressionZSTD
	default:
		return CompressionNone
	}
}

// Open opens the database at p. Directories are walked for desc files;
// regular files are read as (compressed) tar archives. The caller must close
// the returned reader.
func Open(p string) (io.ReadCloser, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return openDir(p)
	}

	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	rc, err := Stream(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return &multiCloser{Reader: rc, closers: []io.Closer{rc, f}}, nil
}

// Stream decompresses r if needed and returns the concatenated desc entries
// of the tar archive inside. Closing the result does not close r.
func Stream(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(6)

	var (
		plain  io.Reader
		closer io.Closer
	)
	switch Detect(head) {
	case CompressionGZIP:
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, err
		}
		plain, closer = zr, zr
	case CompressionXZ:
		xr, err := xz.NewReader(br)
		if err != nil {
			return nil, err
		}
		plain = xr
	case CompressionZSTD:
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, err
		}
		plain, closer = zr, zr.IOReadCloser()
	default:
		plain = br
	}

	pr, pw := io.Pipe()
	go func() {
		if closer != nil {
			defer func() { _ = closer.Close() }()
		}
		pw.CloseWithError(copyDescEntries(pw, tar.NewReader(plain)))
	}()
	return pr, nil
}

// copyDescEntries writes every */desc member of tr to w, each followed by a
// blank line. An empty archive is a valid, empty database.
func copyDescEntries(w io.Writer, tr *tar.Reader) error {
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if errors.Is(err, tar.ErrHeader) {
				return fmt.Errorf("%w: %v", ErrNotDatabase, err)
			}
			return err
		}
		if hdr.Typeflag != tar.TypeReg || path.Base(hdr.Name) != "desc" {
			continue
		}
		if _, err := io.Copy(w, tr); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
}

// openDir streams the desc files of an unpacked database, ordered by
// package directory name.
func openDir(root string) (io.ReadCloser, error) {
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == "desc" {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(copyFiles(pw, files))
	}()
	return pr, nil
}

func copyFiles(w io.Writer, files []string) error {
	for _, name := range files {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		_, err = io.Copy(w, f)
		_ = f.Close()
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}

// RepoName derives a repository name from a database path:
// "/var/lib/pacman/sync/core.db" and "extra.db.tar.gz" give "core" and
// "extra". Directories use their base name.
func RepoName(p string) string {
	base := filepath.Base(filepath.Clean(p))
	for _, suffix := range []string{".gz", ".xz", ".zst", ".tar", ".files", ".db"} {
		base = strings.TrimSuffix(base, suffix)
	}
	return base
}

type multiCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *multiCloser) Close() error {
	var errs []error
	for _, c := range m.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
