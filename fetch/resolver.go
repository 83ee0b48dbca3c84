package fetch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/git-pkgs/alpmdb/client"
)

var ErrNoMirrors = errors.New("no mirrors configured")

// Resolver maps repositories to mirror URLs and downloads databases with
// failover across mirrors, in mirrorlist order.
type Resolver struct {
	mirrors []*client.Mirror
	arch    string
}

// NewResolver creates a resolver over servers for arch. Servers use pacman's
// $repo/$arch placeholders.
func NewResolver(servers []string, arch string) *Resolver {
	r := &Resolver{arch: arch}
	for _, s := range servers {
		r.mirrors = append(r.mirrors, client.NewMirror(s))
	}
	return r
}

// ParseMirrorlist extracts the Server entries of a pacman mirrorlist.
// Comments, commented-out servers and other directives are skipped.
func ParseMirrorlist(rd io.Reader) ([]string, error) {
	var servers []string
	sc := bufio.NewScanner(rd)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok || strings.TrimSpace(key) != "Server" {
			continue
		}
		if v := strings.TrimSpace(value); v != "" {
			servers = append(servers, v)
		}
	}
	return servers, sc.Err()
}

// LoadMirrorlist reads the mirrorlist at path and returns a resolver for arch.
func LoadMirrorlist(path, arch string) (*Resolver, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	servers, err := ParseMirrorlist(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return NewResolver(servers, arch), nil
}

// Mirrors returns the configured mirrors in order.
func (r *Resolver) Mirrors() []*client.Mirror {
	return r.mirrors
}

// DatabaseURLs returns the database URL of repo on every mirror.
func (r *Resolver) DatabaseURLs(repo string) []string {
	urls := make([]string, 0, len(r.mirrors))
	for _, m := range r.mirrors {
		urls = append(urls, m.Database(repo, r.arch))
	}
	return urls
}

// PackageURL returns the download URL of a package file on the first mirror.
func (r *Resolver) PackageURL(repo, filename string) (string, error) {
	if len(r.mirrors) == 0 {
		return "", ErrNoMirrors
	}
	return r.mirrors[0].Package(repo, r.arch, filename), nil
}

// Result describes a completed database download.
type Result struct {
	URL          string
	Path         string
	Size         int64
	LastModified time.Time
	NotModified  bool
}

// DownloadFile fetches the database of repo into dest, trying each mirror in
// turn. If dest exists its modification time is sent as If-Modified-Since;
// an unchanged database leaves dest untouched and sets NotModified. The file
// is replaced atomically.
func (r *Resolver) DownloadFile(ctx context.Context, f FetcherInterface, repo, dest string) (*Result, error) {
	if len(r.mirrors) == 0 {
		return nil, ErrNoMirrors
	}

	var cond Conditional
	if st, err := os.Stat(dest); err == nil {
		cond.ModifiedSince = st.ModTime()
	}

	var errs []error
	for _, url := range r.DatabaseURLs(repo) {
		db, err := f.Fetch(ctx, url, cond)
		if errors.Is(err, ErrNotModified) {
			return &Result{URL: url, Path: dest, LastModified: cond.ModifiedSince, NotModified: true}, nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			errs = append(errs, fmt.Errorf("%s: %w", url, err))
			continue
		}

		n, err := writeAtomic(dest, db.Body, db.LastModified)
		_ = db.Body.Close()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", url, err))
			continue
		}
		return &Result{URL: url, Path: dest, Size: n, LastModified: db.LastModified}, nil
	}
	return nil, fmt.Errorf("downloading %s database: %w", repo, errors.Join(errs...))
}

func writeAtomic(dest string, body io.Reader, modified time.Time) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".alpmdb-*")
	if err != nil {
		return 0, err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	n, err := io.Copy(tmp, body)
	if err != nil {
		_ = tmp.Close()
		return n, err
	}
	if err := tmp.Close(); err != nil {
		return n, err
	}
	if !modified.IsZero() {
		if err := os.Chtimes(tmp.Name(), modified, modified); err != nil {
			return n, err
		}
	}
	return n, os.Rename(tmp.Name(), dest)
}
