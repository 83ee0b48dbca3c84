package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sampleMirrorlist = `##
## Arch Linux repository mirrorlist
## Generated on 2024-03-01
##

## Worldwide
Server = https://geo.mirror.pkgbuild.com/$repo/os/$arch
#Server = https://disabled.example.org/$repo/os/$arch

## Germany
Server=https://mirror.example.de/archlinux/$repo/os/$arch
Include = /etc/pacman.d/other
`

func TestParseMirrorlist(t *testing.T) {
	servers, err := ParseMirrorlist(strings.NewReader(sampleMirrorlist))
	if err != nil {
		t.Fatalf("ParseMirrorlist failed: %v", err)
	}

	want := []string{
		"https://geo.mirror.pkgbuild.com/$repo/os/$arch",
		"https://mirror.example.de/archlinux/$repo/os/$arch",
	}
	if len(servers) != len(want) {
		t.Fatalf("servers = %v, want %v", servers, want)
	}
	for i := range want {
		if servers[i] != want[i] {
			t.Errorf("servers[%d] = %q, want %q", i, servers[i], want[i])
		}
	}
}

func TestLoadMirrorlist(t *testing.T) {
	p := filepath.Join(t.TempDir(), "mirrorlist")
	if err := os.WriteFile(p, []byte(sampleMirrorlist), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := LoadMirrorlist(p, "x86_64")
	if err != nil {
		t.Fatalf("LoadMirrorlist failed: %v", err)
	}
	if len(r.Mirrors()) != 2 {
		t.Fatalf("mirrors = %d, want 2", len(r.Mirrors()))
	}

	urls := r.DatabaseURLs("core")
	if urls[0] != "https://geo.mirror.pkgbuild.com/core/os/x86_64/core.db" {
		t.Errorf("DatabaseURLs[0] = %q", urls[0])
	}
	if urls[1] != "https://mirror.example.de/archlinux/core/os/x86_64/core.db" {
		t.Errorf("DatabaseURLs[1] = %q", urls[1])
	}

	pkg, err := r.PackageURL("extra", "ripgrep-14.1.0-1-x86_64.pkg.tar.zst")
	if err != nil {
		t.Fatal(err)
	}
	if pkg != "https://geo.mirror.pkgbuild.com/extra/os/x86_64/ripgrep-14.1.0-1-x86_64.pkg.tar.zst" {
		t.Errorf("PackageURL = %q", pkg)
	}
}

func TestResolverNoMirrors(t *testing.T) {
	r := NewResolver(nil, "x86_64")
	if _, err := r.PackageURL("core", "x.pkg.tar.zst"); !errors.Is(err, ErrNoMirrors) {
		t.Errorf("PackageURL err = %v, want ErrNoMirrors", err)
	}
	if _, err := r.DownloadFile(context.Background(), NewFetcher(), "core", filepath.Join(t.TempDir(), "core.db")); !errors.Is(err, ErrNoMirrors) {
		t.Errorf("DownloadFile err = %v, want ErrNoMirrors", err)
	}
}

func TestDownloadFileFailover(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer down.Close()

	modified := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	var gotPath string
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Last-Modified", modified.Format(http.TimeFormat))
		_, _ = w.Write([]byte("core database"))
	}))
	defer up.Close()

	r := NewResolver([]string{down.URL + "/$repo/os/$arch", up.URL + "/$repo/os/$arch"}, "x86_64")
	dest := filepath.Join(t.TempDir(), "sync", "core.db")

	res, err := r.DownloadFile(context.Background(), NewFetcher(WithMaxRetries(0)), "core", dest)
	if err != nil {
		t.Fatalf("DownloadFile failed: %v", err)
	}
	if gotPath != "/core/os/x86_64/core.db" {
		t.Errorf("requested %q", gotPath)
	}
	if res.NotModified || res.Size != int64(len("core database")) {
		t.Errorf("result = %+v", res)
	}
	if !strings.HasPrefix(res.URL, up.URL) {
		t.Errorf("downloaded from %q, want second mirror", res.URL)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "core database" {
		t.Errorf("dest content = %q", data)
	}
	st, _ := os.Stat(dest)
	if !st.ModTime().Equal(modified) {
		t.Errorf("mtime = %v, want %v", st.ModTime(), modified)
	}
}

func TestDownloadFileNotModified(t *testing.T) {
	modified := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-Modified-Since") == modified.Format(http.TimeFormat) {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		_, _ = w.Write([]byte("new"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "core.db")
	if err := os.WriteFile(dest, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(dest, modified, modified); err != nil {
		t.Fatal(err)
	}

	r := NewResolver([]string{server.URL + "/$repo"}, "x86_64")
	res, err := r.DownloadFile(context.Background(), NewFetcher(), "core", dest)
	if err != nil {
		t.Fatalf("DownloadFile failed: %v", err)
	}
	if !res.NotModified {
		t.Error("expected NotModified")
	}
	if data, _ := os.ReadFile(dest); string(data) != "old" {
		t.Errorf("dest rewritten: %q", data)
	}
}

func TestDownloadFileAllMirrorsFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	r := NewResolver([]string{server.URL + "/a/$repo", server.URL + "/b/$repo"}, "x86_64")
	_, err := r.DownloadFile(context.Background(), NewFetcher(), "core", filepath.Join(t.TempDir(), "core.db"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
