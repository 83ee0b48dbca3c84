package localdb

import (
	"strings"
	"testing"

	"github.com/git-pkgs/alpmdb/internal/core"
)

// Two installed packages as their desc files read back to back.
const localDesc = `%NAME%
pacman

%VERSION%
6.1.0-3

%BASE%
pacman

%DESC%
A library-based package manager with dependency support

%URL%
https://www.archlinux.org/pacman/

%ARCH%
x86_64

%BUILDDATE%
1710264433

%INSTALLDATE%
1711000000

%PACKAGER%
Morten Linderud <foxboron@archlinux.org>

%SIZE%
4771616

%LICENSE%
GPL-2.0-or-later

%VALIDATION%
pgp

%DEPENDS%
bash
glibc
libarchive

%BACKUP%
etc/pacman.conf	2bd1a6f0c7b0fa1c27cd4d8b1f5a6a8c
etc/makepkg.conf	1e1f3d0d0fb3c0a3cdb5c2cdb7d4e6d8

%XDATA%
pkgtype=pkg

%NAME%
zlib

%VERSION%
1:1.3.1-2

%ARCH%
x86_64

%REASON%
1

%SIZE%
370688

`

func TestRegistered(t *testing.T) {
	f, err := core.LookupFormat(Name)
	if err != nil {
		t.Fatalf("LookupFormat(%q) error: %v", Name, err)
	}
	if f.Header != Header {
		t.Errorf("Header = %q, want %q", f.Header, Header)
	}
	if _, ok := f.Catalog.Lookup("FILENAME"); ok {
		t.Error("local catalog should not carry FILENAME")
	}
}

func TestDecodeInstalledPackages(t *testing.T) {
	d, err := core.NewDecoder(Catalog(), Header)
	if err != nil {
		t.Fatal(err)
	}

	byName := make(map[string]*core.Record)
	var lastOrdinal int
	n, err := d.Decode(strings.NewReader(localDesc), core.Source{Path: "/var/lib/pacman/local", Repository: "local"}, func(rec *core.Record, ordinal int, isLast bool) error {
		byName[rec.Name()] = rec
		if isLast {
			lastOrdinal = ordinal
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if n != 2 || lastOrdinal != 2 {
		t.Fatalf("count = %d, last ordinal = %d, want 2", n, lastOrdinal)
	}

	pacman := byName["pacman"]
	if pacman == nil {
		t.Fatal("pacman not decoded")
	}
	if pacman.Int("InstallDate") != 1711000000 {
		t.Errorf("InstallDate = %d", pacman.Int("InstallDate"))
	}
	if pacman.Int("InstalledSize") != 4771616 {
		t.Errorf("InstalledSize = %d", pacman.Int("InstalledSize"))
	}
	if got := pacman.List("Backup"); len(got) != 2 || !strings.HasPrefix(got[0], "etc/pacman.conf\t") {
		t.Errorf("Backup = %q", got)
	}
	if got := pacman.List("XData"); len(got) != 1 || got[0] != "pkgtype=pkg" {
		t.Errorf("XData = %q", got)
	}
	if _, ok := pacman.Get("Reason"); ok {
		t.Error("Reason set without %REASON%")
	}

	zlib := byName["zlib"]
	if zlib == nil {
		t.Fatal("zlib not decoded")
	}
	if zlib.Int("Reason") != ReasonDependency {
		t.Errorf("Reason = %d, want %d", zlib.Int("Reason"), ReasonDependency)
	}
	if zlib.Version() != "1:1.3.1-2" {
		t.Errorf("Version() = %q", zlib.Version())
	}
}
