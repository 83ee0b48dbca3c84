// Package client builds download URLs for pacman repository mirrors.
package client

import (
	"fmt"
	"strings"

	"github.com/git-pkgs/alpmdb/internal/core"
)

// URLBuilder constructs URLs for a repository mirror.
type URLBuilder interface {
	Database(repo, arch string) string
	Package(repo, arch, filename string) string
	Signature(repo, arch, filename string) string
	PURL(name, version, arch string) string
}

// Mirror is a URLBuilder for a pacman mirror server. Server is written the
// way pacman.conf and mirrorlist files write it, with $repo and $arch
// placeholders, e.g. "https://geo.mirror.pkgbuild.com/$repo/os/$arch".
type Mirror struct {
	Server string
	Distro string // PURL namespace; "arch" when empty
}

// NewMirror returns a Mirror for server.
func NewMirror(server string) *Mirror {
	return &Mirror{Server: strings.TrimSuffix(server, "/")}
}

// Expand substitutes $repo and $arch in the server URL.
func (m *Mirror) Expand(repo, arch string) string {
	s := strings.ReplaceAll(m.Server, "$repo", repo)
	return strings.ReplaceAll(s, "$arch", arch)
}

func (m *Mirror) Database(repo, arch string) string {
	if repo == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s.db", m.Expand(repo, arch), repo)
}

func (m *Mirror) Package(repo, arch, filename string) string {
	if filename == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s", m.Expand(repo, arch), filename)
}

func (m *Mirror) Signature(repo, arch, filename string) string {
	if filename == "" {
		return ""
	}
	return m.Package(repo, arch, filename) + ".sig"
}

func (m *Mirror) PURL(name, version, arch string) string {
	if name == "" {
		return ""
	}
	distro := m.Distro
	if distro == "" {
		distro = "arch"
	}
	return core.BuildPURL(distro, name, version, arch)
}

// BuildURLs returns a map of all non-empty URLs for a package file.
// Keys are "package", "signature", and "purl".
func BuildURLs(urls URLBuilder, repo, arch, name, version, filename string) map[string]string {
	result := make(map[string]string)
	if v := urls.Package(repo, arch, filename); v != "" {
		result["package"] = v
	}
	if v := urls.Signature(repo, arch, filename); v != "" {
		result["signature"] = v
	}
	if v := urls.PURL(name, version, arch); v != "" {
		result["purl"] = v
	}
	return result
}
