package core

import (
	"fmt"

	packageurl "github.com/package-url/packageurl-go"
)

// PURLType is the package URL type for pacman packages.
const PURLType = "alpm"

// PURL wraps packageurl.PackageURL with alpm-specific helpers.
type PURL struct {
	packageurl.PackageURL
}

// Distro returns the distribution namespace, e.g. "arch".
func (p PURL) Distro() string {
	return p.Namespace
}

// Arch returns the arch qualifier, or "".
func (p PURL) Arch() string {
	return p.Qualifiers.Map()["arch"]
}

// Matches reports whether rec is the package the PURL names. Version and
// arch are only compared when the PURL carries them.
func (p PURL) Matches(rec *Record) bool {
	if rec == nil || rec.Name() != p.Name {
		return false
	}
	if p.Version != "" && rec.Version() != p.Version {
		return false
	}
	if arch := p.Arch(); arch != "" && rec.Arch() != arch {
		return false
	}
	return true
}

// ParsePURL parses an alpm Package URL such as pkg:alpm/arch/pacman@6.1.0-3?arch=x86_64.
func ParsePURL(purl string) (*PURL, error) {
	p, err := packageurl.FromString(purl)
	if err != nil {
		return nil, err
	}
	if p.Type != PURLType {
		return nil, fmt.Errorf("PURL type %q is not %s: %s", p.Type, PURLType, purl)
	}
	return &PURL{p}, nil
}

// RecordPURL builds the package URL of rec within distro. The arch qualifier
// is omitted when the record has no Arch.
func RecordPURL(rec *Record, distro string) string {
	return BuildPURL(distro, rec.Name(), rec.Version(), rec.Arch())
}

// BuildPURL builds an alpm package URL. Empty version and arch are left out.
func BuildPURL(distro, name, version, arch string) string {
	q := map[string]string{}
	if arch != "" {
		q["arch"] = arch
	}
	p := packageurl.NewPackageURL(PURLType, distro, name, version, packageurl.QualifiersFromMap(q), "")
	return p.ToString()
}
