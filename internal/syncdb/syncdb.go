// Package syncdb registers the sync database format: the desc entries of
// repository databases such as core.db and extra.db.
package syncdb

import (
	"github.com/git-pkgs/alpmdb/internal/core"
)

const (
	// Name is the format identifier.
	Name = "sync"
	// Header is the token that starts every sync record.
	Header = "FILENAME"
)

func init() {
	core.Register(Name, Header, Catalog())
}

// Catalog returns the sync database attribute catalog, in the order repo-add
// writes the attributes.
func Catalog() *core.Catalog {
	return core.NewCatalog(
		core.AttributeSpec{Token: "FILENAME", Kind: core.String, Label: "FileName"},
		core.AttributeSpec{Token: "NAME", Kind: core.String, Label: "Name"},
		core.AttributeSpec{Token: "BASE", Kind: core.String, Label: "PackageBase"},
		core.AttributeSpec{Token: "VERSION", Kind: core.String, Label: "Version"},
		core.AttributeSpec{Token: "DESC", Kind: core.String, Label: "Description"},
		core.AttributeSpec{Token: "GROUPS", Kind: core.Array, Label: "Groups"},
		core.AttributeSpec{Token: "CSIZE", Kind: core.Numeric, Label: "CSize"},
		core.AttributeSpec{Token: "ISIZE", Kind: core.Numeric, Label: "ISize"},
		core.AttributeSpec{Token: "MD5SUM", Kind: core.String, Label: "Md5Sum"},
		core.AttributeSpec{Token: "SHA256SUM", Kind: core.String, Label: "Sha256Sum"},
		core.AttributeSpec{Token: "PGPSIG", Kind: core.String, Label: "PgpSig"},
		core.AttributeSpec{Token: "URL", Kind: core.String, Label: "URL"},
		core.AttributeSpec{Token: "LICENSE", Kind: core.Array, Label: "License"},
		core.AttributeSpec{Token: "ARCH", Kind: core.String, Label: "Arch"},
		core.AttributeSpec{Token: "BUILDDATE", Kind: core.Numeric, Label: "BuildDate"},
		core.AttributeSpec{Token: "PACKAGER", Kind: core.String, Label: "Packager"},
		core.AttributeSpec{Token: "REPLACES", Kind: core.Array, Label: "Replaces"},
		core.AttributeSpec{Token: "CONFLICTS", Kind: core.Array, Label: "Conflicts"},
		core.AttributeSpec{Token: "PROVIDES", Kind: core.Array, Label: "Provides"},
		core.AttributeSpec{Token: "DEPENDS", Kind: core.Array, Label: "Depends"},
		core.AttributeSpec{Token: "OPTDEPENDS", Kind: core.Array, Label: "OptDepends"},
		core.AttributeSpec{Token: "MAKEDEPENDS", Kind: core.Array, Label: "MakeDepends"},
		core.AttributeSpec{Token: "CHECKDEPENDS", Kind: core.Array, Label: "CheckDepends"},
		core.AttributeSpec{Token: "FILES", Kind: core.Array, Label: "Files"},
	)
}
