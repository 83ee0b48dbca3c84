// Package localdb registers the local database format: the desc files pacman
// keeps for installed packages under /var/lib/pacman/local.
package localdb

import (
	"github.com/git-pkgs/alpmdb/internal/core"
)

const (
	// Name is the format identifier.
	Name = "local"
	// Header is the token that starts every local record.
	Header = "NAME"
)

func init() {
	core.Register(Name, Header, Catalog())
}

// Install reasons stored in %REASON%.
const (
	ReasonExplicit   = 0
	ReasonDependency = 1
)

// Catalog returns the local database attribute catalog.
func Catalog() *core.Catalog {
	return core.NewCatalog(
		core.AttributeSpec{Token: "NAME", Kind: core.String, Label: "Name"},
		core.AttributeSpec{Token: "VERSION", Kind: core.String, Label: "Version"},
		core.AttributeSpec{Token: "BASE", Kind: core.String, Label: "PackageBase"},
		core.AttributeSpec{Token: "DESC", Kind: core.String, Label: "Description"},
		core.AttributeSpec{Token: "URL", Kind: core.String, Label: "URL"},
		core.AttributeSpec{Token: "ARCH", Kind: core.String, Label: "Arch"},
		core.AttributeSpec{Token: "BUILDDATE", Kind: core.Numeric, Label: "BuildDate"},
		core.AttributeSpec{Token: "INSTALLDATE", Kind: core.Numeric, Label: "InstallDate"},
		core.AttributeSpec{Token: "PACKAGER", Kind: core.String, Label: "Packager"},
		core.AttributeSpec{Token: "SIZE", Kind: core.Numeric, Label: "InstalledSize"},
		core.AttributeSpec{Token: "REASON", Kind: core.Numeric, Label: "Reason"},
		core.AttributeSpec{Token: "GROUPS", Kind: core.Array, Label: "Groups"},
		core.AttributeSpec{Token: "LICENSE", Kind: core.Array, Label: "License"},
		core.AttributeSpec{Token: "VALIDATION", Kind: core.Array, Label: "Validation"},
		core.AttributeSpec{Token: "REPLACES", Kind: core.Array, Label: "Replaces"},
		core.AttributeSpec{Token: "DEPENDS", Kind: core.Array, Label: "Depends"},
		core.AttributeSpec{Token: "OPTDEPENDS", Kind: core.Array, Label: "OptDepends"},
		core.AttributeSpec{Token: "CONFLICTS", Kind: core.Array, Label: "Conflicts"},
		core.AttributeSpec{Token: "PROVIDES", Kind: core.Array, Label: "Provides"},
		core.AttributeSpec{Token: "XDATA", Kind: core.Array, Label: "XData"},
		core.AttributeSpec{Token: "FILES", Kind: core.Array, Label: "Files"},
		core.AttributeSpec{Token: "BACKUP", Kind: core.Array, Label: "Backup"},
	)
}
