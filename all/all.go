// Package all imports all supported database formats.
//
// Import this package for its side effects to register every format:
//
//	import (
//		"github.com/git-pkgs/alpmdb"
//		_ "github.com/git-pkgs/alpmdb/all"
//	)
//
//	// Now all formats are available
//	formats := alpmdb.SupportedFormats()
//	// ["local", "sync"]
package all

import (
	_ "github.com/git-pkgs/alpmdb/internal/localdb"
	_ "github.com/git-pkgs/alpmdb/internal/syncdb"
)
