package core

import (
	"github.com/github/go-spdx/v2/spdxexp"
)

// CheckLicenses validates every License entry of rec as an SPDX expression.
// It returns the entries that failed. Records without licenses are valid.
func CheckLicenses(rec *Record) (bool, []string) {
	licenses := rec.Licenses()
	if len(licenses) == 0 {
		return true, nil
	}
	return spdxexp.ValidateLicenses(licenses)
}
