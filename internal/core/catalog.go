package core

import (
	"sort"
	"strings"
)

// Catalog maps attribute tokens to their kind and canonical label.
// A Catalog is immutable once built.
type Catalog struct {
	specs   []AttributeSpec
	byToken map[string]AttributeSpec
}

// NewCatalog builds a catalog from specs. Declaration order is kept and used
// when encoding records. A later spec with the same token replaces an
// earlier one.
func NewCatalog(specs ...AttributeSpec) *Catalog {
	c := &Catalog{byToken: make(map[string]AttributeSpec, len(specs))}
	for _, s := range specs {
		if _, dup := c.byToken[s.Token]; dup {
			for i := range c.specs {
				if c.specs[i].Token == s.Token {
					c.specs[i] = s
				}
			}
		} else {
			c.specs = append(c.specs, s)
		}
		c.byToken[s.Token] = s
	}
	return c
}

// Lookup returns the spec for token. Absence is not an error: formats grow
// new attributes over time.
func (c *Catalog) Lookup(token string) (AttributeSpec, bool) {
	s, ok := c.byToken[token]
	return s, ok
}

// Resolve finds a spec by token or label, ignoring case.
func (c *Catalog) Resolve(name string) (AttributeSpec, bool) {
	if s, ok := c.byToken[strings.ToUpper(name)]; ok {
		return s, true
	}
	for _, s := range c.specs {
		if strings.EqualFold(s.Label, name) {
			return s, true
		}
	}
	return AttributeSpec{}, false
}

// Labels returns every canonical label, sorted.
func (c *Catalog) Labels() []string {
	labels := make([]string, 0, len(c.specs))
	for _, s := range c.specs {
		labels = append(labels, s.Label)
	}
	sort.Strings(labels)
	return labels
}

// Specs returns the specs in declaration order.
func (c *Catalog) Specs() []AttributeSpec {
	out := make([]AttributeSpec, len(c.specs))
	copy(out, c.specs)
	return out
}

// FallbackLabel derives a label for a token missing from the catalog:
// "FOOBAR" becomes "Foobar".
func FallbackLabel(token string) string {
	lower := strings.ToLower(token)
	if lower == "" {
		return ""
	}
	return strings.ToUpper(lower[:1]) + lower[1:]
}
