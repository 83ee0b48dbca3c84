package core

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Encode writes rec in desc block layout: the header attribute first, then
// the catalog's attributes in declaration order, then fields the catalog
// does not know, sorted by label. A blank line ends the block.
//
// Fields that decode through the unknown-attribute fallback are written with
// the upper-cased label as token, so they decode back to the same label.
func Encode(w io.Writer, rec *Record, catalog *Catalog, header string) error {
	spec, ok := catalog.Lookup(header)
	if !ok || spec.Kind != String {
		return fmt.Errorf("%w: %%%s%%", ErrUnknownHeader, header)
	}
	headerValue := rec.Str(spec.Label)
	if headerValue == "" {
		return fmt.Errorf("record has no %s", spec.Label)
	}

	bw := bufio.NewWriter(w)
	writeBlock(bw, spec.Token, StringValue(headerValue))

	known := map[string]bool{spec.Label: true}
	for _, s := range catalog.Specs() {
		known[s.Label] = true
		if s.Token == spec.Token {
			continue
		}
		if v, ok := rec.Get(s.Label); ok {
			writeBlock(bw, s.Token, v)
		}
	}
	for _, label := range rec.Labels() {
		if known[label] {
			continue
		}
		v, _ := rec.Get(label)
		writeBlock(bw, strings.ToUpper(label), v)
	}
	return bw.Flush()
}

func writeBlock(w *bufio.Writer, token string, v Value) {
	lines := v.Strings()
	if len(lines) == 0 {
		return
	}
	_, _ = w.WriteString("%" + token + "%\n")
	for _, l := range lines {
		_, _ = w.WriteString(l + "\n")
	}
	_ = w.WriteByte('\n')
}
