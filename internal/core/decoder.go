package core

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const defaultMaxLineSize = 16 << 20 // PGPSIG lines are long, FILES lists are many

// Handler receives decoded records in document order. rec is nil only on the
// final call (isLast true) when the last record did not match the search.
// Returning an error aborts the decode.
type Handler func(rec *Record, ordinal int, isLast bool) error

// Decoder turns a stream of desc blocks into records. It holds only
// immutable configuration, so one Decoder may serve concurrent Decode calls.
type Decoder struct {
	catalog    *Catalog
	header     AttributeSpec
	search     *Search
	warn       func(format string, args ...any)
	maxLineLen int
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithSearch filters emitted records through s.
func WithSearch(s *Search) DecoderOption {
	return func(d *Decoder) {
		d.search = s
	}
}

// WithWarnFunc sets the sink for non-fatal diagnostics such as unknown
// attributes.
func WithWarnFunc(fn func(format string, args ...any)) DecoderOption {
	return func(d *Decoder) {
		d.warn = fn
	}
}

// WithMaxLineSize sets the longest line the decoder accepts.
func WithMaxLineSize(n int) DecoderOption {
	return func(d *Decoder) {
		d.maxLineLen = n
	}
}

// NewDecoder creates a decoder for streams whose records start with the
// header token. The header must be a string attribute of catalog.
func NewDecoder(catalog *Catalog, header string, opts ...DecoderOption) (*Decoder, error) {
	spec, ok := catalog.Lookup(header)
	if !ok || spec.Kind != String {
		return nil, fmt.Errorf("%w: %%%s%%", ErrUnknownHeader, header)
	}

	d := &Decoder{
		catalog:    catalog,
		header:     spec,
		warn:       func(string, ...any) {},
		maxLineLen: defaultMaxLineSize,
	}
	for _, opt := range opts {
		opt(d)
	}

	switch {
	case d.search == nil:
		d.search = &Search{field: spec.Label}
	case d.search.field == "":
		d.search = &Search{re: d.search.re, field: spec.Label}
	}
	return d, nil
}

// HeaderLabel returns the label of the header attribute.
func (d *Decoder) HeaderLabel() string { return d.header.Label }

// Catalog returns the catalog the decoder resolves tokens with.
func (d *Decoder) Catalog() *Catalog { return d.catalog }

// Decode reads r to the end and calls h for every record that passes the
// search. A record is only known to be complete when the next header or the
// end of the stream is reached, so each call trails the input by one record.
//
// Ordinals are positions in the stream: records skipped by the search leave
// gaps. When at least one record was read, the last call always has isLast
// set, carrying a nil record if the final record did not match. Decode returns
// the number of records read.
func (d *Decoder) Decode(r io.Reader, src Source, h Handler) (int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, min(64*1024, d.maxLineLen)), d.maxLineLen)

	var (
		count    int
		lineNo   int
		rec      *Record
		attr     AttributeSpec
		inEffect bool
	)

	malformed := func(format string, args ...any) error {
		return &MalformedStreamError{Path: src.Path, Line: lineNo, Reason: fmt.Sprintf(format, args...)}
	}

	next := func() (string, bool) {
		if !sc.Scan() {
			return "", false
		}
		lineNo++
		return strings.TrimSuffix(sc.Text(), "\r"), true
	}

	for {
		line, ok := next()
		if !ok {
			break
		}

		if token, isToken := parseToken(line); isToken {
			if token == d.header.Token {
				if count > 0 {
					if d.search.Match(rec) {
						if err := h(rec, count, false); err != nil {
							return count, err
						}
					}
					count++
				} else {
					count = 1
				}

				value, ok := next()
				if !ok {
					if err := sc.Err(); err != nil {
						return count, err
					}
					return count, malformed("missing value for %%%s%%", token)
				}
				if value == "" {
					return count, malformed("empty value for %%%s%%", token)
				}

				rec = NewRecord(src)
				rec.Set(d.header.Label, StringValue(value))
				inEffect = false
				continue
			}

			if count == 0 {
				return count, malformed("%%%s%% before first %%%s%%", token, d.header.Token)
			}

			spec, known := d.catalog.Lookup(token)
			if !known {
				spec = AttributeSpec{Token: token, Kind: String, Label: FallbackLabel(token)}
				d.warnUnknown(src, lineNo, spec)
			}
			attr = spec
			inEffect = true
			continue
		}

		if line == "" {
			continue
		}

		if !inEffect {
			return count, malformed("value %q before any attribute", line)
		}

		switch attr.Kind {
		case Numeric:
			n, err := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
			if err != nil {
				return count, malformed("%%%s%%: %q is not a number", attr.Token, line)
			}
			rec.Set(attr.Label, NumericValue(n))
		case Array:
			rec.Append(attr.Label, line)
		default:
			rec.Set(attr.Label, StringValue(line))
		}
	}

	if err := sc.Err(); err != nil {
		return count, err
	}

	if count == 0 {
		return 0, nil
	}

	last := rec
	if !d.search.Match(rec) {
		last = nil
	}
	if err := h(last, count, true); err != nil {
		return count, err
	}
	return count, nil
}

func (d *Decoder) warnUnknown(src Source, line int, spec AttributeSpec) {
	if src.Path != "" {
		d.warn("%s:%d: unknown attribute %%%s%%, using %q", src.Path, line, spec.Token, spec.Label)
		return
	}
	d.warn("line %d: unknown attribute %%%s%%, using %q", line, spec.Token, spec.Label)
}

// parseToken reports whether line has the form %TOKEN% and returns TOKEN.
// Tokens are upper-case ASCII identifiers; any other %...% line is a value.
func parseToken(line string) (string, bool) {
	if len(line) < 3 || line[0] != '%' || line[len(line)-1] != '%' {
		return "", false
	}
	token := line[1 : len(line)-1]
	for i := 0; i < len(token); i++ {
		c := token[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') && c != '_' {
			return "", false
		}
	}
	return token, true
}
