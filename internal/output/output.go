// Package output renders decoded records for the command line.
package output

import (
	"fmt"
	"io"

	"github.com/git-pkgs/alpmdb/internal/core"
)

// Writer consumes the handler calls of a decode. Handle follows the decoder's
// handler contract; Finish is called once after decoding with the record
// count, so writers can emit wrapping output for empty databases too.
type Writer interface {
	Handle(rec *core.Record, ordinal int, isLast bool) error
	Finish(count int) error
}

// Options tune what each record shows.
type Options struct {
	// Fields limits output to these labels. Empty means every field.
	Fields []string
	// PURLDistro, when set, adds a PURL field built for that distribution.
	PURLDistro string
	// HumanSizes renders size fields in binary units (plain output only).
	HumanSizes bool
}

// Formats lists the names New accepts.
var Formats = []string{"json", "plain", "msgpack"}

// New returns a Writer for format.
func New(format string, w io.Writer, opts Options) (Writer, error) {
	switch format {
	case "json":
		return NewJSON(w, opts), nil
	case "plain", "":
		return NewPlain(w, opts), nil
	case "msgpack":
		return NewMsgpack(w, opts), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want one of %v)", format, Formats)
	}
}

// fieldsOf returns the label/value pairs to render for rec in output order:
// opts.Fields order when set, otherwise the injected tags first and the rest
// sorted by label. Every writer keeps this order.
func fieldsOf(rec *core.Record, opts Options) []field {
	var out []field
	if len(opts.Fields) > 0 {
		for _, label := range opts.Fields {
			if v, ok := rec.Get(label); ok {
				out = append(out, field{label, v})
			}
		}
	} else {
		out = append(out,
			field{core.LabelRepository, core.StringValue(rec.Repository)},
			field{core.LabelSourcePath, core.StringValue(rec.SourcePath)},
		)
		for _, label := range rec.Labels() {
			v, _ := rec.Get(label)
			out = append(out, field{label, v})
		}
	}
	if opts.PURLDistro != "" {
		out = append(out, field{"PURL", core.StringValue(core.RecordPURL(rec, opts.PURLDistro))})
	}
	return out
}

type field struct {
	label string
	value core.Value
}
