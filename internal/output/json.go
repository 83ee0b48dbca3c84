package output

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/git-pkgs/alpmdb/internal/core"
)

// JSON writes matching records as one JSON array. The array is closed on the
// decoder's isLast call, which arrives even when the final record was
// filtered out.
type JSON struct {
	w       io.Writer
	opts    Options
	written int
	closed  bool
}

func NewJSON(w io.Writer, opts Options) *JSON {
	return &JSON{w: w, opts: opts}
}

func (j *JSON) Handle(rec *core.Record, _ int, isLast bool) error {
	if rec != nil {
		obj, err := marshalObject(fieldsOf(rec, j.opts))
		if err != nil {
			return err
		}
		var data bytes.Buffer
		if err := json.Indent(&data, obj, "  ", "  "); err != nil {
			return err
		}
		sep := ",\n  "
		if j.written == 0 {
			sep = "[\n  "
		}
		if _, err := io.WriteString(j.w, sep); err != nil {
			return err
		}
		if _, err := data.WriteTo(j.w); err != nil {
			return err
		}
		j.written++
	}
	if isLast {
		return j.close()
	}
	return nil
}

func (j *JSON) Finish(int) error {
	return j.close()
}

func (j *JSON) close() error {
	if j.closed {
		return nil
	}
	j.closed = true
	closing := "\n]\n"
	if j.written == 0 {
		closing = "[]\n"
	}
	_, err := io.WriteString(j.w, closing)
	return err
}

// marshalObject encodes fields as a compact JSON object, keys in field order.
func marshalObject(fields []field) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.label)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.value.Interface())
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
