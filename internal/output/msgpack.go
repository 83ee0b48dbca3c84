package output

import (
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/git-pkgs/alpmdb/internal/core"
)

// Msgpack writes each matching record as one MessagePack map, back to back,
// keys in field order. Readers decode with a msgpack.Decoder until io.EOF.
type Msgpack struct {
	enc  *msgpack.Encoder
	opts Options
}

func NewMsgpack(w io.Writer, opts Options) *Msgpack {
	return &Msgpack{enc: msgpack.NewEncoder(w), opts: opts}
}

func (m *Msgpack) Handle(rec *core.Record, _ int, _ bool) error {
	if rec == nil {
		return nil
	}
	fields := fieldsOf(rec, m.opts)
	if err := m.enc.EncodeMapLen(len(fields)); err != nil {
		return err
	}
	for _, f := range fields {
		if err := m.enc.EncodeString(f.label); err != nil {
			return err
		}
		if err := m.enc.Encode(f.value.Interface()); err != nil {
			return err
		}
	}
	return nil
}

func (m *Msgpack) Finish(int) error { return nil }
