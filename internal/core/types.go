// Package core provides the pacman database decoder and its shared types.
package core

import (
	"sort"
	"strconv"
)

// Kind is the value kind of an attribute.
type Kind int

const (
	String Kind = iota
	Array
	Numeric
)

func (k Kind) String() string {
	switch k {
	case Array:
		return "array"
	case Numeric:
		return "numeric"
	default:
		return "string"
	}
}

// AttributeSpec describes one attribute token of a database format.
type AttributeSpec struct {
	Token string // upper-case token between the percent signs, e.g. "DEPENDS"
	Kind  Kind
	Label string // canonical field name, e.g. "Depends"
}

// Value holds a decoded attribute value. Only the member matching Kind is set.
type Value struct {
	Kind Kind
	Str  string
	List []string
	Num  int64
}

// StringValue returns a string Value.
func StringValue(s string) Value { return Value{Kind: String, Str: s} }

// ArrayValue returns an array Value.
func ArrayValue(items ...string) Value { return Value{Kind: Array, List: items} }

// NumericValue returns a numeric Value.
func NumericValue(n int64) Value { return Value{Kind: Numeric, Num: n} }

// Strings renders the value as a list of strings. Numeric values are
// formatted in base 10.
func (v Value) Strings() []string {
	switch v.Kind {
	case Array:
		return v.List
	case Numeric:
		return []string{strconv.FormatInt(v.Num, 10)}
	default:
		return []string{v.Str}
	}
}

// Interface returns the value as a plain Go value (string, []string or int64)
// for encoders.
func (v Value) Interface() any {
	switch v.Kind {
	case Array:
		return v.List
	case Numeric:
		return v.Num
	default:
		return v.Str
	}
}

// Labels of the fields every record carries regardless of format.
const (
	LabelSourcePath = "SourcePath"
	LabelRepository = "Repository"
)

// Source identifies the database a stream was read from.
type Source struct {
	Path       string
	Repository string
}

// Record is one decoded package entry.
type Record struct {
	SourcePath string
	Repository string

	fields map[string]Value
}

// NewRecord returns an empty record tagged with src.
func NewRecord(src Source) *Record {
	return &Record{
		SourcePath: src.Path,
		Repository: src.Repository,
		fields:     make(map[string]Value),
	}
}

// Get returns the value stored under label.
func (r *Record) Get(label string) (Value, bool) {
	switch label {
	case LabelSourcePath:
		return StringValue(r.SourcePath), true
	case LabelRepository:
		return StringValue(r.Repository), true
	}
	v, ok := r.fields[label]
	return v, ok
}

// Set stores v under label, replacing any previous value.
func (r *Record) Set(label string, v Value) {
	if r.fields == nil {
		r.fields = make(map[string]Value)
	}
	r.fields[label] = v
}

// Append adds item to the array field label, creating it if needed.
func (r *Record) Append(label, item string) {
	if r.fields == nil {
		r.fields = make(map[string]Value)
	}
	v := r.fields[label]
	v.Kind = Array
	v.List = append(v.List, item)
	r.fields[label] = v
}

// Labels returns the labels of all decoded fields, sorted. The injected
// SourcePath and Repository tags are not included.
func (r *Record) Labels() []string {
	labels := make([]string, 0, len(r.fields))
	for l := range r.fields {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// Map returns the record as a label-keyed map including the injected tags.
func (r *Record) Map() map[string]any {
	m := make(map[string]any, len(r.fields)+2)
	m[LabelSourcePath] = r.SourcePath
	m[LabelRepository] = r.Repository
	for l, v := range r.fields {
		m[l] = v.Interface()
	}
	return m
}

// Str returns the string field label, or "" when unset or not a string.
func (r *Record) Str(label string) string {
	v, ok := r.fields[label]
	if !ok || v.Kind != String {
		return ""
	}
	return v.Str
}

// List returns the array field label, or nil.
func (r *Record) List(label string) []string {
	v, ok := r.fields[label]
	if !ok || v.Kind != Array {
		return nil
	}
	return v.List
}

// Int returns the numeric field label, or 0.
func (r *Record) Int(label string) int64 {
	v, ok := r.fields[label]
	if !ok || v.Kind != Numeric {
		return 0
	}
	return v.Num
}

// Accessors for the fields pacman databases commonly carry. Each returns the
// zero value when the field is absent.

func (r *Record) Filename() string    { return r.Str("FileName") }
func (r *Record) Name() string        { return r.Str("Name") }
func (r *Record) Base() string        { return r.Str("PackageBase") }
func (r *Record) Version() string     { return r.Str("Version") }
func (r *Record) Description() string { return r.Str("Description") }
func (r *Record) Arch() string        { return r.Str("Arch") }
func (r *Record) Depends() []string   { return r.List("Depends") }
func (r *Record) Licenses() []string  { return r.List("License") }
func (r *Record) BuildDate() int64    { return r.Int("BuildDate") }
func (r *Record) CSize() int64        { return r.Int("CSize") }
func (r *Record) ISize() int64        { return r.Int("ISize") }

// Equal reports whether r and o carry the same tags and field values.
func (r *Record) Equal(o *Record) bool {
	if r == nil || o == nil {
		return r == o
	}
	if r.SourcePath != o.SourcePath || r.Repository != o.Repository || len(r.fields) != len(o.fields) {
		return false
	}
	for l, v := range r.fields {
		w, ok := o.fields[l]
		if !ok || v.Kind != w.Kind {
			return false
		}
		switch v.Kind {
		case String:
			if v.Str != w.Str {
				return false
			}
		case Numeric:
			if v.Num != w.Num {
				return false
			}
		case Array:
			if len(v.List) != len(w.List) {
				return false
			}
			for i := range v.List {
				if v.List[i] != w.List[i] {
					return false
				}
			}
		}
	}
	return true
}
