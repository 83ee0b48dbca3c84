package core

import (
	"fmt"
	"sort"
	"sync"
)

// Format is a database layout: the catalog of attributes it uses and the
// token whose reappearance starts a new record.
type Format struct {
	Name    string
	Header  string
	Catalog *Catalog
}

// NewDecoder returns a decoder for this format.
func (f Format) NewDecoder(opts ...DecoderOption) (*Decoder, error) {
	return NewDecoder(f.Catalog, f.Header, opts...)
}

var (
	formats = make(map[string]Format)
	mu      sync.RWMutex
)

// Register adds a database format to the global set.
// name is the format identifier (e.g., "sync", "local").
// header is the token that begins each record.
func Register(name, header string, catalog *Catalog) {
	mu.Lock()
	defer mu.Unlock()
	formats[name] = Format{Name: name, Header: header, Catalog: catalog}
}

// LookupFormat returns the registered format with the given name.
func LookupFormat(name string) (Format, error) {
	mu.RLock()
	f, ok := formats[name]
	mu.RUnlock()

	if !ok {
		return Format{}, fmt.Errorf("%w: %s", ErrUnknownFormat, name)
	}
	return f, nil
}

// SupportedFormats returns all registered format names, sorted.
func SupportedFormats() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
