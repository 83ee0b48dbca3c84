package core

import (
	"errors"
	"testing"
)

func TestRegisterAndLookupFormat(t *testing.T) {
	Register("test-format", "FILENAME", testCatalog())

	f, err := LookupFormat("test-format")
	if err != nil {
		t.Fatalf("LookupFormat failed: %v", err)
	}
	if f.Header != "FILENAME" || f.Name != "test-format" {
		t.Errorf("format = %+v", f)
	}

	d, err := f.NewDecoder()
	if err != nil {
		t.Fatalf("NewDecoder failed: %v", err)
	}
	if d.HeaderLabel() != "FileName" {
		t.Errorf("HeaderLabel = %q", d.HeaderLabel())
	}

	found := false
	for _, name := range SupportedFormats() {
		if name == "test-format" {
			found = true
		}
	}
	if !found {
		t.Error("test-format missing from SupportedFormats")
	}
}

func TestLookupUnknownFormat(t *testing.T) {
	if _, err := LookupFormat("nope"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("err = %v, want ErrUnknownFormat", err)
	}
}
