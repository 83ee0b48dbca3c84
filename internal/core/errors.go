package core

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedStream is returned when the input violates the block layout.
	ErrMalformedStream = errors.New("malformed database stream")

	// ErrInvalidPattern is returned when a search pattern does not compile.
	ErrInvalidPattern = errors.New("invalid search pattern")

	// ErrUnknownHeader is returned when the header token is not a string
	// attribute of the catalog.
	ErrUnknownHeader = errors.New("unknown header attribute")

	// ErrUnknownFormat is returned by LookupFormat for unregistered formats.
	ErrUnknownFormat = errors.New("unknown database format")
)

// MalformedStreamError carries the position of a format violation.
type MalformedStreamError struct {
	Path   string
	Line   int
	Reason string
}

func (e *MalformedStreamError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Reason)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

func (e *MalformedStreamError) Unwrap() error {
	return ErrMalformedStream
}
