package font

import (
	"errors"
	"fmt"
)

// Sentinel errors for font package.
var (
	// ErrEmptyDescriptor is returned when a descriptor has no content.
	ErrEmptyDescriptor = errors.New("font: empty descriptor")

	// ErrNoGlyphs is returned when a descriptor or bake produces no glyphs.
	ErrNoGlyphs = errors.New("font: no glyphs")

	// ErrBinaryDescriptor is returned for binary BMFont files, which are not supported.
	ErrBinaryDescriptor = errors.New("font: binary BMFont descriptors are not supported")
)

// ParseError reports a malformed line in a text BMFont descriptor.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("font: line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
