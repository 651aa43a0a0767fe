package svgdist

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every *Error matches exactly one of them with errors.Is.
var (
	// ErrSelectorNotFound reports a selector that matches no element of the
	// document, or that cannot be parsed.
	ErrSelectorNotFound = errors.New("svgdist: selector not found")

	// ErrRenderFailure reports a rasterizer error.
	ErrRenderFailure = errors.New("svgdist: render failure")

	// ErrEmptyMask reports a shape that renders no visible pixel.
	ErrEmptyMask = errors.New("svgdist: empty mask")
)

// ErrInvalidScale is returned by New for a scale that is not positive.
var ErrInvalidScale = errors.New("svgdist: scale must be positive")

// Error describes a failed measurement of one shape.
type Error struct {
	// Kind is ErrSelectorNotFound, ErrRenderFailure or ErrEmptyMask.
	Kind error

	// Document names the document, usually its path. It may be empty.
	Document string

	// Selector is the selector being measured, verbatim.
	Selector string

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Document != "" {
		fmt.Fprintf(&b, ": document %q", e.Document)
	}
	if e.Selector != "" {
		fmt.Fprintf(&b, ": selector %q", e.Selector)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Is reports whether target is the error's kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}
