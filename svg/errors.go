package svg

import "errors"

var (
	// ErrSelectorNotFound is returned when a selector matches no element.
	ErrSelectorNotFound = errors.New("svg: selector matched no element")

	// ErrInvalidSelector is returned for selector syntax errors.
	ErrInvalidSelector = errors.New("svg: invalid selector")

	// ErrNoRoot is returned when the input contains no root element.
	ErrNoRoot = errors.New("svg: document has no root element")

	// ErrNoSize is returned when the root element declares neither
	// width/height nor a viewBox.
	ErrNoSize = errors.New("svg: document has no intrinsic size")

	// ErrRelativeLength is returned for percentage lengths where an absolute
	// length is required.
	ErrRelativeLength = errors.New("svg: relative length not resolvable")

	// ErrInvalidLength is returned for malformed length values.
	ErrInvalidLength = errors.New("svg: invalid length")
)
