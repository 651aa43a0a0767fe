package draw

import "errors"

var (
	// ErrNotSVG is returned when the document element is not <svg>.
	ErrNotSVG = errors.New("draw: document element is not svg")

	// ErrEmptyCanvas is returned when the scaled document size rounds to
	// zero pixels in either dimension.
	ErrEmptyCanvas = errors.New("draw: empty canvas")

	// ErrInvalidScale is returned for a non-positive or non-finite scale.
	ErrInvalidScale = errors.New("draw: invalid scale")

	// ErrUnsupported is returned for content that cannot be rendered, such
	// as raster images and foreign objects.
	ErrUnsupported = errors.New("draw: unsupported element")

	// ErrInvalidColor is returned by ParseColor.
	ErrInvalidColor = errors.New("draw: invalid color")
)
