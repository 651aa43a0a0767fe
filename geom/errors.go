package geom

import "errors"

var (
	// ErrPathData is returned for malformed SVG path data. The path parsed
	// up to the error is still returned.
	ErrPathData = errors.New("geom: invalid path data")

	// ErrTransform is returned for a malformed transform list.
	ErrTransform = errors.New("geom: invalid transform")

	// ErrPoints is returned for a malformed points list.
	ErrPoints = errors.New("geom: invalid points")
)
