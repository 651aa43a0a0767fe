package svgdist

import "github.com/gogpu/svgdist/raster"

// Option configures a Measurer.
//
// Example:
//
//	// Default backend, one pixel per document unit
//	m, err := svgdist.New()
//
//	// Vector backend at 4x resolution
//	m, err := svgdist.New(svgdist.WithBackend("vector"), svgdist.WithScale(4))
type Option func(*options)

type options struct {
	rasterizer raster.Rasterizer
	backend    string
	scale      float64
	sequential bool
}

func defaultOptions() options {
	return options{
		scale: raster.DefaultScale,
	}
}

// WithRasterizer sets the rasterizer used for both shapes. It takes
// precedence over WithBackend.
func WithRasterizer(r raster.Rasterizer) Option {
	return func(o *options) {
		o.rasterizer = r
	}
}

// WithBackend selects a registered raster backend by name, such as "gg" or
// "vector". New fails with raster.ErrUnknownBackend for unknown names.
func WithBackend(name string) Option {
	return func(o *options) {
		o.backend = name
	}
}

// WithScale sets the number of raster pixels per document unit. Larger
// scales shrink the error bound proportionally at quadratic memory cost.
// The scale must be positive.
func WithScale(s float64) Option {
	return func(o *options) {
		o.scale = s
	}
}

// WithSequential renders the two shapes one after the other instead of
// concurrently.
func WithSequential() Option {
	return func(o *options) {
		o.sequential = true
	}
}
