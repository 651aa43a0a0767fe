// Package raster turns SVG documents into pixel buffers.
//
// The package defines the [Rasterizer] interface, the immutable [Buffer]
// it produces, and a registry of named backends. Backends register
// themselves on import:
//
//	import _ "github.com/gogpu/svgdist/raster/ggraster"  // "gg", default
//	import _ "github.com/gogpu/svgdist/raster/vecraster" // "vector"
//
// # Backend Selection
//
// Use [Default] for the best available backend, or [Get] to request one by
// name:
//
//	r, err := raster.Get("vector")
//	if err != nil {
//		return err
//	}
//	buf, err := r.Rasterize(ctx, doc, 2)
//
// # Output Size
//
// A document of intrinsic size W x H rendered at scale s produces a
// ceil(W*s) x ceil(H*s) buffer. One buffer pixel covers 1/s document units.
//
// # Errors
//
// Every failure a backend reports wraps [ErrRenderFailure] together with
// the underlying cause, so callers can test for the category with
// errors.Is and still inspect the cause.
package raster
