package raster

import (
	"context"

	"github.com/gogpu/svgdist/draw"
	"github.com/gogpu/svgdist/svg"
)

// DefaultScale is the raster scale used when none is given: one pixel per
// document unit.
const DefaultScale = 1.0

// Rasterizer renders a document to a pixel buffer.
//
// Implementations allocate their drawing surface per call and release it on
// every return path, so a Rasterizer may be used from several goroutines.
// They check ctx between draw operations and return its error, wrapped as a
// render failure, when it is done.
type Rasterizer interface {
	Rasterize(ctx context.Context, doc *svg.Document, scale float64) (*Buffer, error)
}

// RasterizerFunc adapts an ordinary function to the Rasterizer interface.
type RasterizerFunc func(ctx context.Context, doc *svg.Document, scale float64) (*Buffer, error)

// Rasterize calls f(ctx, doc, scale).
func (f RasterizerFunc) Rasterize(ctx context.Context, doc *svg.Document, scale float64) (*Buffer, error) {
	return f(ctx, doc, scale)
}

// Compile builds the display list a backend draws. Compile errors are
// returned as render failures of the named backend.
func Compile(backend string, doc *svg.Document, scale float64) (*draw.List, error) {
	l, err := draw.Compile(doc, scale, draw.WithLogger(Logger()))
	if err != nil {
		return nil, Failure(backend, err)
	}
	Logger().Debug("raster: compiled display list",
		"backend", backend, "width", l.Width, "height", l.Height, "ops", len(l.Ops))
	return l, nil
}
