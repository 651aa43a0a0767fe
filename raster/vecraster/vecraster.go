// Package vecraster is an alternate raster backend built on
// golang.org/x/image/vector.
//
// Importing the package registers it as raster.BackendVector. Fills use the
// vector rasterizer's accumulated coverage, which matches the nonzero rule
// for the simple and opposite-wound contours SVG generators emit; even-odd
// fills are approximated the same way. Strokes are converted to polygons by
// a small stroker and filled. Text is drawn from Go Regular glyph outlines,
// so it follows the full transform including rotation.
package vecraster

import (
	"context"
	"fmt"
	"image"
	imagedraw "image/draw"
	"time"

	"golang.org/x/image/vector"

	"github.com/gogpu/svgdist/draw"
	"github.com/gogpu/svgdist/geom"
	"github.com/gogpu/svgdist/raster"
	"github.com/gogpu/svgdist/svg"
)

func init() {
	raster.Register(raster.BackendVector, func() raster.Rasterizer {
		return New()
	})
}

// Tolerance is the curve flattening tolerance in device pixels for strokes.
const Tolerance = 0.05

// Rasterizer renders with x/image/vector. The zero value is ready to use.
type Rasterizer struct{}

// New returns a vector rasterizer.
func New() *Rasterizer {
	return &Rasterizer{}
}

var _ raster.Rasterizer = (*Rasterizer)(nil)

// Rasterize implements raster.Rasterizer.
func (r *Rasterizer) Rasterize(ctx context.Context, doc *svg.Document, scale float64) (*raster.Buffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, raster.Failure(raster.BackendVector, err)
	}
	start := time.Now()

	list, err := raster.Compile(raster.BackendVector, doc, scale)
	if err != nil {
		return nil, err
	}

	dst := image.NewRGBA(image.Rect(0, 0, list.Width, list.Height))
	z := vector.NewRasterizer(list.Width, list.Height)
	warned := false

	for i := range list.Ops {
		if err := ctx.Err(); err != nil {
			return nil, raster.Failure(raster.BackendVector, err)
		}
		op := &list.Ops[i]
		z.Reset(list.Width, list.Height)
		z.DrawOp = imagedraw.Over

		switch op.Kind {
		case draw.KindFill:
			if op.Rule == draw.EvenOdd && !warned {
				raster.Logger().Warn("vecraster: even-odd fill approximated by accumulated coverage", "element", op.Source)
				warned = true
			}
			tracePath(z, op.Path)
		case draw.KindStroke:
			for _, poly := range strokePolygons(op.Path, op.Stroke, Tolerance) {
				tracePolygon(z, poly)
			}
		case draw.KindText:
			if err := traceText(z, op.Text); err != nil {
				return nil, raster.Failure(raster.BackendVector, fmt.Errorf("text %s: %w", op.Source, err))
			}
		}
		z.Draw(dst, dst.Bounds(), image.NewUniform(op.Paint.NRGBA()), image.Point{})
	}

	buf := raster.FromImage(dst)
	raster.Logger().Debug("vecraster: rendered",
		"width", buf.Width(), "height", buf.Height(), "ops", len(list.Ops), "elapsed", time.Since(start))
	return buf, nil
}

func tracePath(z *vector.Rasterizer, p *geom.Path) {
	open := false
	p.Walk(func(v geom.Verb, pts []geom.Point) {
		switch v {
		case geom.MoveTo:
			if open {
				z.ClosePath()
			}
			z.MoveTo(f32(pts[0].X), f32(pts[0].Y))
			open = true
		case geom.LineTo:
			z.LineTo(f32(pts[0].X), f32(pts[0].Y))
		case geom.QuadTo:
			z.QuadTo(f32(pts[0].X), f32(pts[0].Y), f32(pts[1].X), f32(pts[1].Y))
		case geom.CubicTo:
			z.CubeTo(f32(pts[0].X), f32(pts[0].Y), f32(pts[1].X), f32(pts[1].Y), f32(pts[2].X), f32(pts[2].Y))
		case geom.Close:
			z.ClosePath()
			open = false
		}
	})
	if open {
		z.ClosePath()
	}
}

func tracePolygon(z *vector.Rasterizer, poly []geom.Point) {
	if len(poly) < 3 {
		return
	}
	z.MoveTo(f32(poly[0].X), f32(poly[0].Y))
	for _, p := range poly[1:] {
		z.LineTo(f32(p.X), f32(p.Y))
	}
	z.ClosePath()
}

func f32(v float64) float32 { return float32(v) }
