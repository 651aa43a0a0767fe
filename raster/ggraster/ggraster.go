// Package ggraster is the production raster backend, drawing display lists
// with github.com/gogpu/gg.
//
// Importing the package registers it as raster.BackendGG:
//
//	import _ "github.com/gogpu/svgdist/raster/ggraster"
//
// Every Rasterize call owns a fresh gg.Context, closed on return. When a gg
// GPU accelerator is registered, calls are serialized because the
// accelerator is process-wide.
package ggraster

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/svgdist/draw"
	"github.com/gogpu/svgdist/geom"
	"github.com/gogpu/svgdist/raster"
	"github.com/gogpu/svgdist/svg"
)

func init() {
	raster.Register(raster.BackendGG, func() raster.Rasterizer {
		return New()
	})
}

var (
	// gpuMu serializes rendering while a GPU accelerator is registered.
	gpuMu sync.Mutex

	fontOnce   sync.Once
	fontSource *text.FontSource
	fontErr    error
)

func loadFont() (*text.FontSource, error) {
	fontOnce.Do(func() {
		fontSource, fontErr = text.NewFontSource(goregular.TTF)
	})
	return fontSource, fontErr
}

// Rasterizer renders with gg. The zero value is ready to use.
type Rasterizer struct{}

// New returns a gg rasterizer.
func New() *Rasterizer {
	return &Rasterizer{}
}

var _ raster.Rasterizer = (*Rasterizer)(nil)

// Rasterize implements raster.Rasterizer.
func (r *Rasterizer) Rasterize(ctx context.Context, doc *svg.Document, scale float64) (*raster.Buffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, raster.Failure(raster.BackendGG, err)
	}
	start := time.Now()

	list, err := raster.Compile(raster.BackendGG, doc, scale)
	if err != nil {
		return nil, err
	}

	if gg.Accelerator() != nil {
		gpuMu.Lock()
		defer gpuMu.Unlock()
	}

	dc := gg.NewContext(list.Width, list.Height)
	defer func() {
		_ = dc.Close()
	}()

	for i := range list.Ops {
		if err := ctx.Err(); err != nil {
			return nil, raster.Failure(raster.BackendGG, err)
		}
		if err := drawOp(dc, &list.Ops[i]); err != nil {
			return nil, raster.Failure(raster.BackendGG, fmt.Errorf("%s %s: %w", list.Ops[i].Kind, list.Ops[i].Source, err))
		}
	}
	if err := dc.FlushGPU(); err != nil {
		return nil, raster.Failure(raster.BackendGG, err)
	}

	buf := raster.FromImage(dc.Image())
	raster.Logger().Debug("ggraster: rendered",
		"width", buf.Width(), "height", buf.Height(), "ops", len(list.Ops), "elapsed", time.Since(start))
	return buf, nil
}

func drawOp(dc *gg.Context, op *draw.Op) error {
	c := op.Paint
	dc.SetRGBA(c.R, c.G, c.B, c.A)

	switch op.Kind {
	case draw.KindFill:
		tracePath(dc, op.Path)
		if op.Rule == draw.EvenOdd {
			dc.SetFillRule(gg.FillRuleEvenOdd)
		} else {
			dc.SetFillRule(gg.FillRuleNonZero)
		}
		return dc.Fill()

	case draw.KindStroke:
		s := op.Stroke
		dc.SetLineWidth(s.Width)
		dc.SetLineCap(lineCaps[s.Cap])
		dc.SetLineJoin(lineJoins[s.Join])
		dc.SetMiterLimit(s.MiterLimit)
		if len(s.Dashes) > 0 {
			dc.SetDash(s.Dashes...)
			dc.SetDashOffset(s.DashOffset)
		} else {
			dc.ClearDash()
		}
		tracePath(dc, op.Path)
		return dc.Stroke()

	case draw.KindText:
		return drawText(dc, op.Text)
	}
	return nil
}

var lineCaps = map[draw.Cap]gg.LineCap{
	draw.CapButt:   gg.LineCapButt,
	draw.CapRound:  gg.LineCapRound,
	draw.CapSquare: gg.LineCapSquare,
}

var lineJoins = map[draw.Join]gg.LineJoin{
	draw.JoinMiter: gg.LineJoinMiter,
	draw.JoinRound: gg.LineJoinRound,
	draw.JoinBevel: gg.LineJoinBevel,
}

// tracePath replays a device space path into the context's current path.
// The context transform stays the identity.
func tracePath(dc *gg.Context, p *geom.Path) {
	p.Walk(func(v geom.Verb, pts []geom.Point) {
		switch v {
		case geom.MoveTo:
			dc.MoveTo(pts[0].X, pts[0].Y)
		case geom.LineTo:
			dc.LineTo(pts[0].X, pts[0].Y)
		case geom.QuadTo:
			dc.QuadraticTo(pts[0].X, pts[0].Y, pts[1].X, pts[1].Y)
		case geom.CubicTo:
			dc.CubicTo(pts[0].X, pts[0].Y, pts[1].X, pts[1].Y, pts[2].X, pts[2].Y)
		case geom.Close:
			dc.ClosePath()
		}
	})
}

// drawText draws an axis-aligned run at its device origin and size. gg draws
// text without the context transform, so rotation and skew are dropped.
func drawText(dc *gg.Context, t *draw.Text) error {
	size := t.DeviceSize()
	if size <= 0 {
		return nil
	}
	src, err := loadFont()
	if err != nil {
		return fmt.Errorf("load font: %w", err)
	}
	dc.SetFont(src.Face(size))

	at := t.DeviceOrigin()
	switch t.Anchor {
	case draw.AnchorMiddle:
		w, _ := dc.MeasureString(t.Content)
		at.X -= w / 2
	case draw.AnchorEnd:
		w, _ := dc.MeasureString(t.Content)
		at.X -= w
	}
	dc.DrawString(t.Content, at.X, at.Y)
	return nil
}
