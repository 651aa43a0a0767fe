package svgdist

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/svgdist/field"
	"github.com/gogpu/svgdist/geom"
	"github.com/gogpu/svgdist/mask"
	"github.com/gogpu/svgdist/raster"
	_ "github.com/gogpu/svgdist/raster/ggraster"  // registers "gg"
	_ "github.com/gogpu/svgdist/raster/vecraster" // registers "vector"
	"github.com/gogpu/svgdist/svg"
)

// Result is a measurement with the values it was derived from.
type Result struct {
	// Distance is the measured distance in document units.
	Distance float64

	// Pixels is the distance in raster pixels, before dividing by Scale.
	Pixels float64

	// Scale is the number of raster pixels per document unit.
	Scale float64

	// Tolerance bounds the difference between Distance and the true outline
	// distance, in document units.
	Tolerance float64

	// Nearest is the center of the second shape's pixel closest to the
	// first shape, in document units.
	Nearest geom.Point

	// Width and Height are the raster dimensions in pixels.
	Width, Height int

	// Backend names the rasterizer, or is empty for one given with
	// WithRasterizer.
	Backend string
}

// Measurer measures distances between shapes. It is safe for concurrent
// use as long as its rasterizer is.
type Measurer struct {
	rasterizer raster.Rasterizer
	backend    string
	scale      float64
	sequential bool
}

// New creates a Measurer. Without WithRasterizer or WithBackend it uses the
// highest priority registered backend.
func New(opts ...Option) (*Measurer, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if !(o.scale > 0) || math.IsInf(o.scale, 1) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScale, o.scale)
	}

	m := &Measurer{
		rasterizer: o.rasterizer,
		scale:      o.scale,
		sequential: o.sequential,
	}
	switch {
	case m.rasterizer != nil:
	case o.backend != "":
		r, err := raster.Get(o.backend)
		if err != nil {
			return nil, err
		}
		m.rasterizer, m.backend = r, o.backend
	default:
		r, name, err := raster.Default()
		if err != nil {
			return nil, err
		}
		m.rasterizer, m.backend = r, name
	}
	if m.backend != "" {
		Logger().Info("svgdist: rasterizer selected", "backend", m.backend, "scale", m.scale)
	}
	return m, nil
}

// Scale returns the raster scale.
func (m *Measurer) Scale() float64 { return m.scale }

// Backend returns the backend name, or "" for a custom rasterizer.
func (m *Measurer) Backend() string { return m.backend }

// Distance returns the distance between the shapes matched by sel1 and
// sel2, in document units. See Measure.
func (m *Measurer) Distance(ctx context.Context, doc *svg.Document, sel1, sel2 string) (float64, error) {
	res, err := m.Measure(ctx, doc, sel1, sel2)
	if err != nil {
		return 0, err
	}
	return res.Distance, nil
}

// Measure isolates, rasterizes and masks both shapes, then returns the
// smallest distance from the first shape's pixels to the second's. doc is
// not modified.
//
// Errors are *Error values of kind ErrSelectorNotFound, ErrRenderFailure or
// ErrEmptyMask, or the context's error.
func (m *Measurer) Measure(ctx context.Context, doc *svg.Document, sel1, sel2 string) (*Result, error) {
	start := time.Now()

	var g1, g2 *mask.Grid
	if m.sequential {
		var err error
		if g1, err = m.Occupancy(ctx, doc, sel1); err != nil {
			return nil, err
		}
		if g2, err = m.Occupancy(ctx, doc, sel2); err != nil {
			return nil, err
		}
	} else {
		eg, egCtx := errgroup.WithContext(ctx)
		eg.Go(func() (err error) {
			g1, err = m.Occupancy(egCtx, doc, sel1)
			return err
		})
		eg.Go(func() (err error) {
			g2, err = m.Occupancy(egCtx, doc, sel2)
			return err
		})
		if err := eg.Wait(); err != nil {
			return nil, err
		}
	}

	if g1.Empty() {
		return nil, &Error{Kind: ErrEmptyMask, Document: doc.Name, Selector: sel1, Err: field.ErrEmptyMask}
	}
	if g2.Empty() {
		return nil, &Error{Kind: ErrEmptyMask, Document: doc.Name, Selector: sel2, Err: field.ErrEmptyMask}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rendered := time.Now()
	f := field.Build(g1)
	hit, err := f.Nearest(g2)
	if err != nil {
		return nil, &Error{Kind: ErrRenderFailure, Document: doc.Name, Selector: sel2, Err: err}
	}

	res := m.result(hit, g1.Width(), g1.Height())
	Logger().Debug("svgdist: measured",
		"document", doc.Name, "digest", fmt.Sprintf("%016x", doc.Digest()), "sel1", sel1, "sel2", sel2,
		"distance", res.Distance, "pixels", res.Pixels,
		"render", rendered.Sub(start), "transform", time.Since(rendered))
	return res, nil
}

func (m *Measurer) result(hit field.Hit, w, h int) *Result {
	return &Result{
		Distance:  hit.Distance / m.scale,
		Pixels:    hit.Distance,
		Scale:     m.scale,
		Tolerance: math.Sqrt2 / m.scale,
		Nearest:   geom.Pt((float64(hit.X)+0.5)/m.scale, (float64(hit.Y)+0.5)/m.scale),
		Width:     w,
		Height:    h,
		Backend:   m.backend,
	}
}

// Occupancy returns the occupancy grid of the shape matched by sel, as
// rendered in place with all its siblings hidden. The grid may be empty.
func (m *Measurer) Occupancy(ctx context.Context, doc *svg.Document, sel string) (*mask.Grid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	iso, _, err := svg.Isolate(doc, sel)
	if err != nil {
		return nil, &Error{Kind: ErrSelectorNotFound, Document: doc.Name, Selector: sel, Err: err}
	}

	start := time.Now()
	buf, err := m.rasterizer.Rasterize(ctx, iso, m.scale)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, ctxErr
		}
		return nil, &Error{Kind: ErrRenderFailure, Document: doc.Name, Selector: sel, Err: err}
	}
	g := mask.Extract(buf)
	Logger().Debug("svgdist: rasterized",
		"selector", sel, "width", buf.Width(), "height", buf.Height(),
		"occupied", g.Count(), "elapsed", time.Since(start))
	return g, nil
}

// Distance measures with a Measurer built from opts. See Measurer.Measure.
func Distance(ctx context.Context, doc *svg.Document, sel1, sel2 string, opts ...Option) (float64, error) {
	m, err := New(opts...)
	if err != nil {
		return 0, err
	}
	return m.Distance(ctx, doc, sel1, sel2)
}

// DistanceBetweenImages returns the smallest distance in pixels between the
// visible (alpha > 0) pixels of two images of the same size.
func DistanceBetweenImages(a, b image.Image) (float64, error) {
	ga, gb := mask.FromImage(a), mask.FromImage(b)
	if ga.Width() != gb.Width() || ga.Height() != gb.Height() {
		return 0, fmt.Errorf("svgdist: %w: %v and %v", field.ErrSizeMismatch, a.Bounds(), b.Bounds())
	}
	if ga.Empty() {
		return 0, &Error{Kind: ErrEmptyMask, Document: "image a", Err: field.ErrEmptyMask}
	}
	if gb.Empty() {
		return 0, &Error{Kind: ErrEmptyMask, Document: "image b", Err: field.ErrEmptyMask}
	}
	return field.Build(ga).MinOver(gb)
}
