// Package rastertest checks raster.Rasterizer implementations against the
// behavior every backend must share.
package rastertest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/gogpu/svgdist/draw"
	"github.com/gogpu/svgdist/raster"
	"github.com/gogpu/svgdist/svg"
)

// Sample is a pixel expected to be occupied (alpha > 0) or empty.
type Sample struct {
	X, Y     int
	Occupied bool
}

// Case is a document rendered at a scale with pixel expectations.
type Case struct {
	Name    string
	SVG     string
	Scale   float64
	Width   int
	Height  int
	Samples []Sample
}

// Cases are the shared rendering expectations. Samples stay at least one
// pixel away from shape edges so anti-aliasing differences between
// backends do not matter.
var Cases = []Case{
	{
		Name:    "rect",
		SVG:     `<svg width="10" height="10"><rect x="2" y="0" width="1" height="3"/></svg>`,
		Scale:   1,
		Width:   10,
		Height:  10,
		Samples: []Sample{{2, 0, true}, {2, 2, true}, {0, 1, false}, {4, 1, false}, {2, 4, false}},
	},
	{
		Name:    "rect scaled",
		SVG:     `<svg width="10" height="10"><rect x="2" y="0" width="1" height="3"/></svg>`,
		Scale:   4,
		Width:   40,
		Height:  40,
		Samples: []Sample{{9, 5, true}, {10, 11, true}, {6, 5, false}, {13, 5, false}, {9, 13, false}},
	},
	{
		Name:    "fractional size",
		SVG:     `<svg width="3" height="3"><rect width="3" height="3"/></svg>`,
		Scale:   0.5,
		Width:   2,
		Height:  2,
		Samples: []Sample{{0, 0, true}},
	},
	{
		Name:    "circle",
		SVG:     `<svg width="10" height="10"><circle cx="5" cy="5" r="3"/></svg>`,
		Scale:   1,
		Width:   10,
		Height:  10,
		Samples: []Sample{{5, 5, true}, {4, 4, true}, {0, 5, false}, {0, 0, false}, {9, 9, false}},
	},
	{
		Name:    "transformed group",
		SVG:     `<svg width="10" height="10"><g transform="translate(6 6)"><rect width="2" height="2"/></g></svg>`,
		Scale:   1,
		Width:   10,
		Height:  10,
		Samples: []Sample{{6, 6, true}, {7, 7, true}, {4, 6, false}, {6, 4, false}},
	},
	{
		Name:    "stroke butt cap",
		SVG:     `<svg width="10" height="10"><line x1="3" y1="5" x2="7" y2="5" stroke="black" stroke-width="4"/></svg>`,
		Scale:   1,
		Width:   10,
		Height:  10,
		Samples: []Sample{{5, 3, true}, {5, 6, true}, {1, 5, false}, {8, 5, false}, {5, 0, false}},
	},
	{
		Name:    "stroke square cap",
		SVG:     `<svg width="10" height="10"><line x1="3" y1="5" x2="7" y2="5" stroke="black" stroke-width="4" stroke-linecap="square"/></svg>`,
		Scale:   1,
		Width:   10,
		Height:  10,
		Samples: []Sample{{1, 5, true}, {8, 5, true}, {5, 0, false}},
	},
	{
		Name:    "stroke round join",
		SVG:     `<svg width="20" height="20"><polyline points="4 16 10 4 16 16" fill="none" stroke="black" stroke-width="2" stroke-linejoin="round"/></svg>`,
		Scale:   1,
		Width:   20,
		Height:  20,
		Samples: []Sample{{10, 3, true}, {10, 12, false}, {1, 1, false}},
	},
	{
		Name:    "dashed stroke",
		SVG:     `<svg width="12" height="10"><line x1="0" y1="5" x2="12" y2="5" stroke="black" stroke-width="2" stroke-dasharray="2 2"/></svg>`,
		Scale:   1,
		Width:   12,
		Height:  10,
		Samples: []Sample{{1, 5, true}, {5, 5, true}, {3, 5, false}, {7, 5, false}},
	},
	{
		Name:    "use symbol",
		SVG:     `<svg xmlns:xlink="http://www.w3.org/1999/xlink" width="10" height="10"><defs><symbol id="s" viewBox="0 0 1 1"><rect width="1" height="1"/></symbol></defs><use xlink:href="#s" x="4" y="4" width="4" height="4"/></svg>`,
		Scale:   1,
		Width:   10,
		Height:  10,
		Samples: []Sample{{5, 5, true}, {6, 6, true}, {2, 5, false}, {9, 9, false}},
	},
	{
		Name:    "fill none",
		SVG:     `<svg width="10" height="10"><rect width="10" height="10" fill="none"/></svg>`,
		Scale:   1,
		Width:   10,
		Height:  10,
		Samples: []Sample{{5, 5, false}},
	},
}

// Run renders every case with r and checks size and samples, then checks
// isolation, text, cancellation, error wrapping and concurrent use.
func Run(t *testing.T, r raster.Rasterizer) {
	t.Helper()
	ctx := context.Background()

	for _, tc := range Cases {
		t.Run(tc.Name, func(t *testing.T) {
			buf, err := r.Rasterize(ctx, parse(t, tc.SVG), tc.Scale)
			if err != nil {
				t.Fatalf("Rasterize() error = %v", err)
			}
			if buf.Width() != tc.Width || buf.Height() != tc.Height {
				t.Fatalf("size = %dx%d, want %dx%d", buf.Width(), buf.Height(), tc.Width, tc.Height)
			}
			for _, p := range tc.Samples {
				if got := buf.Alpha(p.X, p.Y) > 0; got != p.Occupied {
					t.Errorf("pixel (%d,%d) occupied = %v, want %v", p.X, p.Y, got, p.Occupied)
				}
			}
		})
	}

	t.Run("isolated", func(t *testing.T) {
		doc := parse(t, `<svg width="10" height="10">
		  <rect id="a" x="1" y="1" width="2" height="2"/>
		  <g><rect id="b" x="6" y="6" width="2" height="2"/></g>
		</svg>`)
		iso, _, err := svg.Isolate(doc, "#b")
		if err != nil {
			t.Fatal(err)
		}
		buf, err := r.Rasterize(ctx, iso, 1)
		if err != nil {
			t.Fatalf("Rasterize() error = %v", err)
		}
		if buf.Alpha(1, 1) != 0 || buf.Alpha(2, 2) != 0 {
			t.Error("hidden sibling was drawn")
		}
		if buf.Alpha(6, 6) == 0 || buf.Alpha(7, 7) == 0 {
			t.Error("isolated element was not drawn")
		}
	})

	t.Run("text", func(t *testing.T) {
		buf, err := r.Rasterize(ctx, parse(t, `<svg width="40" height="20"><text x="2" y="15" font-size="14">Hi</text></svg>`), 1)
		if err != nil {
			t.Fatalf("Rasterize() error = %v", err)
		}
		if count(buf) == 0 {
			t.Error("text produced no coverage")
		}
	})

	t.Run("canceled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := r.Rasterize(cctx, parse(t, Cases[0].SVG), 1)
		if !errors.Is(err, raster.ErrRenderFailure) || !errors.Is(err, context.Canceled) {
			t.Errorf("Rasterize(canceled) error = %v, want render failure wrapping context.Canceled", err)
		}
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := r.Rasterize(ctx, parse(t, `<svg width="4" height="4"><image width="1" height="1"/></svg>`), 1)
		if !errors.Is(err, raster.ErrRenderFailure) || !errors.Is(err, draw.ErrUnsupported) {
			t.Errorf("Rasterize(image) error = %v, want render failure wrapping draw.ErrUnsupported", err)
		}
	})

	t.Run("concurrent", func(t *testing.T) {
		doc := parse(t, Cases[3].SVG)
		want, err := r.Rasterize(ctx, doc, 2)
		if err != nil {
			t.Fatal(err)
		}
		var wg sync.WaitGroup
		errs := make(chan error, 8)
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				got, err := r.Rasterize(ctx, doc, 2)
				if err != nil {
					errs <- err
					return
				}
				if string(got.Pix()) != string(want.Pix()) {
					errs <- errors.New("concurrent render differs")
				}
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			t.Error(err)
		}
	})
}

func parse(t *testing.T, s string) *svg.Document {
	t.Helper()
	doc, err := svg.ParseString(s)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	return doc
}

func count(b *raster.Buffer) int {
	n := 0
	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			if b.Alpha(x, y) > 0 {
				n++
			}
		}
	}
	return n
}
