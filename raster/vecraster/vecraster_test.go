package vecraster

import (
	"context"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/gogpu/svgdist/draw"
	"github.com/gogpu/svgdist/geom"
	"github.com/gogpu/svgdist/raster"
	"github.com/gogpu/svgdist/raster/rastertest"
	"github.com/gogpu/svgdist/svg"
)

func TestConformance(t *testing.T) {
	rastertest.Run(t, New())
}

func TestRegistered(t *testing.T) {
	r, err := raster.Get(raster.BackendVector)
	if err != nil {
		t.Fatalf("Get(vector) error = %v", err)
	}
	if _, ok := r.(*Rasterizer); !ok {
		t.Errorf("Get(vector) = %T, want *Rasterizer", r)
	}
}

func TestOppositeWindingHole(t *testing.T) {
	doc, err := svg.ParseString(`<svg width="20" height="20">
	  <path d="M2 2 H18 V18 H2 Z M6 6 V14 H14 V6 Z"/>
	</svg>`)
	if err != nil {
		t.Fatal(err)
	}
	buf, err := New().Rasterize(context.Background(), doc, 1)
	if err != nil {
		t.Fatalf("Rasterize() error = %v", err)
	}
	if buf.Alpha(3, 3) == 0 {
		t.Error("ring not drawn")
	}
	if buf.Alpha(10, 10) != 0 {
		t.Error("nonzero hole filled")
	}
}

func TestRotatedText(t *testing.T) {
	doc, err := svg.ParseString(`<svg width="40" height="40">
	  <text x="0" y="0" font-size="16" transform="translate(20 4) rotate(90)">II</text>
	</svg>`)
	if err != nil {
		t.Fatal(err)
	}
	buf, err := New().Rasterize(context.Background(), doc, 1)
	if err != nil {
		t.Fatalf("Rasterize() error = %v", err)
	}
	// Rotated by 90 degrees the run extends down from (20, 4) and the
	// glyph tops point to the right of the baseline at x=20.
	lower, left := 0, 0
	for y := 0; y < buf.Height(); y++ {
		for x := 0; x < buf.Width(); x++ {
			if buf.Alpha(x, y) == 0 {
				continue
			}
			if y > 8 {
				lower++
			}
			if x < 18 {
				left++
			}
		}
	}
	if lower == 0 {
		t.Error("rotated text does not extend downward")
	}
	if left != 0 {
		t.Errorf("rotated text has %d pixels left of the baseline", left)
	}
}

var approx = cmpopts.EquateApprox(0, 1e-9)

func area(polys [][]geom.Point) float64 {
	a := 0.0
	for _, p := range polys {
		a += signedArea(p)
	}
	return a
}

func TestStrokePolygonsSegment(t *testing.T) {
	p := geom.LinePath(0, 0, 10, 0)
	polys := strokePolygons(p, draw.StrokeStyle{Width: 2, MiterLimit: 4}, 0.05)
	if len(polys) != 1 {
		t.Fatalf("butt stroke = %d polygons, want 1", len(polys))
	}
	if got := area(polys); math.Abs(got-20) > 1e-9 {
		t.Errorf("butt stroke area = %v, want 20", got)
	}

	sq := strokePolygons(p, draw.StrokeStyle{Width: 2, Cap: draw.CapSquare, MiterLimit: 4}, 0.05)
	if got := area(sq); math.Abs(got-24) > 1e-9 {
		t.Errorf("square cap area = %v, want 24", got)
	}

	round := strokePolygons(p, draw.StrokeStyle{Width: 2, Cap: draw.CapRound, MiterLimit: 4}, 0.05)
	if got, want := area(round), 20+2*math.Pi; math.Abs(got-want) > 0.5 {
		t.Errorf("round cap area = %v, want about %v", got, want)
	}

	for _, poly := range round {
		if signedArea(poly) <= 0 {
			t.Errorf("polygon %v wound negatively", poly)
		}
	}
}

func TestStrokePolygonsJoins(t *testing.T) {
	// A right angle: the miter adds a 1x1 square at the outer corner,
	// the bevel half of it.
	p := geom.PolyPath([]geom.Point{geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt(10, 10)}, false)
	base := 20.0 + 20.0

	miter := strokePolygons(p, draw.StrokeStyle{Width: 2, Join: draw.JoinMiter, MiterLimit: 4}, 0.05)
	if got := area(miter); math.Abs(got-(base+1)) > 1e-9 {
		t.Errorf("miter join area = %v, want %v", got, base+1)
	}
	bevel := strokePolygons(p, draw.StrokeStyle{Width: 2, Join: draw.JoinBevel, MiterLimit: 4}, 0.05)
	if got := area(bevel); math.Abs(got-(base+0.5)) > 1e-9 {
		t.Errorf("bevel join area = %v, want %v", got, base+0.5)
	}
	// sqrt(2) exceeds a miter limit of 1.2, so the miter falls back to a bevel.
	limited := strokePolygons(p, draw.StrokeStyle{Width: 2, Join: draw.JoinMiter, MiterLimit: 1.2}, 0.05)
	if got := area(limited); math.Abs(got-(base+0.5)) > 1e-9 {
		t.Errorf("limited miter area = %v, want %v", got, base+0.5)
	}

	// The miter tip is the outer corner (11, -1).
	var tips []geom.Point
	for _, poly := range miter {
		if len(poly) == 4 && containsPt(poly, geom.Pt(10, 0)) {
			tips = append(tips, poly...)
		}
	}
	if !containsApprox(tips, geom.Pt(11, -1)) {
		t.Errorf("miter polygons %v do not reach (11,-1)", tips)
	}
}

func containsPt(poly []geom.Point, p geom.Point) bool {
	for _, q := range poly {
		if q == p {
			return true
		}
	}
	return false
}

func containsApprox(pts []geom.Point, p geom.Point) bool {
	for _, q := range pts {
		if q.Sub(p).Len() < 1e-9 {
			return true
		}
	}
	return false
}

func TestStrokeZeroLength(t *testing.T) {
	p, err := geom.ParsePathData("M5 5 L5 5")
	if err != nil {
		t.Fatal(err)
	}
	if got := strokePolygons(p, draw.StrokeStyle{Width: 2, MiterLimit: 4}, 0.05); len(got) != 0 {
		t.Errorf("butt dot = %d polygons, want 0", len(got))
	}
	sq := strokePolygons(p, draw.StrokeStyle{Width: 2, Cap: draw.CapSquare, MiterLimit: 4}, 0.05)
	if got := area(sq); math.Abs(got-4) > 1e-9 {
		t.Errorf("square dot area = %v, want 4", got)
	}

	lone, _ := geom.ParsePathData("M5 5")
	if got := strokePolygons(lone, draw.StrokeStyle{Width: 2, Cap: draw.CapRound, MiterLimit: 4}, 0.05); len(got) != 0 {
		t.Errorf("bare moveto = %d polygons, want 0", len(got))
	}
}

func TestDashes(t *testing.T) {
	line := []geom.Point{geom.Pt(0, 0), geom.Pt(10, 0)}
	tests := []struct {
		name    string
		pts     []geom.Point
		closed  bool
		pattern []float64
		offset  float64
		want    [][]geom.Point
	}{
		{
			name: "simple", pts: line, pattern: []float64{2, 2},
			want: [][]geom.Point{{geom.Pt(0, 0), geom.Pt(2, 0)}, {geom.Pt(4, 0), geom.Pt(6, 0)}, {geom.Pt(8, 0), geom.Pt(10, 0)}},
		},
		{
			name: "offset", pts: line, pattern: []float64{2, 2}, offset: 1,
			want: [][]geom.Point{{geom.Pt(0, 0), geom.Pt(1, 0)}, {geom.Pt(3, 0), geom.Pt(5, 0)}, {geom.Pt(7, 0), geom.Pt(9, 0)}},
		},
		{
			name: "negative offset", pts: line, pattern: []float64{2, 2}, offset: -1,
			want: [][]geom.Point{{geom.Pt(1, 0), geom.Pt(3, 0)}, {geom.Pt(5, 0), geom.Pt(7, 0)}, {geom.Pt(9, 0), geom.Pt(10, 0)}},
		},
		{
			name: "across corner", pts: []geom.Point{geom.Pt(0, 0), geom.Pt(2, 0), geom.Pt(2, 2)}, pattern: []float64{3, 1},
			want: [][]geom.Point{{geom.Pt(0, 0), geom.Pt(2, 0), geom.Pt(2, 1)}},
		},
		{
			name: "closed", pts: []geom.Point{geom.Pt(0, 0), geom.Pt(2, 0), geom.Pt(2, 2), geom.Pt(0, 2)}, closed: true, pattern: []float64{4, 2},
			want: [][]geom.Point{{geom.Pt(0, 0), geom.Pt(2, 0), geom.Pt(2, 2)}, {geom.Pt(0, 2), geom.Pt(0, 0)}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dashes(tt.pts, tt.closed, tt.pattern, tt.offset)
			if diff := cmp.Diff(tt.want, got, approx); diff != "" {
				t.Errorf("dashes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
