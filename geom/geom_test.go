package geom

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

const eps = 1e-9

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestMatrixCompose(t *testing.T) {
	// translate then scale: scale applies to the point first.
	m := Translate(10, 20).Mul(Scale(2, 3))
	got := m.Apply(Pt(1, 1))
	if diff := cmp.Diff(Pt(12, 23), got, approx); diff != "" {
		t.Errorf("Apply mismatch (-want +got):\n%s", diff)
	}

	r := Rotate(math.Pi / 2).Apply(Pt(1, 0))
	if diff := cmp.Diff(Pt(0, 1), r, approx); diff != "" {
		t.Errorf("Rotate(90) mismatch (-want +got):\n%s", diff)
	}

	if got := Scale(2, 8).ScaleFactor(); math.Abs(got-4) > eps {
		t.Errorf("ScaleFactor() = %v, want 4", got)
	}
	if !Identity().IsIdentity() {
		t.Error("Identity().IsIdentity() = false")
	}
	if got := SVG(1, 2, 3, 4, 5, 6).Aff3(); got[1] != 3 || got[3] != 2 {
		t.Errorf("SVG layout = %v", got)
	}
}

func TestParseTransform(t *testing.T) {
	tests := []struct {
		in   string
		pt   Point
		want Point
	}{
		{"", Pt(3, 4), Pt(3, 4)},
		{"translate(10)", Pt(1, 1), Pt(11, 1)},
		{"translate(10, 5)", Pt(1, 1), Pt(11, 6)},
		{"scale(2)", Pt(1, 3), Pt(2, 6)},
		{"scale(2 -1)", Pt(1, 3), Pt(2, -3)},
		{"rotate(90)", Pt(1, 0), Pt(0, 1)},
		{"rotate(180 5 5)", Pt(6, 5), Pt(4, 5)},
		{"matrix(1 0 0 1 7 8)", Pt(0, 0), Pt(7, 8)},
		{"translate(10,0) scale(2)", Pt(1, 0), Pt(12, 0)},
		{"scale(2),translate(10,0)", Pt(1, 0), Pt(22, 0)},
		{"skewX(45)", Pt(0, 1), Pt(1, 1)},
		{"skewY(45)", Pt(1, 0), Pt(1, 1)},
		{"  translate( -1e1 , .5 )  ", Pt(0, 0), Pt(-10, 0.5)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			m, err := ParseTransform(tt.in)
			if err != nil {
				t.Fatalf("ParseTransform(%q) error = %v", tt.in, err)
			}
			if diff := cmp.Diff(tt.want, m.Apply(tt.pt), approx); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseTransformErrors(t *testing.T) {
	for _, in := range []string{
		"translate",
		"translate(1 2 3)",
		"rotate(1 2)",
		"matrix(1 2 3)",
		"warp(1)",
		"scale(x)",
		"(1)",
	} {
		if _, err := ParseTransform(in); !errors.Is(err, ErrTransform) {
			t.Errorf("ParseTransform(%q) error = %v, want ErrTransform", in, err)
		}
	}
}

func TestParsePathData(t *testing.T) {
	tests := []struct {
		name  string
		d     string
		verbs []Verb
		last  Point
	}{
		{"empty", "", nil, Pt(0, 0)},
		{"triangle", "M0 0 L10 0 L10 10 Z", []Verb{MoveTo, LineTo, LineTo, Close}, Pt(0, 0)},
		{"relative", "m1 1 l2 0 l0 2", []Verb{MoveTo, LineTo, LineTo}, Pt(3, 3)},
		{"implicit lineto", "M0 0 10 0 10 10", []Verb{MoveTo, LineTo, LineTo}, Pt(10, 10)},
		{"implicit relative lineto", "m5 5 1 0 0 1", []Verb{MoveTo, LineTo, LineTo}, Pt(6, 6)},
		{"h and v", "M1 1 H5 V7 h-1 v-1", []Verb{MoveTo, LineTo, LineTo, LineTo, LineTo}, Pt(4, 6)},
		{"compact numbers", "M0,0L1.5.5-1-2", []Verb{MoveTo, LineTo, LineTo}, Pt(-1, -2)},
		{"exponent", "M1e1 2E-1", []Verb{MoveTo}, Pt(10, 0.2)},
		{"cubic", "M0 0 C1 1 2 1 3 0 S5 -1 6 0", []Verb{MoveTo, CubicTo, CubicTo}, Pt(6, 0)},
		{"quad", "M0 0 Q1 1 2 0 T4 0 t2 0", []Verb{MoveTo, QuadTo, QuadTo, QuadTo}, Pt(6, 0)},
		{"close then draw", "M1 1 L2 1 Z L3 3", []Verb{MoveTo, LineTo, Close, MoveTo, LineTo}, Pt(3, 3)},
		{"two subpaths", "M0 0 L1 0 M5 5 L6 5", []Verb{MoveTo, LineTo, MoveTo, LineTo}, Pt(6, 5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePathData(tt.d)
			if err != nil {
				t.Fatalf("ParsePathData(%q) error = %v", tt.d, err)
			}
			if diff := cmp.Diff(tt.verbs, p.Verbs); diff != "" {
				t.Errorf("verbs mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.last, p.CurrentPoint(), approx); diff != "" {
				t.Errorf("current point mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParsePathDataSmoothReflection(t *testing.T) {
	p, err := ParsePathData("M0 0 C0 1 2 1 2 0 S4 -1 4 0")
	if err != nil {
		t.Fatal(err)
	}
	// First control point of S is the reflection of (2,1) about (2,0).
	if diff := cmp.Diff(Pt(2, -1), p.Points[4], approx); diff != "" {
		t.Errorf("reflected control mismatch (-want +got):\n%s", diff)
	}

	p, err = ParsePathData("M0 0 L1 1 S3 3 4 4")
	if err != nil {
		t.Fatal(err)
	}
	// Without a preceding cubic, the first control is the current point.
	if diff := cmp.Diff(Pt(1, 1), p.Points[2], approx); diff != "" {
		t.Errorf("unreflected control mismatch (-want +got):\n%s", diff)
	}
}

func TestParsePathDataArc(t *testing.T) {
	tests := []struct {
		name string
		d    string
		end  Point
	}{
		{"half circle", "M0 0 A5 5 0 0 1 10 0", Pt(10, 0)},
		{"compact flags", "M0 0a5 5 0 0110 0", Pt(10, 0)},
		{"radii scaled up", "M0 0 A1 1 0 0 0 10 0", Pt(10, 0)},
		{"zero radius is a line", "M0 0 A0 5 0 0 1 10 0", Pt(10, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePathData(tt.d)
			if err != nil {
				t.Fatalf("ParsePathData(%q) error = %v", tt.d, err)
			}
			if diff := cmp.Diff(tt.end, p.CurrentPoint(), approx); diff != "" {
				t.Errorf("end point mismatch (-want +got):\n%s", diff)
			}
		})
	}

	// The sweep flag picks the side: sweep=1 runs in the positive angle
	// direction, which from (0,0) to (10,0) in y-down space bulges upward.
	p, _ := ParsePathData("M0 0 A5 5 0 0 1 10 0")
	b := p.Bounds()
	if b.Min.Y > -4.9 || b.Max.Y > eps {
		t.Errorf("sweep arc bounds = %+v, want y in [~-5, 0]", b)
	}
	p, _ = ParsePathData("M0 0 A5 5 0 0 0 10 0")
	b = p.Bounds()
	if b.Max.Y < 4.9 || b.Min.Y < -eps {
		t.Errorf("counter-sweep arc bounds = %+v, want y in [0, ~5]", b)
	}
}

func TestParsePathDataErrors(t *testing.T) {
	tests := []struct {
		d     string
		verbs int
	}{
		{"L0 0", 0},
		{"M0", 0},
		{"M0 0 L1 1 L2", 2},
		{"M0 0 X", 1},
		{"M0 0 A1 1 0 2 0 3 3", 1},
		{"M0 0 Z 1 1", 2},
	}
	for _, tt := range tests {
		p, err := ParsePathData(tt.d)
		if !errors.Is(err, ErrPathData) {
			t.Errorf("ParsePathData(%q) error = %v, want ErrPathData", tt.d, err)
			continue
		}
		if len(p.Verbs) != tt.verbs {
			t.Errorf("ParsePathData(%q) kept %d verbs, want %d", tt.d, len(p.Verbs), tt.verbs)
		}
	}
}

func TestFlatten(t *testing.T) {
	p := RectPath(0, 0, 4, 2, 0, 0)
	lines := p.Flatten(0)
	if len(lines) != 1 {
		t.Fatalf("Flatten() = %d polylines, want 1", len(lines))
	}
	want := []Point{{0, 0}, {4, 0}, {4, 2}, {0, 2}}
	if diff := cmp.Diff(want, lines[0].Points); diff != "" {
		t.Errorf("rect points mismatch (-want +got):\n%s", diff)
	}
	if !lines[0].Closed {
		t.Error("rect polyline not closed")
	}

	c := CirclePath(0, 0, 10)
	for _, tol := range []float64{0.5, 0.1, 0.01} {
		lines := c.Flatten(tol)
		if len(lines) != 1 {
			t.Fatalf("circle Flatten(%v) = %d polylines", tol, len(lines))
		}
		for _, pt := range lines[0].Points {
			if d := math.Abs(pt.Len() - 10); d > tol+1e-3 {
				t.Errorf("Flatten(%v) point %v off circle by %v", tol, pt, d)
			}
		}
	}
	if a, b := len(c.Flatten(0.5)[0].Points), len(c.Flatten(0.01)[0].Points); a >= b {
		t.Errorf("finer tolerance gave %d points, coarser %d", b, a)
	}

	open := LinePath(0, 0, 1, 1).Flatten(0)
	if len(open) != 1 || open[0].Closed || len(open[0].Points) != 2 {
		t.Errorf("line Flatten() = %+v", open)
	}
}

func TestFlattenLoneMoveTo(t *testing.T) {
	p, err := ParsePathData("M1 1 M2 2 L3 3")
	if err != nil {
		t.Fatal(err)
	}
	lines := p.Flatten(0)
	if len(lines) != 2 {
		t.Fatalf("Flatten() = %d polylines, want 2", len(lines))
	}
	if len(lines[0].Points) != 1 {
		t.Errorf("lone moveto polyline = %v", lines[0].Points)
	}
}

func TestShapes(t *testing.T) {
	if !RectPath(0, 0, 0, 5, 0, 0).Empty() {
		t.Error("zero-width rect not empty")
	}
	if !EllipsePath(0, 0, 0, 5).Empty() {
		t.Error("zero-radius ellipse not empty")
	}

	r := RectPath(0, 0, 10, 4, 8, 8)
	b := r.Bounds()
	if diff := cmp.Diff(Rect{Min: Pt(0, 0), Max: Pt(10, 4)}, b, approx); diff != "" {
		t.Errorf("rounded rect bounds mismatch (-want +got):\n%s", diff)
	}

	e := EllipsePath(5, 5, 3, 2).Bounds()
	if diff := cmp.Diff(Rect{Min: Pt(2, 3), Max: Pt(8, 7)}, e, approx); diff != "" {
		t.Errorf("ellipse bounds mismatch (-want +got):\n%s", diff)
	}

	moved := r.Transform(Translate(1, 2)).Bounds()
	if diff := cmp.Diff(Rect{Min: Pt(1, 2), Max: Pt(11, 6)}, moved, approx); diff != "" {
		t.Errorf("transformed bounds mismatch (-want +got):\n%s", diff)
	}
}

func TestParsePoints(t *testing.T) {
	pts, err := ParsePoints("0,0 10,0 10 10, 0 10")
	if err != nil {
		t.Fatal(err)
	}
	want := []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	if diff := cmp.Diff(want, pts); diff != "" {
		t.Errorf("ParsePoints mismatch (-want +got):\n%s", diff)
	}

	pts, err = ParsePoints("1 2 3")
	if !errors.Is(err, ErrPoints) {
		t.Errorf("odd coordinates error = %v, want ErrPoints", err)
	}
	if len(pts) != 1 {
		t.Errorf("odd coordinates kept %d points, want 1", len(pts))
	}
}
