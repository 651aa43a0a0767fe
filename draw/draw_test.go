package draw

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/gogpu/svgdist/geom"
	"github.com/gogpu/svgdist/svg"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

const threeRects = `<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10">
  <rect id="rect1" x="2" y="0" width="1" height="3"/>
  <rect id="rect2" x="5" y="0" width="1" height="3"/>
  <rect id="rect3" x="5" y="4" width="1" height="3"/>
</svg>`

func mustParse(t *testing.T, s string) *svg.Document {
	t.Helper()
	doc, err := svg.ParseString(s)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	return doc
}

func mustCompile(t *testing.T, s string, scale float64) *List {
	t.Helper()
	l, err := Compile(mustParse(t, s), scale)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	return l
}

func bounds(op Op) geom.Rect { return op.Path.Bounds() }

func TestCompileRects(t *testing.T) {
	l := mustCompile(t, threeRects, 1)
	if l.Width != 10 || l.Height != 10 {
		t.Fatalf("canvas = %dx%d, want 10x10", l.Width, l.Height)
	}
	if len(l.Ops) != 3 {
		t.Fatalf("len(Ops) = %d, want 3", len(l.Ops))
	}
	want := []geom.Rect{
		{Min: geom.Pt(2, 0), Max: geom.Pt(3, 3)},
		{Min: geom.Pt(5, 0), Max: geom.Pt(6, 3)},
		{Min: geom.Pt(5, 4), Max: geom.Pt(6, 7)},
	}
	for i, op := range l.Ops {
		if op.Kind != KindFill {
			t.Errorf("op %d kind = %v, want fill", i, op.Kind)
		}
		if op.Paint != Black {
			t.Errorf("op %d paint = %+v, want black", i, op.Paint)
		}
		if diff := cmp.Diff(want[i], bounds(op), approx); diff != "" {
			t.Errorf("op %d bounds mismatch (-want +got):\n%s", i, diff)
		}
	}
	if l.Ops[0].Source != "rect#rect1" {
		t.Errorf("Source = %q, want rect#rect1", l.Ops[0].Source)
	}
}

func TestCompileScale(t *testing.T) {
	l := mustCompile(t, threeRects, 2.5)
	if l.Width != 25 || l.Height != 25 || l.Scale != 2.5 {
		t.Fatalf("canvas = %dx%d scale %v, want 25x25 scale 2.5", l.Width, l.Height, l.Scale)
	}
	want := geom.Rect{Min: geom.Pt(5, 0), Max: geom.Pt(7.5, 7.5)}
	if diff := cmp.Diff(want, bounds(l.Ops[0]), approx); diff != "" {
		t.Errorf("scaled bounds mismatch (-want +got):\n%s", diff)
	}

	l = mustCompile(t, `<svg width="3" height="3"/>`, 0.5)
	if l.Width != 2 || l.Height != 2 {
		t.Errorf("canvas = %dx%d, want ceil(1.5) = 2", l.Width, l.Height)
	}
}

func TestCompileIsolated(t *testing.T) {
	doc := mustParse(t, threeRects)
	iso, _, err := svg.Isolate(doc, "#rect2")
	if err != nil {
		t.Fatal(err)
	}
	l, err := Compile(iso, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(l.Ops) != 1 || l.Ops[0].Source != "rect#rect2" {
		t.Fatalf("isolated ops = %+v, want only rect#rect2", l.Ops)
	}

	// The source document still compiles all shapes.
	if l := mustCompile(t, threeRects, 1); len(l.Ops) != 3 {
		t.Errorf("source document ops = %d, want 3", len(l.Ops))
	}
}

func TestCompileVisibility(t *testing.T) {
	tests := []struct {
		name string
		body string
		ops  int
	}{
		{"display none", `<rect width="1" height="1" display="none"/>`, 0},
		{"display none in style", `<g style="display: none"><rect width="1" height="1"/></g>`, 0},
		{"visibility hidden", `<rect width="1" height="1" visibility="hidden"/>`, 0},
		{"visible child of hidden group", `<g visibility="hidden"><rect width="1" height="1" visibility="visible"/></g>`, 1},
		{"fill none", `<rect width="1" height="1" fill="none"/>`, 0},
		{"zero opacity", `<g opacity="0"><rect width="1" height="1"/></g>`, 0},
		{"transparent", `<rect width="1" height="1" fill="transparent"/>`, 0},
		{"zero size", `<rect width="0" height="1"/>`, 0},
		{"defs", `<defs><rect width="1" height="1"/></defs>`, 0},
		{"fill and stroke", `<rect width="1" height="1" stroke="red"/>`, 2},
		{"zero stroke width", `<rect width="1" height="1" fill="none" stroke="red" stroke-width="0"/>`, 0},
		{"unknown element", `<blink><rect width="1" height="1"/></blink>`, 0},
		{"switch renders first child", `<switch><rect width="1" height="1"/><rect width="2" height="2"/></switch>`, 1},
		{"foreign namespace", `<x:rect xmlns:x="urn:x" width="1" height="1"/>`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := mustCompile(t, `<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10">`+tt.body+`</svg>`, 1)
			if len(l.Ops) != tt.ops {
				t.Errorf("len(Ops) = %d, want %d", len(l.Ops), tt.ops)
			}
		})
	}
}

func TestCompileStyle(t *testing.T) {
	l := mustCompile(t, `<svg width="10" height="10" color="#00ff00">
	  <g fill="red" stroke-width="2" transform="scale(2)">
	    <rect width="1" height="1" style="fill: blue; fill-opacity: 50%"/>
	    <rect width="1" height="1" fill="currentColor" opacity=".5"/>
	    <rect width="1" height="1" fill="none" stroke="rgb(255, 0, 0)" stroke-dasharray="1 2 3" stroke-linecap="round" stroke-linejoin="bevel"/>
	    <path d="M0 0 L1 1" fill="url(#grad)" fill-rule="evenodd"/>
	  </g>
	</svg>`, 1)
	if len(l.Ops) != 4 {
		t.Fatalf("len(Ops) = %d, want 4", len(l.Ops))
	}

	if diff := cmp.Diff(Color{B: 1, A: 0.5}, l.Ops[0].Paint, approx); diff != "" {
		t.Errorf("style override mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Color{G: 1, A: 0.5}, l.Ops[1].Paint, approx); diff != "" {
		t.Errorf("currentColor mismatch (-want +got):\n%s", diff)
	}

	s := l.Ops[2]
	if s.Kind != KindStroke {
		t.Fatalf("op 2 kind = %v, want stroke", s.Kind)
	}
	want := StrokeStyle{
		Width:      4,
		Cap:        CapRound,
		Join:       JoinBevel,
		MiterLimit: 4,
		Dashes:     []float64{2, 4, 6, 2, 4, 6},
	}
	if diff := cmp.Diff(want, s.Stroke, approx); diff != "" {
		t.Errorf("stroke style mismatch (-want +got):\n%s", diff)
	}

	if l.Ops[3].Paint != Black || l.Ops[3].Rule != EvenOdd {
		t.Errorf("url paint = %+v rule %v, want opaque black evenodd", l.Ops[3].Paint, l.Ops[3].Rule)
	}
}

func TestCompileNestedViewports(t *testing.T) {
	l := mustCompile(t, `<svg width="20" height="10" viewBox="0 0 2 1">
	  <rect x="1" width="1" height="1"/>
	  <svg x="0" y="0" width="1" height="1" viewBox="0 0 100 50" preserveAspectRatio="xMinYMin meet">
	    <rect width="100" height="50"/>
	  </svg>
	</svg>`, 1)
	if len(l.Ops) != 2 {
		t.Fatalf("len(Ops) = %d, want 2", len(l.Ops))
	}
	if diff := cmp.Diff(geom.Rect{Min: geom.Pt(10, 0), Max: geom.Pt(20, 10)}, bounds(l.Ops[0]), approx); diff != "" {
		t.Errorf("root viewBox mismatch (-want +got):\n%s", diff)
	}
	// 100x50 into a 1x1 viewport at meet scale 0.01, aligned top-left.
	if diff := cmp.Diff(geom.Rect{Min: geom.Pt(0, 0), Max: geom.Pt(10, 5)}, bounds(l.Ops[1]), approx); diff != "" {
		t.Errorf("nested viewBox mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileUse(t *testing.T) {
	const doc = `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="100" height="100">
	  <defs>
	    <symbol id="head" viewBox="0 0 10 10"><rect width="10" height="10"/></symbol>
	    <rect id="dot" width="2" height="2"/>
	  </defs>
	  <g id="n1"><use xlink:href="#head" x="10" y="20" width="5" height="5"/></g>
	  <g id="n2"><use href="#dot" x="50" y="50"/></g>
	  <use id="loop" xlink:href="#loop"/>
	  <use xlink:href="#missing"/>
	</svg>`
	l := mustCompile(t, doc, 1)
	if len(l.Ops) != 2 {
		t.Fatalf("len(Ops) = %d, want 2", len(l.Ops))
	}
	if diff := cmp.Diff(geom.Rect{Min: geom.Pt(10, 20), Max: geom.Pt(15, 25)}, bounds(l.Ops[0]), approx); diff != "" {
		t.Errorf("symbol mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(geom.Rect{Min: geom.Pt(50, 50), Max: geom.Pt(52, 52)}, bounds(l.Ops[1]), approx); diff != "" {
		t.Errorf("use mismatch (-want +got):\n%s", diff)
	}

	// Isolating a use keeps the referenced symbol renderable even though
	// the <defs> sibling is hidden.
	iso, _, err := svg.Isolate(mustParse(t, doc), "#n1 > use")
	if err != nil {
		t.Fatal(err)
	}
	il, err := Compile(iso, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(il.Ops) != 1 {
		t.Errorf("isolated use ops = %d, want 1", len(il.Ops))
	}
}

func TestCompileText(t *testing.T) {
	l := mustCompile(t, `<svg width="100" height="100">
	  <text x="10 20" y="50" font-size="20" text-anchor="middle" transform="scale(2)">
	    Hello
	    <tspan>world</tspan>
	    <tspan x="5" y="7" font-size="10">again</tspan>
	  </text>
	  <text x="1" y="1">   </text>
	</svg>`, 1)
	if len(l.Ops) != 2 {
		t.Fatalf("len(Ops) = %d, want 2", len(l.Ops))
	}
	first := l.Ops[0].Text
	if first.Content != "Hello world" {
		t.Errorf("Content = %q, want %q", first.Content, "Hello world")
	}
	if first.Anchor != AnchorMiddle {
		t.Errorf("Anchor = %v, want middle", first.Anchor)
	}
	if diff := cmp.Diff(geom.Pt(20, 100), first.DeviceOrigin(), approx); diff != "" {
		t.Errorf("DeviceOrigin mismatch (-want +got):\n%s", diff)
	}
	if got := first.DeviceSize(); math.Abs(got-40) > 1e-9 {
		t.Errorf("DeviceSize() = %v, want 40", got)
	}

	second := l.Ops[1].Text
	if second.Content != "again" || second.Size != 10 || second.Origin != geom.Pt(5, 7) {
		t.Errorf("second run = %+v", second)
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		scale float64
		want  error
	}{
		{"image", `<svg width="1" height="1"><image href="a.png" width="1" height="1"/></svg>`, 1, ErrUnsupported},
		{"foreignObject", `<svg width="1" height="1"><g><foreignObject/></g></svg>`, 1, ErrUnsupported},
		{"not svg", `<html/>`, 1, ErrNotSVG},
		{"zero scale", `<svg width="1" height="1"/>`, 0, ErrInvalidScale},
		{"nan scale", `<svg width="1" height="1"/>`, math.NaN(), ErrInvalidScale},
		{"zero width", `<svg width="0" height="1"/>`, 1, ErrEmptyCanvas},
		{"no size", `<svg/>`, 1, svg.ErrNoSize},
		{"percent size", `<svg width="100%" height="1"/>`, 1, svg.ErrRelativeLength},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(mustParse(t, tt.doc), tt.scale)
			if !errors.Is(err, tt.want) {
				t.Errorf("Compile() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCompileHiddenImageIgnored(t *testing.T) {
	doc := mustParse(t, `<svg width="4" height="4"><image id="img" width="1" height="1"/><rect id="r" width="1" height="1"/></svg>`)
	iso, _, err := svg.Isolate(doc, "#r")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Compile(iso, 1); err != nil {
		t.Errorf("Compile(isolated) error = %v, want nil", err)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"#fff", Color{1, 1, 1, 1}},
		{"#FF000080", Color{1, 0, 0, 128.0 / 255}},
		{"#0f08", Color{0, 1, 0, 136.0 / 255}},
		{"#000080", Color{0, 0, 128.0 / 255, 1}},
		{"red", Color{1, 0, 0, 1}},
		{"ReD", Color{1, 0, 0, 1}},
		{"black", Black},
		{"rgb(0, 255, 0)", Color{0, 1, 0, 1}},
		{"rgb(100%,0%,50%)", Color{1, 0, 0.5, 1}},
		{"rgba(0,0,0,0.25)", Color{0, 0, 0, 0.25}},
		{"transparent", Color{}},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if err != nil {
			t.Errorf("ParseColor(%q) error = %v", tt.in, err)
			continue
		}
		if diff := cmp.Diff(tt.want, got, approx); diff != "" {
			t.Errorf("ParseColor(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}

	for _, in := range []string{"", "#12", "#ggg", "rgb(1,2)", "rgb(1,2,3", "notacolor"} {
		if _, err := ParseColor(in); !errors.Is(err, ErrInvalidColor) {
			t.Errorf("ParseColor(%q) error = %v, want ErrInvalidColor", in, err)
		}
	}
}

func TestViewBoxTransform(t *testing.T) {
	vb := svg.ViewBox{MinX: 10, MinY: 10, Width: 10, Height: 20}
	tests := []struct {
		par  string
		want geom.Point // image of the viewBox min corner
	}{
		{"", geom.Pt(25, 0)},
		{"xMinYMin", geom.Pt(0, 0)},
		{"xMaxYMax meet", geom.Pt(50, 0)},
		{"xMinYMin slice", geom.Pt(0, 0)},
		{"xMidYMid slice", geom.Pt(0, -50)},
		{"none", geom.Pt(0, 0)},
	}
	for _, tt := range tests {
		m := viewBoxTransform(vb, tt.par, 100, 100)
		if diff := cmp.Diff(tt.want, m.Apply(geom.Pt(10, 10)), approx); diff != "" {
			t.Errorf("viewBoxTransform(%q) mismatch (-want +got):\n%s", tt.par, diff)
		}
	}
}
