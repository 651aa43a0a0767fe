// Package draw compiles an SVG document into a flat display list of fill,
// stroke and text operations in device space.
//
// The list is what raster backends consume: every geometry has the full
// transform chain and the raster scale applied, styles are resolved through
// inheritance, and elements that do not paint (hidden, display="none",
// definitions) are already dropped. Backends only need to know how to fill
// a path with a rule, stroke a path, and draw a string of text.
package draw

import (
	"github.com/gogpu/svgdist/geom"
)

// Kind is the kind of a display operation.
type Kind uint8

// Operation kinds.
const (
	KindFill Kind = iota
	KindStroke
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindFill:
		return "fill"
	case KindStroke:
		return "stroke"
	case KindText:
		return "text"
	}
	return "unknown"
}

// FillRule selects how path winding determines the interior.
type FillRule uint8

// Fill rules.
const (
	NonZero FillRule = iota
	EvenOdd
)

// Cap is a stroke line cap.
type Cap uint8

// Line caps.
const (
	CapButt Cap = iota
	CapRound
	CapSquare
)

// Join is a stroke line join.
type Join uint8

// Line joins.
const (
	JoinMiter Join = iota
	JoinRound
	JoinBevel
)

// Anchor is the text-anchor alignment.
type Anchor uint8

// Text anchors.
const (
	AnchorStart Anchor = iota
	AnchorMiddle
	AnchorEnd
)

// StrokeStyle describes a stroke in device units.
type StrokeStyle struct {
	Width      float64
	Cap        Cap
	Join       Join
	MiterLimit float64
	Dashes     []float64
	DashOffset float64
}

// Text is a run of text. Origin and Size are in user units; Matrix maps
// user units to device pixels.
type Text struct {
	Content string
	Origin  geom.Point
	Size    float64
	Anchor  Anchor
	Matrix  geom.Matrix
}

// DeviceOrigin returns the baseline start point in device pixels.
func (t *Text) DeviceOrigin() geom.Point {
	return t.Matrix.Apply(t.Origin)
}

// DeviceSize returns the font size in device pixels.
func (t *Text) DeviceSize() float64 {
	return t.Size * t.Matrix.ScaleFactor()
}

// Op is one display operation.
type Op struct {
	Kind  Kind
	Paint Color

	// Path is the device space geometry of fill and stroke operations.
	Path   *geom.Path
	Rule   FillRule
	Stroke StrokeStyle

	Text *Text

	// Source names the element the operation came from, for logs.
	Source string
}

// List is a compiled document.
type List struct {
	// Width and Height are the canvas size in pixels.
	Width, Height int

	// Scale is the raster scale the list was compiled at.
	Scale float64

	Ops []Op
}
