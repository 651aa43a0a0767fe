// Package geom provides the 2D geometry used to turn SVG markup into device
// space outlines: affine matrices, paths, the SVG path-data and transform
// grammars, basic shapes, and curve flattening.
package geom

import (
	"math"

	"golang.org/x/image/math/f64"
)

// Matrix is a 2D affine transform stored row-major as an f64.Aff3:
//
//	| m[0] m[1] m[2] |
//	| m[3] m[4] m[5] |
//
// so that x' = m[0]*x + m[1]*y + m[2] and y' = m[3]*x + m[4]*y + m[5].
// The SVG matrix(a b c d e f) maps to {a, c, e, b, d, f}.
type Matrix f64.Aff3

// Identity returns the identity transform.
func Identity() Matrix {
	return Matrix{1, 0, 0, 0, 1, 0}
}

// Translate returns a translation.
func Translate(tx, ty float64) Matrix {
	return Matrix{1, 0, tx, 0, 1, ty}
}

// Scale returns a scale about the origin.
func Scale(sx, sy float64) Matrix {
	return Matrix{sx, 0, 0, 0, sy, 0}
}

// Rotate returns a rotation by angle radians (clockwise in y-down space).
func Rotate(angle float64) Matrix {
	s, c := math.Sincos(angle)
	return Matrix{c, -s, 0, s, c, 0}
}

// SkewX returns a horizontal skew by angle radians.
func SkewX(angle float64) Matrix {
	return Matrix{1, math.Tan(angle), 0, 0, 1, 0}
}

// SkewY returns a vertical skew by angle radians.
func SkewY(angle float64) Matrix {
	return Matrix{1, 0, 0, math.Tan(angle), 1, 0}
}

// SVG returns the matrix for the SVG transform matrix(a b c d e f).
func SVG(a, b, c, d, e, f float64) Matrix {
	return Matrix{a, c, e, b, d, f}
}

// Mul returns m*n: the transform that applies n first, then m.
func (m Matrix) Mul(n Matrix) Matrix {
	return Matrix{
		m[0]*n[0] + m[1]*n[3],
		m[0]*n[1] + m[1]*n[4],
		m[0]*n[2] + m[1]*n[5] + m[2],
		m[3]*n[0] + m[4]*n[3],
		m[3]*n[1] + m[4]*n[4],
		m[3]*n[2] + m[4]*n[5] + m[5],
	}
}

// Apply transforms a point.
func (m Matrix) Apply(p Point) Point {
	return Point{
		X: m[0]*p.X + m[1]*p.Y + m[2],
		Y: m[3]*p.X + m[4]*p.Y + m[5],
	}
}

// Det returns the determinant of the linear part.
func (m Matrix) Det() float64 {
	return m[0]*m[4] - m[1]*m[3]
}

// ScaleFactor returns the geometric mean scale of the transform, used to
// convert stroke widths and font sizes to device units.
func (m Matrix) ScaleFactor() float64 {
	return math.Sqrt(math.Abs(m.Det()))
}

// IsIdentity reports whether m is the identity.
func (m Matrix) IsIdentity() bool {
	return m == Identity()
}

// Aff3 returns m as an f64.Aff3.
func (m Matrix) Aff3() f64.Aff3 {
	return f64.Aff3(m)
}

// Point is a 2D point.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Mul returns p scaled by s.
func (p Point) Mul(s float64) Point { return Point{p.X * s, p.Y * s} }

// Lerp interpolates between p and q.
func (p Point) Lerp(q Point, t float64) Point {
	return Point{p.X + (q.X-p.X)*t, p.Y + (q.Y-p.Y)*t}
}

// Len returns the length of p as a vector.
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

// Rect is an axis-aligned rectangle.
type Rect struct {
	Min, Max Point
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.Min.X >= r.Max.X || r.Min.Y >= r.Max.Y
}
