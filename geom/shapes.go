package geom

import (
	"fmt"
	"math"
)

// kappa is the cubic control distance for a quarter circle of radius 1.
const kappa = 0.5522847498307936

// RectPath returns a rectangle, optionally with rounded corners. rx and ry
// are clamped to half the width and height. A zero or negative size
// yields an empty path.
func RectPath(x, y, w, h, rx, ry float64) *Path {
	p := NewPath()
	if w <= 0 || h <= 0 {
		return p
	}
	rx = math.Min(math.Max(rx, 0), w/2)
	ry = math.Min(math.Max(ry, 0), h/2)
	if rx == 0 || ry == 0 {
		p.MoveTo(x, y)
		p.LineTo(x+w, y)
		p.LineTo(x+w, y+h)
		p.LineTo(x, y+h)
		p.Close()
		return p
	}
	kx, ky := rx*kappa, ry*kappa
	p.MoveTo(x+rx, y)
	p.LineTo(x+w-rx, y)
	p.CubicTo(x+w-rx+kx, y, x+w, y+ry-ky, x+w, y+ry)
	p.LineTo(x+w, y+h-ry)
	p.CubicTo(x+w, y+h-ry+ky, x+w-rx+kx, y+h, x+w-rx, y+h)
	p.LineTo(x+rx, y+h)
	p.CubicTo(x+rx-kx, y+h, x, y+h-ry+ky, x, y+h-ry)
	p.LineTo(x, y+ry)
	p.CubicTo(x, y+ry-ky, x+rx-kx, y, x+rx, y)
	p.Close()
	return p
}

// EllipsePath returns an ellipse centered at (cx, cy) drawn as four cubic
// arcs, clockwise in y-down space. Non-positive radii yield an empty path.
func EllipsePath(cx, cy, rx, ry float64) *Path {
	p := NewPath()
	if rx <= 0 || ry <= 0 {
		return p
	}
	kx, ky := rx*kappa, ry*kappa
	p.MoveTo(cx+rx, cy)
	p.CubicTo(cx+rx, cy+ky, cx+kx, cy+ry, cx, cy+ry)
	p.CubicTo(cx-kx, cy+ry, cx-rx, cy+ky, cx-rx, cy)
	p.CubicTo(cx-rx, cy-ky, cx-kx, cy-ry, cx, cy-ry)
	p.CubicTo(cx+kx, cy-ry, cx+rx, cy-ky, cx+rx, cy)
	p.Close()
	return p
}

// CirclePath returns a circle.
func CirclePath(cx, cy, r float64) *Path {
	return EllipsePath(cx, cy, r, r)
}

// LinePath returns a single open segment.
func LinePath(x1, y1, x2, y2 float64) *Path {
	p := NewPath()
	p.MoveTo(x1, y1)
	p.LineTo(x2, y2)
	return p
}

// PolyPath returns a path through pts, closed for polygons.
func PolyPath(pts []Point, closed bool) *Path {
	p := NewPath()
	if len(pts) == 0 {
		return p
	}
	p.MoveTo(pts[0].X, pts[0].Y)
	for _, pt := range pts[1:] {
		p.LineTo(pt.X, pt.Y)
	}
	if closed {
		p.Close()
	}
	return p
}

// ParsePoints parses a points attribute. An odd trailing coordinate is an
// error; the points read so far are still returned.
func ParsePoints(s string) ([]Point, error) {
	sc := &scanner{s: s}
	var (
		pts  []Point
		vals []float64
	)
	for {
		sc.skipSep()
		if sc.eof() {
			break
		}
		v, ok := sc.number()
		if !ok {
			return pts, fmt.Errorf("%w: unexpected %q at offset %d", ErrPoints, sc.peek(), sc.pos)
		}
		vals = append(vals, v)
		if len(vals) == 2 {
			pts = append(pts, Pt(vals[0], vals[1]))
			vals = vals[:0]
		}
	}
	if len(vals) != 0 {
		return pts, fmt.Errorf("%w: odd number of coordinates", ErrPoints)
	}
	return pts, nil
}
