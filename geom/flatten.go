package geom

import "math"

// DefaultTolerance is the flattening tolerance used when none is given,
// in output units.
const DefaultTolerance = 0.1

// maxDepth bounds curve subdivision.
const maxDepth = 16

// Polyline is one flattened subpath.
type Polyline struct {
	Points []Point
	Closed bool
}

// Flatten converts the path to polylines, one per subpath, approximating
// curves with line segments no farther than tolerance from the curve.
// Subpaths consisting of a lone MoveTo are kept as single-point polylines
// so that stroke caps can still be drawn for them.
func (p *Path) Flatten(tolerance float64) []Polyline {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	tolSq := tolerance * tolerance

	var (
		out []Polyline
		cur *Polyline
		pen Point
	)
	flush := func() {
		if cur != nil && len(cur.Points) > 0 {
			out = append(out, *cur)
		}
		cur = nil
	}
	emit := func(pt Point) {
		if cur == nil {
			cur = &Polyline{Points: []Point{pen}}
		}
		cur.Points = append(cur.Points, pt)
	}

	p.Walk(func(v Verb, pts []Point) {
		switch v {
		case MoveTo:
			flush()
			cur = &Polyline{Points: []Point{pts[0]}}
			pen = pts[0]
		case LineTo:
			emit(pts[0])
			pen = pts[0]
		case QuadTo:
			flattenQuad(pen, pts[0], pts[1], tolSq, 0, emit)
			pen = pts[1]
		case CubicTo:
			flattenCubic(pen, pts[0], pts[1], pts[2], tolSq, 0, emit)
			pen = pts[2]
		case Close:
			if cur != nil {
				cur.Closed = true
				pen = cur.Points[0]
				flush()
			}
		}
	})
	flush()
	return out
}

func flattenQuad(p0, p1, p2 Point, tolSq float64, depth int, fn func(Point)) {
	d := p1.Sub(p0.Lerp(p2, 0.5))
	if depth >= maxDepth || d.X*d.X+d.Y*d.Y <= tolSq {
		fn(p2)
		return
	}
	a := p0.Lerp(p1, 0.5)
	b := p1.Lerp(p2, 0.5)
	m := a.Lerp(b, 0.5)
	flattenQuad(p0, a, m, tolSq, depth+1, fn)
	flattenQuad(m, b, p2, tolSq, depth+1, fn)
}

func flattenCubic(p0, p1, p2, p3 Point, tolSq float64, depth int, fn func(Point)) {
	ux := 3*p1.X - 2*p0.X - p3.X
	uy := 3*p1.Y - 2*p0.Y - p3.Y
	vx := 3*p2.X - p0.X - 2*p3.X
	vy := 3*p2.Y - p0.Y - 2*p3.Y
	if depth >= maxDepth || math.Max(ux*ux+uy*uy, vx*vx+vy*vy) <= 16*tolSq {
		fn(p3)
		return
	}
	p01 := p0.Lerp(p1, 0.5)
	p12 := p1.Lerp(p2, 0.5)
	p23 := p2.Lerp(p3, 0.5)
	p012 := p01.Lerp(p12, 0.5)
	p123 := p12.Lerp(p23, 0.5)
	m := p012.Lerp(p123, 0.5)
	flattenCubic(p0, p01, p012, m, tolSq, depth+1, fn)
	flattenCubic(m, p123, p23, p3, tolSq, depth+1, fn)
}
