package geom

import "math"

// Verb is a path command.
type Verb uint8

// Path verbs. MoveTo and LineTo consume one point, QuadTo two, CubicTo
// three, Close none.
const (
	MoveTo Verb = iota
	LineTo
	QuadTo
	CubicTo
	Close
)

// Path is a sequence of subpaths made of lines and Bezier curves.
type Path struct {
	Verbs  []Verb
	Points []Point

	start, cur Point
	open       bool
}

// NewPath returns an empty path.
func NewPath() *Path { return &Path{} }

// MoveTo starts a new subpath.
func (p *Path) MoveTo(x, y float64) {
	pt := Pt(x, y)
	p.Verbs = append(p.Verbs, MoveTo)
	p.Points = append(p.Points, pt)
	p.start, p.cur, p.open = pt, pt, true
}

func (p *Path) ensureOpen() {
	if !p.open {
		p.MoveTo(p.cur.X, p.cur.Y)
	}
}

// LineTo adds a line from the current point.
func (p *Path) LineTo(x, y float64) {
	p.ensureOpen()
	pt := Pt(x, y)
	p.Verbs = append(p.Verbs, LineTo)
	p.Points = append(p.Points, pt)
	p.cur = pt
}

// QuadTo adds a quadratic Bezier curve.
func (p *Path) QuadTo(cx, cy, x, y float64) {
	p.ensureOpen()
	p.Verbs = append(p.Verbs, QuadTo)
	p.Points = append(p.Points, Pt(cx, cy), Pt(x, y))
	p.cur = Pt(x, y)
}

// CubicTo adds a cubic Bezier curve.
func (p *Path) CubicTo(c1x, c1y, c2x, c2y, x, y float64) {
	p.ensureOpen()
	p.Verbs = append(p.Verbs, CubicTo)
	p.Points = append(p.Points, Pt(c1x, c1y), Pt(c2x, c2y), Pt(x, y))
	p.cur = Pt(x, y)
}

// Close closes the current subpath. The current point returns to the
// subpath start.
func (p *Path) Close() {
	if !p.open {
		return
	}
	p.Verbs = append(p.Verbs, Close)
	p.cur = p.start
	p.open = false
}

// CurrentPoint returns the current point.
func (p *Path) CurrentPoint() Point { return p.cur }

// Empty reports whether the path has no drawing commands.
func (p *Path) Empty() bool {
	for _, v := range p.Verbs {
		if v != MoveTo && v != Close {
			return false
		}
	}
	return true
}

// Append adds all subpaths of q to p.
func (p *Path) Append(q *Path) {
	p.Verbs = append(p.Verbs, q.Verbs...)
	p.Points = append(p.Points, q.Points...)
	p.start, p.cur, p.open = q.start, q.cur, q.open
}

// Transform returns a copy of p with every point mapped through m.
// Affine transforms map Bezier control points exactly.
func (p *Path) Transform(m Matrix) *Path {
	q := &Path{
		Verbs:  append([]Verb(nil), p.Verbs...),
		Points: make([]Point, len(p.Points)),
		start:  m.Apply(p.start),
		cur:    m.Apply(p.cur),
		open:   p.open,
	}
	for i, pt := range p.Points {
		q.Points[i] = m.Apply(pt)
	}
	return q
}

// Walk calls fn for each segment with its points. For Close, pts is empty.
func (p *Path) Walk(fn func(v Verb, pts []Point)) {
	i := 0
	for _, v := range p.Verbs {
		n := v.PointCount()
		fn(v, p.Points[i:i+n])
		i += n
	}
}

// PointCount returns the number of points the verb consumes.
func (v Verb) PointCount() int {
	switch v {
	case MoveTo, LineTo:
		return 1
	case QuadTo:
		return 2
	case CubicTo:
		return 3
	}
	return 0
}

// Bounds returns the bounding box of all points including control points.
func (p *Path) Bounds() Rect {
	if len(p.Points) == 0 {
		return Rect{}
	}
	r := Rect{
		Min: Pt(math.Inf(1), math.Inf(1)),
		Max: Pt(math.Inf(-1), math.Inf(-1)),
	}
	for _, pt := range p.Points {
		r.Min.X = math.Min(r.Min.X, pt.X)
		r.Min.Y = math.Min(r.Min.Y, pt.Y)
		r.Max.X = math.Max(r.Max.X, pt.X)
		r.Max.Y = math.Max(r.Max.Y, pt.Y)
	}
	return r
}

// ArcTo adds an SVG elliptical arc from the current point to (x, y) as a
// sequence of cubic Beziers. rx and ry are the radii, rotation the x-axis
// rotation in degrees.
func (p *Path) ArcTo(rx, ry, rotation float64, largeArc, sweep bool, x, y float64) {
	p.ensureOpen()
	x0, y0 := p.cur.X, p.cur.Y
	if x0 == x && y0 == y {
		return
	}
	rx, ry = math.Abs(rx), math.Abs(ry)
	if rx == 0 || ry == 0 {
		p.LineTo(x, y)
		return
	}

	// Endpoint to center parameterization.
	phi := rotation * math.Pi / 180
	sinPhi, cosPhi := math.Sincos(phi)
	dx, dy := (x0-x)/2, (y0-y)/2
	x1p := cosPhi*dx + sinPhi*dy
	y1p := -sinPhi*dx + cosPhi*dy

	// Scale up radii that are too small to span the endpoints.
	if lambda := (x1p*x1p)/(rx*rx) + (y1p*y1p)/(ry*ry); lambda > 1 {
		s := math.Sqrt(lambda)
		rx, ry = rx*s, ry*s
	}

	num := rx*rx*ry*ry - rx*rx*y1p*y1p - ry*ry*x1p*x1p
	den := rx*rx*y1p*y1p + ry*ry*x1p*x1p
	coef := 0.0
	if den != 0 && num > 0 {
		coef = math.Sqrt(num / den)
	}
	if largeArc == sweep {
		coef = -coef
	}
	cxp := coef * rx * y1p / ry
	cyp := -coef * ry * x1p / rx
	cx := cosPhi*cxp - sinPhi*cyp + (x0+x)/2
	cy := sinPhi*cxp + cosPhi*cyp + (y0+y)/2

	theta1 := vecAngle(1, 0, (x1p-cxp)/rx, (y1p-cyp)/ry)
	dtheta := vecAngle((x1p-cxp)/rx, (y1p-cyp)/ry, (-x1p-cxp)/rx, (-y1p-cyp)/ry)
	if !sweep && dtheta > 0 {
		dtheta -= 2 * math.Pi
	} else if sweep && dtheta < 0 {
		dtheta += 2 * math.Pi
	}

	// Split into segments of at most 90 degrees.
	n := int(math.Ceil(math.Abs(dtheta) / (math.Pi / 2)))
	if n < 1 {
		n = 1
	}
	step := dtheta / float64(n)
	k := 4.0 / 3 * math.Tan(step/4)

	ellipse := func(t float64) (px, py, dxdt, dydt float64) {
		sinT, cosT := math.Sincos(t)
		px = cx + rx*cosT*cosPhi - ry*sinT*sinPhi
		py = cy + rx*cosT*sinPhi + ry*sinT*cosPhi
		dxdt = -rx*sinT*cosPhi - ry*cosT*sinPhi
		dydt = -rx*sinT*sinPhi + ry*cosT*cosPhi
		return
	}

	t := theta1
	_, _, d0x, d0y := ellipse(t)
	sx, sy := x0, y0
	for i := 0; i < n; i++ {
		t2 := t + step
		ex, ey, d1x, d1y := ellipse(t2)
		if i == n-1 {
			ex, ey = x, y
		}
		p.CubicTo(sx+k*d0x, sy+k*d0y, ex-k*d1x, ey-k*d1y, ex, ey)
		sx, sy, d0x, d0y, t = ex, ey, d1x, d1y, t2
	}
}

func vecAngle(ux, uy, vx, vy float64) float64 {
	return math.Atan2(ux*vy-uy*vx, ux*vx+uy*vy)
}
