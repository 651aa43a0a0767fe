package vecraster

import (
	"math"

	"github.com/gogpu/svgdist/draw"
	"github.com/gogpu/svgdist/geom"
)

// strokePolygons converts a stroked path into polygons whose union is the
// stroke outline. Every polygon is wound the same way, so filling them with
// accumulated coverage saturates where they overlap instead of cancelling.
func strokePolygons(p *geom.Path, s draw.StrokeStyle, tol float64) [][]geom.Point {
	hw := s.Width / 2
	if hw <= 0 {
		return nil
	}
	st := &stroker{hw: hw, style: s, tol: tol}
	for _, line := range p.Flatten(tol) {
		lone := len(line.Points) == 1 && !line.Closed
		if lone {
			// A bare moveto draws nothing.
			continue
		}
		pts := dedupe(line.Points)
		if line.Closed && len(pts) > 1 && pts[0] == pts[len(pts)-1] {
			pts = pts[:len(pts)-1]
		}
		if len(s.Dashes) > 0 {
			for _, dash := range dashes(pts, line.Closed, s.Dashes, s.DashOffset) {
				st.polyline(dash, false)
			}
			continue
		}
		st.polyline(pts, line.Closed)
	}
	return st.out
}

type stroker struct {
	hw    float64
	style draw.StrokeStyle
	tol   float64
	out   [][]geom.Point
}

func (st *stroker) emit(poly []geom.Point) {
	if len(poly) < 3 {
		return
	}
	a := signedArea(poly)
	if a == 0 {
		return
	}
	if a < 0 {
		for i, j := 0, len(poly)-1; i < j; i, j = i+1, j-1 {
			poly[i], poly[j] = poly[j], poly[i]
		}
	}
	st.out = append(st.out, poly)
}

// polyline strokes one subpath.
func (st *stroker) polyline(pts []geom.Point, closed bool) {
	if len(pts) == 1 {
		st.dot(pts[0])
		return
	}
	n := len(pts)
	segs := n - 1
	if closed {
		segs = n
	}
	for i := 0; i < segs; i++ {
		a, b := pts[i], pts[(i+1)%n]
		nrm := normal(a, b).Mul(st.hw)
		st.emit([]geom.Point{a.Add(nrm), b.Add(nrm), b.Sub(nrm), a.Sub(nrm)})
	}

	if closed {
		for i := 0; i < n; i++ {
			st.join(pts[(i+n-1)%n], pts[i], pts[(i+1)%n])
		}
		return
	}
	for i := 1; i < n-1; i++ {
		st.join(pts[i-1], pts[i], pts[i+1])
	}
	st.cap(pts[1], pts[0])
	st.cap(pts[n-2], pts[n-1])
}

// dot draws the caps of a zero-length subpath. Butt caps draw nothing.
func (st *stroker) dot(p geom.Point) {
	switch st.style.Cap {
	case draw.CapRound:
		st.emit(st.circle(p))
	case draw.CapSquare:
		h := st.hw
		st.emit([]geom.Point{
			{X: p.X - h, Y: p.Y - h}, {X: p.X + h, Y: p.Y - h},
			{X: p.X + h, Y: p.Y + h}, {X: p.X - h, Y: p.Y + h},
		})
	}
}

// cap draws the cap at end, for a segment arriving from prev.
func (st *stroker) cap(prev, end geom.Point) {
	switch st.style.Cap {
	case draw.CapRound:
		st.emit(st.circle(end))
	case draw.CapSquare:
		d := unit(end.Sub(prev)).Mul(st.hw)
		nrm := normal(prev, end).Mul(st.hw)
		st.emit([]geom.Point{end.Add(nrm), end.Add(nrm).Add(d), end.Sub(nrm).Add(d), end.Sub(nrm)})
	}
}

// join fills the gap on the outer side of the corner at b.
func (st *stroker) join(a, b, c geom.Point) {
	d0, d1 := unit(b.Sub(a)), unit(c.Sub(b))
	cross := d0.X*d1.Y - d0.Y*d1.X
	if math.Abs(cross) < 1e-12 && d0.X*d1.X+d0.Y*d1.Y > 0 {
		return // collinear
	}
	if st.style.Join == draw.JoinRound {
		st.emit(st.circle(b))
		return
	}

	side := -1.0
	if cross < 0 {
		side = 1
	}
	n0 := geom.Pt(-d0.Y, d0.X).Mul(side * st.hw)
	n1 := geom.Pt(-d1.Y, d1.X).Mul(side * st.hw)
	p0, p1 := b.Add(n0), b.Add(n1)

	if st.style.Join == draw.JoinMiter {
		cosTheta := d0.X*d1.X + d0.Y*d1.Y
		if 1+cosTheta > 1e-12 {
			ratio := 1 / math.Sqrt((1+cosTheta)/2)
			if ratio <= st.style.MiterLimit {
				// The miter tip lies along the bisector of the offsets.
				m := n0.Add(n1).Mul(1 / (1 + cosTheta))
				st.emit([]geom.Point{b, p0, b.Add(m), p1})
				return
			}
		}
	}
	st.emit([]geom.Point{b, p0, p1})
}

// circle returns a polygon approximating a circle of radius hw at c within
// the stroker tolerance.
func (st *stroker) circle(c geom.Point) []geom.Point {
	r := st.hw
	n := 8
	if r > st.tol {
		n = int(math.Ceil(math.Pi / math.Acos(1-st.tol/r)))
	}
	n = max(n, 8)
	poly := make([]geom.Point, n)
	for i := range poly {
		s, co := math.Sincos(2 * math.Pi * float64(i) / float64(n))
		poly[i] = geom.Pt(c.X+r*co, c.Y+r*s)
	}
	return poly
}

// dashes splits a polyline into the "on" intervals of a dash pattern.
// Pattern lengths are positive in total; offset may be negative.
func dashes(pts []geom.Point, closed bool, pattern []float64, offset float64) [][]geom.Point {
	if closed && len(pts) > 1 {
		pts = append(append([]geom.Point(nil), pts...), pts[0])
	}
	total := 0.0
	for _, d := range pattern {
		total += d
	}
	if total <= 0 || len(pts) < 2 {
		return nil
	}

	// Find the pattern position at the start of the path.
	pos := math.Mod(offset, total)
	if pos < 0 {
		pos += total
	}
	idx := 0
	for pos >= pattern[idx] {
		pos -= pattern[idx]
		idx = (idx + 1) % len(pattern)
	}
	remain := pattern[idx] - pos
	on := idx%2 == 0

	var (
		out [][]geom.Point
		cur []geom.Point
	)
	if on {
		cur = []geom.Point{pts[0]}
	}
	for i := 0; i+1 < len(pts); i++ {
		a, b := pts[i], pts[i+1]
		segLen := b.Sub(a).Len()
		t := 0.0
		for segLen-t > remain {
			t += remain
			p := a.Lerp(b, t/segLen)
			if on {
				if last := cur[len(cur)-1]; last != p {
					cur = append(cur, p)
				}
				out = append(out, cur)
				cur = nil
			} else {
				cur = []geom.Point{p}
			}
			on = !on
			idx = (idx + 1) % len(pattern)
			remain = pattern[idx]
		}
		remain -= segLen - t
		if on {
			cur = append(cur, b)
		}
	}
	if on && len(cur) > 1 {
		out = append(out, cur)
	}
	return out
}

func dedupe(pts []geom.Point) []geom.Point {
	out := make([]geom.Point, 0, len(pts))
	for _, p := range pts {
		if len(out) > 0 && p.Sub(out[len(out)-1]).Len() < 1e-9 {
			continue
		}
		out = append(out, p)
	}
	return out
}

func unit(v geom.Point) geom.Point {
	l := v.Len()
	if l == 0 {
		return geom.Point{}
	}
	return v.Mul(1 / l)
}

// normal returns the unit left normal of the segment a->b.
func normal(a, b geom.Point) geom.Point {
	d := unit(b.Sub(a))
	return geom.Pt(-d.Y, d.X)
}

func signedArea(poly []geom.Point) float64 {
	a := 0.0
	for i := range poly {
		p, q := poly[i], poly[(i+1)%len(poly)]
		a += p.X*q.Y - q.X*p.Y
	}
	return a / 2
}
