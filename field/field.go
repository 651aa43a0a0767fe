// Package field computes exact Euclidean distance fields over occupancy
// grids.
//
// The transform measures distances between pixel centers. It runs the
// Felzenszwalb-Huttenlocher lower-envelope algorithm once down every column
// and once along every row, so a build is linear in the number of cells.
package field

import (
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/svgdist/mask"
)

var (
	// ErrEmptyMask is returned when a grid queried against a field has no
	// occupied cells.
	ErrEmptyMask = errors.New("field: mask has no occupied cells")

	// ErrSizeMismatch is returned when a grid does not have the field's
	// dimensions.
	ErrSizeMismatch = errors.New("field: grid and field sizes differ")
)

// far stands in for infinity during the transform; envelope intersections
// need finite arithmetic. Squared distances at or above farLimit become +Inf.
const (
	far      = 1e20
	farLimit = far / 2
)

// Field holds, for every cell, the Euclidean distance to the nearest
// occupied cell of the grid it was built from. Occupied cells hold 0. A
// field built from an empty grid holds +Inf everywhere.
type Field struct {
	width  int
	height int
	dist   []float64
}

// Hit is a cell reached by Nearest together with its field value.
type Hit struct {
	X, Y     int
	Distance float64
}

// Build computes the distance field of g.
func Build(g *mask.Grid) *Field {
	w, h := g.Width(), g.Height()
	f := &Field{width: w, height: h, dist: make([]float64, w*h)}
	if w == 0 || h == 0 {
		return f
	}

	sq := f.dist
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if g.At(x, y) {
				sq[y*w+x] = 0
			} else {
				sq[y*w+x] = far
			}
		}
	}

	n := max(w, h)
	e := newEnvelope(n)
	line := make([]float64, n)

	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			line[y] = sq[y*w+x]
		}
		e.transform(line[:h])
		for y := 0; y < h; y++ {
			sq[y*w+x] = line[y]
		}
	}
	for y := 0; y < h; y++ {
		e.transform(sq[y*w : (y+1)*w])
	}

	for i, d := range sq {
		if d >= farLimit {
			sq[i] = math.Inf(1)
		} else {
			sq[i] = math.Sqrt(d)
		}
	}
	return f
}

// envelope holds scratch space for the one-dimensional transform.
type envelope struct {
	v []int     // parabola vertices
	z []float64 // boundaries between parabolas
	d []float64 // output
}

func newEnvelope(n int) *envelope {
	return &envelope{
		v: make([]int, n),
		z: make([]float64, n+1),
		d: make([]float64, n),
	}
}

// transform replaces f with its one-dimensional squared distance transform:
// f'(q) = min over p of (q-p)^2 + f(p).
func (e *envelope) transform(f []float64) {
	n := len(f)
	if n == 0 {
		return
	}
	v, z, d := e.v, e.z, e.d

	k := 0
	v[0] = 0
	z[0] = math.Inf(-1)
	z[1] = math.Inf(1)
	for q := 1; q < n; q++ {
		s := intersect(f, q, v[k])
		for s <= z[k] {
			k--
			s = intersect(f, q, v[k])
		}
		k++
		v[k] = q
		z[k] = s
		z[k+1] = math.Inf(1)
	}

	k = 0
	for q := 0; q < n; q++ {
		for z[k+1] < float64(q) {
			k++
		}
		dq := float64(q - v[k])
		d[q] = dq*dq + f[v[k]]
	}
	copy(f, d[:n])
}

// intersect returns the abscissa where the parabolas rooted at q and p meet.
func intersect(f []float64, q, p int) float64 {
	fq, fp := float64(q), float64(p)
	return ((f[q] + fq*fq) - (f[p] + fp*fp)) / (2*fq - 2*fp)
}

// Width returns the field width.
func (f *Field) Width() int { return f.width }

// Height returns the field height.
func (f *Field) Height() int { return f.height }

// At returns the distance at (x, y). Cells outside the field are +Inf.
func (f *Field) At(x, y int) float64 {
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return math.Inf(1)
	}
	return f.dist[y*f.width+x]
}

// MinOver returns the smallest field value over the occupied cells of g.
// It is 0 when g shares an occupied cell with the field's own grid.
func (f *Field) MinOver(g *mask.Grid) (float64, error) {
	hit, err := f.Nearest(g)
	if err != nil {
		return 0, err
	}
	return hit.Distance, nil
}

// Nearest is like MinOver but also reports the cell of g achieving the
// minimum. Ties go to the first cell in row-major order.
func (f *Field) Nearest(g *mask.Grid) (Hit, error) {
	if g.Width() != f.width || g.Height() != f.height {
		return Hit{}, fmt.Errorf("%w: field %dx%d, grid %dx%d",
			ErrSizeMismatch, f.width, f.height, g.Width(), g.Height())
	}

	best := Hit{Distance: math.Inf(1)}
	found := false
	g.Each(func(x, y int) bool {
		d := f.dist[y*f.width+x]
		if !found || d < best.Distance {
			best = Hit{X: x, Y: y, Distance: d}
			found = true
		}
		return d > 0
	})
	if !found {
		return Hit{}, ErrEmptyMask
	}
	return best, nil
}
