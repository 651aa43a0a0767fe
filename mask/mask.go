// Package mask converts raster buffers into binary occupancy grids.
//
// A cell is occupied when its pixel has any alpha at all: anti-aliased edge
// pixels count as part of the shape. Grids are independent of the buffers
// they come from and can outlive them.
package mask

import (
	"image"

	"github.com/gogpu/svgdist/raster"
)

// Grid is a width x height grid of occupied or empty cells.
type Grid struct {
	width  int
	height int
	cells  []bool
}

// NewGrid creates an empty grid with the given dimensions.
func NewGrid(width, height int) *Grid {
	width, height = max(width, 0), max(height, 0)
	return &Grid{
		width:  width,
		height: height,
		cells:  make([]bool, width*height),
	}
}

// Extract builds the occupancy grid of buf: a cell is occupied iff its
// pixel's alpha is greater than zero.
func Extract(buf *raster.Buffer) *Grid {
	g := NewGrid(buf.Width(), buf.Height())
	pix := buf.Pix()
	for i := range g.cells {
		g.cells[i] = pix[i*4+3] > 0
	}
	return g
}

// FromImage builds the occupancy grid of any image using its alpha channel.
func FromImage(img image.Image) *Grid {
	b := img.Bounds()
	g := NewGrid(b.Dx(), b.Dy())
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			_, _, _, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			g.cells[y*g.width+x] = a > 0
		}
	}
	return g
}

// Width returns the grid width.
func (g *Grid) Width() int { return g.width }

// Height returns the grid height.
func (g *Grid) Height() int { return g.height }

// Bounds returns the grid dimensions as an image.Rectangle.
func (g *Grid) Bounds() image.Rectangle {
	return image.Rect(0, 0, g.width, g.height)
}

// At reports whether (x, y) is occupied. Cells outside the grid are empty.
func (g *Grid) At(x, y int) bool {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return false
	}
	return g.cells[y*g.width+x]
}

// Set marks (x, y) occupied or empty. Coordinates outside the grid are
// ignored.
func (g *Grid) Set(x, y int, occupied bool) {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return
	}
	g.cells[y*g.width+x] = occupied
}

// Count returns the number of occupied cells.
func (g *Grid) Count() int {
	n := 0
	for _, c := range g.cells {
		if c {
			n++
		}
	}
	return n
}

// Empty reports whether no cell is occupied.
func (g *Grid) Empty() bool {
	for _, c := range g.cells {
		if c {
			return false
		}
	}
	return true
}

// Each calls fn for every occupied cell in row-major order until fn
// returns false.
func (g *Grid) Each(fn func(x, y int) bool) {
	for i, c := range g.cells {
		if c && !fn(i%g.width, i/g.width) {
			return
		}
	}
}

// Box returns the smallest rectangle containing every occupied cell, or an
// empty rectangle for an empty grid.
func (g *Grid) Box() image.Rectangle {
	var r image.Rectangle
	g.Each(func(x, y int) bool {
		r = r.Union(image.Rect(x, y, x+1, y+1))
		return true
	})
	return r
}

// Clone returns an independent copy of the grid.
func (g *Grid) Clone() *Grid {
	c := NewGrid(g.width, g.height)
	copy(c.cells, g.cells)
	return c
}

// Image renders the grid as an alpha image, opaque on occupied cells.
func (g *Grid) Image() *image.Alpha {
	img := image.NewAlpha(g.Bounds())
	for i, c := range g.cells {
		if c {
			img.Pix[(i/g.width)*img.Stride+i%g.width] = 0xff
		}
	}
	return img
}
