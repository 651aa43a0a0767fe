package vecraster

import (
	"errors"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/gogpu/svgdist/draw"
	"github.com/gogpu/svgdist/geom"
)

// unitsPerEm is the ppem glyphs are loaded at before scaling to the text
// size, high enough that fixed-point rounding is negligible.
const unitsPerEm = 1024

var (
	fontOnce sync.Once
	goFont   *sfnt.Font
	fontErr  error

	// sfnt.Buffer is not safe for concurrent use.
	bufPool = sync.Pool{New: func() any { return new(sfnt.Buffer) }}
)

func loadFont() (*sfnt.Font, error) {
	fontOnce.Do(func() {
		goFont, fontErr = sfnt.Parse(goregular.TTF)
	})
	return goFont, fontErr
}

// traceText adds the glyph outlines of t to z, mapped through the text
// transform.
func traceText(z *vector.Rasterizer, t *draw.Text) error {
	if t.Size <= 0 {
		return nil
	}
	f, err := loadFont()
	if err != nil {
		return err
	}
	buf := bufPool.Get().(*sfnt.Buffer)
	defer bufPool.Put(buf)

	ppem := fixed.I(unitsPerEm)
	k := t.Size / unitsPerEm

	type placed struct {
		idx sfnt.GlyphIndex
		x   float64
	}
	var (
		glyphs []placed
		pen    fixed.Int26_6
		prev   sfnt.GlyphIndex
	)
	for i, r := range t.Content {
		idx, err := f.GlyphIndex(buf, r)
		if err != nil {
			return err
		}
		if i > 0 {
			kern, err := f.Kern(buf, prev, idx, ppem, font.HintingNone)
			if err == nil {
				pen += kern
			} else if !errors.Is(err, sfnt.ErrNotFound) {
				return err
			}
		}
		glyphs = append(glyphs, placed{idx: idx, x: float64(pen) / 64})
		adv, err := f.GlyphAdvance(buf, idx, ppem, font.HintingNone)
		if err != nil {
			return err
		}
		pen += adv
		prev = idx
	}

	width := float64(pen) / 64 * k
	origin := t.Origin
	switch t.Anchor {
	case draw.AnchorMiddle:
		origin.X -= width / 2
	case draw.AnchorEnd:
		origin.X -= width
	}

	// Glyph space (y down, em units) to device space.
	for _, g := range glyphs {
		m := t.Matrix.Mul(geom.Translate(origin.X, origin.Y)).Mul(geom.Scale(k, k)).Mul(geom.Translate(g.x, 0))
		segs, err := f.LoadGlyph(buf, g.idx, ppem, nil)
		if err != nil {
			return err
		}
		pt := func(p fixed.Point26_6) (float32, float32) {
			q := m.Apply(geom.Pt(float64(p.X)/64, float64(p.Y)/64))
			return f32(q.X), f32(q.Y)
		}
		open := false
		for _, s := range segs {
			switch s.Op {
			case sfnt.SegmentOpMoveTo:
				if open {
					z.ClosePath()
				}
				z.MoveTo(pt(s.Args[0]))
				open = true
			case sfnt.SegmentOpLineTo:
				z.LineTo(pt(s.Args[0]))
			case sfnt.SegmentOpQuadTo:
				x1, y1 := pt(s.Args[0])
				x2, y2 := pt(s.Args[1])
				z.QuadTo(x1, y1, x2, y2)
			case sfnt.SegmentOpCubeTo:
				x1, y1 := pt(s.Args[0])
				x2, y2 := pt(s.Args[1])
				x3, y3 := pt(s.Args[2])
				z.CubeTo(x1, y1, x2, y2, x3, y3)
			}
		}
		if open {
			z.ClosePath()
		}
	}
	return nil
}
