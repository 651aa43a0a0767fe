package draw

import (
	"strings"

	"github.com/gogpu/svgdist/geom"
	"github.com/gogpu/svgdist/svg"
)

// text emits one text operation per positioned run. A <tspan> with its own
// x or y starts a new run styled by that tspan; other tspans and character
// data continue the current run in its style. dx, dy, rotate and textLength
// are not applied.
func (c *compiler) text(e *svg.Element, st state) {
	x := st.firstLength(e, "x", horizontal)
	y := st.firstLength(e, "y", vertical)

	type run struct {
		b  strings.Builder
		at geom.Point
		st state
	}
	runs := []*run{{at: geom.Pt(x, y), st: st}}
	cur := runs[0]
	cur.b.WriteString(e.Text)

	var visit func(parent *svg.Element, pst state)
	visit = func(parent *svg.Element, pst state) {
		for _, child := range parent.Children {
			if child.Name == "tspan" && !child.Hidden() {
				props := properties(child)
				if props["display"] != "none" {
					cst := c.apply(pst, props, describe(child))
					_, hasX := child.Attr("x")
					_, hasY := child.Attr("y")
					if hasX || hasY {
						at := cur.at
						if hasX {
							at.X = cst.firstLength(child, "x", horizontal)
						}
						if hasY {
							at.Y = cst.firstLength(child, "y", vertical)
						}
						cur = &run{at: at, st: cst}
						runs = append(runs, cur)
					}
					cur.b.WriteString(child.Text)
					visit(child, cst)
				}
			}
			cur.b.WriteString(child.Tail)
		}
	}
	visit(e, st)

	for _, r := range runs {
		content := collapseSpace(r.b.String())
		if content == "" || !r.st.visible {
			continue
		}
		col, ok := r.st.fillColor()
		if !ok {
			continue
		}
		c.list.Ops = append(c.list.Ops, Op{
			Kind:  KindText,
			Paint: col,
			Text: &Text{
				Content: content,
				Origin:  r.at,
				Size:    r.st.fontSize,
				Anchor:  r.st.anchor,
				Matrix:  r.st.ctm,
			},
			Source: describe(e),
		})
	}
}

// firstLength reads the first value of a coordinate list attribute.
func (st *state) firstLength(e *svg.Element, name string, a axis) float64 {
	v, ok := e.Attr(name)
	if !ok {
		return 0
	}
	list := svg.SplitList(v)
	if len(list) == 0 {
		return 0
	}
	f, _ := st.length(list[0], a)
	return f
}

// collapseSpace applies the default xml:space handling: newlines and tabs
// become spaces, runs of spaces collapse, and the ends are trimmed.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
