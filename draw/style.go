package draw

import (
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/svgdist/geom"
	"github.com/gogpu/svgdist/svg"
)

type paintKind uint8

const (
	paintNone paintKind = iota
	paintColor
	paintCurrent
)

type paint struct {
	kind  paintKind
	color Color
}

// state is the resolved style and coordinate system at an element.
type state struct {
	ctm geom.Matrix

	fill        paint
	fillOpacity float64
	fillRule    FillRule

	stroke        paint
	strokeOpacity float64
	strokeWidth   float64
	cap           Cap
	join          Join
	miterLimit    float64
	dashes        []float64
	dashOffset    float64

	visible  bool
	color    Color
	opacity  float64
	fontSize float64
	anchor   Anchor

	// Viewport size in user units, for percentage lengths.
	vw, vh float64
}

func initialState(ctm geom.Matrix, vw, vh float64) state {
	return state{
		ctm:           ctm,
		fill:          paint{kind: paintColor, color: Black},
		fillOpacity:   1,
		stroke:        paint{kind: paintNone},
		strokeOpacity: 1,
		strokeWidth:   1,
		miterLimit:    4,
		visible:       true,
		color:         Black,
		opacity:       1,
		fontSize:      16,
		vw:            vw,
		vh:            vh,
	}
}

// presentation lists the properties read from attributes and style="".
var presentation = []string{
	"display", "visibility", "opacity", "color",
	"fill", "fill-opacity", "fill-rule",
	"stroke", "stroke-opacity", "stroke-width", "stroke-linecap",
	"stroke-linejoin", "stroke-miterlimit", "stroke-dasharray",
	"stroke-dashoffset", "font-size", "text-anchor",
}

// properties returns the presentation properties of e. Declarations in the
// style attribute override presentation attributes.
func properties(e *svg.Element) map[string]string {
	props := make(map[string]string)
	for _, name := range presentation {
		if v, ok := e.Attr(name); ok {
			props[name] = strings.TrimSpace(v)
		}
	}
	if style, ok := e.Attr("style"); ok {
		for _, decl := range strings.Split(style, ";") {
			name, value, ok := strings.Cut(decl, ":")
			if !ok {
				continue
			}
			name = strings.ToLower(strings.TrimSpace(name))
			value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "!important"))
			props[name] = strings.TrimSpace(value)
		}
	}
	return props
}

// apply resolves props on top of the inherited state. Invalid values are
// ignored and the inherited value kept.
func (c *compiler) apply(st state, props map[string]string, source string) state {
	// color first: currentColor in fill or stroke resolves against it.
	if v, ok := props["color"]; ok && v != "inherit" {
		if col, err := ParseColor(v); err == nil {
			st.color = col
		}
	}
	if v, ok := props["fill"]; ok && v != "inherit" {
		if p, ok := c.parsePaint(v, source); ok {
			st.fill = p
		}
	}
	if v, ok := props["stroke"]; ok && v != "inherit" {
		if p, ok := c.parsePaint(v, source); ok {
			st.stroke = p
		}
	}
	if v, ok := props["fill-opacity"]; ok {
		if f, ok := parseOpacity(v); ok {
			st.fillOpacity = f
		}
	}
	if v, ok := props["stroke-opacity"]; ok {
		if f, ok := parseOpacity(v); ok {
			st.strokeOpacity = f
		}
	}
	if v, ok := props["opacity"]; ok {
		if f, ok := parseOpacity(v); ok {
			st.opacity *= f
		}
	}
	switch props["fill-rule"] {
	case "nonzero":
		st.fillRule = NonZero
	case "evenodd":
		st.fillRule = EvenOdd
	}
	if v, ok := props["stroke-width"]; ok {
		if w, ok := st.length(v, diagonal); ok && w >= 0 {
			st.strokeWidth = w
		}
	}
	switch props["stroke-linecap"] {
	case "butt":
		st.cap = CapButt
	case "round":
		st.cap = CapRound
	case "square":
		st.cap = CapSquare
	}
	switch props["stroke-linejoin"] {
	case "miter", "miter-clip", "arcs":
		st.join = JoinMiter
	case "round":
		st.join = JoinRound
	case "bevel":
		st.join = JoinBevel
	}
	if v, ok := props["stroke-miterlimit"]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 1 {
			st.miterLimit = f
		}
	}
	if v, ok := props["stroke-dasharray"]; ok && v != "inherit" {
		st.dashes = st.parseDashes(v)
	}
	if v, ok := props["stroke-dashoffset"]; ok {
		if f, ok := st.length(v, diagonal); ok {
			st.dashOffset = f
		}
	}
	switch props["visibility"] {
	case "visible":
		st.visible = true
	case "hidden", "collapse":
		st.visible = false
	}
	if v, ok := props["font-size"]; ok {
		if l, err := svg.ParseLength(v); err == nil {
			switch l.Unit {
			case svg.UnitEm:
				st.fontSize *= l.Value
			case svg.UnitEx:
				st.fontSize *= l.Value / 2
			case svg.UnitPercent:
				st.fontSize *= l.Value / 100
			default:
				st.fontSize = l.Resolve(0)
			}
		}
	}
	switch props["text-anchor"] {
	case "start":
		st.anchor = AnchorStart
	case "middle":
		st.anchor = AnchorMiddle
	case "end":
		st.anchor = AnchorEnd
	}
	return st
}

func (c *compiler) parsePaint(v, source string) (paint, bool) {
	switch {
	case v == "none":
		return paint{kind: paintNone}, true
	case strings.EqualFold(v, "currentColor"):
		return paint{kind: paintCurrent}, true
	case strings.HasPrefix(v, "url("):
		// Gradients and patterns paint as a solid: only coverage matters.
		// A fallback color after the reference wins when present.
		if end := strings.IndexByte(v, ')'); end >= 0 {
			if rest := strings.TrimSpace(v[end+1:]); rest != "" {
				if rest == "none" {
					return paint{kind: paintNone}, true
				}
				if col, err := ParseColor(rest); err == nil {
					return paint{kind: paintColor, color: col}, true
				}
			}
		}
		c.logger.Warn("draw: paint server replaced by solid paint", "element", source, "paint", v)
		return paint{kind: paintColor, color: Black}, true
	}
	col, err := ParseColor(v)
	if err != nil {
		c.logger.Debug("draw: ignoring invalid paint", "element", source, "paint", v)
		return paint{}, false
	}
	return paint{kind: paintColor, color: col}, true
}

func parseOpacity(v string) (float64, bool) {
	pct := strings.HasSuffix(v, "%")
	f, err := strconv.ParseFloat(strings.TrimSuffix(v, "%"), 64)
	if err != nil {
		return 0, false
	}
	if pct {
		f /= 100
	}
	return math.Max(0, math.Min(1, f)), true
}

// axis selects the reference dimension for percentage lengths.
type axis uint8

const (
	horizontal axis = iota
	vertical
	diagonal
)

func (st *state) ref(a axis) float64 {
	switch a {
	case horizontal:
		return st.vw
	case vertical:
		return st.vh
	}
	return math.Sqrt((st.vw*st.vw + st.vh*st.vh) / 2)
}

// length resolves a length attribute value in user units.
func (st *state) length(v string, a axis) (float64, bool) {
	l, err := svg.ParseLength(v)
	if err != nil {
		return 0, false
	}
	switch l.Unit {
	case svg.UnitEm:
		return l.Value * st.fontSize, true
	case svg.UnitEx:
		return l.Value * st.fontSize / 2, true
	}
	return l.Resolve(st.ref(a)), true
}

// attrLength reads a length attribute, returning def when absent or
// invalid.
func (st *state) attrLength(e *svg.Element, name string, a axis, def float64) float64 {
	v, ok := e.Attr(name)
	if !ok {
		return def
	}
	f, ok := st.length(v, a)
	if !ok {
		return def
	}
	return f
}

// parseDashes returns nil for "none", an invalid list, a negative entry or
// an all-zero list. Odd-length lists are repeated.
func (st *state) parseDashes(v string) []float64 {
	if v == "none" {
		return nil
	}
	fields := svg.SplitList(v)
	dashes := make([]float64, 0, len(fields)*2)
	sum := 0.0
	for _, f := range fields {
		d, ok := st.length(f, diagonal)
		if !ok || d < 0 {
			return nil
		}
		dashes = append(dashes, d)
		sum += d
	}
	if sum == 0 {
		return nil
	}
	if len(dashes)%2 == 1 {
		dashes = append(dashes, dashes...)
	}
	return dashes
}

// fillColor returns the resolved fill, or false when the fill does not
// paint.
func (st *state) fillColor() (Color, bool) {
	return st.resolve(st.fill, st.fillOpacity)
}

func (st *state) strokeColor() (Color, bool) {
	if st.strokeWidth <= 0 {
		return Color{}, false
	}
	return st.resolve(st.stroke, st.strokeOpacity)
}

func (st *state) resolve(p paint, opacity float64) (Color, bool) {
	var col Color
	switch p.kind {
	case paintNone:
		return Color{}, false
	case paintCurrent:
		col = st.color
	default:
		col = p.color
	}
	col = col.WithAlpha(opacity * st.opacity)
	return col, col.A > 0
}

// strokeStyle converts the stroke properties to device units.
func (st *state) strokeStyle() StrokeStyle {
	s := st.ctm.ScaleFactor()
	ss := StrokeStyle{
		Width:      st.strokeWidth * s,
		Cap:        st.cap,
		Join:       st.join,
		MiterLimit: st.miterLimit,
		DashOffset: st.dashOffset * s,
	}
	if len(st.dashes) > 0 {
		ss.Dashes = make([]float64, len(st.dashes))
		for i, d := range st.dashes {
			ss.Dashes[i] = d * s
		}
	}
	return ss
}
