package draw

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/gogpu/svgdist/geom"
	"github.com/gogpu/svgdist/svg"
)

// maxUseDepth bounds <use> indirection, which also breaks reference cycles.
const maxUseDepth = 32

// Option configures Compile.
type Option func(*compiler)

// WithLogger sets the logger for warnings about approximated content.
func WithLogger(l *slog.Logger) Option {
	return func(c *compiler) {
		if l != nil {
			c.logger = l
		}
	}
}

type compiler struct {
	doc    *svg.Document
	logger *slog.Logger
	list   *List
	uses   int
}

// Compile resolves doc into a display list at the given raster scale.
// The canvas is ceil(width*scale) x ceil(height*scale) pixels, where width
// and height are the document's intrinsic size.
//
// Elements flagged hidden (see svg.Isolate) and their subtrees produce no
// operations. Raster images and foreign objects fail with ErrUnsupported.
func Compile(doc *svg.Document, scale float64, opts ...Option) (*List, error) {
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScale, scale)
	}
	if doc == nil || doc.Root == nil {
		return nil, svg.ErrNoRoot
	}
	root := doc.Root
	if root.Name != "svg" {
		return nil, fmt.Errorf("%w: <%s>", ErrNotSVG, root.Name)
	}

	w, h, err := doc.Size()
	if err != nil {
		return nil, err
	}
	width := int(math.Ceil(w * scale))
	height := int(math.Ceil(h * scale))
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %gx%g at scale %g", ErrEmptyCanvas, w, h, scale)
	}

	c := &compiler{
		doc:    doc,
		logger: slog.New(slog.DiscardHandler),
		list:   &List{Width: width, Height: height, Scale: scale},
	}
	for _, opt := range opts {
		opt(c)
	}

	ctm := geom.Scale(scale, scale)
	vw, vh := w, h
	if s, ok := root.Attr("viewBox"); ok {
		vb, err := svg.ParseViewBox(s)
		if err != nil {
			return nil, err
		}
		if vb.Width == 0 || vb.Height == 0 {
			return c.list, nil
		}
		ctm = ctm.Mul(viewBoxTransform(vb, root.AttrOr("preserveAspectRatio", ""), w, h))
		vw, vh = vb.Width, vb.Height
	}

	if root.Hidden() {
		return c.list, nil
	}
	props := properties(root)
	if props["display"] == "none" {
		return c.list, nil
	}
	st := c.apply(initialState(ctm, vw, vh), props, describe(root))
	if err := c.children(root, st); err != nil {
		return nil, err
	}
	return c.list, nil
}

func (c *compiler) children(e *svg.Element, st state) error {
	for _, child := range e.Children {
		if err := c.element(child, st); err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) element(e *svg.Element, st state) error {
	if e.Hidden() {
		return nil
	}
	if e.Space != "" && e.Space != svg.NamespaceSVG {
		return nil
	}

	switch e.Name {
	case "defs", "symbol", "clipPath", "mask", "marker", "pattern",
		"linearGradient", "radialGradient", "filter", "style", "script",
		"title", "desc", "metadata", "font", "font-face":
		return nil
	case "image", "foreignObject", "video", "audio", "iframe", "canvas":
		return fmt.Errorf("%w: <%s> %s", ErrUnsupported, e.Name, describe(e))
	}

	props := properties(e)
	if props["display"] == "none" {
		return nil
	}
	source := describe(e)
	st = c.apply(st, props, source)
	if t, ok := e.Attr("transform"); ok {
		m, err := geom.ParseTransform(t)
		if err != nil {
			c.logger.Warn("draw: ignoring invalid transform", "element", source, "error", err)
		} else {
			st.ctm = st.ctm.Mul(m)
		}
	}

	switch e.Name {
	case "svg":
		return c.nestedSVG(e, st)
	case "g", "a":
		return c.children(e, st)
	case "switch":
		for _, child := range e.Children {
			if child.Space == "" || child.Space == svg.NamespaceSVG {
				return c.element(child, st)
			}
		}
		return nil
	case "use":
		return c.use(e, st)
	case "text":
		c.text(e, st)
		return nil
	}

	if p := c.shape(e, &st); p != nil {
		c.paint(p, st, source)
	}
	return nil
}

// shape builds the user space outline of a basic shape or path. It returns
// nil for elements that are not shapes or have no geometry.
func (c *compiler) shape(e *svg.Element, st *state) *geom.Path {
	switch e.Name {
	case "rect":
		x := st.attrLength(e, "x", horizontal, 0)
		y := st.attrLength(e, "y", vertical, 0)
		w := st.attrLength(e, "width", horizontal, 0)
		h := st.attrLength(e, "height", vertical, 0)
		rx, hasRx := e.Attr("rx")
		ry, hasRy := e.Attr("ry")
		var rxv, ryv float64
		if hasRx {
			rxv, _ = st.length(rx, horizontal)
		}
		if hasRy {
			ryv, _ = st.length(ry, vertical)
		}
		switch {
		case hasRx && !hasRy:
			ryv = rxv
		case hasRy && !hasRx:
			rxv = ryv
		}
		return geom.RectPath(x, y, w, h, rxv, ryv)
	case "circle":
		return geom.CirclePath(
			st.attrLength(e, "cx", horizontal, 0),
			st.attrLength(e, "cy", vertical, 0),
			st.attrLength(e, "r", diagonal, 0),
		)
	case "ellipse":
		return geom.EllipsePath(
			st.attrLength(e, "cx", horizontal, 0),
			st.attrLength(e, "cy", vertical, 0),
			st.attrLength(e, "rx", horizontal, 0),
			st.attrLength(e, "ry", vertical, 0),
		)
	case "line":
		return geom.LinePath(
			st.attrLength(e, "x1", horizontal, 0),
			st.attrLength(e, "y1", vertical, 0),
			st.attrLength(e, "x2", horizontal, 0),
			st.attrLength(e, "y2", vertical, 0),
		)
	case "polyline", "polygon":
		pts, err := geom.ParsePoints(e.AttrOr("points", ""))
		if err != nil {
			c.logger.Warn("draw: points parsed up to error", "element", describe(e), "error", err)
		}
		return geom.PolyPath(pts, e.Name == "polygon")
	case "path":
		p, err := geom.ParsePathData(e.AttrOr("d", ""))
		if err != nil {
			c.logger.Warn("draw: path data rendered up to error", "element", describe(e), "error", err)
		}
		return p
	}
	return nil
}

// paint emits the fill and stroke operations for a user space path.
func (c *compiler) paint(p *geom.Path, st state, source string) {
	if !st.visible || p.Empty() {
		return
	}
	var dev *geom.Path
	if col, ok := st.fillColor(); ok {
		dev = p.Transform(st.ctm)
		c.list.Ops = append(c.list.Ops, Op{
			Kind:   KindFill,
			Paint:  col,
			Path:   dev,
			Rule:   st.fillRule,
			Source: source,
		})
	}
	if col, ok := st.strokeColor(); ok {
		if dev == nil {
			dev = p.Transform(st.ctm)
		}
		c.list.Ops = append(c.list.Ops, Op{
			Kind:   KindStroke,
			Paint:  col,
			Path:   dev,
			Stroke: st.strokeStyle(),
			Source: source,
		})
	}
}

// nestedSVG establishes a new viewport for an inner <svg> element.
func (c *compiler) nestedSVG(e *svg.Element, st state) error {
	x := st.attrLength(e, "x", horizontal, 0)
	y := st.attrLength(e, "y", vertical, 0)
	w := st.attrLength(e, "width", horizontal, st.vw)
	h := st.attrLength(e, "height", vertical, st.vh)
	return c.viewport(e, e, st, x, y, w, h)
}

// viewport renders the children of content inside a w x h viewport at
// (x, y), mapping the viewBox of vbSource when it has one.
func (c *compiler) viewport(vbSource, content *svg.Element, st state, x, y, w, h float64) error {
	if w <= 0 || h <= 0 {
		return nil
	}
	st.ctm = st.ctm.Mul(geom.Translate(x, y))
	st.vw, st.vh = w, h
	if s, ok := vbSource.Attr("viewBox"); ok {
		vb, err := svg.ParseViewBox(s)
		if err != nil {
			c.logger.Warn("draw: ignoring invalid viewBox", "element", describe(vbSource), "error", err)
		} else {
			if vb.Width == 0 || vb.Height == 0 {
				return nil
			}
			st.ctm = st.ctm.Mul(viewBoxTransform(vb, vbSource.AttrOr("preserveAspectRatio", ""), w, h))
			st.vw, st.vh = vb.Width, vb.Height
		}
	}
	return c.children(content, st)
}

// use renders the element referenced by href at (x, y).
func (c *compiler) use(e *svg.Element, st state) error {
	href, ok := e.Attr("xlink:href")
	if !ok {
		href, ok = e.Attr("href")
	}
	source := describe(e)
	if !ok || !strings.HasPrefix(strings.TrimSpace(href), "#") {
		c.logger.Debug("draw: use without local reference", "element", source, "href", href)
		return nil
	}
	target := c.doc.ElementByID(strings.TrimPrefix(strings.TrimSpace(href), "#"))
	if target == nil {
		c.logger.Warn("draw: use references a missing element", "element", source, "href", href)
		return nil
	}
	if c.uses >= maxUseDepth {
		c.logger.Warn("draw: use nesting too deep", "element", source, "href", href)
		return nil
	}
	c.uses++
	defer func() { c.uses-- }()

	x := st.attrLength(e, "x", horizontal, 0)
	y := st.attrLength(e, "y", vertical, 0)

	if target.Name != "symbol" {
		st.ctm = st.ctm.Mul(geom.Translate(x, y))
		return c.element(target, st)
	}
	if target.Hidden() {
		return nil
	}
	props := properties(target)
	if props["display"] == "none" {
		return nil
	}
	st = c.apply(st, props, describe(target))
	w := st.attrLength(e, "width", horizontal, st.vw)
	h := st.attrLength(e, "height", vertical, st.vh)
	if _, ok := target.Attr("viewBox"); !ok {
		st.ctm = st.ctm.Mul(geom.Translate(x, y))
		return c.children(target, st)
	}
	return c.viewport(target, target, st, x, y, w, h)
}

// viewBoxTransform maps vb onto a w x h viewport per preserveAspectRatio.
func viewBoxTransform(vb svg.ViewBox, par string, w, h float64) geom.Matrix {
	sx, sy := w/vb.Width, h/vb.Height
	fields := strings.Fields(par)
	align := "xMidYMid"
	slice := false
	if len(fields) > 0 && fields[0] == "defer" {
		fields = fields[1:]
	}
	if len(fields) > 0 {
		align = fields[0]
	}
	if len(fields) > 1 && fields[1] == "slice" {
		slice = true
	}
	if align == "none" {
		return geom.Scale(sx, sy).Mul(geom.Translate(-vb.MinX, -vb.MinY))
	}

	s := math.Min(sx, sy)
	if slice {
		s = math.Max(sx, sy)
	}
	tx, ty := -vb.MinX*s, -vb.MinY*s
	extraX, extraY := w-vb.Width*s, h-vb.Height*s
	switch {
	case strings.Contains(align, "xMid"):
		tx += extraX / 2
	case strings.Contains(align, "xMax"):
		tx += extraX
	}
	switch {
	case strings.Contains(align, "YMid"):
		ty += extraY / 2
	case strings.Contains(align, "YMax"):
		ty += extraY
	}
	return geom.Translate(tx, ty).Mul(geom.Scale(s, s))
}

// describe names an element for logs: its tag and id when it has one.
func describe(e *svg.Element) string {
	if id := e.ID(); id != "" {
		return e.Name + "#" + id
	}
	return e.Name
}
