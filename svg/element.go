package svg

import "strings"

// Namespace URIs understood by the parser and encoder.
const (
	NamespaceSVG   = "http://www.w3.org/2000/svg"
	NamespaceXLink = "http://www.w3.org/1999/xlink"
	NamespaceXML   = "http://www.w3.org/XML/1998/namespace"
)

// Attr is an element attribute. Name is qualified with its conventional
// prefix for the xml, xmlns and xlink namespaces ("xlink:href", "xml:id").
type Attr struct {
	Name  string
	Value string
}

// Element is a node of the document tree.
//
// Character data follows the ElementTree convention: Text holds the data
// before the first child, Tail the data between this element's end tag and
// the next sibling.
type Element struct {
	Name     string // local name, e.g. "rect"
	Space    string // namespace URI, empty for no namespace
	Attrs    []Attr
	Children []*Element
	Text     string
	Tail     string

	parent *Element
	hidden bool
}

// NewElement creates a detached element in the SVG namespace.
func NewElement(name string, attrs ...Attr) *Element {
	return &Element{Name: name, Space: NamespaceSVG, Attrs: attrs}
}

// Parent returns the parent element, or nil for the root.
func (e *Element) Parent() *Element { return e.parent }

// AppendChild adds c as the last child of e.
func (e *Element) AppendChild(c *Element) {
	c.parent = e
	e.Children = append(e.Children, c)
}

// Hidden reports whether the element was suppressed by isolation.
func (e *Element) Hidden() bool { return e.hidden }

// SetHidden sets the isolation flag.
func (e *Element) SetHidden(hidden bool) { e.hidden = hidden }

// Attr returns the value of the named attribute.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// AttrOr returns the value of the named attribute or def if absent.
func (e *Element) AttrOr(name, def string) string {
	if v, ok := e.Attr(name); ok {
		return v
	}
	return def
}

// SetAttr sets or replaces an attribute.
func (e *Element) SetAttr(name, value string) {
	for i := range e.Attrs {
		if e.Attrs[i].Name == name {
			e.Attrs[i].Value = value
			return
		}
	}
	e.Attrs = append(e.Attrs, Attr{Name: name, Value: value})
}

// ID returns the element identifier, preferring id over xml:id.
func (e *Element) ID() string {
	if v, ok := e.Attr("id"); ok {
		return v
	}
	v, _ := e.Attr("xml:id")
	return v
}

// HasClass reports whether the class attribute contains class.
func (e *Element) HasClass(class string) bool {
	v, ok := e.Attr("class")
	if !ok {
		return false
	}
	for _, f := range strings.Fields(v) {
		if f == class {
			return true
		}
	}
	return false
}

// Index returns the position of e among its parent's children, or 0 for
// the root.
func (e *Element) Index() int {
	if e.parent == nil {
		return 0
	}
	for i, c := range e.parent.Children {
		if c == e {
			return i
		}
	}
	return -1
}

// PrevSibling returns the previous element sibling, or nil.
func (e *Element) PrevSibling() *Element {
	i := e.Index()
	if e.parent == nil || i <= 0 {
		return nil
	}
	return e.parent.Children[i-1]
}

// NextSibling returns the next element sibling, or nil.
func (e *Element) NextSibling() *Element {
	if e.parent == nil {
		return nil
	}
	i := e.Index()
	if i < 0 || i+1 >= len(e.parent.Children) {
		return nil
	}
	return e.parent.Children[i+1]
}

// Walk visits e and its descendants in document order. Returning false from
// fn skips the element's children.
func (e *Element) Walk(fn func(*Element) bool) {
	if !fn(e) {
		return
	}
	for _, c := range e.Children {
		c.Walk(fn)
	}
}

// TextContent returns the concatenated character data of e and its
// descendants in document order.
func (e *Element) TextContent() string {
	var b strings.Builder
	e.writeText(&b)
	return b.String()
}

func (e *Element) writeText(b *strings.Builder) {
	b.WriteString(e.Text)
	for _, c := range e.Children {
		c.writeText(b)
		b.WriteString(c.Tail)
	}
}

// clone deep-copies e, attaching the copy to parent.
func (e *Element) clone(parent *Element) *Element {
	c := &Element{
		Name:   e.Name,
		Space:  e.Space,
		Attrs:  append([]Attr(nil), e.Attrs...),
		Text:   e.Text,
		Tail:   e.Tail,
		parent: parent,
		hidden: e.hidden,
	}
	if len(e.Children) > 0 {
		c.Children = make([]*Element, len(e.Children))
		for i, ch := range e.Children {
			c.Children[i] = ch.clone(c)
		}
	}
	return c
}
