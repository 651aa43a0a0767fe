package svg

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/text/encoding/ianaindex"
)

// Document is a parsed SVG document.
type Document struct {
	// Name identifies the document in error messages, typically its path.
	Name string

	// Root is the document element.
	Root *Element

	digest   uint64
	prefixes map[string]string // namespace URI -> prefix
}

// Parse reads an SVG document from r.
func Parse(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("svg: read: %w", err)
	}
	return parseBytes(data)
}

// ParseString parses an SVG document held in a string.
func ParseString(s string) (*Document, error) {
	return parseBytes([]byte(s))
}

// ParseFile parses the SVG file at path. The document is named after path.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return nil, err
	}
	doc, err := parseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc.Name = path
	return doc, nil
}

func parseBytes(data []byte) (*Document, error) {
	doc := &Document{
		digest: xxhash.Sum64(data),
		prefixes: map[string]string{
			NamespaceXLink: "xlink",
			NamespaceXML:   "xml",
		},
	}

	d := xml.NewDecoder(bytes.NewReader(data))
	d.CharsetReader = charsetReader
	d.Entity = xml.HTMLEntity

	var stack []*Element
	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("svg: parse: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{Name: t.Name.Local, Space: t.Name.Space}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" {
					doc.prefixes[a.Value] = a.Name.Local
				}
			}
			el.Attrs = make([]Attr, 0, len(t.Attr))
			for _, a := range t.Attr {
				el.Attrs = append(el.Attrs, Attr{Name: doc.qualify(a.Name), Value: a.Value})
			}
			if len(stack) == 0 {
				if doc.Root != nil {
					return nil, fmt.Errorf("svg: parse: multiple root elements")
				}
				doc.Root = el
			} else {
				stack[len(stack)-1].AppendChild(el)
			}
			stack = append(stack, el)

		case xml.EndElement:
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			if n := len(top.Children); n > 0 {
				top.Children[n-1].Tail += string(t)
			} else {
				top.Text += string(t)
			}
		}
	}

	if doc.Root == nil {
		return nil, ErrNoRoot
	}
	return doc, nil
}

// qualify turns a decoded attribute name into its prefixed form.
func (d *Document) qualify(n xml.Name) string {
	switch n.Space {
	case "":
		return n.Local
	case "xmlns":
		return "xmlns:" + n.Local
	}
	if p, ok := d.prefixes[n.Space]; ok && p != "" {
		return p + ":" + n.Local
	}
	// Undeclared prefixes are left untranslated by encoding/xml.
	if !strings.Contains(n.Space, ":") {
		return n.Space + ":" + n.Local
	}
	return n.Local
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, fmt.Errorf("svg: charset %q: %w", label, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("svg: unsupported charset %q", label)
	}
	return enc.NewDecoder().Reader(input), nil
}

// Digest returns a hash of the source bytes the document was parsed from.
// Clones share the digest of their source.
func (d *Document) Digest() uint64 { return d.digest }

// Clone returns a deep copy of the document, including hidden flags.
func (d *Document) Clone() *Document {
	c := &Document{
		Name:     d.Name,
		digest:   d.digest,
		prefixes: make(map[string]string, len(d.prefixes)),
	}
	for k, v := range d.prefixes {
		c.prefixes[k] = v
	}
	if d.Root != nil {
		c.Root = d.Root.clone(nil)
	}
	return c
}

// ElementByID returns the first element whose id (or xml:id) equals id.
func (d *Document) ElementByID(id string) *Element {
	var found *Element
	d.Root.Walk(func(e *Element) bool {
		if found != nil {
			return false
		}
		if e.ID() == id {
			found = e
			return false
		}
		return true
	})
	return found
}

// Query returns the first element in document order matching selector.
func (d *Document) Query(selector string) (*Element, error) {
	sel, err := CompileSelector(selector)
	if err != nil {
		return nil, err
	}
	if el := sel.First(d.Root); el != nil {
		return el, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrSelectorNotFound, selector)
}

// QueryAll returns all elements matching selector in document order.
func (d *Document) QueryAll(selector string) ([]*Element, error) {
	sel, err := CompileSelector(selector)
	if err != nil {
		return nil, err
	}
	return sel.All(d.Root), nil
}

// Size returns the intrinsic width and height of the document in user
// units. width and height on the root win; a missing dimension falls back
// to the root viewBox.
func (d *Document) Size() (w, h float64, err error) {
	root := d.Root
	var vb ViewBox
	hasVB := false
	if s, ok := root.Attr("viewBox"); ok {
		if vb, err = ParseViewBox(s); err != nil {
			return 0, 0, err
		}
		hasVB = true
	}

	dim := func(name string, fromVB float64) (float64, error) {
		s, ok := root.Attr(name)
		if !ok || strings.TrimSpace(s) == "" || strings.TrimSpace(s) == "auto" {
			if hasVB {
				return fromVB, nil
			}
			return 0, fmt.Errorf("%w: missing %s", ErrNoSize, name)
		}
		l, err := ParseLength(s)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", name, err)
		}
		return l.Pixels()
	}

	if w, err = dim("width", vb.Width); err != nil {
		return 0, 0, err
	}
	if h, err = dim("height", vb.Height); err != nil {
		return 0, 0, err
	}
	return w, h, nil
}

// Encode writes the document as XML. Hidden elements are written with
// display="none" so that external renderers honor isolation.
func (d *Document) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(xml.Header); err != nil {
		return err
	}
	d.encodeElement(bw, d.Root, "")
	return bw.Flush()
}

// String returns the encoded document.
func (d *Document) String() string {
	var b strings.Builder
	_ = d.Encode(&b)
	return b.String()
}

func (d *Document) encodeElement(w *bufio.Writer, e *Element, parentSpace string) {
	name := e.Name
	if e.Space != "" && e.Space != parentSpace && e.Space != NamespaceSVG {
		if p, ok := d.prefixes[e.Space]; ok && p != "" {
			name = p + ":" + e.Name
		}
	}

	w.WriteByte('<')
	w.WriteString(name)
	wroteDisplay := false
	for _, a := range e.Attrs {
		v := a.Value
		if e.hidden && a.Name == "display" {
			v = "none"
			wroteDisplay = true
		}
		writeAttr(w, a.Name, v)
	}
	if e.hidden && !wroteDisplay {
		writeAttr(w, "display", "none")
	}

	if len(e.Children) == 0 && e.Text == "" {
		w.WriteString("/>")
	} else {
		w.WriteByte('>')
		_ = xml.EscapeText(w, []byte(e.Text))
		for _, c := range e.Children {
			d.encodeElement(w, c, e.Space)
			_ = xml.EscapeText(w, []byte(c.Tail))
		}
		w.WriteString("</")
		w.WriteString(name)
		w.WriteByte('>')
	}
}

func writeAttr(w *bufio.Writer, name, value string) {
	w.WriteByte(' ')
	w.WriteString(name)
	w.WriteString(`="`)
	_ = xml.EscapeText(w, []byte(value))
	w.WriteByte('"')
}
