package svg

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gogpu/svgdist/cache"
)

// Selector is a compiled CSS selector list. A Selector is immutable and safe
// for concurrent use.
//
// Supported syntax: type and universal selectors, #id (matching id or
// xml:id), .class, attribute selectors ([a], [a=v], [a~=v], [a^=v], [a$=v],
// [a*=v], [a|=v]; "xlink:href" and "xlink|href" both name the prefixed
// attribute), the pseudo-classes :root, :first-child, :last-child,
// :only-child, :nth-child(an+b) and :not(compound), the descendant, child
// (>), adjacent (+) and general sibling (~) combinators, and comma lists.
type Selector struct {
	src  string
	list []complexSelector
}

type complexSelector struct {
	compounds   []compound
	combinators []byte // combinators[i] joins compounds[i] and compounds[i+1]
}

type compound struct {
	tag     string // "" or "*" matches any element
	ids     []string
	classes []string
	attrs   []attrSelector
	pseudos []pseudoClass
}

type attrSelector struct {
	name  string
	op    string // "", "=", "~=", "^=", "$=", "*=", "|="
	value string
}

type pseudoKind int

const (
	pseudoRoot pseudoKind = iota
	pseudoFirstChild
	pseudoLastChild
	pseudoOnlyChild
	pseudoNthChild
	pseudoNot
)

type pseudoClass struct {
	kind pseudoKind
	a, b int       // :nth-child(an+b)
	not  *compound // :not(...)
}

var selectorCache = cache.NewSharded[string, *Selector](cache.DefaultCapacity, cache.StringHasher)

// CompileSelector parses a selector. Compiled selectors are cached.
func CompileSelector(s string) (*Selector, error) {
	return selectorCache.GetOrLoad(s, func() (*Selector, error) {
		return parseSelector(s)
	})
}

// MustCompileSelector is like CompileSelector but panics on error.
func MustCompileSelector(s string) *Selector {
	sel, err := CompileSelector(s)
	if err != nil {
		panic(err)
	}
	return sel
}

// String returns the source text of the selector.
func (s *Selector) String() string { return s.src }

// Match reports whether e matches any selector of the list.
func (s *Selector) Match(e *Element) bool {
	for _, c := range s.list {
		if c.matchAt(e, len(c.compounds)-1) {
			return true
		}
	}
	return false
}

// First returns the first element in document order under root (inclusive)
// matching s, or nil.
func (s *Selector) First(root *Element) *Element {
	var found *Element
	root.Walk(func(e *Element) bool {
		if found != nil {
			return false
		}
		if s.Match(e) {
			found = e
			return false
		}
		return true
	})
	return found
}

// All returns every element under root (inclusive) matching s in document
// order.
func (s *Selector) All(root *Element) []*Element {
	var out []*Element
	root.Walk(func(e *Element) bool {
		if s.Match(e) {
			out = append(out, e)
		}
		return true
	})
	return out
}

func (c complexSelector) matchAt(e *Element, i int) bool {
	if !c.compounds[i].match(e) {
		return false
	}
	if i == 0 {
		return true
	}
	switch c.combinators[i-1] {
	case '>':
		return e.parent != nil && c.matchAt(e.parent, i-1)
	case '+':
		p := e.PrevSibling()
		return p != nil && c.matchAt(p, i-1)
	case '~':
		for p := e.PrevSibling(); p != nil; p = p.PrevSibling() {
			if c.matchAt(p, i-1) {
				return true
			}
		}
		return false
	default: // descendant
		for p := e.parent; p != nil; p = p.parent {
			if c.matchAt(p, i-1) {
				return true
			}
		}
		return false
	}
}

func (c *compound) match(e *Element) bool {
	if c.tag != "" && c.tag != "*" && c.tag != e.Name {
		return false
	}
	for _, id := range c.ids {
		if e.ID() != id {
			return false
		}
	}
	for _, cl := range c.classes {
		if !e.HasClass(cl) {
			return false
		}
	}
	for _, a := range c.attrs {
		if !a.match(e) {
			return false
		}
	}
	for _, p := range c.pseudos {
		if !p.match(e) {
			return false
		}
	}
	return true
}

func (a attrSelector) match(e *Element) bool {
	v, ok := e.Attr(a.name)
	if !ok {
		return false
	}
	switch a.op {
	case "":
		return true
	case "=":
		return v == a.value
	case "~=":
		for _, f := range strings.Fields(v) {
			if f == a.value {
				return true
			}
		}
		return false
	case "^=":
		return a.value != "" && strings.HasPrefix(v, a.value)
	case "$=":
		return a.value != "" && strings.HasSuffix(v, a.value)
	case "*=":
		return a.value != "" && strings.Contains(v, a.value)
	case "|=":
		return v == a.value || strings.HasPrefix(v, a.value+"-")
	}
	return false
}

func (p pseudoClass) match(e *Element) bool {
	switch p.kind {
	case pseudoRoot:
		return e.parent == nil
	case pseudoFirstChild:
		return e.parent != nil && e.Index() == 0
	case pseudoLastChild:
		return e.parent != nil && e.Index() == len(e.parent.Children)-1
	case pseudoOnlyChild:
		return e.parent != nil && len(e.parent.Children) == 1
	case pseudoNthChild:
		if e.parent == nil {
			return false
		}
		return nthMatch(p.a, p.b, e.Index()+1)
	case pseudoNot:
		return !p.not.match(e)
	}
	return false
}

func nthMatch(a, b, i int) bool {
	if a == 0 {
		return i == b
	}
	d := i - b
	return d/a >= 0 && d%a == 0
}

// selectorParser is a recursive-descent parser over the raw selector text.
type selectorParser struct {
	s   string
	pos int
}

func parseSelector(s string) (*Selector, error) {
	p := &selectorParser{s: s}
	sel := &Selector{src: s}
	for {
		p.skipSpace()
		c, err := p.parseComplex()
		if err != nil {
			return nil, err
		}
		sel.list = append(sel.list, c)
		p.skipSpace()
		if p.eof() {
			return sel, nil
		}
		if p.peek() != ',' {
			return nil, p.errorf("unexpected %q", p.peek())
		}
		p.pos++
	}
}

func (p *selectorParser) parseComplex() (complexSelector, error) {
	var c complexSelector
	first, err := p.parseCompound()
	if err != nil {
		return c, err
	}
	c.compounds = append(c.compounds, first)
	for {
		sawSpace := p.skipSpace()
		if p.eof() || p.peek() == ',' || p.peek() == ')' {
			return c, nil
		}
		comb := byte(' ')
		switch p.peek() {
		case '>', '+', '~':
			comb = p.peek()
			p.pos++
			p.skipSpace()
		default:
			if !sawSpace {
				return c, p.errorf("unexpected %q", p.peek())
			}
		}
		next, err := p.parseCompound()
		if err != nil {
			return c, err
		}
		c.combinators = append(c.combinators, comb)
		c.compounds = append(c.compounds, next)
	}
}

func (p *selectorParser) parseCompound() (compound, error) {
	var c compound
	start := p.pos
	if !p.eof() && p.peek() == '*' {
		c.tag = "*"
		p.pos++
	} else if !p.eof() && isIdentStart(p.peekRune()) {
		tag, err := p.parseIdent(false)
		if err != nil {
			return c, err
		}
		c.tag = tag
	}

	for !p.eof() {
		switch p.peek() {
		case '#':
			p.pos++
			id, err := p.parseIdent(false)
			if err != nil {
				return c, err
			}
			c.ids = append(c.ids, id)
		case '.':
			p.pos++
			cl, err := p.parseIdent(false)
			if err != nil {
				return c, err
			}
			c.classes = append(c.classes, cl)
		case '[':
			a, err := p.parseAttr()
			if err != nil {
				return c, err
			}
			c.attrs = append(c.attrs, a)
		case ':':
			pc, err := p.parsePseudo()
			if err != nil {
				return c, err
			}
			c.pseudos = append(c.pseudos, pc)
		default:
			if p.pos == start {
				return c, p.errorf("expected selector, found %q", p.peek())
			}
			return c, nil
		}
	}
	if p.pos == start {
		return c, p.errorf("empty selector")
	}
	return c, nil
}

func (p *selectorParser) parseAttr() (attrSelector, error) {
	var a attrSelector
	p.pos++ // '['
	p.skipSpace()
	name, err := p.parseIdent(true)
	if err != nil {
		return a, err
	}
	a.name = strings.Replace(name, "|", ":", 1)
	p.skipSpace()
	if p.eof() {
		return a, p.errorf("unterminated attribute selector")
	}
	if p.peek() == ']' {
		p.pos++
		return a, nil
	}
	for _, op := range []string{"=", "~=", "^=", "$=", "*=", "|="} {
		if strings.HasPrefix(p.s[p.pos:], op) {
			a.op = op
			p.pos += len(op)
			break
		}
	}
	if a.op == "" {
		return a, p.errorf("invalid attribute operator")
	}
	p.skipSpace()
	if p.eof() {
		return a, p.errorf("missing attribute value")
	}
	if q := p.peek(); q == '"' || q == '\'' {
		a.value, err = p.parseString(q)
	} else {
		a.value, err = p.parseIdent(false)
	}
	if err != nil {
		return a, err
	}
	p.skipSpace()
	if p.eof() || p.peek() != ']' {
		return a, p.errorf("unterminated attribute selector")
	}
	p.pos++
	return a, nil
}

func (p *selectorParser) parsePseudo() (pseudoClass, error) {
	var pc pseudoClass
	p.pos++ // ':'
	name, err := p.parseIdent(false)
	if err != nil {
		return pc, err
	}
	switch strings.ToLower(name) {
	case "root":
		pc.kind = pseudoRoot
	case "first-child":
		pc.kind = pseudoFirstChild
	case "last-child":
		pc.kind = pseudoLastChild
	case "only-child":
		pc.kind = pseudoOnlyChild
	case "nth-child":
		pc.kind = pseudoNthChild
		arg, err := p.parseArgs()
		if err != nil {
			return pc, err
		}
		if pc.a, pc.b, err = parseNth(arg); err != nil {
			return pc, p.errorf("%v", err)
		}
	case "not":
		pc.kind = pseudoNot
		if p.eof() || p.peek() != '(' {
			return pc, p.errorf("expected '(' after :not")
		}
		p.pos++
		p.skipSpace()
		inner, err := p.parseCompound()
		if err != nil {
			return pc, err
		}
		p.skipSpace()
		if p.eof() || p.peek() != ')' {
			return pc, p.errorf("unterminated :not")
		}
		p.pos++
		pc.not = &inner
	default:
		return pc, p.errorf("unsupported pseudo-class :%s", name)
	}
	return pc, nil
}

func (p *selectorParser) parseArgs() (string, error) {
	if p.eof() || p.peek() != '(' {
		return "", p.errorf("expected '('")
	}
	end := strings.IndexByte(p.s[p.pos:], ')')
	if end < 0 {
		return "", p.errorf("unterminated argument list")
	}
	arg := p.s[p.pos+1 : p.pos+end]
	p.pos += end + 1
	return arg, nil
}

// parseNth parses the an+b microsyntax.
func parseNth(s string) (a, b int, err error) {
	s = strings.ToLower(strings.ReplaceAll(s, " ", ""))
	switch s {
	case "odd":
		return 2, 1, nil
	case "even":
		return 2, 0, nil
	case "":
		return 0, 0, fmt.Errorf("empty :nth-child argument")
	}
	i := strings.IndexByte(s, 'n')
	if i < 0 {
		b, err = strconv.Atoi(s)
		return 0, b, err
	}
	switch as := s[:i]; as {
	case "", "+":
		a = 1
	case "-":
		a = -1
	default:
		if a, err = strconv.Atoi(as); err != nil {
			return 0, 0, fmt.Errorf("invalid :nth-child argument %q", s)
		}
	}
	if bs := s[i+1:]; bs != "" {
		if b, err = strconv.Atoi(bs); err != nil {
			return 0, 0, fmt.Errorf("invalid :nth-child argument %q", s)
		}
	}
	return a, b, nil
}

func (p *selectorParser) parseIdent(attrName bool) (string, error) {
	var b strings.Builder
	for !p.eof() {
		r, size := utf8.DecodeRuneInString(p.s[p.pos:])
		switch {
		case r == '\\':
			p.pos++
			if p.eof() {
				return "", p.errorf("dangling escape")
			}
			r, size = utf8.DecodeRuneInString(p.s[p.pos:])
			b.WriteRune(r)
			p.pos += size
			continue
		case isIdentRune(r), attrName && (r == ':' || r == '|'):
			b.WriteRune(r)
			p.pos += size
			continue
		}
		break
	}
	if b.Len() == 0 {
		return "", p.errorf("expected identifier")
	}
	return b.String(), nil
}

func (p *selectorParser) parseString(quote byte) (string, error) {
	p.pos++
	var b strings.Builder
	for !p.eof() {
		c := p.s[p.pos]
		switch c {
		case quote:
			p.pos++
			return b.String(), nil
		case '\\':
			p.pos++
			if p.eof() {
				return "", p.errorf("dangling escape")
			}
			c = p.s[p.pos]
		}
		b.WriteByte(c)
		p.pos++
	}
	return "", p.errorf("unterminated string")
}

func (p *selectorParser) skipSpace() bool {
	start := p.pos
	for !p.eof() {
		switch p.s[p.pos] {
		case ' ', '\t', '\n', '\r', '\f':
			p.pos++
			continue
		}
		break
	}
	return p.pos > start
}

func (p *selectorParser) eof() bool  { return p.pos >= len(p.s) }
func (p *selectorParser) peek() byte { return p.s[p.pos] }
func (p *selectorParser) peekRune() rune {
	r, _ := utf8.DecodeRuneInString(p.s[p.pos:])
	return r
}

func (p *selectorParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w %q at offset %d: %s", ErrInvalidSelector, p.s, p.pos, fmt.Sprintf(format, args...))
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '-' || r == '\\' || r >= 0x80 ||
		('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
}

func isIdentRune(r rune) bool {
	return isIdentStart(r) || ('0' <= r && r <= '9')
}
