package geom

import (
	"fmt"
	"math"
	"strings"
)

// ParseTransform parses an SVG transform list such as
// "translate(10 20) rotate(45 5 5) scale(2)". Functions compose left to
// right: the rightmost applies to coordinates first.
func ParseTransform(s string) (Matrix, error) {
	m := Identity()
	sc := &scanner{s: s}
	for {
		sc.skipSep()
		if sc.eof() {
			return m, nil
		}
		start := sc.pos
		for !sc.eof() && (isAlpha(sc.peek())) {
			sc.pos++
		}
		name := sc.s[start:sc.pos]
		if name == "" {
			return Identity(), fmt.Errorf("%w: unexpected %q at offset %d", ErrTransform, sc.peek(), sc.pos)
		}
		sc.skipSpace()
		if sc.peek() != '(' {
			return Identity(), fmt.Errorf("%w: expected ( after %s", ErrTransform, name)
		}
		sc.pos++

		var args []float64
		for {
			sc.skipSep()
			if sc.peek() == ')' {
				sc.pos++
				break
			}
			v, ok := sc.number()
			if !ok {
				return Identity(), fmt.Errorf("%w: bad argument to %s at offset %d", ErrTransform, name, sc.pos)
			}
			args = append(args, v)
		}

		t, err := transformFunc(name, args)
		if err != nil {
			return Identity(), err
		}
		m = m.Mul(t)
	}
}

func transformFunc(name string, a []float64) (Matrix, error) {
	bad := func() (Matrix, error) {
		return Identity(), fmt.Errorf("%w: %s takes %s arguments, got %d", ErrTransform, name, arity[name], len(a))
	}
	switch strings.ToLower(name) {
	case "matrix":
		if len(a) != 6 {
			return bad()
		}
		return SVG(a[0], a[1], a[2], a[3], a[4], a[5]), nil
	case "translate":
		switch len(a) {
		case 1:
			return Translate(a[0], 0), nil
		case 2:
			return Translate(a[0], a[1]), nil
		}
		return bad()
	case "scale":
		switch len(a) {
		case 1:
			return Scale(a[0], a[0]), nil
		case 2:
			return Scale(a[0], a[1]), nil
		}
		return bad()
	case "rotate":
		switch len(a) {
		case 1:
			return Rotate(deg(a[0])), nil
		case 3:
			return Translate(a[1], a[2]).Mul(Rotate(deg(a[0]))).Mul(Translate(-a[1], -a[2])), nil
		}
		return bad()
	case "skewx":
		if len(a) != 1 {
			return bad()
		}
		return SkewX(deg(a[0])), nil
	case "skewy":
		if len(a) != 1 {
			return bad()
		}
		return SkewY(deg(a[0])), nil
	}
	return Identity(), fmt.Errorf("%w: unknown function %q", ErrTransform, name)
}

var arity = map[string]string{
	"matrix":    "6",
	"translate": "1 or 2",
	"scale":     "1 or 2",
	"rotate":    "1 or 3",
	"skewX":     "1",
	"skewY":     "1",
}

func deg(v float64) float64 { return v * math.Pi / 180 }

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
