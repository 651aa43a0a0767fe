package geom

import "fmt"

// ParsePathData parses the SVG path data grammar (the d attribute). On a
// syntax error it returns the path built up to the last complete command
// together with an error wrapping ErrPathData, so callers can render the
// valid prefix as SVG viewers do.
func ParsePathData(d string) (*Path, error) {
	p := NewPath()
	sc := &scanner{s: d}

	var (
		cmd      byte
		lastCtrl Point // reflected by S/s and T/t
		lastCmd  byte
	)

	fail := func(format string, args ...any) (*Path, error) {
		return p, fmt.Errorf("%w at offset %d: %s", ErrPathData, sc.pos, fmt.Sprintf(format, args...))
	}

	sc.skipSpace()
	if sc.eof() {
		return p, nil
	}
	if c := sc.peek(); c != 'M' && c != 'm' {
		return fail("path must start with moveto, got %q", c)
	}

	for {
		sc.skipSpace()
		if sc.eof() {
			return p, nil
		}
		c := sc.peek()
		switch {
		case isCommand(c):
			cmd = c
			sc.pos++
			sc.skipSpace()
		case sc.atNumber() && cmd != 0 && cmd != 'Z' && cmd != 'z':
			// Implicit repetition of the previous command.
		default:
			return fail("unexpected %q", c)
		}

		cur := p.CurrentPoint()
		rel := cmd >= 'a'
		abs := func(x, y float64) (float64, float64) {
			if rel {
				return cur.X + x, cur.Y + y
			}
			return x, y
		}
		nums := func(n int) ([]float64, bool) {
			out := make([]float64, n)
			for i := range out {
				if i > 0 {
					sc.skipSep()
				}
				v, ok := sc.number()
				if !ok {
					return nil, false
				}
				out[i] = v
			}
			return out, true
		}

		switch cmd {
		case 'M', 'm':
			v, ok := nums(2)
			if !ok {
				return fail("moveto needs 2 numbers")
			}
			x, y := abs(v[0], v[1])
			p.MoveTo(x, y)
			// Further pairs are implicit lineto commands.
			if rel {
				cmd = 'l'
			} else {
				cmd = 'L'
			}
			lastCmd = 'M'
			sc.skipSep()
			continue
		case 'L', 'l':
			v, ok := nums(2)
			if !ok {
				return fail("lineto needs 2 numbers")
			}
			p.LineTo(abs(v[0], v[1]))
		case 'H', 'h':
			v, ok := nums(1)
			if !ok {
				return fail("horizontal lineto needs 1 number")
			}
			x := v[0]
			if rel {
				x += cur.X
			}
			p.LineTo(x, cur.Y)
		case 'V', 'v':
			v, ok := nums(1)
			if !ok {
				return fail("vertical lineto needs 1 number")
			}
			y := v[0]
			if rel {
				y += cur.Y
			}
			p.LineTo(cur.X, y)
		case 'C', 'c':
			v, ok := nums(6)
			if !ok {
				return fail("curveto needs 6 numbers")
			}
			x1, y1 := abs(v[0], v[1])
			x2, y2 := abs(v[2], v[3])
			x, y := abs(v[4], v[5])
			p.CubicTo(x1, y1, x2, y2, x, y)
			lastCtrl = Pt(x2, y2)
		case 'S', 's':
			v, ok := nums(4)
			if !ok {
				return fail("smooth curveto needs 4 numbers")
			}
			x1, y1 := cur.X, cur.Y
			if lastCmd == 'C' || lastCmd == 'S' {
				x1, y1 = 2*cur.X-lastCtrl.X, 2*cur.Y-lastCtrl.Y
			}
			x2, y2 := abs(v[0], v[1])
			x, y := abs(v[2], v[3])
			p.CubicTo(x1, y1, x2, y2, x, y)
			lastCtrl = Pt(x2, y2)
		case 'Q', 'q':
			v, ok := nums(4)
			if !ok {
				return fail("quadratic curveto needs 4 numbers")
			}
			x1, y1 := abs(v[0], v[1])
			x, y := abs(v[2], v[3])
			p.QuadTo(x1, y1, x, y)
			lastCtrl = Pt(x1, y1)
		case 'T', 't':
			v, ok := nums(2)
			if !ok {
				return fail("smooth quadratic curveto needs 2 numbers")
			}
			x1, y1 := cur.X, cur.Y
			if lastCmd == 'Q' || lastCmd == 'T' {
				x1, y1 = 2*cur.X-lastCtrl.X, 2*cur.Y-lastCtrl.Y
			}
			x, y := abs(v[0], v[1])
			p.QuadTo(x1, y1, x, y)
			lastCtrl = Pt(x1, y1)
		case 'A', 'a':
			r, ok := nums(3)
			if !ok {
				return fail("arc needs radii and rotation")
			}
			sc.skipSep()
			large, ok := sc.flag()
			if !ok {
				return fail("arc large-arc flag must be 0 or 1")
			}
			sc.skipSep()
			sweep, ok := sc.flag()
			if !ok {
				return fail("arc sweep flag must be 0 or 1")
			}
			sc.skipSep()
			v, ok := nums(2)
			if !ok {
				return fail("arc needs an end point")
			}
			x, y := abs(v[0], v[1])
			p.ArcTo(r[0], r[1], r[2], large, sweep, x, y)
		case 'Z', 'z':
			p.Close()
		}
		lastCmd = upper(cmd)
		sc.skipSep()
	}
}

func isCommand(c byte) bool {
	switch upper(c) {
	case 'M', 'L', 'H', 'V', 'C', 'S', 'Q', 'T', 'A', 'Z':
		return true
	}
	return false
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}
