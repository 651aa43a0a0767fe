package svg

import (
	"fmt"
	"strconv"
	"strings"
)

// Unit is a CSS length unit.
type Unit int

// Supported units.
const (
	UnitNone Unit = iota
	UnitPx
	UnitPt
	UnitPc
	UnitMm
	UnitCm
	UnitIn
	UnitEm
	UnitEx
	UnitPercent
)

// Absolute unit sizes in CSS pixels (96 per inch). em and ex assume the
// initial 16px font size.
var unitPixels = map[Unit]float64{
	UnitNone: 1,
	UnitPx:   1,
	UnitPt:   96.0 / 72,
	UnitPc:   16,
	UnitMm:   96 / 25.4,
	UnitCm:   96 / 2.54,
	UnitIn:   96,
	UnitEm:   16,
	UnitEx:   8,
}

var unitSuffixes = []struct {
	suffix string
	unit   Unit
}{
	{"px", UnitPx}, {"pt", UnitPt}, {"pc", UnitPc}, {"mm", UnitMm},
	{"cm", UnitCm}, {"in", UnitIn}, {"em", UnitEm}, {"ex", UnitEx},
	{"%", UnitPercent},
}

// Length is a number with a unit.
type Length struct {
	Value float64
	Unit  Unit
}

// ParseLength parses an SVG length such as "12", "4.5mm" or "50%".
func ParseLength(s string) (Length, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Length{}, fmt.Errorf("%w: empty", ErrInvalidLength)
	}
	l := Length{Unit: UnitNone}
	num := s
	lower := strings.ToLower(s)
	for _, u := range unitSuffixes {
		if strings.HasSuffix(lower, u.suffix) {
			num = strings.TrimSpace(s[:len(s)-len(u.suffix)])
			l.Unit = u.unit
			break
		}
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, fmt.Errorf("%w: %q", ErrInvalidLength, s)
	}
	l.Value = v
	return l, nil
}

// Pixels converts the length to user units. Percentages cannot be resolved
// without a reference and return ErrRelativeLength.
func (l Length) Pixels() (float64, error) {
	if l.Unit == UnitPercent {
		return 0, fmt.Errorf("%w: %g%%", ErrRelativeLength, l.Value)
	}
	return l.Value * unitPixels[l.Unit], nil
}

// Resolve converts the length to user units, resolving percentages against
// ref.
func (l Length) Resolve(ref float64) float64 {
	if l.Unit == UnitPercent {
		return l.Value / 100 * ref
	}
	return l.Value * unitPixels[l.Unit]
}

// ViewBox is the value of a viewBox attribute.
type ViewBox struct {
	MinX, MinY, Width, Height float64
}

// ParseViewBox parses "min-x min-y width height" (comma or space separated).
func ParseViewBox(s string) (ViewBox, error) {
	f := SplitList(s)
	if len(f) != 4 {
		return ViewBox{}, fmt.Errorf("svg: invalid viewBox %q", s)
	}
	var v [4]float64
	for i, x := range f {
		n, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return ViewBox{}, fmt.Errorf("svg: invalid viewBox %q", s)
		}
		v[i] = n
	}
	if v[2] < 0 || v[3] < 0 {
		return ViewBox{}, fmt.Errorf("svg: negative viewBox size %q", s)
	}
	return ViewBox{MinX: v[0], MinY: v[1], Width: v[2], Height: v[3]}, nil
}

// SplitList splits a comma and/or whitespace separated list.
func SplitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}
