package fixture

import (
	"fmt"
	"math"
	"strconv"
)

// Kind identifies the assertion of a test.
type Kind int

// Assertion kinds.
const (
	KindEqual Kind = iota + 1
	KindAtLeast
	KindAtMost
	KindBetween
	KindTouching
	KindSeparate
)

var kindNames = map[Kind]string{
	KindEqual:    "equal",
	KindAtLeast:  "at_least",
	KindAtMost:   "at_most",
	KindBetween:  "between",
	KindTouching: "touching",
	KindSeparate: "separate",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Test measures the distance between two shapes and checks it. Exactly one
// of the assertion fields is set.
type Test struct {
	Name string `yaml:"name"`

	// Shapes holds the two selectors to measure between.
	Shapes []string `yaml:"shapes"`

	Equal    *float64  `yaml:"equal,omitempty"`
	AtLeast  *float64  `yaml:"at_least,omitempty"`
	AtMost   *float64  `yaml:"at_most,omitempty"`
	Between  []float64 `yaml:"between,omitempty"`
	Touching bool      `yaml:"touching,omitempty"`
	Separate bool      `yaml:"separate,omitempty"`

	// Tolerance overrides the suite tolerance for this test.
	Tolerance *float64 `yaml:"tolerance,omitempty"`
}

// Kind returns the test's assertion kind, or 0 when it has none or more
// than one.
func (t *Test) Kind() Kind {
	var kinds []Kind
	if t.Equal != nil {
		kinds = append(kinds, KindEqual)
	}
	if t.AtLeast != nil {
		kinds = append(kinds, KindAtLeast)
	}
	if t.AtMost != nil {
		kinds = append(kinds, KindAtMost)
	}
	if t.Between != nil {
		kinds = append(kinds, KindBetween)
	}
	if t.Touching {
		kinds = append(kinds, KindTouching)
	}
	if t.Separate {
		kinds = append(kinds, KindSeparate)
	}
	if len(kinds) != 1 {
		return 0
	}
	return kinds[0]
}

// Validate checks that the test has two selectors and one well-formed
// assertion.
func (t *Test) Validate() error {
	if len(t.Shapes) != 2 || t.Shapes[0] == "" || t.Shapes[1] == "" {
		return fmt.Errorf("%w: shapes needs two selectors, got %q", ErrInvalidTest, t.Shapes)
	}
	if t.Tolerance != nil && !(*t.Tolerance >= 0) {
		return fmt.Errorf("%w: tolerance %v", ErrInvalidTest, *t.Tolerance)
	}
	switch t.Kind() {
	case 0:
		return fmt.Errorf("%w: need exactly one of equal, at_least, at_most, between, touching, separate", ErrInvalidTest)
	case KindBetween:
		if len(t.Between) != 2 || t.Between[0] > t.Between[1] {
			return fmt.Errorf("%w: between needs [min, max], got %v", ErrInvalidTest, t.Between)
		}
	}
	return nil
}

// Check reports whether distance d satisfies the assertion with slack tol,
// and describes the expectation.
//
// Measured distances are only accurate to within the tolerance, so every
// bound is widened by tol. touching holds for d <= tol and separate for
// d > tol.
func (t *Test) Check(d, tol float64) (bool, string) {
	switch t.Kind() {
	case KindEqual:
		return math.Abs(d-*t.Equal) <= tol, fmt.Sprintf("equal %g ± %.3g", *t.Equal, tol)
	case KindAtLeast:
		return d >= *t.AtLeast-tol, fmt.Sprintf("at least %g - %.3g", *t.AtLeast, tol)
	case KindAtMost:
		return d <= *t.AtMost+tol, fmt.Sprintf("at most %g + %.3g", *t.AtMost, tol)
	case KindBetween:
		lo, hi := t.Between[0], t.Between[1]
		return d >= lo-tol && d <= hi+tol, fmt.Sprintf("between %g and %g ± %.3g", lo, hi, tol)
	case KindTouching:
		return d <= tol, fmt.Sprintf("touching (<= %.3g)", tol)
	case KindSeparate:
		return d > tol, fmt.Sprintf("separate (> %.3g)", tol)
	}
	return false, "no assertion"
}
