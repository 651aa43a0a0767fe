package svg

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const selectorDoc = `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="10" height="10">
  <g id="a" class="staff top">
    <rect id="r1" data-n="1"/>
    <rect id="r2" data-n="2" class="hl"/>
    <circle id="c1" data-kind="note-head"/>
    <use id="u1" xlink:href="#r1"/>
  </g>
  <g id="b" class="staff">
    <rect id="r3"/>
    <g xml:id="deep"><rect id="r4"/></g>
  </g>
</svg>`

func TestSelectorMatch(t *testing.T) {
	doc := mustParse(t, selectorDoc)

	tests := []struct {
		sel  string
		want []string
	}{
		{"rect", []string{"r1", "r2", "r3", "r4"}},
		{"#r2", []string{"r2"}},
		{"#deep", []string{"deep"}},
		{".staff", []string{"a", "b"}},
		{"g.staff.top", []string{"a"}},
		{"rect.hl", []string{"r2"}},
		{"[data-n]", []string{"r1", "r2"}},
		{"[data-n='2']", []string{"r2"}},
		{`[data-n="2"]`, []string{"r2"}},
		{"[data-kind^=note]", []string{"c1"}},
		{"[data-kind$=head]", []string{"c1"}},
		{"[data-kind*=e-h]", []string{"c1"}},
		{"[data-kind|=note]", []string{"c1"}},
		{"[class~=top]", []string{"a"}},
		{"[xlink:href='#r1']", []string{"u1"}},
		{"[xlink|href='#r1']", []string{"u1"}},
		{"#b rect", []string{"r3", "r4"}},
		{"#b > rect", []string{"r3"}},
		{"#r1 + rect", []string{"r2"}},
		{"#r1 ~ *", []string{"r2", "c1", "u1"}},
		{"g > rect:first-child", []string{"r1", "r3", "r4"}},
		{"#a > :last-child", []string{"u1"}},
		{"rect:only-child", []string{"r4"}},
		{"#a > :nth-child(2n+1)", []string{"r1", "c1"}},
		{"#a > :nth-child(even)", []string{"r2", "u1"}},
		{"#a > :nth-child(3)", []string{"c1"}},
		{"#a > :nth-child(-n+2)", []string{"r1", "r2"}},
		{"rect:not(.hl)", []string{"r1", "r3", "r4"}},
		{"svg:root > g", []string{"a", "b"}},
		{"circle, #r3", []string{"c1", "r3"}},
		{"ellipse", nil},
	}
	for _, tt := range tests {
		t.Run(tt.sel, func(t *testing.T) {
			els, err := doc.QueryAll(tt.sel)
			if err != nil {
				t.Fatalf("QueryAll: %v", err)
			}
			var got []string
			for _, e := range els {
				got = append(got, e.ID())
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("QueryAll(%q) mismatch (-want +got):\n%s", tt.sel, diff)
			}
		})
	}
}

func TestSelectorFirstMatch(t *testing.T) {
	doc := mustParse(t, selectorDoc)
	el, err := doc.Query("rect")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if el.ID() != "r1" {
		t.Errorf("Query(rect) = %q, want r1", el.ID())
	}

	if _, err := doc.Query("polygon"); !errors.Is(err, ErrSelectorNotFound) {
		t.Errorf("Query(polygon) error = %v, want ErrSelectorNotFound", err)
	}
}

func TestSelectorSyntaxErrors(t *testing.T) {
	bad := []string{
		"",
		"#",
		"rect[",
		"rect[x",
		"rect[x=]",
		"rect[x='1'",
		"rect[x!=1]",
		"rect:hover",
		"rect:nth-child(x)",
		":not(rect",
		"rect,",
		"a >",
		"rect)",
	}
	for _, s := range bad {
		if _, err := CompileSelector(s); !errors.Is(err, ErrInvalidSelector) {
			t.Errorf("CompileSelector(%q) error = %v, want ErrInvalidSelector", s, err)
		}
	}
}

func TestSelectorCache(t *testing.T) {
	a := MustCompileSelector("g > rect.cached")
	b := MustCompileSelector("g > rect.cached")
	if a != b {
		t.Error("compiling the same selector twice returned different values")
	}
	if a.String() != "g > rect.cached" {
		t.Errorf("String = %q", a.String())
	}
}

func TestParseNth(t *testing.T) {
	tests := []struct {
		in   string
		a, b int
	}{
		{"odd", 2, 1},
		{"even", 2, 0},
		{"3", 0, 3},
		{"n", 1, 0},
		{"-n+3", -1, 3},
		{"2n + 1", 2, 1},
		{"+3n-2", 3, -2},
	}
	for _, tt := range tests {
		a, b, err := parseNth(tt.in)
		if err != nil || a != tt.a || b != tt.b {
			t.Errorf("parseNth(%q) = %d, %d, %v, want %d, %d", tt.in, a, b, err, tt.a, tt.b)
		}
	}
}
