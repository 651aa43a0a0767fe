package field

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/gogpu/svgdist/mask"
)

func gridOf(w, h int, cells ...[2]int) *mask.Grid {
	g := mask.NewGrid(w, h)
	for _, c := range cells {
		g.Set(c[0], c[1], true)
	}
	return g
}

// bar marks a 1x3 vertical bar with its top cell at (x, y).
func bar(g *mask.Grid, x, y int) *mask.Grid {
	for i := 0; i < 3; i++ {
		g.Set(x, y+i, true)
	}
	return g
}

func bruteForce(g *mask.Grid) []float64 {
	w, h := g.Width(), g.Height()
	out := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			best := math.Inf(1)
			g.Each(func(ox, oy int) bool {
				best = min(best, math.Hypot(float64(x-ox), float64(y-oy)))
				return true
			})
			out[y*w+x] = best
		}
	}
	return out
}

func TestBuildSinglePoint(t *testing.T) {
	f := Build(gridOf(5, 5, [2]int{2, 2}))
	tests := []struct {
		x, y int
		want float64
	}{
		{2, 2, 0},
		{3, 2, 1},
		{2, 0, 2},
		{0, 0, math.Sqrt(8)},
		{4, 3, math.Sqrt(5)},
	}
	for _, tt := range tests {
		if got := f.At(tt.x, tt.y); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("At(%d, %d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
	if got := f.At(-1, 0); !math.IsInf(got, 1) {
		t.Errorf("At(-1, 0) = %v, want +Inf", got)
	}
}

func TestBuildMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	sizes := [][2]int{{1, 1}, {1, 9}, {9, 1}, {7, 5}, {16, 16}, {31, 12}}
	for _, sz := range sizes {
		for _, density := range []float64{0.01, 0.1, 0.5} {
			g := mask.NewGrid(sz[0], sz[1])
			for y := 0; y < sz[1]; y++ {
				for x := 0; x < sz[0]; x++ {
					if rng.Float64() < density {
						g.Set(x, y, true)
					}
				}
			}
			want := bruteForce(g)
			f := Build(g)
			for i, w := range want {
				x, y := i%sz[0], i/sz[0]
				got := f.At(x, y)
				if math.IsInf(w, 1) {
					if !math.IsInf(got, 1) {
						t.Fatalf("%dx%d@%v: At(%d, %d) = %v, want +Inf", sz[0], sz[1], density, x, y, got)
					}
					continue
				}
				if math.Abs(got-w) > 1e-9 {
					t.Fatalf("%dx%d@%v: At(%d, %d) = %v, want %v", sz[0], sz[1], density, x, y, got, w)
				}
			}
		}
	}
}

func TestBuildDegenerate(t *testing.T) {
	f := Build(mask.NewGrid(4, 3))
	if f.Width() != 4 || f.Height() != 3 {
		t.Fatalf("size = %dx%d, want 4x3", f.Width(), f.Height())
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			if got := f.At(x, y); !math.IsInf(got, 1) {
				t.Errorf("empty grid At(%d, %d) = %v, want +Inf", x, y, got)
			}
		}
	}

	z := Build(mask.NewGrid(0, 0))
	if z.Width() != 0 || z.Height() != 0 {
		t.Errorf("0x0 grid built %dx%d field", z.Width(), z.Height())
	}
}

func TestMinOver(t *testing.T) {
	rect1 := func() *mask.Grid { return bar(mask.NewGrid(10, 10), 2, 0) }
	rect2 := bar(mask.NewGrid(10, 10), 5, 0)
	rect3 := bar(mask.NewGrid(10, 10), 5, 4)

	tests := []struct {
		name  string
		other *mask.Grid
		want  float64
	}{
		{"same", rect1(), 0},
		{"horizontal", rect2, 3},
		{"diagonal", rect3, math.Sqrt(13)},
	}
	f := Build(rect1())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.MinOver(tt.other)
			if err != nil {
				t.Fatalf("MinOver() error = %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("MinOver() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMinOverSymmetric(t *testing.T) {
	a := gridOf(20, 20, [2]int{1, 1}, [2]int{3, 15}, [2]int{2, 7})
	b := gridOf(20, 20, [2]int{17, 4}, [2]int{12, 12})
	ab, err := Build(a).MinOver(b)
	if err != nil {
		t.Fatal(err)
	}
	ba, err := Build(b).MinOver(a)
	if err != nil {
		t.Fatal(err)
	}
	if ab != ba {
		t.Errorf("MinOver not symmetric: %v vs %v", ab, ba)
	}
}

func TestMinOverErrors(t *testing.T) {
	f := Build(gridOf(4, 4, [2]int{0, 0}))

	if _, err := f.MinOver(mask.NewGrid(4, 4)); !errors.Is(err, ErrEmptyMask) {
		t.Errorf("empty grid error = %v, want ErrEmptyMask", err)
	}
	if _, err := f.MinOver(gridOf(4, 5, [2]int{1, 1})); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("mismatched grid error = %v, want ErrSizeMismatch", err)
	}

	inf := Build(mask.NewGrid(4, 4))
	got, err := inf.MinOver(gridOf(4, 4, [2]int{2, 2}))
	if err != nil || !math.IsInf(got, 1) {
		t.Errorf("MinOver() on empty field = %v, %v; want +Inf, nil", got, err)
	}
}

func TestNearest(t *testing.T) {
	f := Build(gridOf(9, 9, [2]int{4, 4}))
	// (4,1) and (1,4) are both 3 away; row-major order picks (4,1).
	other := gridOf(9, 9, [2]int{1, 4}, [2]int{4, 1}, [2]int{8, 8})
	hit, err := f.Nearest(other)
	if err != nil {
		t.Fatal(err)
	}
	if want := (Hit{X: 4, Y: 1, Distance: 3}); hit != want {
		t.Errorf("Nearest() = %+v, want %+v", hit, want)
	}

	hit, err = f.Nearest(gridOf(9, 9, [2]int{0, 0}, [2]int{4, 4}))
	if err != nil {
		t.Fatal(err)
	}
	if hit.Distance != 0 || hit.X != 4 || hit.Y != 4 {
		t.Errorf("Nearest() overlapping = %+v, want (4,4) at 0", hit)
	}
}

func BenchmarkBuild(b *testing.B) {
	for _, size := range []int{64, 256, 1024} {
		g := mask.NewGrid(size, size)
		bar(g, size/4, size/4)
		bar(g, size-10, size-10)
		b.Run(fmt.Sprintf("%dx%d", size, size), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				_ = Build(g)
			}
		})
	}
}
