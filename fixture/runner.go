package fixture

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/svgdist"
	"github.com/gogpu/svgdist/cache"
	"github.com/gogpu/svgdist/svg"
)

// Runner runs suites and collects a report.
type Runner struct {
	base     []svgdist.Option
	parallel int
	logger   *slog.Logger
	docs     *cache.Sharded[string, *svg.Document]
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithMeasureOptions sets measurer options applied before each suite's own
// options.
func WithMeasureOptions(opts ...svgdist.Option) RunnerOption {
	return func(r *Runner) {
		r.base = append(r.base, opts...)
	}
}

// WithParallel sets how many suites run at once. n < 1 means GOMAXPROCS.
func WithParallel(n int) RunnerOption {
	return func(r *Runner) {
		r.parallel = n
	}
}

// WithLogger sets the runner's logger. The default is svgdist.Logger().
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = l
	}
}

// NewRunner creates a Runner. Parsed documents are cached by absolute path
// across runs, so suites sharing a document parse it once.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		docs: cache.NewSharded[string, *svg.Document](64, cache.StringHasher),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.parallel < 1 {
		r.parallel = runtime.GOMAXPROCS(0)
	}
	if r.logger == nil {
		r.logger = svgdist.Logger()
	}
	return r
}

// Run runs the suites and returns their report. It returns an error only
// when ctx is done; test failures are recorded in the report.
func (r *Runner) Run(ctx context.Context, suites ...*Suite) (*Report, error) {
	rep := &Report{
		RunID:   uuid.New().String(),
		Started: time.Now().UTC(),
		Suites:  make([]SuiteReport, len(suites)),
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(r.parallel)
	for i, s := range suites {
		eg.Go(func() error {
			rep.Suites[i] = r.runSuite(egCtx, s)
			return egCtx.Err()
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	rep.Duration = time.Since(rep.Started)
	for _, s := range rep.Suites {
		for _, res := range s.Results {
			if res.Passed {
				rep.Passed++
			} else {
				rep.Failed++
			}
		}
	}
	r.logger.Info("fixture: run finished",
		"run_id", rep.RunID, "suites", len(suites),
		"passed", rep.Passed, "failed", rep.Failed, "elapsed", rep.Duration)
	return rep, nil
}

func (r *Runner) runSuite(ctx context.Context, s *Suite) SuiteReport {
	if s == nil {
		return SuiteReport{Results: []Result{{Name: "should load", Message: ErrInvalidSuite.Error() + ": nil suite"}}}
	}
	sr := SuiteReport{Name: s.Name, Path: s.Path}
	fail := func(name string, err error) SuiteReport {
		sr.Results = append(sr.Results, Result{Name: name, Message: err.Error()})
		return sr
	}

	if s.Err != nil {
		return fail(strings.TrimSpace("should load "+s.Path), s.Err)
	}
	// Suites built in code never went through Load.
	if err := s.Validate(); err != nil {
		return fail(strings.TrimSpace("should load "+s.Path), err)
	}
	doc, err := r.document(s)
	if err != nil {
		return fail("should load "+s.Document, err)
	}
	m, err := svgdist.New(r.measureOptions(s)...)
	if err != nil {
		return fail("should configure measurer", err)
	}
	if len(s.Tests) == 0 {
		return fail("should have tests", fmt.Errorf("%w: suite %q has no tests", ErrInvalidSuite, s.Name))
	}

	for i := range s.Tests {
		t := &s.Tests[i]
		if ctx.Err() != nil {
			break
		}
		sr.Results = append(sr.Results, r.runTest(ctx, m, doc, s, t))
	}
	return sr
}

func (r *Runner) runTest(ctx context.Context, m *svgdist.Measurer, doc *svg.Document, s *Suite, t *Test) Result {
	res := Result{Name: t.Name, Shapes: t.Shapes, Assertion: t.Kind().String()}
	if res.Name == "" {
		res.Name = t.Shapes[0] + " " + t.Kind().String() + " " + t.Shapes[1]
	}

	start := time.Now()
	mr, err := m.Measure(ctx, doc, t.Shapes[0], t.Shapes[1])
	res.Elapsed = time.Since(start)
	if err != nil {
		res.Message = err.Error()
		r.logger.Debug("fixture: test errored", "suite", s.Name, "test", res.Name, "err", err)
		return res
	}

	tol := mr.Tolerance
	if s.Options.Tolerance > 0 {
		tol = s.Options.Tolerance
	}
	if t.Tolerance != nil {
		tol = *t.Tolerance
	}
	d := mr.Distance
	res.Distance = &d
	res.Tolerance = tol

	ok, want := t.Check(d, tol)
	res.Passed = ok
	if !ok {
		res.Message = fmt.Sprintf("distance %.4g, want %s", d, want)
	}
	r.logger.Debug("fixture: test finished",
		"suite", s.Name, "test", res.Name, "distance", d, "passed", ok)
	return res
}

func (r *Runner) document(s *Suite) (*svg.Document, error) {
	if s.SVG != "" {
		doc, err := svg.ParseString(s.SVG)
		if err != nil {
			return nil, err
		}
		doc.Name = s.Path
		return doc, nil
	}
	path, err := filepath.Abs(s.Document)
	if err != nil {
		return nil, err
	}
	return r.docs.GetOrLoad(path, func() (*svg.Document, error) {
		return svg.ParseFile(s.Document)
	})
}

func (r *Runner) measureOptions(s *Suite) []svgdist.Option {
	opts := append([]svgdist.Option(nil), r.base...)
	if s.Options.Backend != "" {
		opts = append(opts, svgdist.WithBackend(s.Options.Backend))
	}
	if s.Options.Scale > 0 {
		opts = append(opts, svgdist.WithScale(s.Options.Scale))
	}
	if s.Options.Sequential {
		opts = append(opts, svgdist.WithSequential())
	}
	return opts
}
