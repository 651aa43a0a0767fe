package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"github.com/gogpu/svgdist"
	"github.com/gogpu/svgdist/fixture"
	"github.com/gogpu/svgdist/mask"
	"github.com/gogpu/svgdist/raster"
	"github.com/gogpu/svgdist/svg"
)

var errChecksFailed = errors.New("checks failed")

// parse parses the shared and command flags, then configures logging.
func parse(env *environment, fs *flag.FlagSet, f *flags, args []string) (Config, error) {
	fs.SetOutput(env.stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return Config{}, err
		}
		return Config{}, errUsage
	}
	cfg, err := f.resolve(fs)
	if err != nil {
		return Config{}, err
	}
	svgdist.SetLogger(NewLogger(&cfg, env.stderr))
	return cfg, nil
}

func runMeasure(ctx context.Context, env *environment, args []string) error {
	fs := flag.NewFlagSet("measure", flag.ContinueOnError)
	var f flags
	f.register(fs)
	pngMode := fs.Bool("png", false, "compare two PNG images instead of two shapes")
	verbose := fs.Bool("v", false, "print the full result")
	asJSON := fs.Bool("json", false, "print the full result as JSON")
	cfg, err := parse(env, fs, &f, args)
	if err != nil {
		return err
	}

	if *pngMode {
		if fs.NArg() != 2 {
			return errUsage
		}
		a, err := readPNG(fs.Arg(0))
		if err != nil {
			return err
		}
		b, err := readPNG(fs.Arg(1))
		if err != nil {
			return err
		}
		d, err := svgdist.DistanceBetweenImages(a, b)
		if err != nil {
			return err
		}
		fmt.Fprintln(env.stdout, formatFloat(d))
		return nil
	}

	if fs.NArg() != 3 {
		return errUsage
	}
	doc, err := svg.ParseFile(fs.Arg(0))
	if err != nil {
		return err
	}
	m, err := svgdist.New(MeasureOptions(&cfg)...)
	if err != nil {
		return err
	}
	res, err := m.Measure(ctx, doc, fs.Arg(1), fs.Arg(2))
	if err != nil {
		return err
	}

	switch {
	case *asJSON:
		enc := json.NewEncoder(env.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case *verbose:
		fmt.Fprintf(env.stdout, "distance  %s\n", formatFloat(res.Distance))
		fmt.Fprintf(env.stdout, "pixels    %s\n", formatFloat(res.Pixels))
		fmt.Fprintf(env.stdout, "scale     %s\n", formatFloat(res.Scale))
		fmt.Fprintf(env.stdout, "tolerance %.4f\n", res.Tolerance)
		fmt.Fprintf(env.stdout, "nearest   %s,%s\n", formatFloat(res.Nearest.X), formatFloat(res.Nearest.Y))
		fmt.Fprintf(env.stdout, "raster    %dx%d\n", res.Width, res.Height)
		fmt.Fprintf(env.stdout, "backend   %s\n", res.Backend)
	default:
		fmt.Fprintln(env.stdout, formatFloat(res.Distance))
	}
	return nil
}

func runCheck(ctx context.Context, env *environment, args []string) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	var f flags
	f.register(fs)
	out := fs.String("o", "-", "report file (- for stdout)")
	cfg, err := parse(env, fs, &f, args)
	if err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errUsage
	}
	format, err := fixture.ParseFormat(cfg.ReportFormat)
	if err != nil {
		return err
	}

	var suites []*fixture.Suite
	for _, path := range fs.Args() {
		loaded, err := loadSuites(path)
		if err != nil {
			return err
		}
		suites = append(suites, loaded...)
	}

	runner := fixture.NewRunner(
		fixture.WithMeasureOptions(MeasureOptions(&cfg)...),
		fixture.WithParallel(cfg.Parallel),
		fixture.WithLogger(svgdist.Logger()),
	)
	rep, err := runner.Run(ctx, suites...)
	if err != nil {
		return err
	}

	if err := writeTo(*out, env.stdout, func(w io.Writer) error {
		return rep.Write(w, format)
	}); err != nil {
		return err
	}
	for _, failure := range rep.Failures() {
		fmt.Fprintln(env.stderr, "FAIL", failure)
	}
	fmt.Fprintf(env.stderr, "%d passed, %d failed (run %s)\n", rep.Passed, rep.Failed, rep.RunID)
	if !rep.OK() {
		return errChecksFailed
	}
	return nil
}

func loadSuites(path string) ([]*fixture.Suite, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return fixture.LoadDir(path)
	}
	s, err := fixture.Load(path)
	if err != nil {
		s = &fixture.Suite{Name: path, Path: path, Err: err}
	}
	return []*fixture.Suite{s}, nil
}

func runIsolate(_ context.Context, env *environment, args []string) error {
	fs := flag.NewFlagSet("isolate", flag.ContinueOnError)
	var f flags
	f.register(fs)
	out := fs.String("o", "-", "output file (- for stdout)")
	if _, err := parse(env, fs, &f, args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errUsage
	}

	doc, err := svg.ParseFile(fs.Arg(0))
	if err != nil {
		return err
	}
	iso, _, err := svg.Isolate(doc, fs.Arg(1))
	if err != nil {
		return err
	}
	return writeTo(*out, env.stdout, iso.Encode)
}

func runRender(ctx context.Context, env *environment, args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	var f flags
	f.register(fs)
	out := fs.String("o", "-", "PNG file (- for stdout)")
	asMask := fs.Bool("mask", false, "write the occupancy mask instead of the colors")
	cfg, err := parse(env, fs, &f, args)
	if err != nil {
		return err
	}
	if fs.NArg() != 1 && fs.NArg() != 2 {
		return errUsage
	}

	doc, err := svg.ParseFile(fs.Arg(0))
	if err != nil {
		return err
	}
	if fs.NArg() == 2 {
		if doc, _, err = svg.Isolate(doc, fs.Arg(1)); err != nil {
			return err
		}
	}

	r, err := rasterizer(cfg.Backend)
	if err != nil {
		return err
	}
	buf, err := r.Rasterize(ctx, doc, cfg.Scale)
	if err != nil {
		return err
	}
	var img image.Image = buf.ToImage()
	if *asMask {
		img = mask.Extract(buf).Image()
	}
	return writeTo(*out, env.stdout, func(w io.Writer) error {
		return png.Encode(w, img)
	})
}

func runBackends(_ context.Context, env *environment, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	for i, name := range raster.Available() {
		if i == 0 {
			fmt.Fprintf(env.stdout, "%s (default)\n", name)
			continue
		}
		fmt.Fprintln(env.stdout, name)
	}
	return nil
}

func rasterizer(backend string) (raster.Rasterizer, error) {
	if backend != "" {
		return raster.Get(backend)
	}
	r, _, err := raster.Default()
	return r, err
}

func readPNG(path string) (image.Image, error) {
	f, err := os.Open(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// writeTo calls write with stdout for "-" or with the created file.
func writeTo(path string, stdout io.Writer, write func(io.Writer) error) (err error) {
	if path == "-" {
		return write(stdout)
	}
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}
