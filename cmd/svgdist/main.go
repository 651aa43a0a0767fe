// Command svgdist measures distances between shapes of SVG documents.
//
// Usage:
//
//	svgdist measure [flags] file.svg selector1 selector2
//	svgdist measure [flags] -png a.png b.png
//	svgdist check [flags] suite.yaml|dir...
//	svgdist isolate [flags] file.svg selector
//	svgdist render [flags] file.svg [selector]
//	svgdist backends
//
// Settings are read from SVGDIST_* environment variables (BACKEND, SCALE,
// SEQUENTIAL, PARALLEL, LOG_LEVEL, LOG_FORMAT, REPORT_FORMAT), optionally
// from a .env file, and overridden by flags.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

var errUsage = errors.New("usage")

type command struct {
	name    string
	usage   string
	summary string
	run     func(ctx context.Context, env *environment, args []string) error
}

var commands = []command{
	{"measure", "[flags] file.svg selector1 selector2 | -png a.png b.png", "print the distance between two shapes", runMeasure},
	{"check", "[flags] suite.yaml|dir...", "run fixture suites and write a report", runCheck},
	{"isolate", "[flags] file.svg selector", "write the document with everything but one shape hidden", runIsolate},
	{"render", "[flags] file.svg [selector]", "rasterize a document or one isolated shape to PNG", runRender},
	{"backends", "", "list raster backends", runBackends},
}

// environment carries the process streams so commands can be tested.
type environment struct {
	stdout io.Writer
	stderr io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	env := &environment{stdout: stdout, stderr: stderr}
	if len(args) == 0 || args[0] == "-h" || args[0] == "-help" || args[0] == "help" {
		printUsage(stderr)
		if len(args) == 0 {
			return exitUsage
		}
		return exitOK
	}

	for _, c := range commands {
		if c.name != args[0] {
			continue
		}
		err := c.run(ctx, env, args[1:])
		switch {
		case err == nil:
			return exitOK
		case errors.Is(err, flag.ErrHelp):
			return exitOK
		case errors.Is(err, errUsage):
			fmt.Fprintf(stderr, "usage: svgdist %s %s\n", c.name, c.usage)
			return exitUsage
		case errors.Is(err, errChecksFailed):
			return exitFailure
		default:
			fmt.Fprintf(stderr, "svgdist %s: %v\n", c.name, err)
			return exitFailure
		}
	}

	fmt.Fprintf(stderr, "svgdist: unknown command %q\n", args[0])
	printUsage(stderr)
	return exitUsage
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: svgdist <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-9s %s\n", c.name, c.summary)
	}
}
