package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/gogpu/svgdist"
	"github.com/gogpu/svgdist/fixture"
	"github.com/gogpu/svgdist/raster"
)

// envPrefix prefixes every environment variable read into Config.
const envPrefix = "SVGDIST"

// Config validation errors
var (
	ErrInvalidScale        = errors.New("scale must be positive")
	ErrInvalidParallel     = errors.New("parallel must not be negative")
	ErrInvalidLogLevel     = errors.New("log_level must be debug, info, warn, or error")
	ErrInvalidLogFormat    = errors.New("log_format must be 'text' or 'json'")
	ErrInvalidReportFormat = errors.New("report_format must be json, yaml, or msgpack")
	ErrUnknownBackend      = errors.New("backend is not registered")
)

// Config holds CLI settings. Values come from defaults, then SVGDIST_*
// environment variables (optionally loaded from a .env file), then flags.
type Config struct {
	Backend      string  `envconfig:"BACKEND"`
	Scale        float64 `envconfig:"SCALE" default:"1"`
	Sequential   bool    `envconfig:"SEQUENTIAL" default:"false"`
	Parallel     int     `envconfig:"PARALLEL" default:"0"`
	LogLevel     string  `envconfig:"LOG_LEVEL" default:"warn"`
	LogFormat    string  `envconfig:"LOG_FORMAT" default:"text"`
	ReportFormat string  `envconfig:"REPORT_FORMAT" default:"json"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() Config {
	return Config{
		Scale:        1,
		LogLevel:     "warn",
		LogFormat:    "text",
		ReportFormat: "json",
	}
}

// ValidateConfig validates the configuration and returns an error if invalid
func ValidateConfig(cfg *Config) error {
	if !(cfg.Scale > 0) {
		return ErrInvalidScale
	}
	if cfg.Parallel < 0 {
		return ErrInvalidParallel
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return err
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return ErrInvalidLogFormat
	}
	if _, err := fixture.ParseFormat(cfg.ReportFormat); err != nil {
		return ErrInvalidReportFormat
	}
	if cfg.Backend != "" && !raster.IsRegistered(cfg.Backend) {
		return fmt.Errorf("%w: %q (available: %s)", ErrUnknownBackend, cfg.Backend, strings.Join(raster.Available(), ", "))
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, ErrInvalidLogLevel
}

// LoadConfig reads defaults and the environment. envFile is loaded first if
// it exists; variables already set in the environment win over it.
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return Config{}, fmt.Errorf("load %s: %w", envFile, err)
			}
		}
	}
	cfg := DefaultConfig()
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// flags binds the shared flags of every subcommand.
type flags struct {
	envFile      string
	backend      string
	scale        float64
	sequential   bool
	parallel     int
	logLevel     string
	logFormat    string
	reportFormat string
}

func (f *flags) register(fs *flag.FlagSet) {
	d := DefaultConfig()
	fs.StringVar(&f.envFile, "env", ".env", "environment file to load if present")
	fs.StringVar(&f.backend, "backend", d.Backend, "raster backend (default: best available)")
	fs.Float64Var(&f.scale, "scale", d.Scale, "raster pixels per document unit")
	fs.BoolVar(&f.sequential, "sequential", d.Sequential, "render the two shapes one after the other")
	fs.IntVar(&f.parallel, "parallel", d.Parallel, "suites run at once by check (0: GOMAXPROCS)")
	fs.StringVar(&f.logLevel, "log-level", d.LogLevel, "debug, info, warn or error")
	fs.StringVar(&f.logFormat, "log-format", d.LogFormat, "text or json")
	fs.StringVar(&f.reportFormat, "format", d.ReportFormat, "report format: json, yaml or msgpack")
}

// resolve loads the environment configuration and applies the flags that
// were set explicitly on top of it.
func (f *flags) resolve(fs *flag.FlagSet) (Config, error) {
	cfg, err := LoadConfig(f.envFile)
	if err != nil {
		return Config{}, err
	}
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "backend":
			cfg.Backend = f.backend
		case "scale":
			cfg.Scale = f.scale
		case "sequential":
			cfg.Sequential = f.sequential
		case "parallel":
			cfg.Parallel = f.parallel
		case "log-level":
			cfg.LogLevel = f.logLevel
		case "log-format":
			cfg.LogFormat = f.logFormat
		case "format":
			cfg.ReportFormat = f.reportFormat
		}
	})
	if err := ValidateConfig(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// NewLogger builds the logger described by cfg, writing to w.
func NewLogger(cfg *Config, w io.Writer) *slog.Logger {
	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// MeasureOptions converts cfg into measurer options.
func MeasureOptions(cfg *Config) []svgdist.Option {
	opts := []svgdist.Option{svgdist.WithScale(cfg.Scale)}
	if cfg.Backend != "" {
		opts = append(opts, svgdist.WithBackend(cfg.Backend))
	}
	if cfg.Sequential {
		opts = append(opts, svgdist.WithSequential())
	}
	return opts
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
