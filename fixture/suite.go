// Package fixture runs distance assertions described in YAML suites.
//
// A suite names one SVG document and lists tests, each measuring the
// distance between two shapes and checking it with exactly one assertion:
//
//	name: beams
//	document: beams.svg
//	options:
//	  backend: vector
//	  scale: 2
//	tests:
//	  - name: stems do not touch
//	    shapes: ["#stem-1", "#stem-2"]
//	    at_least: 4
//	  - name: notehead sits on the stem
//	    shapes: ["#note-1", "#stem-1"]
//	    touching: true
//
// Unknown keys are errors. Relative document paths are resolved against the
// suite file's directory.
package fixture

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidSuite is returned for suites that decode but are unusable.
	ErrInvalidSuite = errors.New("fixture: invalid suite")

	// ErrInvalidTest is returned for tests without exactly two shapes or
	// without exactly one assertion.
	ErrInvalidTest = errors.New("fixture: invalid test")
)

// Extensions lists the file extensions LoadDir picks up.
var Extensions = []string{".yaml", ".yml"}

// Suite is a set of tests against one document.
type Suite struct {
	Name string `yaml:"name"`

	// Document is the path of the SVG file. Exactly one of Document and SVG
	// is set.
	Document string `yaml:"document,omitempty"`

	// SVG holds the document inline.
	SVG string `yaml:"svg,omitempty"`

	Options Options `yaml:"options,omitempty"`
	Tests   []Test  `yaml:"tests"`

	// Path is the file the suite was loaded from.
	Path string `yaml:"-"`

	// Err records why the suite could not be loaded. The runner reports it
	// as a failed test.
	Err error `yaml:"-"`
}

// Options configure the measurer of one suite. Zero values fall back to the
// runner's defaults.
type Options struct {
	Backend    string  `yaml:"backend,omitempty"`
	Scale      float64 `yaml:"scale,omitempty"`
	Tolerance  float64 `yaml:"tolerance,omitempty"`
	Sequential bool    `yaml:"sequential,omitempty"`
}

// Load reads the suite at path. Decoding and validation errors are returned;
// the suite is nil in that case.
func Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path) //nolint:gosec // suite paths come from the caller
	if err != nil {
		return nil, err
	}
	s, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Path = path
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if s.Document != "" && !filepath.IsAbs(s.Document) {
		s.Document = filepath.Join(filepath.Dir(path), s.Document)
	}
	return s, nil
}

// Parse decodes and validates a suite.
func Parse(r io.Reader) (*Suite, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Suite
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("fixture: decode: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadDir loads every suite file in dir, sorted by file name. Files that
// fail to load are returned as suites with Err set, so a runner reports
// them instead of silently skipping them. The error is non-nil only when
// dir itself cannot be read.
func LoadDir(dir string) ([]*Suite, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		for _, want := range Extensions {
			if ext == want {
				names = append(names, e.Name())
				break
			}
		}
	}
	sort.Strings(names)

	suites := make([]*Suite, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		s, err := Load(path)
		if err != nil {
			s = &Suite{
				Name: strings.TrimSuffix(name, filepath.Ext(name)),
				Path: path,
				Err:  err,
			}
		}
		suites = append(suites, s)
	}
	return suites, nil
}

// Validate checks the suite and every test in it. A suite without tests is
// valid; the runner reports it as a failure.
func (s *Suite) Validate() error {
	switch {
	case s.Document == "" && s.SVG == "":
		return fmt.Errorf("%w: one of document and svg is required", ErrInvalidSuite)
	case s.Document != "" && s.SVG != "":
		return fmt.Errorf("%w: document and svg are mutually exclusive", ErrInvalidSuite)
	case s.Options.Scale < 0 || math.IsNaN(s.Options.Scale):
		return fmt.Errorf("%w: scale %v", ErrInvalidSuite, s.Options.Scale)
	case s.Options.Tolerance < 0 || math.IsNaN(s.Options.Tolerance):
		return fmt.Errorf("%w: tolerance %v", ErrInvalidSuite, s.Options.Tolerance)
	}
	for i := range s.Tests {
		if err := s.Tests[i].Validate(); err != nil {
			return fmt.Errorf("test %d (%s): %w", i+1, s.Tests[i].Name, err)
		}
	}
	return nil
}
