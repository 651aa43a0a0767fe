package fixture

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned for report formats other than json, yaml and
// msgpack.
var ErrUnknownFormat = errors.New("fixture: unknown report format")

// Format is a report encoding.
type Format string

// Report formats.
const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatMsgpack Format = "msgpack"
)

// ParseFormat parses a format name, case-insensitively. "yml" is accepted
// for yaml.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "msgpack":
		return FormatMsgpack, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Report is the outcome of one run.
type Report struct {
	RunID    string        `json:"run_id" yaml:"run_id" msgpack:"run_id"`
	Started  time.Time     `json:"started" yaml:"started" msgpack:"started"`
	Duration time.Duration `json:"duration" yaml:"duration" msgpack:"duration"`
	Passed   int           `json:"passed" yaml:"passed" msgpack:"passed"`
	Failed   int           `json:"failed" yaml:"failed" msgpack:"failed"`
	Suites   []SuiteReport `json:"suites" yaml:"suites" msgpack:"suites"`
}

// SuiteReport holds the results of one suite.
type SuiteReport struct {
	Name    string   `json:"name" yaml:"name" msgpack:"name"`
	Path    string   `json:"path,omitempty" yaml:"path,omitempty" msgpack:"path,omitempty"`
	Results []Result `json:"results" yaml:"results" msgpack:"results"`
}

// Result is the outcome of one test, or a suite-level failure such as
// "should load" or "should have tests".
type Result struct {
	Name      string        `json:"name" yaml:"name" msgpack:"name"`
	Shapes    []string      `json:"shapes,omitempty" yaml:"shapes,omitempty" msgpack:"shapes,omitempty"`
	Assertion string        `json:"assertion,omitempty" yaml:"assertion,omitempty" msgpack:"assertion,omitempty"`
	Passed    bool          `json:"passed" yaml:"passed" msgpack:"passed"`
	Distance  *float64      `json:"distance,omitempty" yaml:"distance,omitempty" msgpack:"distance,omitempty"`
	Tolerance float64       `json:"tolerance,omitempty" yaml:"tolerance,omitempty" msgpack:"tolerance,omitempty"`
	Message   string        `json:"message,omitempty" yaml:"message,omitempty" msgpack:"message,omitempty"`
	Elapsed   time.Duration `json:"elapsed,omitempty" yaml:"elapsed,omitempty" msgpack:"elapsed,omitempty"`
}

// OK reports whether every test passed.
func (r *Report) OK() bool {
	return r.Failed == 0
}

// Failures returns the failed results prefixed with their suite names.
func (r *Report) Failures() []string {
	var out []string
	for _, s := range r.Suites {
		for _, res := range s.Results {
			if !res.Passed {
				out = append(out, fmt.Sprintf("%s: %s: %s", s.Name, res.Name, res.Message))
			}
		}
	}
	return out
}

// Write encodes the report to w in the given format.
func (r *Report) Write(w io.Writer, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case FormatMsgpack:
		return msgpack.NewEncoder(w).Encode(r)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// ReadReport decodes a report written by Write.
func ReadReport(rd io.Reader, f Format) (*Report, error) {
	var r Report
	var err error
	switch f {
	case FormatJSON:
		err = json.NewDecoder(rd).Decode(&r)
	case FormatYAML:
		err = yaml.NewDecoder(rd).Decode(&r)
	case FormatMsgpack:
		err = msgpack.NewDecoder(rd).Decode(&r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	if err != nil {
		return nil, fmt.Errorf("fixture: decode %s report: %w", f, err)
	}
	return &r, nil
}
