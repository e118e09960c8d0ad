// Package output renders estimates for people and machines.
// This package never computes cost; it only lays out an Estimate.
package output

import (
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"lakehouse-cost/core/types"
	"lakehouse-cost/internal/errors"
	"lakehouse-cost/internal/metrics"
)

// Format represents output format type
type Format string

const (
	// FormatTable is a human-readable CLI table
	FormatTable Format = "table"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"

	// FormatXLSX is a spreadsheet workbook
	FormatXLSX Format = "xlsx"
)

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render produces output for the given report
	Render(w io.Writer, report *Report) error
}

// Report pairs an estimate with the configuration that produced it
type Report struct {
	// Estimate is the priced result
	Estimate *types.Estimate `json:"estimate"`

	// Workload is the raw configuration, used by audit sheets
	Workload *types.Workload `json:"workload,omitempty"`

	// Metadata contains execution context
	Metadata Metadata `json:"metadata"`
}

// Metadata contains execution context
type Metadata struct {
	// Timestamp is when the report was produced
	Timestamp string `json:"timestamp"`

	// Version is the tool version
	Version string `json:"version,omitempty"`

	// Source is where the estimate was requested from (cli, api)
	Source string `json:"source,omitempty"`

	// SessionID is set for reports produced by the server
	SessionID string `json:"session_id,omitempty"`
}

// NewReport builds a report stamped with the current time
func NewReport(est *types.Estimate, w *types.Workload, source, version string) *Report {
	return &Report{
		Estimate: est,
		Workload: w,
		Metadata: Metadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   version,
			Source:    source,
		},
	}
}

func (r *Report) validate() error {
	if r == nil || r.Estimate == nil {
		return errors.Export("render report", errors.Input("report has no estimate"))
	}
	return nil
}

// ParseFormat resolves a format name, case-insensitively
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatXLSX:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", errors.Inputf("unknown output format %q (want table, json or xlsx)", s)
	}
}

// Registry manages formatter registration
type Registry struct {
	mu         sync.RWMutex
	formatters map[Format]Formatter
}

// NewRegistry returns a registry holding the built-in formatters
func NewRegistry(showDetails bool) *Registry {
	r := &Registry{formatters: make(map[Format]Formatter)}
	_ = r.Register(&TableFormatter{ShowDetails: showDetails})
	_ = r.Register(&JSONFormatter{Indent: true})
	_ = r.Register(&XLSXFormatter{})
	return r
}

// Register adds a formatter to the registry
func (r *Registry) Register(f Formatter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.formatters[f.Format()]; exists {
		return errors.Newf(errors.TypeInternal, "formatter already registered: %s", f.Format())
	}
	r.formatters[f.Format()] = f
	return nil
}

// Get returns a formatter for a format type
func (r *Registry) Get(format Format) (Formatter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.formatters[format]
	return f, ok
}

// Formats returns all registered formats, sorted
func (r *Registry) Formats() []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Format, 0, len(r.formatters))
	for f := range r.formatters {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Render looks up the formatter for format and renders report with it
func (r *Registry) Render(w io.Writer, format Format, report *Report) error {
	f, ok := r.Get(format)
	if !ok {
		return errors.Inputf("no formatter registered for %q", format)
	}
	if err := f.Render(w, report); err != nil {
		return err
	}
	metrics.ExportsTotal.WithLabelValues(string(format)).Inc()
	return nil
}
