// Package formatter renders classification reports in the supported
// output formats (csv, json, markdown, terminal) and writes the CSV
// artifacts of a collection run.
package formatter

import (
	"fmt"

	"github.com/lahanevaibhav/Prod-Monitoring/internal/analysis"
	"github.com/lahanevaibhav/Prod-Monitoring/internal/classifier"
	"github.com/lahanevaibhav/Prod-Monitoring/internal/metricsource"
)

// Report is the per-pairing classification result handed to formatters.
type Report struct {
	Service string `json:"service,omitempty"`
	Region  string `json:"region,omitempty"`
	Window  string `json:"window,omitempty"`

	TotalEvents int                 `json:"total_events"`
	Records     []classifier.Record `json:"records"`

	Metrics  *metricsource.Summary `json:"metrics,omitempty"`
	Analysis *analysis.Result      `json:"analysis,omitempty"`
}

// UniquePatterns returns the number of distinct signatures.
func (r *Report) UniquePatterns() int {
	return len(r.Records)
}

// Formatter defines the interface for output formatting
type Formatter interface {
	Format(report *Report) ([]byte, error)
}

// New returns the formatter for a format name.
func New(format string, color bool) (Formatter, error) {
	switch format {
	case "csv":
		return NewCSV(), nil
	case "json":
		return NewJSON(), nil
	case "markdown", "md":
		return NewMarkdown(), nil
	case "terminal", "text", "":
		return NewTerminal(color), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}
