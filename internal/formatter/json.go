package formatter

import "encoding/json"

// jsonFormatter formats output as JSON
type jsonFormatter struct{}

// NewJSON creates a new JSON formatter
func NewJSON() Formatter {
	return &jsonFormatter{}
}

// jsonOutput is the machine-readable report structure.
type jsonOutput struct {
	Summary jsonSummary `json:"summary"`
	Report  *Report     `json:"report"`
}

type jsonSummary struct {
	Service        string `json:"service,omitempty"`
	Region         string `json:"region,omitempty"`
	Window         string `json:"window,omitempty"`
	TotalEvents    int    `json:"total_events"`
	UniquePatterns int    `json:"unique_patterns"`
}

func (f *jsonFormatter) Format(report *Report) ([]byte, error) {
	output := &jsonOutput{
		Summary: jsonSummary{
			Service:        report.Service,
			Region:         report.Region,
			Window:         report.Window,
			TotalEvents:    report.TotalEvents,
			UniquePatterns: report.UniquePatterns(),
		},
		Report: report,
	}
	return json.MarshalIndent(output, "", "  ")
}
