package formatter

import (
	"fmt"
	"strings"

	"github.com/lahanevaibhav/Prod-Monitoring/internal/analysis"
)

// markdownFormatter renders a report as a Markdown document
type markdownFormatter struct{}

// NewMarkdown creates a new Markdown formatter
func NewMarkdown() Formatter {
	return &markdownFormatter{}
}

func (f *markdownFormatter) Format(report *Report) ([]byte, error) {
	var b strings.Builder

	title := "Error Classification Report"
	if report.Service != "" && report.Region != "" {
		title = fmt.Sprintf("%s - %s/%s", title, report.Service, report.Region)
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	if report.Window != "" {
		fmt.Fprintf(&b, "Collection window: %s\n\n", report.Window)
	}

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- Total events: %d\n", report.TotalEvents)
	fmt.Fprintf(&b, "- Unique error patterns: %d\n\n", report.UniquePatterns())

	if len(report.Records) > 0 {
		b.WriteString("## Ranked Error Patterns\n\n")
		b.WriteString("| # | Error Signature | Count | Location |\n")
		b.WriteString("|---|-----------------|-------|----------|\n")
		for i, rec := range report.Records {
			fmt.Fprintf(&b, "| %d | %s | %d | %s |\n",
				i+1, escapeMarkdown(rec.Signature), rec.Count, escapeMarkdown(rec.Location))
		}
		b.WriteString("\n")
	}

	if report.Metrics != nil {
		m := report.Metrics
		b.WriteString("## Metrics Summary\n\n")
		fmt.Fprintf(&b, "- Performance issues: %d\n", m.PerformanceIssues)
		fmt.Fprintf(&b, "- High CPU datapoints: %d\n", m.HighCPUCount)
		fmt.Fprintf(&b, "- High memory datapoints: %d\n", m.HighMemoryCount)
		fmt.Fprintf(&b, "- Resource alerts: %d\n\n", m.ResourceAlerts)
	}

	if report.Analysis != nil {
		b.WriteString("## AI Analysis\n\n")
		switch report.Analysis.Status {
		case analysis.StatusSuccess:
			b.WriteString(report.Analysis.Analysis)
			if !strings.HasSuffix(report.Analysis.Analysis, "\n") {
				b.WriteString("\n")
			}
		default:
			fmt.Fprintf(&b, "Status: %s", report.Analysis.Status)
			if report.Analysis.Message != "" {
				fmt.Fprintf(&b, " (%s)", report.Analysis.Message)
			}
			b.WriteString("\n")
		}
	}

	return []byte(b.String()), nil
}

// escapeMarkdown keeps signatures from breaking table cells.
func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
