package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/go-termfmt"

	"github.com/lahanevaibhav/Prod-Monitoring/internal/analysis"
)

// terminalFormatter formats a report for terminal display using go-termfmt
type terminalFormatter struct {
	opts *termfmt.TerminalOptions
}

// NewTerminal creates a new terminal formatter with optional color support
func NewTerminal(color bool) Formatter {
	opts := termfmt.DefaultOptions()
	opts.Color = color
	opts.Emoji = true
	return &terminalFormatter{opts: opts}
}

func (f *terminalFormatter) Format(report *Report) ([]byte, error) {
	var b strings.Builder

	f.writeHeader(&b, report)
	f.writeStatistics(&b, report)

	if len(report.Records) > 0 {
		f.writeTopPatterns(&b, report)
	}

	if report.Analysis != nil {
		f.writeAnalysis(&b, report.Analysis)
	}

	return []byte(b.String()), nil
}

func (f *terminalFormatter) writeHeader(b *strings.Builder, report *Report) {
	title := "Error Classification"
	if report.Service != "" && report.Region != "" {
		title = fmt.Sprintf("%s - %s/%s", title, report.Service, report.Region)
	}
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func (f *terminalFormatter) writeStatistics(b *strings.Builder, report *Report) {
	symbol := termfmt.GetEmoji("statistics", f.opts)
	b.WriteString(symbol + " Statistics\n")

	items := []termfmt.TreeItem{
		{Label: "Total Events", Value: fmt.Sprintf("%d", report.TotalEvents)},
		{Label: "Unique Patterns", Value: fmt.Sprintf("%d", report.UniquePatterns())},
	}
	if report.Metrics != nil {
		items = append(items,
			termfmt.TreeItem{Label: "Performance Issues", Value: fmt.Sprintf("%d", report.Metrics.PerformanceIssues)},
			termfmt.TreeItem{Label: "Resource Alerts", Value: fmt.Sprintf("%d", report.Metrics.ResourceAlerts)},
		)
	}
	if report.Window != "" {
		items = append(items, termfmt.TreeItem{Label: "Window", Value: report.Window, Last: true})
	} else {
		items[len(items)-1].Last = true
	}

	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n\n")
}

func (f *terminalFormatter) writeTopPatterns(b *strings.Builder, report *Report) {
	symbol := termfmt.GetEmoji("error", f.opts)
	b.WriteString(symbol + " Top Error Patterns\n")

	max := 5
	if len(report.Records) < max {
		max = len(report.Records)
	}
	for i := 0; i < max; i++ {
		rec := report.Records[i]
		branch := "├─"
		if i == max-1 {
			branch = "└─"
		}
		fmt.Fprintf(b, "%s %s (%d) @ %s\n", branch, rec.Signature, rec.Count, rec.Location)
	}
	b.WriteString("\n")
}

func (f *terminalFormatter) writeAnalysis(b *strings.Builder, res *analysis.Result) {
	symbol := termfmt.GetEmoji("insight", f.opts)
	b.WriteString(symbol + " AI Analysis\n")

	switch res.Status {
	case analysis.StatusSuccess:
		b.WriteString(res.Analysis)
		if !strings.HasSuffix(res.Analysis, "\n") {
			b.WriteString("\n")
		}
	case analysis.StatusUnavailable:
		b.WriteString("unavailable: " + res.Message + "\n")
	default:
		b.WriteString("failed: " + res.Message + "\n")
	}
}
