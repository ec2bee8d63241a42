package formatter

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/lahanevaibhav/Prod-Monitoring/internal/analysis"
	"github.com/lahanevaibhav/Prod-Monitoring/internal/classifier"
	"github.com/lahanevaibhav/Prod-Monitoring/internal/metricsource"
)

func sampleReport() *Report {
	return &Report{
		Service:     "SRA",
		Region:      "NA1",
		Window:      "2025-08-23T00:00:00Z to 2025-08-24T23:59:59Z",
		TotalEvents: 12,
		Records: []classifier.Record{
			{Signature: "IllegalStateException: no schedule found for id '[ID]'", Count: 7, Type: "IllegalStateException", Location: "ScheduleValidator.validate", Sample: "full sample one"},
			{Signature: "ERROR in ShiftSync: sync failed for shift [NUM]", Count: 5, Type: "ERROR", Location: "ShiftSync", Sample: "full sample two\nwith a second line"},
		},
		Metrics: &metricsource.Summary{PerformanceIssues: 1, HighCPUCount: 2, ResourceAlerts: 2},
		Analysis: &analysis.Result{
			Status:   analysis.StatusSuccess,
			Analysis: "## Root Cause\npool exhaustion",
		},
	}
}

func TestCSVFormatterHeaderAndRows(t *testing.T) {
	out, err := NewCSV().Format(sampleReport())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	rows, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	wantHeader := []string{"Error Signature", "Occurrence Count", "Location", "Sample Error Message"}
	for i, col := range wantHeader {
		if rows[0][i] != col {
			t.Errorf("header[%d] = %q, want %q", i, rows[0][i], col)
		}
	}
	if rows[1][1] != "7" || rows[2][1] != "5" {
		t.Errorf("counts = %q, %q", rows[1][1], rows[2][1])
	}
	// Multi-line sample survives the round trip via quoting.
	if rows[2][3] != "full sample two\nwith a second line" {
		t.Errorf("sample = %q", rows[2][3])
	}
}

func TestErrorLogsCSV(t *testing.T) {
	out, err := ErrorLogsCSV([]classifier.LogEvent{
		{Timestamp: "2025-08-23T10:00:00", Message: "ERROR boom"},
		{Timestamp: "2025-08-23T10:01:00", Message: "ERROR again, with comma"},
	})
	if err != nil {
		t.Fatalf("ErrorLogsCSV() error = %v", err)
	}

	rows, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if rows[0][0] != "timestamp" || rows[0][1] != "log_message" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[2][1] != "ERROR again, with comma" {
		t.Errorf("row = %v", rows[2])
	}
}

func TestMetricsGroupCSVShortensMetricNames(t *testing.T) {
	out, err := MetricsGroupCSV(metricsource.Group{
		Title: "SRA MS Errors",
		Points: []metricsource.Point{
			{Metric: "sra.request.errors", Timestamp: "2025-08-23T00:05:00", Value: 3},
			{Metric: "CPUUtilization", Timestamp: "2025-08-23T00:10:00", Value: 81.5},
		},
	})
	if err != nil {
		t.Fatalf("MetricsGroupCSV() error = %v", err)
	}

	rows, _ := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	if rows[1][0] != "errors" {
		t.Errorf("metric name = %q, want last segment", rows[1][0])
	}
	if rows[2][0] != "CPUUtilization" {
		t.Errorf("metric name = %q", rows[2][0])
	}
	if rows[2][2] != "81.5" {
		t.Errorf("value = %q", rows[2][2])
	}
}

func TestJSONFormatter(t *testing.T) {
	out, err := NewJSON().Format(sampleReport())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var parsed struct {
		Summary struct {
			Service        string `json:"service"`
			TotalEvents    int    `json:"total_events"`
			UniquePatterns int    `json:"unique_patterns"`
		} `json:"summary"`
		Report struct {
			Records []classifier.Record `json:"records"`
		} `json:"report"`
	}
	if err := json.Unmarshal(out, &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if parsed.Summary.Service != "SRA" || parsed.Summary.TotalEvents != 12 || parsed.Summary.UniquePatterns != 2 {
		t.Errorf("summary = %+v", parsed.Summary)
	}
	if len(parsed.Report.Records) != 2 {
		t.Errorf("records = %d, want 2", len(parsed.Report.Records))
	}
}

func TestMarkdownFormatter(t *testing.T) {
	out, err := NewMarkdown().Format(sampleReport())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	text := string(out)

	for _, want := range []string{
		"# Error Classification Report - SRA/NA1",
		"| # | Error Signature | Count | Location |",
		"| 1 | IllegalStateException: no schedule found for id '[ID]' | 7 | ScheduleValidator.validate |",
		"## Metrics Summary",
		"## AI Analysis",
		"pool exhaustion",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestMarkdownFormatterUnavailableAnalysis(t *testing.T) {
	report := sampleReport()
	report.Analysis = &analysis.Result{Status: analysis.StatusUnavailable, Message: "no endpoint configured"}

	out, err := NewMarkdown().Format(report)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(string(out), "Status: unavailable (no endpoint configured)") {
		t.Errorf("markdown = %q", string(out))
	}
}

func TestTerminalFormatter(t *testing.T) {
	out, err := NewTerminal(false).Format(sampleReport())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	text := string(out)

	for _, want := range []string{
		"Error Classification - SRA/NA1",
		"Statistics",
		"Top Error Patterns",
		"IllegalStateException: no schedule found for id '[ID]' (7)",
		"AI Analysis",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("terminal output missing %q", want)
		}
	}
}

func TestNewFactory(t *testing.T) {
	for _, format := range []string{"csv", "json", "markdown", "md", "terminal", "text", ""} {
		if _, err := New(format, false); err != nil {
			t.Errorf("New(%q) error = %v", format, err)
		}
	}
	if _, err := New("yaml", false); err == nil {
		t.Error("New(yaml) should fail")
	}
}
