package pipeline

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lahanevaibhav/Prod-Monitoring/internal/analysis"
	"github.com/lahanevaibhav/Prod-Monitoring/internal/classifier"
	"github.com/lahanevaibhav/Prod-Monitoring/internal/logsource"
	"github.com/lahanevaibhav/Prod-Monitoring/internal/metricsource"
)

type fakeSource struct {
	events []classifier.LogEvent
	err    error
}

func (f *fakeSource) FetchWindow(context.Context, logsource.Window) ([]classifier.LogEvent, error) {
	return f.events, f.err
}

type fakeMetrics struct {
	groups  []metricsource.Group
	summary metricsource.Summary
	err     error
}

func (f *fakeMetrics) Collect(context.Context, logsource.Window, string) ([]metricsource.Group, metricsource.Summary, error) {
	return f.groups, f.summary, f.err
}

func staticSources(src logsource.Source) SourceFactory {
	return func(context.Context, Pairing) (logsource.Source, error) { return src, nil }
}

func staticMetrics(src MetricsSource) MetricsFactory {
	return func(context.Context, Pairing) (MetricsSource, error) { return src, nil }
}

func testPairing() Pairing {
	return Pairing{Service: "SRA", Region: "NA1", Dashboard: "prod-SRA-Dashboard", AWSRegion: "us-west-2", LogGroup: "/app/sra"}
}

func testEvents() []classifier.LogEvent {
	return []classifier.LogEvent{
		{Timestamp: "2025-08-23T10:00:00", Message: "IllegalStateException: no schedule found for id '12345'"},
		{Timestamp: "2025-08-23T11:00:00", Message: "IllegalStateException: no schedule found for id '67890'"},
		{Timestamp: "2025-08-23T12:00:00", Message: "TimeoutException: request timed out"},
	}
}

func TestRunClassifiesAndRanks(t *testing.T) {
	r := NewRunner(staticSources(&fakeSource{events: testEvents()}), nil, Options{})

	res := r.Run(context.Background(), testPairing(), logsource.Window{})
	if res.FetchError != "" {
		t.Fatalf("FetchError = %q", res.FetchError)
	}
	if res.Events != 3 {
		t.Errorf("Events = %d, want 3", res.Events)
	}

	records := res.Report.Records
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Count != 2 || records[1].Count != 1 {
		t.Errorf("ranking = [%d %d], want [2 1]", records[0].Count, records[1].Count)
	}
	if res.Report.TotalEvents != 3 {
		t.Errorf("TotalEvents = %d", res.Report.TotalEvents)
	}
}

func TestRunMetricsSummaryAttached(t *testing.T) {
	metrics := &fakeMetrics{
		groups:  []metricsource.Group{{Title: "SRA MS Errors", Points: []metricsource.Point{{Metric: "e", Timestamp: "t", Value: 2}}}},
		summary: metricsource.Summary{PerformanceIssues: 3, ResourceAlerts: 1},
	}
	r := NewRunner(staticSources(&fakeSource{events: testEvents()}), staticMetrics(metrics), Options{})

	res := r.Run(context.Background(), testPairing(), logsource.Window{})
	if res.MetricsError != "" {
		t.Fatalf("MetricsError = %q", res.MetricsError)
	}
	if res.Report.Metrics == nil || res.Report.Metrics.PerformanceIssues != 3 {
		t.Errorf("Metrics = %+v", res.Report.Metrics)
	}
}

func TestRunFetchFailureProducesSyntheticEvent(t *testing.T) {
	src := &fakeSource{err: errors.New("throttled")}
	r := NewRunner(staticSources(src), nil, Options{})

	res := r.Run(context.Background(), testPairing(), logsource.Window{})
	if res.FetchError == "" {
		t.Fatal("FetchError not recorded")
	}
	if res.Events != 1 {
		t.Fatalf("Events = %d, want synthetic event", res.Events)
	}
	if len(res.Report.Records) != 1 {
		t.Fatalf("records = %d, want 1", len(res.Report.Records))
	}
	if !strings.Contains(res.Report.Records[0].Sample, "Log fetch error from /app/sra") {
		t.Errorf("Sample = %q", res.Report.Records[0].Sample)
	}
}

func TestRunNoEventsYieldsHealthyAnalysis(t *testing.T) {
	r := NewRunner(staticSources(&fakeSource{}), nil, Options{
		Analyzer: analysis.NewAnalyzer(nil, analysis.Options{}),
	})

	res := r.Run(context.Background(), testPairing(), logsource.Window{})
	if res.Report.TotalEvents != 0 || len(res.Report.Records) != 0 {
		t.Fatalf("report = %+v", res.Report)
	}
	if res.Report.Analysis == nil || res.Report.Analysis.HealthStatus != "HEALTHY" {
		t.Errorf("Analysis = %+v", res.Report.Analysis)
	}
}

func TestRunAnonymizesSamples(t *testing.T) {
	src := &fakeSource{events: []classifier.LogEvent{
		{Timestamp: "t1", Message: "MailException: delivery failed for john.doe@example.com tenant=acme_corp123"},
	}}
	r := NewRunner(staticSources(src), nil, Options{})

	res := r.Run(context.Background(), testPairing(), logsource.Window{})
	sample := res.Report.Records[0].Sample
	if strings.Contains(sample, "john.doe@example.com") || strings.Contains(sample, "acme_corp123") {
		t.Errorf("sample leaked PII: %q", sample)
	}
}

func TestRunEmitsArtifacts(t *testing.T) {
	outDir := t.TempDir()
	metrics := &fakeMetrics{
		groups: []metricsource.Group{{Title: "SRA MS Errors", Points: []metricsource.Point{{Metric: "sra.errors", Timestamp: "t", Value: 1}}}},
	}
	r := NewRunner(staticSources(&fakeSource{events: testEvents()}), staticMetrics(metrics), Options{OutputDir: outDir})

	res := r.Run(context.Background(), testPairing(), logsource.Window{})
	if len(res.EmitErrors) != 0 {
		t.Fatalf("EmitErrors = %v", res.EmitErrors)
	}

	dir := PairingDir(outDir, testPairing())
	for _, name := range []string{
		filepath.Join("csv_data", "error_logs.csv"),
		filepath.Join("csv_data", "classified_errors.csv"),
		filepath.Join("csv_data", "SRA MS Errors.csv"),
		"report.md",
		"report.json",
	} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing artifact %s: %v", name, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "csv_data", "classified_errors.csv"))
	if err != nil {
		t.Fatal(err)
	}
	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if rows[0][0] != "Error Signature" || rows[0][1] != "Occurrence Count" {
		t.Errorf("header = %v", rows[0])
	}
	if len(rows) != 3 {
		t.Errorf("rows = %d, want header + 2 records", len(rows))
	}
}

func TestRunAllIsolatesFailures(t *testing.T) {
	bad := Pairing{Service: "SRA", Region: "AU", LogGroup: "/app/au"}
	good := testPairing()

	sources := func(_ context.Context, p Pairing) (logsource.Source, error) {
		if p.Region == "AU" {
			return nil, errors.New("no credentials")
		}
		return &fakeSource{events: testEvents()}, nil
	}
	r := NewRunner(sources, nil, Options{Workers: 2})

	results := r.RunAll(context.Background(), []Pairing{good, bad}, logsource.Window{})
	if len(results) != 2 {
		t.Fatalf("results = %d", len(results))
	}
	if results[0].Pairing.Region != "NA1" || results[1].Pairing.Region != "AU" {
		t.Errorf("result order changed: %v, %v", results[0].Pairing, results[1].Pairing)
	}
	if results[0].FetchError != "" {
		t.Errorf("good pairing failed: %q", results[0].FetchError)
	}
	if results[1].FetchError == "" {
		t.Error("bad pairing error not recorded")
	}
	// The failed pairing still produced a report via the synthetic event.
	if results[1].Report == nil || len(results[1].Report.Records) != 1 {
		t.Errorf("bad pairing report = %+v", results[1].Report)
	}
}

func TestCrossRegion(t *testing.T) {
	// Without an analyzer there is nothing to do.
	r := NewRunner(nil, nil, Options{})
	if got := r.CrossRegion(context.Background(), nil); got != nil {
		t.Errorf("CrossRegion without analyzer = %+v, want nil", got)
	}

	// With an unconfigured analyzer the result is an explicit status, not
	// a failure.
	r = NewRunner(staticSources(&fakeSource{events: testEvents()}), nil, Options{
		Analyzer: analysis.NewAnalyzer(nil, analysis.Options{}),
	})
	results := r.RunAll(context.Background(), []Pairing{testPairing()}, logsource.Window{})

	res := r.CrossRegion(context.Background(), results)
	if res == nil {
		t.Fatal("CrossRegion = nil, want a result")
	}
	if res.Status != analysis.StatusUnavailable {
		t.Errorf("Status = %q, want unavailable", res.Status)
	}

	// No records at all: skip entirely.
	empty := r.RunAll(context.Background(), nil, logsource.Window{})
	if got := r.CrossRegion(context.Background(), empty); got != nil {
		t.Errorf("CrossRegion with no records = %+v, want nil", got)
	}
}
