// Package pipeline orchestrates one classification run per configured
// service/region pairing: fetch logs, classify, collect metrics, emit
// artifacts and (optionally) run AI analysis. Pairings are isolated:
// one failing never aborts the others.
package pipeline

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lahanevaibhav/Prod-Monitoring/internal/analysis"
	"github.com/lahanevaibhav/Prod-Monitoring/internal/anonymizer"
	"github.com/lahanevaibhav/Prod-Monitoring/internal/classifier"
	"github.com/lahanevaibhav/Prod-Monitoring/internal/formatter"
	"github.com/lahanevaibhav/Prod-Monitoring/internal/logger"
	"github.com/lahanevaibhav/Prod-Monitoring/internal/logsource"
	"github.com/lahanevaibhav/Prod-Monitoring/internal/metricsource"
)

// Pairing identifies one monitored deployment.
type Pairing struct {
	Service   string `yaml:"service" json:"service"`
	Region    string `yaml:"region" json:"region"`
	Dashboard string `yaml:"dashboard" json:"dashboard"`
	AWSRegion string `yaml:"awsRegion" json:"aws_region"`
	LogGroup  string `yaml:"logGroup" json:"log_group"`
}

func (p Pairing) String() string {
	return p.Service + "/" + p.Region
}

// MetricsSource abstracts metricsource.CloudWatchSource for testing.
type MetricsSource interface {
	Collect(ctx context.Context, window logsource.Window, service string) ([]metricsource.Group, metricsource.Summary, error)
}

// SourceFactory builds the log source for a pairing.
type SourceFactory func(ctx context.Context, pairing Pairing) (logsource.Source, error)

// MetricsFactory builds the metrics source for a pairing.
type MetricsFactory func(ctx context.Context, pairing Pairing) (MetricsSource, error)

// RunResult records the outcome of one pairing's run. Stage failures are
// carried as messages; the run itself always completes.
type RunResult struct {
	Pairing Pairing           `json:"pairing"`
	Report  *formatter.Report `json:"report"`

	Events       int      `json:"events"`
	OutputDir    string   `json:"output_dir,omitempty"`
	FetchError   string   `json:"fetch_error,omitempty"`
	MetricsError string   `json:"metrics_error,omitempty"`
	EmitErrors   []string `json:"emit_errors,omitempty"`
}

// Options configure a Runner.
type Options struct {
	// Namespace is the application package prefix for signature extraction.
	Namespace string

	// ExcludePatterns and NoisePatterns override the cleaner defaults.
	ExcludePatterns []string
	NoisePatterns   []string

	// DisableAnonymize turns off PII redaction. Redaction is on by default.
	DisableAnonymize bool

	// OutputDir is the artifact tree root. Empty disables emission.
	OutputDir string

	// Workers bounds pairing concurrency in RunAll.
	Workers int

	// Analyzer runs AI analysis per pairing. Optional.
	Analyzer *analysis.Analyzer

	Logger *logger.Logger
}

// Runner executes classification runs.
type Runner struct {
	sources SourceFactory
	metrics MetricsFactory
	opts    Options
	log     *logger.Logger
}

// NewRunner builds a runner. Either factory may be nil; the matching
// stage is then skipped.
func NewRunner(sources SourceFactory, metrics MetricsFactory, opts Options) *Runner {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewWithCallback("pipeline", nil)
	}
	return &Runner{sources: sources, metrics: metrics, opts: opts, log: log}
}

// Run executes the full pipeline for one pairing.
func (r *Runner) Run(ctx context.Context, pairing Pairing, window logsource.Window) RunResult {
	result := RunResult{Pairing: pairing}
	r.log.Info("collecting %s (dashboard=%s, aws_region=%s)", pairing, pairing.Dashboard, pairing.AWSRegion)

	groups, summary := r.collectMetrics(ctx, pairing, window, &result)
	events := r.fetchEvents(ctx, pairing, window, &result)
	result.Events = len(events)

	agg := r.newAggregator()
	agg.AddAll(events)

	report := &formatter.Report{
		Service:     pairing.Service,
		Region:      pairing.Region,
		Window:      window.String(),
		TotalEvents: agg.TotalEvents(),
		Records:     agg.Records(),
	}
	if summary != nil {
		report.Metrics = summary
	}

	if r.opts.Analyzer != nil {
		res := r.opts.Analyzer.AnalyzeErrorPatterns(ctx, report.Records, report.Metrics, pairing.Region, pairing.Service)
		report.Analysis = &res
	}
	result.Report = report

	if r.opts.OutputDir != "" {
		r.emit(pairing, events, groups, report, &result)
	}
	return result
}

// RunAll runs every pairing on a bounded worker pool. The slice order
// matches the input order.
func (r *Runner) RunAll(ctx context.Context, pairings []Pairing, window logsource.Window) []RunResult {
	results := make([]RunResult, len(pairings))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for i, pairing := range pairings {
		g.Go(func() error {
			results[i] = r.Run(ctx, pairing, window)
			return nil
		})
	}
	// Workers record failures in their RunResult and never return errors.
	_ = g.Wait()
	return results
}

// CrossRegion groups the per-pairing rankings of one service by region
// and asks the analyzer for a cross-region comparison.
func (r *Runner) CrossRegion(ctx context.Context, results []RunResult) *analysis.Result {
	if r.opts.Analyzer == nil {
		return nil
	}

	byRegion := make(map[string][]classifier.Record)
	for _, res := range results {
		if res.Report != nil && len(res.Report.Records) > 0 {
			byRegion[res.Pairing.Region] = append(byRegion[res.Pairing.Region], res.Report.Records...)
		}
	}
	if len(byRegion) == 0 {
		return nil
	}

	out := r.opts.Analyzer.AnalyzeCrossRegion(ctx, byRegion)
	return &out
}

func (r *Runner) newAggregator() *classifier.Aggregator {
	cleaner := classifier.NewCleaner(r.opts.ExcludePatterns, r.opts.NoisePatterns)
	extractor := classifier.NewExtractor(r.opts.Namespace)
	anonymize := anonymizer.Anonymize
	if r.opts.DisableAnonymize {
		anonymize = func(s string) string { return s }
	}
	return classifier.NewAggregator(cleaner, extractor, anonymize)
}

func (r *Runner) collectMetrics(ctx context.Context, pairing Pairing, window logsource.Window, result *RunResult) ([]metricsource.Group, *metricsource.Summary) {
	if r.metrics == nil || pairing.Dashboard == "" {
		return nil, nil
	}

	src, err := r.metrics(ctx, pairing)
	if err != nil {
		result.MetricsError = err.Error()
		r.log.Warn("metrics source for %s unavailable: %v", pairing, err)
		return nil, nil
	}

	groups, summary, err := src.Collect(ctx, window, pairing.Service)
	if err != nil {
		result.MetricsError = err.Error()
		r.log.Warn("metrics collection for %s failed: %v", pairing, err)
	}
	return groups, &summary
}

// fetchEvents pulls the raw events. A fetch failure degrades to the
// partial result plus one synthetic event describing the failure, so the
// report always reflects that the fetch went wrong.
func (r *Runner) fetchEvents(ctx context.Context, pairing Pairing, window logsource.Window, result *RunResult) []classifier.LogEvent {
	if r.sources == nil {
		return nil
	}

	src, err := r.sources(ctx, pairing)
	if err != nil {
		result.FetchError = err.Error()
		return []classifier.LogEvent{logsource.SyntheticFetchError(pairing.LogGroup, err, time.Now())}
	}

	events, err := src.FetchWindow(ctx, window)
	if err != nil {
		result.FetchError = err.Error()
		events = append(events, logsource.SyntheticFetchError(pairing.LogGroup, err, time.Now()))
	}
	r.log.Debug("fetched %d events for %s", len(events), pairing)
	return events
}
