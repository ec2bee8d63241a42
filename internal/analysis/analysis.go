// Package analysis turns classified error rankings into AI-backed
// operational reports. The pipeline never depends on the provider being
// reachable: every outcome is an explicit Result status.
package analysis

import (
	"context"
	"os"
	"sort"
	"time"

	"github.com/lahanevaibhav/Prod-Monitoring/internal/ai"
	"github.com/lahanevaibhav/Prod-Monitoring/internal/anonymizer"
	"github.com/lahanevaibhav/Prod-Monitoring/internal/classifier"
	"github.com/lahanevaibhav/Prod-Monitoring/internal/logger"
	"github.com/lahanevaibhav/Prod-Monitoring/internal/metricsource"
)

// Status is the outcome of an analysis attempt.
type Status string

const (
	StatusSuccess     Status = "success"
	StatusUnavailable Status = "unavailable"
	StatusError       Status = "error"
)

const (
	// topErrorCount limits how many ranked patterns go into the prompt.
	topErrorCount = 20

	// sampleLimit truncates sample messages before they leave the process.
	sampleLimit = 300

	healthyModel = "system-health-analyzer"
)

// Result carries the analysis outcome for one service/region pairing.
type Result struct {
	Status       Status    `json:"status"`
	Region       string    `json:"region,omitempty"`
	Service      string    `json:"service,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	Analysis     string    `json:"analysis,omitempty"`
	ErrorCount   int       `json:"error_count"`
	Model        string    `json:"model,omitempty"`
	Message      string    `json:"message,omitempty"`
	HealthStatus string    `json:"health_status,omitempty"`
	Regions      []string  `json:"regions_analyzed,omitempty"`
}

// Options configure an Analyzer.
type Options struct {
	// ContextFile points to the application context document loaded as
	// retrieval context for every prompt. Optional.
	ContextFile string

	// Anonymize re-scrubs record fields right before they are sent out.
	// Defaults to anonymizer.Anonymize.
	Anonymize func(string) string

	// Logger for progress output.
	Logger *logger.Logger
}

// Analyzer runs error-pattern analysis against an ai.Provider.
type Analyzer struct {
	provider   ai.Provider
	appContext string
	anonymize  func(string) string
	log        *logger.Logger
}

// NewAnalyzer builds an analyzer. A nil provider is allowed; every
// analysis then reports StatusUnavailable (except the healthy report,
// which is generated locally).
func NewAnalyzer(provider ai.Provider, opts Options) *Analyzer {
	if opts.Anonymize == nil {
		opts.Anonymize = anonymizer.Anonymize
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewWithCallback("analysis", nil)
	}

	a := &Analyzer{
		provider:  provider,
		anonymize: opts.Anonymize,
		log:       opts.Logger,
	}
	if opts.ContextFile != "" {
		a.appContext = loadContext(opts.ContextFile, a.log)
	}
	return a
}

// Available reports whether a configured provider is present.
func (a *Analyzer) Available() bool {
	return a.provider != nil && a.provider.ValidateConfig() == nil
}

// AnalyzeErrorPatterns produces the analysis Result for one pairing's
// ranked records. Zero records yields a locally generated healthy-system
// report without touching the provider.
func (a *Analyzer) AnalyzeErrorPatterns(ctx context.Context, records []classifier.Record, metrics *metricsource.Summary, region, service string) Result {
	if len(records) == 0 {
		return a.healthyReport(region, service, metrics)
	}

	if !a.Available() {
		return Result{
			Status:    StatusUnavailable,
			Timestamp: time.Now(),
			Message:   "AI analysis is not available: provider endpoint or API key not configured",
		}
	}

	prompt := a.buildAnalysisPrompt(records, metrics, region, service)
	resp, err := a.provider.Complete(ctx, &ai.CompletionRequest{
		Prompt:       prompt.String(),
		SystemPrompt: prompt.SystemPrompt,
	})
	if err != nil {
		a.log.Error("analysis for %s/%s failed: %v", service, region, err)
		return Result{Status: StatusError, Timestamp: time.Now(), Message: err.Error()}
	}

	return Result{
		Status:     StatusSuccess,
		Region:     region,
		Service:    service,
		Timestamp:  time.Now(),
		Analysis:   resp.Content,
		ErrorCount: len(records),
		Model:      resp.Model,
	}
}

// AnalyzeCrossRegion compares the rankings of several regions in one
// prompt and asks for common failure themes.
func (a *Analyzer) AnalyzeCrossRegion(ctx context.Context, regionRecords map[string][]classifier.Record) Result {
	if !a.Available() {
		return Result{
			Status:    StatusUnavailable,
			Timestamp: time.Now(),
			Message:   "AI analysis is not available",
		}
	}

	regions := make([]string, 0, len(regionRecords))
	for region := range regionRecords {
		regions = append(regions, region)
	}
	sort.Strings(regions)

	prompt := a.buildCrossRegionPrompt(regions, regionRecords)
	resp, err := a.provider.Complete(ctx, &ai.CompletionRequest{
		Prompt:       prompt.String(),
		SystemPrompt: prompt.SystemPrompt,
	})
	if err != nil {
		a.log.Error("cross-region analysis failed: %v", err)
		return Result{Status: StatusError, Timestamp: time.Now(), Message: err.Error()}
	}

	return Result{
		Status:    StatusSuccess,
		Timestamp: time.Now(),
		Analysis:  resp.Content,
		Model:     resp.Model,
		Regions:   regions,
	}
}

func loadContext(path string, log *logger.Logger) string {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn("context file %s not loaded: %v", path, err)
		return ""
	}
	log.Debug("loaded application context from %s (%d bytes)", path, len(data))
	return string(data)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}

func (a *Analyzer) healthyReport(region, service string, metrics *metricsource.Summary) Result {
	return Result{
		Status:       StatusSuccess,
		Region:       region,
		Service:      service,
		Timestamp:    time.Now(),
		Analysis:     buildHealthyReport(region, service, metrics),
		ErrorCount:   0,
		Model:        healthyModel,
		HealthStatus: "HEALTHY",
	}
}
