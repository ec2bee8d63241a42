// Package consolidate merges the per-pairing artifacts of a collection
// run into one report spanning every service and region.
package consolidate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/lahanevaibhav/Prod-Monitoring/internal/analysis"
	"github.com/lahanevaibhav/Prod-Monitoring/internal/formatter"
	"github.com/lahanevaibhav/Prod-Monitoring/internal/logger"
)

const reportVersion = "2.0"

// Thresholds for flagging a region in the executive summary.
const (
	criticalErrorCount = 100
	criticalCPUCount   = 10
)

// Consolidated is the merged view of one environment's output tree.
type Consolidated struct {
	Metadata Metadata                                `json:"metadata"`
	Services map[string]map[string]*formatter.Report `json:"services"`
}

// Metadata describes the consolidation run.
type Metadata struct {
	Environment   string    `json:"environment"`
	GeneratedAt   time.Time `json:"generated_at"`
	ReportVersion string    `json:"report_version"`
}

// Consolidator reads per-pairing report.json artifacts from an output
// tree.
type Consolidator struct {
	root string
	env  string
	log  *logger.Logger
}

// New builds a consolidator over root for one environment subtree
// (usually "prod").
func New(root, env string, log *logger.Logger) *Consolidator {
	if log == nil {
		log = logger.NewWithCallback("consolidate", nil)
	}
	return &Consolidator{root: root, env: env, log: log}
}

// Collect walks <root>/<env>/<service>/<region>/report.json and merges
// everything found. A missing tree yields an empty consolidation, not an
// error; unreadable single reports are skipped with a warning.
func (c *Consolidator) Collect() (*Consolidated, error) {
	out := &Consolidated{
		Metadata: Metadata{
			Environment:   c.env,
			GeneratedAt:   time.Now(),
			ReportVersion: reportVersion,
		},
		Services: make(map[string]map[string]*formatter.Report),
	}

	envPath := filepath.Join(c.root, c.env)
	services, err := os.ReadDir(envPath)
	if err != nil {
		if os.IsNotExist(err) {
			c.log.Warn("environment path not found: %s", envPath)
			return out, nil
		}
		return nil, fmt.Errorf("reading %s: %w", envPath, err)
	}

	for _, service := range services {
		if !service.IsDir() {
			continue
		}
		regions, err := os.ReadDir(filepath.Join(envPath, service.Name()))
		if err != nil {
			continue
		}
		for _, region := range regions {
			if !region.IsDir() {
				continue
			}
			report, err := readReport(filepath.Join(envPath, service.Name(), region.Name(), "report.json"))
			if err != nil {
				c.log.Warn("skipping %s/%s: %v", service.Name(), region.Name(), err)
				continue
			}
			if out.Services[service.Name()] == nil {
				out.Services[service.Name()] = make(map[string]*formatter.Report)
			}
			out.Services[service.Name()][region.Name()] = report
		}
	}
	return out, nil
}

// Save writes the consolidated JSON and Markdown files next to the
// environment tree and returns their paths.
func (c *Consolidator) Save(data *Consolidated) (jsonPath, markdownPath string, err error) {
	envPath := filepath.Join(c.root, c.env)
	if err := os.MkdirAll(envPath, 0o755); err != nil {
		return "", "", fmt.Errorf("creating %s: %w", envPath, err)
	}

	stamp := data.Metadata.GeneratedAt.Format("20060102_150405")
	jsonPath = filepath.Join(envPath, fmt.Sprintf("consolidated_monitoring_%s_%s.json", c.env, stamp))
	markdownPath = filepath.Join(envPath, fmt.Sprintf("consolidated_monitoring_%s_%s.md", c.env, stamp))

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("marshaling consolidated report: %w", err)
	}
	if err := os.WriteFile(jsonPath, raw, 0o644); err != nil {
		return "", "", fmt.Errorf("writing %s: %w", jsonPath, err)
	}
	if err := os.WriteFile(markdownPath, Markdown(data), 0o644); err != nil {
		return "", "", fmt.Errorf("writing %s: %w", markdownPath, err)
	}
	return jsonPath, markdownPath, nil
}

func readReport(path string) (*formatter.Report, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	// The artifact wraps the report in a summary envelope.
	var wrapped struct {
		Report *formatter.Report `json:"report"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if wrapped.Report == nil {
		return nil, fmt.Errorf("no report section in %s", path)
	}
	return wrapped.Report, nil
}

// Markdown renders the consolidated report.
func Markdown(data *Consolidated) []byte {
	var b strings.Builder

	b.WriteString("# Production Monitoring - Consolidated Report\n\n")
	fmt.Fprintf(&b, "**Environment:** %s\n", strings.ToUpper(data.Metadata.Environment))
	fmt.Fprintf(&b, "**Generated:** %s\n", data.Metadata.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "**Report Version:** %s\n\n", data.Metadata.ReportVersion)
	b.WriteString("---\n\n")

	writeExecutiveSummary(&b, data)

	for _, service := range sortedKeys(data.Services) {
		fmt.Fprintf(&b, "## %s Service\n\n", service)
		regions := data.Services[service]
		for _, region := range sortedKeys(regions) {
			writeRegionSection(&b, region, regions[region])
		}
		b.WriteString("---\n\n")
	}

	return []byte(b.String())
}

func writeExecutiveSummary(b *strings.Builder, data *Consolidated) {
	totalErrors := 0
	totalPatterns := 0
	totalRegions := 0
	var critical []string

	for _, service := range sortedKeys(data.Services) {
		regions := data.Services[service]
		totalRegions += len(regions)
		for _, region := range sortedKeys(regions) {
			report := regions[region]
			errors := totalCount(report)
			totalErrors += errors
			totalPatterns += report.UniquePatterns()

			if errors > criticalErrorCount {
				critical = append(critical, fmt.Sprintf("%s/%s: %d errors", service, region, errors))
			}
			if report.Metrics != nil && report.Metrics.HighCPUCount > criticalCPUCount {
				critical = append(critical, fmt.Sprintf("%s/%s: high CPU detected", service, region))
			}
		}
	}

	b.WriteString("## Executive Summary\n\n")
	fmt.Fprintf(b, "- **Total Regions Monitored:** %d\n", totalRegions)
	fmt.Fprintf(b, "- **Total Errors:** %d\n", totalErrors)
	fmt.Fprintf(b, "- **Unique Error Patterns:** %d\n", totalPatterns)

	if len(critical) > 0 {
		b.WriteString("\n### ⚠️ Critical Issues\n\n")
		for _, issue := range critical {
			fmt.Fprintf(b, "- %s\n", issue)
		}
	} else {
		b.WriteString("\n✅ **No critical issues detected**\n")
	}
	b.WriteString("\n---\n\n")
}

func writeRegionSection(b *strings.Builder, region string, report *formatter.Report) {
	fmt.Fprintf(b, "### Region: %s\n\n", region)

	b.WriteString("#### Metrics Overview\n\n")
	fmt.Fprintf(b, "- **Total Errors:** %d\n", totalCount(report))
	fmt.Fprintf(b, "- **Unique Patterns:** %d\n", report.UniquePatterns())
	if report.Metrics != nil {
		fmt.Fprintf(b, "- **High CPU Events:** %d\n", report.Metrics.HighCPUCount)
		fmt.Fprintf(b, "- **High Memory Events:** %d\n", report.Metrics.HighMemoryCount)
		fmt.Fprintf(b, "- **Performance Issues:** %d\n", report.Metrics.PerformanceIssues)
	}
	b.WriteString("\n")

	if res := report.Analysis; res != nil {
		switch res.Status {
		case analysis.StatusSuccess:
			b.WriteString("#### AI Analysis\n\n")
			b.WriteString(res.Analysis)
			b.WriteString("\n\n")
		case analysis.StatusError:
			b.WriteString("#### AI Analysis\n\n")
			fmt.Fprintf(b, "*AI analysis failed: %s*\n\n", res.Message)
		}
	}

	if len(report.Records) > 0 {
		b.WriteString("#### Top Errors\n\n")
		b.WriteString("| Count | Error | Location |\n")
		b.WriteString("|-------|-------|----------|\n")
		top := report.Records
		if len(top) > 10 {
			top = top[:10]
		}
		for _, rec := range top {
			fmt.Fprintf(b, "| %d | %s | %s |\n", rec.Count, clip(rec.Signature, 80), clip(rec.Location, 40))
		}
		b.WriteString("\n")
	}
}

func totalCount(report *formatter.Report) int {
	total := 0
	for _, rec := range report.Records {
		total += rec.Count
	}
	return total
}

func clip(s string, limit int) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > limit {
		return s[:limit]
	}
	return s
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
