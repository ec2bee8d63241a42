// Package metricsource collects service health metrics for a collection
// window. Queries are derived from the widgets of the service's CloudWatch
// dashboard, so the monitored metric set follows the dashboard without
// code changes.
package metricsource

import (
	"strings"
	"time"
)

// Metric period in seconds for all queries.
const Period = 300

// Threshold and statistic selection per metric family.
const (
	ErrorThreshold       = 0   // any error datapoint counts
	ResourceThreshold    = 70  // CPU / memory percent
	PerformanceThreshold = 500 // milliseconds
)

// Point is a single above-threshold observation.
type Point struct {
	Metric    string  `json:"metric"`
	Timestamp string  `json:"timestamp"`
	Value     float64 `json:"value"`
}

// Group holds the breaching datapoints of one dashboard widget.
type Group struct {
	Title  string  `json:"title"`
	Points []Point `json:"points"`
}

// Summary condenses a collection run into the counters the analysis
// prompt and the healthy-system report work from.
type Summary struct {
	PerformanceIssues int `json:"performance_issues"`
	HighCPUCount      int `json:"high_cpu_count"`
	HighMemoryCount   int `json:"high_memory_count"`
	ResourceAlerts    int `json:"resource_alerts"`
}

// WidgetTitles lists the dashboard widgets monitored for a service.
func WidgetTitles(service string) []string {
	return []string{
		service + " MS Errors",
		"External APis Errors",
		service + " performance in MS",
		"External APIs performance in MS",
		"Max CPU and Memory",
	}
}

// statAndThreshold picks the CloudWatch statistic and alerting threshold
// for a widget. Error widgets sum every occurrence, resource widgets watch
// peaks, everything else is treated as a latency average.
func statAndThreshold(title string) (string, float64) {
	switch {
	case strings.Contains(title, "Error"):
		return "Sum", ErrorThreshold
	case strings.Contains(title, "CPU") || strings.Contains(title, "Memory"):
		return "Maximum", ResourceThreshold
	default:
		return "Average", PerformanceThreshold
	}
}

// Summarize reduces collected groups to the analysis counters.
func Summarize(groups []Group) Summary {
	var s Summary
	for _, g := range groups {
		stat, _ := statAndThreshold(g.Title)
		for _, p := range g.Points {
			switch stat {
			case "Maximum":
				if strings.Contains(p.Metric, "Memory") {
					s.HighMemoryCount++
				} else {
					s.HighCPUCount++
				}
			case "Average":
				s.PerformanceIssues++
			}
		}
	}
	s.ResourceAlerts = s.HighCPUCount + s.HighMemoryCount
	return s
}

// queryID derives a CloudWatch-safe query id from a metric name.
func queryID(metricName string) string {
	id := strings.Join(strings.Fields(metricName), "")
	id = strings.ToLower(id)
	id = strings.ReplaceAll(id, ".", "_")
	return strings.ReplaceAll(id, "-", "_")
}

// formatTimestamp renders a datapoint timestamp the way the CSV and
// report artifacts expect.
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02T15:04:05")
}
