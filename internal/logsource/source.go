// Package logsource fetches raw error-log events for a collection window.
package logsource

import (
	"context"
	"fmt"
	"time"

	"github.com/lahanevaibhav/Prod-Monitoring/internal/classifier"
)

const (
	// DefaultFilterPattern keeps ERROR entries and drops the periodic
	// metrics aggregation and internal nginx chatter.
	DefaultFilterPattern = "ERROR -METRICS_AGG -nginxinternal"

	// DefaultMaxEntries caps the total number of events per window.
	DefaultMaxEntries = 10000

	// DefaultMaxIterations caps pagination round-trips per window.
	DefaultMaxIterations = 100

	// DefaultPageSize is the per-request event limit.
	DefaultPageSize = 1000
)

// Window is a half-open-in-spirit collection interval. Both bounds are
// inclusive on the wire (CloudWatch treats them that way).
type Window struct {
	Start time.Time
	End   time.Time
}

// DefaultWindow returns the standard reporting interval: the two full
// days before today, ending one second before today's midnight.
func DefaultWindow(now time.Time) Window {
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return Window{
		Start: todayStart.AddDate(0, 0, -2),
		End:   todayStart.Add(-time.Second),
	}
}

// String formats the window for log output.
func (w Window) String() string {
	return fmt.Sprintf("%s to %s", w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
}

// Source yields the raw log events of a collection window. Implementations
// may return partial results together with an error when pagination fails
// part-way through.
type Source interface {
	FetchWindow(ctx context.Context, window Window) ([]classifier.LogEvent, error)
}

// SyntheticFetchError builds the placeholder event recorded when a fetch
// fails. It flows through the normal classification pipeline so the failure
// shows up in the report instead of silently producing an empty ranking.
func SyntheticFetchError(logGroup string, err error, now time.Time) classifier.LogEvent {
	return classifier.LogEvent{
		Timestamp: now.Format("2006-01-02T15:04:05"),
		Message:   fmt.Sprintf("Log fetch error from %s: %v", logGroup, err),
	}
}
