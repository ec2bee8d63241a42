package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/lahanevaibhav/Prod-Monitoring/internal/classifier"
	"github.com/lahanevaibhav/Prod-Monitoring/internal/metricsource"
)

// ClassifiedHeader is the column set of the classified-errors artifact.
// Downstream consumers key on these names; do not reorder.
var ClassifiedHeader = []string{
	"Error Signature",
	"Occurrence Count",
	"Location",
	"Sample Error Message",
}

// csvFormatter renders the ranked records as classified_errors.csv content
type csvFormatter struct{}

// NewCSV creates a new CSV formatter
func NewCSV() Formatter {
	return &csvFormatter{}
}

func (f *csvFormatter) Format(report *Report) ([]byte, error) {
	var b bytes.Buffer
	writer := csv.NewWriter(&b)

	if err := writer.Write(ClassifiedHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, rec := range report.Records {
		row := []string{
			rec.Signature,
			strconv.Itoa(rec.Count),
			rec.Location,
			rec.Sample,
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return b.Bytes(), nil
}

// ErrorLogsCSV renders raw events as the error_logs.csv artifact.
func ErrorLogsCSV(events []classifier.LogEvent) ([]byte, error) {
	var b bytes.Buffer
	writer := csv.NewWriter(&b)

	if err := writer.Write([]string{"timestamp", "log_message"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, ev := range events {
		if err := writer.Write([]string{ev.Timestamp, ev.Message}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return b.Bytes(), nil
}

// MetricsGroupCSV renders one widget's breaching datapoints. Metric names
// are shortened to their last dotted segment for readability.
func MetricsGroupCSV(group metricsource.Group) ([]byte, error) {
	var b bytes.Buffer
	writer := csv.NewWriter(&b)

	if err := writer.Write([]string{"metric", "timestamp", "value"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, p := range group.Points {
		short := p.Metric
		if idx := strings.LastIndex(short, "."); idx >= 0 {
			short = short[idx+1:]
		}
		row := []string{short, p.Timestamp, strconv.FormatFloat(p.Value, 'f', -1, 64)}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return b.Bytes(), nil
}
