package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lahanevaibhav/Prod-Monitoring/internal/classifier"
	"github.com/lahanevaibhav/Prod-Monitoring/internal/formatter"
	"github.com/lahanevaibhav/Prod-Monitoring/internal/metricsource"
)

// Artifact file names under each pairing's csv_data directory.
const (
	errorLogsFile  = "error_logs.csv"
	classifiedFile = "classified_errors.csv"
	reportMarkdown = "report.md"
	reportJSON     = "report.json"
)

// PairingDir returns the artifact directory of a pairing under root.
func PairingDir(root string, pairing Pairing) string {
	return filepath.Join(root, "prod", pairing.Service, pairing.Region)
}

// emit writes the pairing's artifact set. Each file failure is recorded
// individually; later files are still attempted.
func (r *Runner) emit(pairing Pairing, events []classifier.LogEvent, groups []metricsource.Group, report *formatter.Report, result *RunResult) {
	dir := PairingDir(r.opts.OutputDir, pairing)
	csvDir := filepath.Join(dir, "csv_data")
	if err := os.MkdirAll(csvDir, 0o755); err != nil {
		result.EmitErrors = append(result.EmitErrors, stageError("mkdir", err))
		return
	}
	result.OutputDir = dir

	if data, err := formatter.ErrorLogsCSV(events); err != nil {
		result.EmitErrors = append(result.EmitErrors, stageError(errorLogsFile, err))
	} else if err := os.WriteFile(filepath.Join(csvDir, errorLogsFile), data, 0o644); err != nil {
		result.EmitErrors = append(result.EmitErrors, stageError(errorLogsFile, err))
	}

	if data, err := formatter.NewCSV().Format(report); err != nil {
		result.EmitErrors = append(result.EmitErrors, stageError(classifiedFile, err))
	} else if err := os.WriteFile(filepath.Join(csvDir, classifiedFile), data, 0o644); err != nil {
		result.EmitErrors = append(result.EmitErrors, stageError(classifiedFile, err))
	}

	for _, group := range groups {
		name := groupFileName(group.Title)
		if data, err := formatter.MetricsGroupCSV(group); err != nil {
			result.EmitErrors = append(result.EmitErrors, stageError(name, err))
		} else if err := os.WriteFile(filepath.Join(csvDir, name), data, 0o644); err != nil {
			result.EmitErrors = append(result.EmitErrors, stageError(name, err))
		}
	}

	if data, err := formatter.NewMarkdown().Format(report); err != nil {
		result.EmitErrors = append(result.EmitErrors, stageError(reportMarkdown, err))
	} else if err := os.WriteFile(filepath.Join(dir, reportMarkdown), data, 0o644); err != nil {
		result.EmitErrors = append(result.EmitErrors, stageError(reportMarkdown, err))
	}

	if data, err := formatter.NewJSON().Format(report); err != nil {
		result.EmitErrors = append(result.EmitErrors, stageError(reportJSON, err))
	} else if err := os.WriteFile(filepath.Join(dir, reportJSON), data, 0o644); err != nil {
		result.EmitErrors = append(result.EmitErrors, stageError(reportJSON, err))
	}

	r.log.Info("wrote artifacts for %s to %s", pairing, dir)
}

// groupFileName keeps the widget title readable while staying
// filesystem-safe.
func groupFileName(title string) string {
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':':
			return '_'
		default:
			return r
		}
	}, title)
	return safe + ".csv"
}

func stageError(stage string, err error) string {
	return fmt.Sprintf("%s: %v", stage, err)
}
