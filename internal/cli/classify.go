package cli

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/lahanevaibhav/Prod-Monitoring/internal/anonymizer"
	"github.com/lahanevaibhav/Prod-Monitoring/internal/classifier"
	"github.com/lahanevaibhav/Prod-Monitoring/internal/formatter"
	"github.com/spf13/cobra"
	"github.com/yildizm/go-logparser"
)

// defaultMaxLines caps input when no explicit limit is set.
const defaultMaxLines = 100000

var (
	classifyNamespace   string
	classifyNoAnonymize bool
	classifyMaxLines    int
	classifyExclude     []string
	classifyOutputFile  string
)

func newClassifyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify [file]",
		Short: "Classify error logs from a file or stdin",
		Long: `Classify error logs into recurring signatures with occurrence counts,
source locations, and redacted sample messages.

Accepts the error_logs.csv artifact of a collection run, any plain log
file, or stdin. Raw log lines are parsed with format auto-detection.

Examples:
  prodmon classify output/prod/SRA/NA1/csv_data/error_logs.csv
  prodmon classify app.log -o markdown
  kubectl logs my-pod | prodmon classify`,
		Args: cobra.MaximumNArgs(1),
		RunE: runClassify,
	}

	cmd.Flags().StringVar(&classifyNamespace, "namespace", "", "application package prefix for location extraction")
	cmd.Flags().BoolVar(&classifyNoAnonymize, "no-anonymize", false, "disable PII redaction in samples")
	cmd.Flags().IntVar(&classifyMaxLines, "max-lines", defaultMaxLines, "maximum lines to read")
	cmd.Flags().StringSliceVar(&classifyExclude, "exclude", nil, "drop events matching these patterns")
	cmd.Flags().StringVar(&classifyOutputFile, "output-file", "", "save output to file instead of stdout")

	return cmd
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()

	if !cmd.Flag("namespace").Changed {
		classifyNamespace = cfg.Classifier.Namespace
	}
	if !cmd.Flag("no-anonymize").Changed {
		classifyNoAnonymize = cfg.Classifier.DisableAnonymize
	}
	if !cmd.Flag("exclude").Changed {
		classifyExclude = cfg.Classifier.ExcludePatterns
	}

	reader, cleanup, err := openClassifyInput(args)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}

	events, err := readEvents(reader)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return fmt.Errorf("no log entries found")
	}
	if isVerbose() {
		fmt.Fprintf(os.Stderr, "Read %d events\n", len(events))
	}

	agg := newClassifyAggregator(cfg.Classifier.NoisePatterns)
	agg.AddAll(events)

	report := &formatter.Report{
		TotalEvents: agg.TotalEvents(),
		Records:     agg.Records(),
	}

	f, err := formatter.New(getOutputFormat(), useColor())
	if err != nil {
		return err
	}
	output, err := f.Format(report)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	return writeOutput(output, classifyOutputFile)
}

func newClassifyAggregator(noisePatterns []string) *classifier.Aggregator {
	cleaner := classifier.NewCleaner(classifyExclude, noisePatterns)
	extractor := classifier.NewExtractor(classifyNamespace)
	anonymize := anonymizer.Anonymize
	if classifyNoAnonymize {
		anonymize = func(s string) string { return s }
	}
	return classifier.NewAggregator(cleaner, extractor, anonymize)
}

// openClassifyInput returns the input reader for the optional file arg,
// falling back to stdin.
func openClassifyInput(args []string) (io.Reader, func(), error) {
	if len(args) == 0 {
		if isVerbose() {
			fmt.Fprintf(os.Stderr, "Reading from stdin...\n")
		}
		return os.Stdin, nil, nil
	}

	cleanPath := filepath.Clean(args[0])
	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return nil, nil, fmt.Errorf("path is a directory, not a file: %s", cleanPath)
	}

	// #nosec G304 - path is validated above
	file, err := os.Open(cleanPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file %s: %w", cleanPath, err)
	}
	cleanup := func() {
		if err := file.Close(); err != nil && isVerbose() {
			fmt.Fprintf(os.Stderr, "Warning: failed to close file: %v\n", err)
		}
	}
	if isVerbose() {
		fmt.Fprintf(os.Stderr, "Classifying file: %s\n", cleanPath)
	}
	return file, cleanup, nil
}

// readEvents turns the input into log events. Input starting with the
// error_logs.csv header is read as that artifact; anything else goes
// through log format auto-detection.
func readEvents(reader io.Reader) ([]classifier.LogEvent, error) {
	lines, err := readLines(reader, classifyMaxLines)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, nil
	}

	if strings.HasPrefix(lines[0], "timestamp,log_message") {
		return parseErrorLogsCSV(strings.Join(lines, "\n"))
	}
	return parseRawLines(lines)
}

func readLines(reader io.Reader, maxLines int) ([]string, error) {
	if maxLines <= 0 {
		maxLines = defaultMaxLines
	}

	var lines []string
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024) // 1MB buffer

	for scanner.Scan() && len(lines) < maxLines {
		if line := scanner.Text(); strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return lines, fmt.Errorf("scanner error: %w", err)
	}
	return lines, nil
}

func parseErrorLogsCSV(content string) ([]classifier.LogEvent, error) {
	r := csv.NewReader(strings.NewReader(content))
	r.FieldsPerRecord = 2

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	events := make([]classifier.LogEvent, 0, len(rows)-1)
	for _, row := range rows[1:] {
		events = append(events, classifier.LogEvent{Timestamp: row[0], Message: row[1]})
	}
	return events, nil
}

func parseRawLines(lines []string) ([]classifier.LogEvent, error) {
	p := logparser.New()
	entries, err := p.ParseString(strings.Join(lines, "\n"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse logs: %w", err)
	}

	events := make([]classifier.LogEvent, 0, len(entries))
	for _, entry := range entries {
		events = append(events, classifier.LogEvent{
			Timestamp: entry.Timestamp.Format("2006-01-02T15:04:05"),
			Message:   entry.Message,
		})
	}
	return events, nil
}

// writeOutput writes formatted output to a file or stdout.
func writeOutput(output []byte, path string) error {
	if path == "" {
		fmt.Print(string(output))
		return nil
	}

	if err := os.WriteFile(filepath.Clean(path), output, 0o644); err != nil {
		return fmt.Errorf("failed to write output to file: %w", err)
	}
	if isVerbose() {
		fmt.Fprintf(os.Stderr, "Output saved to: %s\n", path)
	}
	return nil
}
