package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/lahanevaibhav/Prod-Monitoring/internal/classifier"
	"github.com/lahanevaibhav/Prod-Monitoring/internal/formatter"
	"github.com/spf13/cobra"
	"github.com/yildizm/go-logparser"
)

func newWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [file]",
		Short: "Watch a log file and classify errors in real time",
		Long: `Monitor a log file for changes and classify new entries as they are
written. Each new error is printed with its signature; a ranked summary
is shown on exit. Press Ctrl+C to stop watching.

Examples:
  prodmon watch app.log
  prodmon watch --namespace com.example.shop app.log`,
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}

	cmd.Flags().StringVar(&classifyNamespace, "namespace", "", "application package prefix for location extraction")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()
	if !cmd.Flag("namespace").Changed {
		classifyNamespace = cfg.Classifier.Namespace
	}

	watcher, file, cleanup, err := setupFileWatcher(args[0])
	if err != nil {
		return err
	}
	defer cleanup()

	return runWatchLoop(watcher, file)
}

// watchState carries the classifier across watch events.
type watchState struct {
	parser    logparser.Parser
	extractor *classifier.Extractor
	agg       *classifier.Aggregator
}

func newWatchState() *watchState {
	cfg := GetGlobalConfig()
	return &watchState{
		extractor: classifier.NewExtractor(classifyNamespace),
		agg:       newClassifyAggregator(cfg.Classifier.NoisePatterns),
	}
}

func (s *watchState) processNewLines(file *os.File) error {
	scanner := bufio.NewScanner(file)

	var newLines []string
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			newLines = append(newLines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}
	if len(newLines) == 0 {
		return nil
	}

	if s.parser == nil {
		s.parser = logparser.New()
		if isVerbose() {
			fmt.Fprintf(os.Stderr, "Created auto-detecting parser\n")
		}
	}

	entries, err := s.parser.ParseString(strings.Join(newLines, "\n"))
	if err != nil {
		if isVerbose() {
			fmt.Fprintf(os.Stderr, "Failed to parse lines: %v\n", err)
		}
		return nil
	}

	for _, entry := range entries {
		event := classifier.LogEvent{
			Timestamp: entry.Timestamp.Format("2006-01-02T15:04:05"),
			Message:   entry.Message,
		}
		s.agg.Add(event)

		sig := s.extractor.Extract(entry.Message)
		timestamp := entry.Timestamp.Format("15:04:05")
		fmt.Printf("[%s] %s\n", timestamp, sig.Signature)
	}
	return nil
}

// printSummary shows the ranked patterns collected during the session.
func (s *watchState) printSummary() {
	records := s.agg.Records()
	if len(records) == 0 {
		return
	}

	report := &formatter.Report{
		TotalEvents: s.agg.TotalEvents(),
		Records:     records,
	}
	if output, err := formatter.NewTerminal(useColor()).Format(report); err == nil {
		fmt.Printf("\n%s", output)
	}
}

// cleanupWatcher safely closes watcher with error logging
func cleanupWatcher(watcher *fsnotify.Watcher) {
	if err := watcher.Close(); err != nil && isVerbose() {
		fmt.Fprintf(os.Stderr, "Warning: failed to close watcher: %v\n", err)
	}
}

// cleanupFile safely closes file with error logging
func cleanupFile(file *os.File) {
	if err := file.Close(); err != nil && isVerbose() {
		fmt.Fprintf(os.Stderr, "Warning: failed to close file: %v\n", err)
	}
}

// createWatcher creates and configures a new file system watcher
func createWatcher(filename string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(filename); err != nil {
		cleanupWatcher(watcher)
		return nil, fmt.Errorf("failed to watch file: %w", err)
	}

	return watcher, nil
}

// openWatchFile opens and seeks to the end so only new entries are
// processed.
func openWatchFile(filename string) (*os.File, error) {
	// #nosec G304 - path is validated by caller
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		cleanupFile(file)
		return nil, fmt.Errorf("failed to seek to end of file: %w", err)
	}

	return file, nil
}

// setupFileWatcher creates and configures file watcher
func setupFileWatcher(filename string) (*fsnotify.Watcher, *os.File, func(), error) {
	if err := validateWatchFilePath(filename); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid file path: %w", err)
	}

	if isVerbose() {
		fmt.Fprintf(os.Stderr, "Watching file: %s\n", filename)
		fmt.Fprintf(os.Stderr, "Press Ctrl+C to stop...\n\n")
	}

	watcher, err := createWatcher(filename)
	if err != nil {
		return nil, nil, nil, err
	}

	file, err := openWatchFile(filename)
	if err != nil {
		cleanupWatcher(watcher)
		return nil, nil, nil, err
	}

	cleanup := func() {
		cleanupWatcher(watcher)
		cleanupFile(file)
	}

	return watcher, file, cleanup, nil
}

// runWatchLoop runs the main watch loop with signal handling
func runWatchLoop(watcher *fsnotify.Watcher, file *os.File) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	state := newWatchState()

	for {
		select {
		case <-ctx.Done():
			state.printSummary()
			return nil

		case <-signals:
			if isVerbose() {
				fmt.Fprintf(os.Stderr, "\nReceived interrupt signal, stopping...\n")
			}
			state.printSummary()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if event.Op&fsnotify.Write == fsnotify.Write {
				if err := state.processNewLines(file); err != nil && isVerbose() {
					fmt.Fprintf(os.Stderr, "Error handling event: %v\n", err)
				}
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			if isVerbose() {
				fmt.Fprintf(os.Stderr, "Watcher error: %v\n", err)
			}
		}
	}
}

// validateWatchFilePath validates that a file path is safe to watch
func validateWatchFilePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("empty file path")
	}

	cleanPath := filepath.Clean(path)
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("cannot watch directory, must be a file")
	}

	return nil
}
