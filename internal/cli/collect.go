package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/lahanevaibhav/Prod-Monitoring/internal/ai/providers/lambda"
	"github.com/lahanevaibhav/Prod-Monitoring/internal/analysis"
	"github.com/lahanevaibhav/Prod-Monitoring/internal/config"
	"github.com/lahanevaibhav/Prod-Monitoring/internal/emoji"
	"github.com/lahanevaibhav/Prod-Monitoring/internal/logger"
	"github.com/lahanevaibhav/Prod-Monitoring/internal/logsource"
	"github.com/lahanevaibhav/Prod-Monitoring/internal/metricsource"
	"github.com/lahanevaibhav/Prod-Monitoring/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	collectDays    int
	collectService string
	collectRegion  string
	collectOutDir  string
	collectNoAI    bool
	collectDryRun  bool
)

func newCollectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Collect and classify errors from CloudWatch",
		Long: `Collect error logs and dashboard metrics from CloudWatch for every
configured service/region pairing, classify the errors, and write the
artifact tree (CSV data plus Markdown and JSON reports).

AWS credentials come from the default SDK chain. Pairings run
concurrently; one failing region never aborts the others.

Examples:
  prodmon collect
  prodmon collect --service SRA --region NA1
  prodmon collect --days 7 --no-ai`,
		Args: cobra.NoArgs,
		RunE: runCollect,
	}

	cmd.Flags().IntVar(&collectDays, "days", 0, "override collection window in days")
	cmd.Flags().StringVar(&collectService, "service", "", "collect only this service")
	cmd.Flags().StringVar(&collectRegion, "region", "", "collect only this region")
	cmd.Flags().StringVar(&collectOutDir, "out", "", "artifact output directory")
	cmd.Flags().BoolVar(&collectNoAI, "no-ai", false, "skip AI analysis even if configured")
	cmd.Flags().BoolVar(&collectDryRun, "dry-run", false, "list pairings without collecting")

	return cmd
}

func runCollect(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()

	if collectDays > 0 {
		cfg.Collection.DaysBack = collectDays
	}
	if collectOutDir == "" {
		collectOutDir = cfg.Output.Dir
	}

	pairings := filterPairings(cfg.Pairings(), collectService, collectRegion)
	if len(pairings) == 0 {
		return fmt.Errorf("no service/region pairings configured (check the services section of your config)")
	}

	window := cfg.Window(time.Now())
	if collectDryRun {
		fmt.Printf("%s Would collect %s for:\n", emoji.GetEmoji("target"), window)
		for _, p := range pairings {
			fmt.Printf("  %s (dashboard=%s, aws_region=%s, log_group=%s)\n", p, p.Dashboard, p.AWSRegion, p.LogGroup)
		}
		return nil
	}

	log := logger.NewWithCallback("collect", isVerbose)
	runner := pipeline.NewRunner(
		cloudWatchSources(cfg.Collection, log),
		cloudWatchMetrics(log),
		pipeline.Options{
			Namespace:        cfg.Classifier.Namespace,
			ExcludePatterns:  cfg.Classifier.ExcludePatterns,
			NoisePatterns:    cfg.Classifier.NoisePatterns,
			DisableAnonymize: cfg.Classifier.DisableAnonymize,
			OutputDir:        collectOutDir,
			Workers:          cfg.Collection.Workers,
			Analyzer:         buildAnalyzer(cfg, log),
			Logger:           log,
		},
	)

	ctx := cmd.Context()
	fmt.Printf("%s Collecting %s for %d pairings\n", emoji.GetEmoji("rocket"), window, len(pairings))
	results := runner.RunAll(ctx, pairings, window)

	printCollectSummary(results)

	if cross := runner.CrossRegion(ctx, results); cross != nil && cross.Status == analysis.StatusSuccess {
		fmt.Printf("\n%s Cross-region analysis:\n\n%s\n", emoji.GetEmoji("brain"), cross.Analysis)
	}

	for _, res := range results {
		if res.FetchError != "" || res.MetricsError != "" || len(res.EmitErrors) > 0 {
			return fmt.Errorf("collection completed with errors (see summary above)")
		}
	}
	return nil
}

func filterPairings(pairings []pipeline.Pairing, service, region string) []pipeline.Pairing {
	if service == "" && region == "" {
		return pairings
	}
	var out []pipeline.Pairing
	for _, p := range pairings {
		if service != "" && p.Service != service {
			continue
		}
		if region != "" && p.Region != region {
			continue
		}
		out = append(out, p)
	}
	return out
}

// cloudWatchSources builds per-pairing log sources against the real AWS
// endpoints.
func cloudWatchSources(collection config.CollectionConfig, log *logger.Logger) pipeline.SourceFactory {
	return func(ctx context.Context, p pipeline.Pairing) (logsource.Source, error) {
		return logsource.NewCloudWatchSource(ctx, p.AWSRegion, p.LogGroup, logsource.CloudWatchOptions{
			FilterPattern: collection.FilterPattern,
			MaxEntries:    collection.MaxEntries,
			MaxIterations: collection.MaxIterations,
			PageSize:      int32(collection.PageSize),
		}, log.WithComponent("logsource"))
	}
}

func cloudWatchMetrics(log *logger.Logger) pipeline.MetricsFactory {
	return func(ctx context.Context, p pipeline.Pairing) (pipeline.MetricsSource, error) {
		return metricsource.NewCloudWatchSource(ctx, p.AWSRegion, p.Dashboard, log.WithComponent("metricsource"))
	}
}

// buildAnalyzer wires the Lambda provider when AI analysis is configured.
func buildAnalyzer(cfg *config.Config, log *logger.Logger) *analysis.Analyzer {
	if collectNoAI || !cfg.AI.Enabled() {
		if isVerbose() {
			fmt.Fprintf(os.Stderr, "AI analysis disabled\n")
		}
		return nil
	}

	provider, err := lambda.New(&lambda.Config{
		Endpoint: cfg.AI.Endpoint,
		APIKey:   cfg.AI.APIKey,
		Timeout:  cfg.AI.Timeout,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: AI provider misconfigured, continuing without analysis: %v\n", err)
		return nil
	}

	return analysis.NewAnalyzer(provider, analysis.Options{
		ContextFile: cfg.AI.ContextFile,
		Logger:      log.WithComponent("analysis"),
	})
}

func printCollectSummary(results []pipeline.RunResult) {
	fmt.Printf("\n%s Collection summary:\n", emoji.GetEmoji("statistics"))
	for _, res := range results {
		status := emoji.GetEmoji("success")
		if res.FetchError != "" || res.MetricsError != "" || len(res.EmitErrors) > 0 {
			status = emoji.GetEmoji("warning")
		}

		patterns := 0
		if res.Report != nil {
			patterns = res.Report.UniquePatterns()
		}
		fmt.Printf("  %s %s: %d events, %d patterns", status, res.Pairing, res.Events, patterns)
		if res.OutputDir != "" {
			fmt.Printf(" -> %s", res.OutputDir)
		}
		fmt.Println()

		if res.FetchError != "" {
			fmt.Printf("      fetch: %s\n", res.FetchError)
		}
		if res.MetricsError != "" {
			fmt.Printf("      metrics: %s\n", res.MetricsError)
		}
		for _, emitErr := range res.EmitErrors {
			fmt.Printf("      emit: %s\n", emitErr)
		}
	}
}
