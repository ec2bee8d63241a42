package cli

import (
	"fmt"

	"github.com/lahanevaibhav/Prod-Monitoring/internal/consolidate"
	"github.com/lahanevaibhav/Prod-Monitoring/internal/emoji"
	"github.com/lahanevaibhav/Prod-Monitoring/internal/logger"
	"github.com/spf13/cobra"
)

var (
	reportOutDir string
	reportEnv    string
)

func newReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Consolidate past collection runs into one report",
		Long: `Walk the artifact tree of previous collect runs and merge every
service/region report into a single consolidated Markdown and JSON
report with an executive summary.

Examples:
  prodmon report
  prodmon report --out ./output --env prod`,
		Args: cobra.NoArgs,
		RunE: runReport,
	}

	cmd.Flags().StringVar(&reportOutDir, "out", "", "artifact directory of past runs")
	cmd.Flags().StringVar(&reportEnv, "env", "", "environment subtree to consolidate")

	return cmd
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()

	if reportOutDir == "" {
		reportOutDir = cfg.Output.Dir
	}
	if reportEnv == "" {
		reportEnv = cfg.Environment
	}

	log := logger.NewWithCallback("consolidate", isVerbose)
	c := consolidate.New(reportOutDir, reportEnv, log)

	data, err := c.Collect()
	if err != nil {
		return err
	}
	if len(data.Services) == 0 {
		return fmt.Errorf("no reports found under %s/%s (run 'prodmon collect' first)", reportOutDir, reportEnv)
	}

	jsonPath, mdPath, err := c.Save(data)
	if err != nil {
		return err
	}

	regions := 0
	for _, svc := range data.Services {
		regions += len(svc)
	}
	fmt.Printf("%s Consolidated %d services across %d regions\n", emoji.GetEmoji("success"), len(data.Services), regions)
	fmt.Printf("%s %s\n", emoji.GetEmoji("note"), mdPath)
	fmt.Printf("%s %s\n", emoji.GetEmoji("note"), jsonPath)
	return nil
}
