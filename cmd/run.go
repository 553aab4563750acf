package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tanpawarit/market-digest-agents/agent/agents/pipeline"
	configx "github.com/tanpawarit/market-digest-agents/pkg/config"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: price, news, compose and dispatch",
	Long: `Run the full pipeline: price, news, compose and dispatch.

By default a failing collector is recorded and the run goes on, so the
digest may be written from data stored by earlier runs (the composer only
refuses when a table is empty). Pass --strict or set PIPELINE_STRICT=true
to stop the run at the first collector failure instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStages(cmd, pipeline.StagePrice, pipeline.StageNews, pipeline.StageCompose, pipeline.StageDispatch)
	},
}

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Fetch the current BTC price and store it",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStages(cmd, pipeline.StagePrice)
	},
}

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Research macro and crypto news and store the summaries",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStages(cmd, pipeline.StageNews)
	},
}

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Write the analysis from stored data and email it",
	RunE: func(cmd *cobra.Command, args []string) error {
		if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
			return runStages(cmd, pipeline.StageCompose)
		}
		return runStages(cmd, pipeline.StageCompose, pipeline.StageDispatch)
	},
}

func init() {
	runCmd.Flags().Bool("strict", false, "stop the run when a collector fails (overrides PIPELINE_STRICT)")
	digestCmd.Flags().Bool("dry-run", false, "print the analysis instead of emailing it")
}

func runStages(cmd *cobra.Command, stages ...pipeline.Stage) error {
	ctx := log.Logger.WithContext(cmd.Context())

	pipeCfg, err := configx.New[pipeline.Config]("PIPELINE")
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("strict") {
		pipeCfg.Strict, _ = cmd.Flags().GetBool("strict")
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn().Err(err).Msg("close store")
		}
	}()

	components, err := a.components(ctx, stages)
	if err != nil {
		return err
	}

	runner, err := pipeline.New(components, *pipeCfg)
	if err != nil {
		return err
	}

	report, err := runner.RunStages(ctx, stages...)
	printReport(cmd.OutOrStdout(), report)
	return err
}

func printReport(w io.Writer, report pipeline.Report) {
	fmt.Fprintf(w, "run %s\n", report.RunID)
	for _, s := range report.Stages {
		line := fmt.Sprintf("  %-9s %-8s %s", s.Stage, s.Status, s.Duration.Round(time.Millisecond))
		if s.Err != nil {
			line += "  " + s.Err.Error()
		}
		fmt.Fprintln(w, line)
	}
	if report.Price != nil {
		fmt.Fprintf(w, "price: %s at %s\n", report.Price.Price, report.Price.Timestamp)
	}
	for _, n := range report.News.Records {
		fmt.Fprintf(w, "news: %s\n", n.FinanceInfo)
	}
	if report.Document != "" {
		fmt.Fprintf(w, "\n%s\n", report.Document)
	}
}
