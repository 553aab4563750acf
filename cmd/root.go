package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	contractx "github.com/tanpawarit/market-digest-agents/agent/contract"
	configx "github.com/tanpawarit/market-digest-agents/pkg/config"
	logx "github.com/tanpawarit/market-digest-agents/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "market-digest",
	Short: "Collect BTC prices and finance news, then email an AI written digest",
	Long: `market-digest runs three cooperating agents over a shared store:
a price collector, a news researcher and an analyst that writes and
emails a short market digest.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env")
		configx.SetEnvFile(envFile)

		logCfg, err := configx.New[logx.Config]("LOG")
		if err != nil {
			return err
		}
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			logCfg.Debug = true
		}
		logx.Init(*logCfg)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("env", "", "path of a .env file to load (default: ./.env when present)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(priceCmd)
	rootCmd.AddCommand(newsCmd)
	rootCmd.AddCommand(digestCmd)
	rootCmd.AddCommand(checkCmd)
}

// Execute runs the CLI and exits non-zero on failure: 2 for configuration
// problems, 1 for everything else.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if errors.Is(err, contractx.ErrConfiguration) {
		return 2
	}
	return 1
}
