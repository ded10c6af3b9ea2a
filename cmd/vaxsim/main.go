// SPDX-License-Identifier: MIT

// Command vaxsim runs epidemic and vaccination-attitude simulations
// described by a YAML configuration.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/vaxsim/config"
	"github.com/katalvlaran/vaxsim/logging"
)

var version = "0.1.0-dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vaxsim",
		Short: "Stochastic epidemic and vaccination-attitude simulator",
		Long: `vaxsim couples compartmental epidemic kernels (Gillespie or Sellke)
with an attitude propagation model on a synthetic social network.

Runs are described by a YAML file; VAXSIM_* environment variables and
the flags below override it.`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "YAML configuration file (defaults apply when empty)")
	flags.Uint64("seed", 0, "Override run.seed")
	flags.String("log-level", "", "Override logging.level (error|warn|info|debug|trace)")
	flags.Duration("wall-budget", 0, "Abort after this much wall time (0 = unlimited)")
	flags.Duration("pace", 0, "Wall time per virtual time unit (0 = as fast as possible)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newEnsembleCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "vaxsim version %s\n", version)
		},
	}
}

// loadConfig resolves the configuration and applies the flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if flags.Changed("seed") {
		cfg.Run.Seed, _ = flags.GetUint64("seed")
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("pace") {
		cfg.Run.Pace, _ = flags.GetDuration("pace")
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	return cfg, logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr()), nil
}

// runContext bounds the command context by --wall-budget.
func runContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	budget, _ := cmd.Flags().GetDuration("wall-budget")
	if budget > 0 {
		return context.WithTimeout(ctx, budget)
	}
	return context.WithCancel(ctx)
}

func elapsed(start time.Time) string {
	return time.Since(start).Round(time.Millisecond).String()
}
