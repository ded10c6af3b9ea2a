// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/vaxsim/ensemble"
	"github.com/katalvlaran/vaxsim/epidemic"
	"github.com/katalvlaran/vaxsim/simctx"
)

func newEnsembleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ensemble",
		Short: "Run independent kernel replications and summarise an observable",
		Long: `Ensemble runs the configured compartment model as one well-mixed
population (the sum of every region's initial counts) many times and
summarises the outcome.

Without --at the observable is the final epidemic size (runs continue to
extinction). With --at T it is the size of --compartment at time T.

--compare repeats the ensemble with the other algorithm on the same
seed and reports the two-sample Kolmogorov-Smirnov distance.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			members, _ := flags.GetInt("members")
			workers, _ := flags.GetInt("workers")
			at, _ := flags.GetFloat64("at")
			compName, _ := flags.GetString("compartment")
			compare, _ := flags.GetBool("compare")

			m, err := cfg.Model()
			if err != nil {
				return err
			}
			var initial epidemic.Counts
			for _, reg := range cfg.Epidemic.Regions {
				c, err := reg.Counts()
				if err != nil {
					return err
				}
				for k := range c {
					initial[k] += c[k]
				}
			}
			comp, err := epidemic.ParseCompartment(compName)
			if err != nil {
				return err
			}
			replication := func(factory epidemic.Factory) ensemble.Replication {
				if at > 0 {
					return ensemble.CountAt(factory, m, initial, at, comp)
				}
				return ensemble.FinalSize(factory, m, initial)
			}

			sc, err := simctx.New(cfg.Run.Seed, 0, simctx.WithLogger(logger))
			if err != nil {
				return err
			}
			defer sc.Close()
			ctx, cancel := runContext(cmd)
			defer cancel()

			opts := []ensemble.Option{ensemble.WithLogger(logger)}
			if workers > 0 {
				opts = append(opts, ensemble.WithWorkers(workers))
			}
			algorithms := []string{cfg.Run.Algorithm}
			if compare {
				algorithms = append(algorithms, other(cfg.Run.Algorithm))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "model %s  R0 %.3f  N %d  members %d  seed %d\n",
				m.Name, epidemic.R0(m), initial.N(), members, cfg.Run.Seed)
			var samples [][]float64
			for _, name := range algorithms {
				factory, err := epidemic.Lookup(name)
				if err != nil {
					return err
				}
				start := time.Now()
				res, err := ensemble.Run(ctx, sc, members, replication(factory), opts...)
				if err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				printSummary(out, name, res.Summary)
				logger.Info("ensemble done", "algorithm", name, "members", members, "elapsed", elapsed(start))
				samples = append(samples, res.Values)
			}
			if len(samples) == 2 {
				fmt.Fprintf(out, "KS distance %s vs %s: %.4f\n", algorithms[0], algorithms[1], ensemble.KS(samples[0], samples[1]))
			}
			return nil
		},
	}
	flags := cmd.Flags()
	flags.Int("members", 200, "Number of replications")
	flags.Int("workers", 0, "Parallel replications (0 = GOMAXPROCS)")
	flags.Float64("at", 0, "Observe --compartment at this time instead of the final size")
	flags.String("compartment", "R", "Compartment observed with --at")
	flags.Bool("compare", false, "Also run the other algorithm and report the KS distance")

	return cmd
}

// other returns the registered algorithm that is not name.
func other(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, a := range epidemic.Algorithms() {
		if a != name {
			return a
		}
	}
	return name
}

func printSummary(w io.Writer, name string, s ensemble.Summary) {
	if s.N == 0 {
		fmt.Fprintf(w, "%-10s no members\n", name)
		return
	}
	fmt.Fprintf(w, "%-10s mean %.2f  sd %.2f  min %g  q05 %g  median %g  q95 %g  max %g\n",
		name, s.Mean, s.StdDev, s.Min, s.Q05, s.Median, s.Q95, s.Max)
}
