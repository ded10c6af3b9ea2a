// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/vaxsim/driver"
	"github.com/katalvlaran/vaxsim/epidemic"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one simulation and print its statistics series",
		Long: `Run executes one simulation to the configured horizon and prints one
line per statistics record: the time, the total counts per compartment,
mean confidence and complacency, willingness and the number of attitude
updates since the previous record.

On failure the error names the virtual time, seed and run id; rerun with
--seed to replay it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			jsonOut, _ := cmd.Flags().GetBool("json")
			perRegion, _ := cmd.Flags().GetBool("regions")

			d, sc, err := cfg.ToDriver(logger)
			if err != nil {
				return err
			}
			defer sc.Close()

			out := cmd.OutOrStdout()
			var w recordWriter
			if jsonOut {
				w = newJSONWriter(out)
			} else {
				w = newTableWriter(out, perRegion)
			}
			d.OnStatistics(w.write)

			ctx, cancel := runContext(cmd)
			defer cancel()
			start := time.Now()
			runErr := d.Run(ctx)
			if err := w.flush(); err != nil {
				return err
			}
			if runErr != nil {
				return runErr
			}

			t := d.Totals()
			logger.Info("done",
				"elapsed", elapsed(start), "kernel_events", t.KernelEvents, "rounds", t.Rounds,
				"gatherings", t.Gatherings, "demography", t.Demography,
				"vaccinated", t.Vaccinated, "imported", t.Imported)
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "Print one JSON object per record")
	cmd.Flags().Bool("regions", false, "Add one line per region to the table output")

	return cmd
}

type recordWriter interface {
	write(driver.Statistics)
	flush() error
}

type tableWriter struct {
	tw        *tabwriter.Writer
	perRegion bool
}

func newTableWriter(out io.Writer, perRegion bool) *tableWriter {
	w := &tableWriter{tw: tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight), perRegion: perRegion}
	cols := []string{"t", "region"}
	for _, c := range epidemic.Compartments() {
		cols = append(cols, c.String())
	}
	cols = append(cols, "confidence", "complacency", "willingness", "changed")
	fmt.Fprintln(w.tw, strings.Join(cols, "\t")+"\t")

	return w
}

func (w *tableWriter) write(s driver.Statistics) {
	w.line(s.Time, "*", s.Total)
	fmt.Fprintf(w.tw, "%.3f\t%.3f\t%.3f\t%d\t\n", s.MeanConfidence, s.MeanComplacency, s.Willingness, s.Changed)
	if !w.perRegion {
		return
	}
	for _, r := range s.Regions {
		w.line(s.Time, r.Region, r.Counts)
		fmt.Fprintln(w.tw, "\t\t\t\t")
	}
}

func (w *tableWriter) line(t float64, region string, c epidemic.Counts) {
	fmt.Fprintf(w.tw, "%g\t%s\t", t, region)
	for _, n := range c {
		fmt.Fprintf(w.tw, "%d\t", n)
	}
}

func (w *tableWriter) flush() error { return w.tw.Flush() }

type jsonWriter struct {
	enc *json.Encoder
	err error
}

func newJSONWriter(out io.Writer) *jsonWriter { return &jsonWriter{enc: json.NewEncoder(out)} }

type jsonRecord struct {
	Time        float64                     `json:"t"`
	Total       map[string]int64            `json:"total"`
	Regions     map[string]map[string]int64 `json:"regions"`
	Confidence  float64                     `json:"confidence"`
	Complacency float64                     `json:"complacency"`
	Willingness float64                     `json:"willingness"`
	Changed     int                         `json:"changed"`
}

func countsMap(c epidemic.Counts) map[string]int64 {
	out := make(map[string]int64, len(c))
	for _, x := range epidemic.Compartments() {
		out[x.String()] = c.Of(x)
	}
	return out
}

func (w *jsonWriter) write(s driver.Statistics) {
	if w.err != nil {
		return
	}
	rec := jsonRecord{
		Time:        s.Time,
		Total:       countsMap(s.Total),
		Regions:     make(map[string]map[string]int64, len(s.Regions)),
		Confidence:  s.MeanConfidence,
		Complacency: s.MeanComplacency,
		Willingness: s.Willingness,
		Changed:     s.Changed,
	}
	for _, r := range s.Regions {
		rec.Regions[r.Region] = countsMap(r.Counts)
	}
	w.err = w.enc.Encode(rec)
}

func (w *jsonWriter) flush() error { return w.err }
