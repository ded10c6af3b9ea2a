// SPDX-License-Identifier: MIT

package driver

import (
	"context"

	"github.com/katalvlaran/vaxsim/attitude"
	"github.com/katalvlaran/vaxsim/epidemic"
	"github.com/katalvlaran/vaxsim/population"
)

// RegionCounts pairs a region with its compartment counts.
type RegionCounts struct {
	Region string
	Counts epidemic.Counts
}

// Statistics is the aggregate state republished every statistics interval.
type Statistics struct {
	Time            float64
	Regions         []RegionCounts
	Total           epidemic.Counts
	MeanConfidence  float64
	MeanComplacency float64
	Willingness     float64
	// Changed is the number of attitude updates since the previous record.
	Changed int
}

func (d *Driver) publishStatistics(_ context.Context, now float64) error {
	s := Statistics{
		Time:            now,
		Regions:         make([]RegionCounts, len(d.regions)),
		MeanConfidence:  d.table.Mean(population.Confidence),
		MeanComplacency: d.table.Mean(population.Complacency),
		Changed:         d.changed,
	}
	for i, r := range d.regions {
		c := r.Kernel.Counts()
		s.Regions[i] = RegionCounts{Region: r.Name, Counts: c}
		for k := range c {
			s.Total[k] += c[k]
		}
	}
	w, err := attitude.Willingness(d.table, d.cfg.barrier, d.cfg.threshold)
	if err != nil {
		return err
	}
	s.Willingness = w
	d.changed = 0

	for _, fn := range d.onStats {
		fn(s)
	}
	d.logger.Debug("statistics", "t", now, "total", s.Total.String(), "willingness", w)

	return nil
}
