// SPDX-License-Identifier: MIT
// Package: vaxsim/population
//
// synthesize.go - generate a population table from distribution samplers.
//
// Contract:
//   • The first Spec.Attractors rows are attractors; every other row is
//     assigned a uniformly random attractor (NoAttractor when there are none).
//   • Attitude samplers are clamped to [0,1]; weight samplers to [0,∞).
//   • Rows are spread round-robin over Spec.Regions sub-populations.
//   • Everything random is drawn from src, so the table is a pure function of
//     (spec, seed).

package population

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/katalvlaran/vaxsim/dist"
	"github.com/katalvlaran/vaxsim/household"
)

// ErrBadSpec indicates an unusable synthesis specification.
var ErrBadSpec = errors.New("population: bad synthesis spec")

// Spec describes a synthetic population. Nil samplers take the defaults
// listed on each field.
type Spec struct {
	Size       int
	Attractors int
	Regions    int // default 1

	Calculation   dist.Sampler // default constant(0.5)
	Confidence    dist.Sampler // default constant(0.5)
	Complacency   dist.Sampler // default constant(0.5)
	Assortativity dist.Sampler // default constant(0.5)

	InGroup         dist.Sampler // default constant(1)
	OutGroup        dist.Sampler // default constant(0.5)
	SelfWeight      dist.Sampler // default constant(1)
	AttractorWeight dist.Sampler // default constant(1)

	// NetworkSize is the nominal tie count; clipped to [0, Size-1]. Default 0.
	NetworkSize dist.Sampler

	// Compositions and CompositionWeights give the household mix; leaf states
	// only. Empty means every row is SoloNoKids.
	Compositions       []household.Composition
	CompositionWeights []float64
}

func orConst(s dist.Sampler, v float64) dist.Sampler {
	if s == nil {
		return dist.Constant{Value: v}
	}
	return s
}

// Synthesize draws Spec.Size rows.
func Synthesize(spec Spec, src rand.Source) ([]Row, error) {
	if spec.Size < 0 || spec.Attractors < 0 || spec.Attractors > spec.Size {
		return nil, fmt.Errorf("Synthesize: size=%d attractors=%d: %w", spec.Size, spec.Attractors, ErrBadSpec)
	}
	if src == nil {
		return nil, fmt.Errorf("Synthesize: nil source: %w", ErrBadSpec)
	}
	if len(spec.Compositions) != len(spec.CompositionWeights) {
		return nil, fmt.Errorf("Synthesize: %d compositions, %d weights: %w",
			len(spec.Compositions), len(spec.CompositionWeights), ErrBadSpec)
	}
	for _, c := range spec.Compositions {
		if !c.Valid() || c.Aggregate() {
			return nil, fmt.Errorf("Synthesize: composition %s: %w", c, ErrBadSpec)
		}
	}
	regions := spec.Regions
	if regions <= 0 {
		regions = 1
	}

	var pickComposition func() household.Composition
	if len(spec.Compositions) == 0 {
		pickComposition = func() household.Composition { return household.SoloNoKids }
	} else {
		cat, err := dist.Categorical(spec.CompositionWeights, src)
		if err != nil {
			return nil, fmt.Errorf("Synthesize: %w: %w", ErrBadSpec, err)
		}
		pickComposition = func() household.Composition { return spec.Compositions[int(cat.Rand())] }
	}

	var (
		calc   = dist.Clamp01(orConst(spec.Calculation, 0.5))
		conf   = dist.Clamp01(orConst(spec.Confidence, 0.5))
		compl  = dist.Clamp01(orConst(spec.Complacency, 0.5))
		assort = dist.Clamp01(orConst(spec.Assortativity, 0.5))
		inW    = orConst(spec.InGroup, 1)
		outW   = orConst(spec.OutGroup, 0.5)
		selfW  = orConst(spec.SelfWeight, 1)
		attrW  = orConst(spec.AttractorWeight, 1)
		netSz  = orConst(spec.NetworkSize, 0)
		rng    = rand.New(src)
	)
	nonNeg := func(s dist.Sampler) float64 { return math.Max(0, s.Rand()) }

	rows := make([]Row, spec.Size)
	member := int64(spec.Size) // individual ids follow household ids
	for i := range rows {
		r := Row{
			ID:            int64(i),
			Region:        i % regions,
			Attractor:     NoAttractor,
			Calculation:   calc.Rand(),
			Confidence:    conf.Rand(),
			Complacency:   compl.Rand(),
			Assortativity: assort.Rand(),
			Weights: Weights{
				InGroup:   nonNeg(inW),
				OutGroup:  nonNeg(outW),
				Self:      nonNeg(selfW),
				Attractor: nonNeg(attrW),
			},
			Composition: pickComposition(),
		}
		switch {
		case i < spec.Attractors:
			r.Attractor = IsAttractor
		case spec.Attractors > 0:
			r.Attractor = int64(rng.IntN(spec.Attractors))
		}
		if spec.Size > 1 {
			r.NetworkSize = int(math.Min(float64(spec.Size-1), math.Max(0, math.Round(netSz.Rand()))))
		}
		r.Members, member = fillMembers(r.Composition, member)
		rows[i] = r
	}

	return rows, nil
}

// fillMembers allocates individual ids for the members of composition c.
func fillMembers(c household.Composition, next int64) (Members, int64) {
	m := Members{Referent: NoMember, Partner: NoMember, Children: [3]int64{NoMember, NoMember, NoMember}}
	in := c.Info()
	if in.Adults >= 1 {
		m.Referent = next
		next++
	}
	if in.Adults >= 2 {
		m.Partner = next
		next++
	}
	for k := 0; k < in.Children && k < len(m.Children); k++ {
		m.Children[k] = next
		next++
	}

	return m, next
}
