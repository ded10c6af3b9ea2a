// SPDX-License-Identifier: MIT
// Package: vaxsim/dist
//
// parse.go - specification strings → Samplers via an explicit registry.
//
// Grammar (whitespace-insensitive, name case-insensitive):
//
//	spec := name "(" [ number { "," number } ] ")" | number
//
// A bare number is shorthand for constant(number).
//
// Registry (name → arity):
//   constant|const(v)            exponential|exp(mean)        rate(lambda)
//   uniform(min,max)             normal(mu,sigma)             lognormal(mu,sigma)
//   gamma(shape,rate)            weibull(k,lambda)            triangular(min,mode,max)
//   poisson(lambda)              categorical(w0,w1,...)

package dist

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strconv"
	"strings"
)

// Factory builds a Sampler from already-tokenized numeric arguments.
type Factory func(args []float64, src rand.Source) (Sampler, error)

// family couples a factory with its arity (-1 means variadic, at least one).
type family struct {
	arity int
	build Factory
}

// registry is resolved once at package init and never mutated afterwards.
var registry = map[string]family{
	"constant": {1, func(a []float64, _ rand.Source) (Sampler, error) { return Constant{Value: a[0]}, nil }},
	"exponential": {1, func(a []float64, s rand.Source) (Sampler, error) {
		return ExponentialMean(a[0], s)
	}},
	"rate":        {1, func(a []float64, s rand.Source) (Sampler, error) { return Exponential(a[0], s) }},
	"uniform":     {2, func(a []float64, s rand.Source) (Sampler, error) { return Uniform(a[0], a[1], s) }},
	"normal":      {2, func(a []float64, s rand.Source) (Sampler, error) { return Normal(a[0], a[1], s) }},
	"lognormal":   {2, func(a []float64, s rand.Source) (Sampler, error) { return LogNormal(a[0], a[1], s) }},
	"gamma":       {2, func(a []float64, s rand.Source) (Sampler, error) { return Gamma(a[0], a[1], s) }},
	"weibull":     {2, func(a []float64, s rand.Source) (Sampler, error) { return Weibull(a[0], a[1], s) }},
	"triangular":  {3, func(a []float64, s rand.Source) (Sampler, error) { return Triangular(a[0], a[1], a[2], s) }},
	"poisson":     {1, func(a []float64, s rand.Source) (Sampler, error) { return Poisson(a[0], s) }},
	"categorical": {-1, func(a []float64, s rand.Source) (Sampler, error) { return Categorical(a, s) }},
}

// aliases map short names onto registry keys.
var aliases = map[string]string{
	"const": "constant",
	"exp":   "exponential",
	"tri":   "triangular",
}

// Names returns the registered family names in sorted order.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Parse turns spec into a Sampler drawing from src.
//
// Errors:
//   - ErrMalformedSpec for syntax errors or non-numeric arguments.
//   - ErrUnknownDistribution for unregistered names.
//   - ErrBadParameter (from the constructor) for out-of-domain values or wrong arity.
func Parse(spec string, src rand.Source) (Sampler, error) {
	name, args, err := tokenize(spec)
	if err != nil {
		return nil, err
	}
	if alias, ok := aliases[name]; ok {
		name = alias
	}
	fam, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("Parse(%q): %q: %w", spec, name, ErrUnknownDistribution)
	}
	if fam.arity >= 0 && len(args) != fam.arity {
		return nil, fmt.Errorf("Parse(%q): %s takes %d argument(s), got %d: %w",
			spec, name, fam.arity, len(args), ErrBadParameter)
	}
	if fam.arity < 0 && len(args) == 0 {
		return nil, fmt.Errorf("Parse(%q): %s needs at least one argument: %w", spec, name, ErrBadParameter)
	}
	s, err := fam.build(args, src)
	if err != nil {
		return nil, fmt.Errorf("Parse(%q): %w", spec, err)
	}
	return s, nil
}

// MustParse is Parse for static specifications in tests and examples; it panics on error.
func MustParse(spec string, src rand.Source) Sampler {
	s, err := Parse(spec, src)
	if err != nil {
		panic(err)
	}
	return s
}

// tokenize splits "name(a, b)" into ("name", [a b]).
func tokenize(spec string) (string, []float64, error) {
	s := strings.TrimSpace(spec)
	if s == "" {
		return "", nil, fmt.Errorf("Parse: empty specification: %w", ErrMalformedSpec)
	}
	// Bare number → constant.
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		if !finite(v) {
			return "", nil, fmt.Errorf("Parse(%q): non-finite constant: %w", spec, ErrMalformedSpec)
		}
		return "constant", []float64{v}, nil
	}

	open := strings.IndexByte(s, '(')
	if open <= 0 || !strings.HasSuffix(s, ")") {
		return "", nil, fmt.Errorf("Parse(%q): want name(args): %w", spec, ErrMalformedSpec)
	}
	name := strings.ToLower(strings.TrimSpace(s[:open]))
	body := strings.TrimSpace(s[open+1 : len(s)-1])
	if body == "" {
		return name, nil, nil
	}

	parts := strings.Split(body, ",")
	args := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || !finite(v) {
			return "", nil, fmt.Errorf("Parse(%q): argument %q: %w", spec, strings.TrimSpace(p), ErrMalformedSpec)
		}
		args = append(args, v)
	}
	return name, args, nil
}
