// SPDX-License-Identifier: MIT
// Package: vaxsim/dist
//
// errors.go - sentinel errors for the distribution library.
//
// Error policy:
//   - Only package-level sentinels are exposed; branch with errors.Is.
//   - Call sites attach context with "%s: ...: %w" (family name first).

package dist

import "errors"

// ErrBadParameter indicates a parameter outside its domain
// (rate <= 0, max < min, negative weights, mode outside [min,max], ...).
var ErrBadParameter = errors.New("dist: bad parameter")

// ErrMalformedSpec indicates a specification string that is not of the
// form name(arg, ...), or whose arguments are not finite numbers.
var ErrMalformedSpec = errors.New("dist: malformed specification")

// ErrUnknownDistribution indicates a specification whose name is not in the registry.
var ErrUnknownDistribution = errors.New("dist: unknown distribution")
