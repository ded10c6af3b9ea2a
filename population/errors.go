// SPDX-License-Identifier: MIT

package population

import "errors"

// Sentinel errors. Load-time violations are configuration errors; a value
// leaving [0,1] after a propagation round is a domain invariant violation and
// fatal for the run.
var (
	// ErrOutOfRange indicates an attribute outside its domain at load time
	// (attitudes or weights outside [0,1], network size ≥ N, negative id).
	ErrOutOfRange = errors.New("population: attribute out of range")

	// ErrDuplicateID indicates two rows sharing an id.
	ErrDuplicateID = errors.New("population: duplicate id")

	// ErrUnknownAttractor indicates an attractor reference to a missing row or
	// to a row that is not itself an attractor.
	ErrUnknownAttractor = errors.New("population: unknown attractor")

	// ErrAttitudeOutOfRange indicates a computed attitude outside [0,1].
	ErrAttitudeOutOfRange = errors.New("population: computed attitude out of range")

	// ErrMembership indicates a member record whose occupied slots do not
	// match the household composition.
	ErrMembership = errors.New("population: members do not match composition")

	// ErrUnknownEntity indicates a lookup of an id that is not in the table.
	ErrUnknownEntity = errors.New("population: unknown entity")
)
