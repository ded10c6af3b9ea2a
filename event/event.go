// SPDX-License-Identifier: MIT

// Package event defines the typed domain events emitted by the simulation core
// and the Bus through which consumers subscribe to them.
//
// The core never performs I/O: producers Publish into an in-memory queue and
// the owner of the run (the driver) calls Drain once per round, which hands the
// queued events to every matching subscriber in publication order. Consumers
// register callbacks instead of inheriting from a publisher type.
package event

import "fmt"

// Kind tags an Event.
type Kind uint8

const (
	// Transmission is an infection (S→E or S→I), endogenous or imported.
	Transmission Kind = iota + 1
	// Progression is a non-infectious compartment step (M→S, E→I).
	Progression
	// Recovery is I→R, or S→R when caused by vaccination.
	Recovery
	// AttitudeChange is emitted for every entity whose attitude moved in a propagation round.
	AttitudeChange
	// Gathering is a social gathering of a host and part of its network.
	Gathering
)

var kindNames = [...]string{"unknown", "transmission", "progression", "recovery", "attitude-change", "gathering"}

// String returns the wire name of k.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// NoEntity is the EntityID of aggregate events that concern no single row
// (count-level kernel transitions).
const NoEntity int64 = -1

// Event is one element of the outbound stream.
type Event struct {
	Kind     Kind
	EntityID int64
	Time     float64
	Payload  any
}

// TransitionPayload accompanies Transmission, Progression and Recovery events.
type TransitionPayload struct {
	Region string
	From   string
	To     string
	// Count is the number of individuals moved; 1 for kernel events.
	Count int64
	// Exogenous is true when the move was caused outside the stochastic
	// process (importation, vaccination).
	Exogenous bool
}

// AttitudePayload accompanies AttitudeChange events.
type AttitudePayload struct {
	Confidence  float64
	Complacency float64
	Peers       int
}

// GatheringPayload accompanies Gathering events; EntityID is the host.
type GatheringPayload struct {
	Members []int64
}
