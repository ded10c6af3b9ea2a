// SPDX-License-Identifier: MIT

package population

import "github.com/katalvlaran/vaxsim/household"

// Attractor sentinels stored in Row.Attractor.
const (
	// IsAttractor marks a row that is itself an attractor (an authority node).
	IsAttractor int64 = -1
	// NoAttractor marks a row with no assigned attractor.
	NoAttractor int64 = -2
	// NoMember marks an empty member slot.
	NoMember int64 = -1
)

// Column names an attitude column held in double-buffered storage.
type Column uint8

const (
	Calculation Column = iota
	Confidence
	Complacency

	columnCount
)

var columnNames = [...]string{"calculation", "confidence", "complacency"}

func (c Column) String() string {
	if c < columnCount {
		return columnNames[c]
	}
	return "column(?)"
}

// Columns lists every attitude column.
func Columns() []Column { return []Column{Calculation, Confidence, Complacency} }

// Weights are the multipliers an entity applies to the sources of pressure.
// Self and Attractor are read from an entity's attractor row during
// propagation.
type Weights struct {
	InGroup   float64 `yaml:"in_group"`
	OutGroup  float64 `yaml:"out_group"`
	Self      float64 `yaml:"self"`
	Attractor float64 `yaml:"attractor"`
}

// Members references the individuals of a household; NoMember marks an empty slot.
type Members struct {
	Referent int64    `yaml:"referent"`
	Partner  int64    `yaml:"partner"`
	Children [3]int64 `yaml:"children"`
}

// AdultCount counts the occupied adult slots.
func (m Members) AdultCount() int {
	n := 0
	for _, id := range []int64{m.Referent, m.Partner} {
		if id != NoMember {
			n++
		}
	}
	return n
}

// ChildCount counts the occupied child slots.
func (m Members) ChildCount() int {
	n := 0
	for _, id := range m.Children {
		if id != NoMember {
			n++
		}
	}
	return n
}

// slots returns how many adult and child slots composition c occupies. Poly
// households record two adults and 3-plus households three children.
func slots(c household.Composition) (adults, children int) {
	in := c.Info()
	return min(in.Adults, 2), min(in.Children, 3)
}

// Fits reports whether the occupied slots of m match composition c.
func (m Members) Fits(c household.Composition) bool {
	a, k := slots(c)
	return m.AdultCount() == a && m.ChildCount() == k
}

// Row is one entity of the population table (a household or an individual).
type Row struct {
	ID          int64   `yaml:"id"`
	Created     float64 `yaml:"created"`
	Region      int     `yaml:"region"`
	Attractor   int64   `yaml:"attractor"`
	NetworkSize int     `yaml:"network_size"`
	Rounds      int64   `yaml:"rounds"`
	PeerFeeds   int64   `yaml:"peer_feeds"`

	Weights       Weights `yaml:"weights"`
	Assortativity float64 `yaml:"assortativity"`
	Calculation   float64 `yaml:"calculation"`
	Confidence    float64 `yaml:"confidence"`
	Complacency   float64 `yaml:"complacency"`

	Members     Members               `yaml:"members"`
	Composition household.Composition `yaml:"composition"`
}

// IsAttractor reports whether r is an attractor row.
func (r Row) IsAttractor() bool { return r.Attractor == IsAttractor }

func (r Row) attitude(c Column) float64 {
	switch c {
	case Calculation:
		return r.Calculation
	case Confidence:
		return r.Confidence
	default:
		return r.Complacency
	}
}
