// SPDX-License-Identifier: MIT
// Package: vaxsim/household
//
// composition.go - enumerated household compositions and their attributes.
//
// Contract:
//   • Leaf states describe a concrete household; aggregate states (Total,
//     Duo0PlusKids, RegDuo0PlusKids) only exist for statistics tables and are
//     never produced by a transition.
//   • Info() is a pure table lookup; String()/Parse() use the canonical
//     upper-case names (SOLO_1KID, REGDUO_3PLUSKIDS, ...).

package household

import (
	"fmt"
	"strings"
)

// Composition is a household composition state.
type Composition uint8

// Composition states. The order is part of the public contract (it is the
// column order of composition statistics tables).
const (
	Total Composition = iota
	PolyNoKids
	Poly1PlusKids
	SoloNoKids
	Solo1Kid
	Solo2Kids
	Solo3PlusKids
	DuoNoKids
	Duo1Kid
	Duo2Kids
	Duo3PlusKids
	RegDuoNoKids
	RegDuo1Kid
	RegDuo2Kids
	RegDuo3PlusKids
	Other
	Duo0PlusKids
	RegDuo0PlusKids

	compositionCount
)

// Relation is the partner-relation kind of a composition.
type Relation uint8

const (
	RelationNone       Relation = iota // aggregates
	RelationSingle                     // one adult
	RelationPartners                   // two unregistered partners
	RelationRegistered                 // two registered (married/registered) partners
	RelationMulti                      // three or more adults
	RelationOther                      // institutional or unknown
)

// Info carries the attributes of a Composition.
type Info struct {
	// Adults is the adult count; for RelationMulti it is the minimum (3).
	Adults int
	// Registered marks a registered partnership.
	Registered bool
	// Children is the child count; with OrMore it is a lower bound.
	Children int
	// OrMore marks an open-ended child count ("3-plus", "1-plus", "0-plus").
	OrMore bool
	// Relation is the partner-relation kind.
	Relation Relation
	// Aggregate marks statistics-only states that never appear on a household.
	Aggregate bool
}

var infos = [compositionCount]Info{
	Total:           {Aggregate: true, OrMore: true},
	PolyNoKids:      {Adults: 3, Relation: RelationMulti},
	Poly1PlusKids:   {Adults: 3, Children: 1, OrMore: true, Relation: RelationMulti},
	SoloNoKids:      {Adults: 1, Relation: RelationSingle},
	Solo1Kid:        {Adults: 1, Children: 1, Relation: RelationSingle},
	Solo2Kids:       {Adults: 1, Children: 2, Relation: RelationSingle},
	Solo3PlusKids:   {Adults: 1, Children: 3, OrMore: true, Relation: RelationSingle},
	DuoNoKids:       {Adults: 2, Relation: RelationPartners},
	Duo1Kid:         {Adults: 2, Children: 1, Relation: RelationPartners},
	Duo2Kids:        {Adults: 2, Children: 2, Relation: RelationPartners},
	Duo3PlusKids:    {Adults: 2, Children: 3, OrMore: true, Relation: RelationPartners},
	RegDuoNoKids:    {Adults: 2, Registered: true, Relation: RelationRegistered},
	RegDuo1Kid:      {Adults: 2, Registered: true, Children: 1, Relation: RelationRegistered},
	RegDuo2Kids:     {Adults: 2, Registered: true, Children: 2, Relation: RelationRegistered},
	RegDuo3PlusKids: {Adults: 2, Registered: true, Children: 3, OrMore: true, Relation: RelationRegistered},
	Other:           {Relation: RelationOther},
	Duo0PlusKids:    {Adults: 2, OrMore: true, Relation: RelationPartners, Aggregate: true},
	RegDuo0PlusKids: {Adults: 2, Registered: true, OrMore: true, Relation: RelationRegistered, Aggregate: true},
}

var names = [compositionCount]string{
	Total:           "TOTAL",
	PolyNoKids:      "POLY_NOKIDS",
	Poly1PlusKids:   "POLY_1PLUSKIDS",
	SoloNoKids:      "SOLO_NOKIDS",
	Solo1Kid:        "SOLO_1KID",
	Solo2Kids:       "SOLO_2KIDS",
	Solo3PlusKids:   "SOLO_3PLUSKIDS",
	DuoNoKids:       "DUO_NOKIDS",
	Duo1Kid:         "DUO_1KID",
	Duo2Kids:        "DUO_2KIDS",
	Duo3PlusKids:    "DUO_3PLUSKIDS",
	RegDuoNoKids:    "REGDUO_NOKIDS",
	RegDuo1Kid:      "REGDUO_1KID",
	RegDuo2Kids:     "REGDUO_2KIDS",
	RegDuo3PlusKids: "REGDUO_3PLUSKIDS",
	Other:           "OTHER",
	Duo0PlusKids:    "DUO_0PLUSKIDS",
	RegDuo0PlusKids: "REGDUO_0PLUSKIDS",
}

// Valid reports whether c is a declared state.
func (c Composition) Valid() bool { return c < compositionCount }

// Info returns the attributes of c; the zero Info for undeclared values.
func (c Composition) Info() Info {
	if !c.Valid() {
		return Info{}
	}
	return infos[c]
}

// Aggregate reports whether c is a statistics-only state.
func (c Composition) Aggregate() bool { return c.Info().Aggregate }

// Size returns the minimum number of members of a household in state c.
func (c Composition) Size() int {
	in := c.Info()
	return in.Adults + in.Children
}

// String returns the canonical name of c.
func (c Composition) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Composition(%d)", uint8(c))
	}
	return names[c]
}

// MarshalText implements encoding.TextMarshaler (YAML/JSON population tables).
func (c Composition) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("household: MarshalText(%d): %w", uint8(c), ErrUnknownComposition)
	}
	return []byte(names[c]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Composition) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Compositions returns every declared state in declaration order.
func Compositions() []Composition {
	out := make([]Composition, 0, compositionCount)
	for c := Composition(0); c < compositionCount; c++ {
		out = append(out, c)
	}
	return out
}

// Parse resolves a canonical name (case-insensitive; '-' accepted for '_').
func Parse(name string) (Composition, error) {
	key := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "-", "_"))
	for c, n := range names {
		if n == key {
			return Composition(c), nil
		}
	}
	return 0, fmt.Errorf("household: Parse(%q): %w", name, ErrUnknownComposition)
}

// Of returns the leaf composition for the given head counts.
// Zero adults map to Other; three or more adults map to the Poly states.
func Of(adults int, registered bool, children int) (Composition, error) {
	if adults < 0 || children < 0 {
		return 0, fmt.Errorf("household: Of(%d,%t,%d): negative count: %w",
			adults, registered, children, ErrUnknownComposition)
	}
	switch {
	case adults == 0:
		return Other, nil
	case adults >= 3:
		if children == 0 {
			return PolyNoKids, nil
		}
		return Poly1PlusKids, nil
	}

	kids := children
	if kids > 3 {
		kids = 3
	}
	switch {
	case adults == 1:
		return [...]Composition{SoloNoKids, Solo1Kid, Solo2Kids, Solo3PlusKids}[kids], nil
	case registered:
		return [...]Composition{RegDuoNoKids, RegDuo1Kid, RegDuo2Kids, RegDuo3PlusKids}[kids], nil
	default:
		return [...]Composition{DuoNoKids, Duo1Kid, Duo2Kids, Duo3PlusKids}[kids], nil
	}
}
