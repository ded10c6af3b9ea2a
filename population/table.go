// SPDX-License-Identifier: MIT
// Package: vaxsim/population
//
// table.go - struct-of-arrays entity table with double-buffered attitudes.
//
// Contract:
//   • Row i of the table is row/column i of the pressure matrix; the id→index
//     map is fixed at construction.
//   • Attitude columns have a current and a next buffer. Outside a round the
//     two are equal. A propagation round writes only into Next(col) at the
//     indices it owns, then Commit validates the next buffers, swaps them in one
//     batch and re-synchronizes.
//   • Commit never leaves a half-applied round: on ErrAttitudeOutOfRange the
//     next buffers are reset and the current state is untouched.
//
// Concurrency:
//   • Current/Next slices may be read and (for disjoint indices) written from
//     many goroutines during a round. Everything else is single-owner (driver).

package population

import (
	"fmt"
	"math"

	"github.com/katalvlaran/vaxsim/household"
)

// Table is the population arena.
type Table struct {
	ids   []int64
	index map[int64]int

	created     []float64
	region      []int
	attractor   []int64
	attrIndex   []int // resolved attractor row, -1 when none or self
	networkSize []int
	rounds      []int64
	peerFeeds   []int64
	weights     []Weights
	assort      []float64
	members     []Members
	composition []household.Composition
	nextMember  int64 // next free individual id

	attitudes [2][columnCount][]float64
	cur       int
}

// NewTable validates rows and builds the arena. Rows keep their order.
func NewTable(rows []Row) (*Table, error) {
	n := len(rows)
	t := &Table{
		ids:         make([]int64, n),
		index:       make(map[int64]int, n),
		created:     make([]float64, n),
		region:      make([]int, n),
		attractor:   make([]int64, n),
		attrIndex:   make([]int, n),
		networkSize: make([]int, n),
		rounds:      make([]int64, n),
		peerFeeds:   make([]int64, n),
		weights:     make([]Weights, n),
		assort:      make([]float64, n),
		members:     make([]Members, n),
		composition: make([]household.Composition, n),
	}
	for b := range t.attitudes {
		for c := range t.attitudes[b] {
			t.attitudes[b][c] = make([]float64, n)
		}
	}

	for i, r := range rows {
		if r.ID < 0 {
			return nil, fmt.Errorf("NewTable: row %d id=%d: %w", i, r.ID, ErrOutOfRange)
		}
		if _, dup := t.index[r.ID]; dup {
			return nil, fmt.Errorf("NewTable: id=%d: %w", r.ID, ErrDuplicateID)
		}
		if err := validateRow(r, n); err != nil {
			return nil, fmt.Errorf("NewTable: id=%d: %w", r.ID, err)
		}
		t.index[r.ID] = i
		t.ids[i] = r.ID
		t.created[i] = r.Created
		t.region[i] = r.Region
		t.attractor[i] = r.Attractor
		t.networkSize[i] = r.NetworkSize
		t.rounds[i] = r.Rounds
		t.peerFeeds[i] = r.PeerFeeds
		t.weights[i] = r.Weights
		t.assort[i] = r.Assortativity
		t.members[i] = r.Members
		t.composition[i] = r.Composition
		t.reserve(r.ID)
		t.reserveMembers(r.Members)
		for _, c := range Columns() {
			v := r.attitude(c)
			t.attitudes[0][c][i] = v
			t.attitudes[1][c][i] = v
		}
	}

	// Resolve attractor references once every id is known.
	for i, a := range t.attractor {
		t.attrIndex[i] = -1
		if a == IsAttractor || a == NoAttractor {
			continue
		}
		j, ok := t.index[a]
		if !ok || t.attractor[j] != IsAttractor {
			return nil, fmt.Errorf("NewTable: id=%d attractor=%d: %w", t.ids[i], a, ErrUnknownAttractor)
		}
		t.attrIndex[i] = j
	}

	return t, nil
}

func validateRow(r Row, n int) error {
	unit := []struct {
		name string
		v    float64
	}{
		{"calculation", r.Calculation},
		{"confidence", r.Confidence},
		{"complacency", r.Complacency},
		{"assortativity", r.Assortativity},
	}
	for _, u := range unit {
		if !inUnit(u.v) {
			return fmt.Errorf("%s=%v not in [0,1]: %w", u.name, u.v, ErrOutOfRange)
		}
	}
	w := r.Weights
	for _, v := range []float64{w.InGroup, w.OutGroup, w.Self, w.Attractor} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("weight=%v must be finite and ≥ 0: %w", v, ErrOutOfRange)
		}
	}
	if r.NetworkSize < 0 || (n > 0 && r.NetworkSize > n-1) {
		return fmt.Errorf("network size %d not in [0,%d]: %w", r.NetworkSize, n-1, ErrOutOfRange)
	}
	if r.Attractor < 0 && r.Attractor != IsAttractor && r.Attractor != NoAttractor {
		return fmt.Errorf("attractor=%d: %w", r.Attractor, ErrUnknownAttractor)
	}
	if !r.Composition.Valid() {
		return fmt.Errorf("composition=%d: %w", r.Composition, ErrOutOfRange)
	}

	return nil
}

func inUnit(v float64) bool { return v >= 0 && v <= 1 }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.ids) }

// ID returns the id of row i.
func (t *Table) ID(i int) int64 { return t.ids[i] }

// Index resolves an id to its row index.
func (t *Table) Index(id int64) (int, bool) {
	i, ok := t.index[id]
	return i, ok
}

// IsAttractor reports whether row i is an attractor.
func (t *Table) IsAttractor(i int) bool { return t.attractor[i] == IsAttractor }

// AttractorOf returns the row index of i's attractor, or false when i has
// none (or is an attractor itself).
func (t *Table) AttractorOf(i int) (int, bool) {
	j := t.attrIndex[i]
	return j, j >= 0
}

// Weights returns the weight multipliers of row i.
func (t *Table) Weights(i int) Weights { return t.weights[i] }

// Region returns the sub-population of row i.
func (t *Table) Region(i int) int { return t.region[i] }

// Composition returns the household composition of row i.
func (t *Table) Composition(i int) household.Composition { return t.composition[i] }

// SetComposition records a household transition for row i.
func (t *Table) SetComposition(i int, c household.Composition) error {
	if !c.Valid() || c.Aggregate() {
		return fmt.Errorf("SetComposition(%d, %s): %w", t.ids[i], c, ErrOutOfRange)
	}
	t.composition[i] = c

	return nil
}

// Members returns the member record of row i.
func (t *Table) Members(i int) Members { return t.members[i] }

// SetMembers replaces the member record of row i. Its occupied slots must
// match the composition of the row.
func (t *Table) SetMembers(i int, m Members) error {
	if !m.Fits(t.composition[i]) {
		return fmt.Errorf("SetMembers(%d, %+v) on %s: %w", t.ids[i], m, t.composition[i], ErrMembership)
	}
	t.members[i] = m
	t.reserveMembers(m)

	return nil
}

// Transition applies op to the household of row i and updates its members in
// the same step: an arriving adult or child gets a fresh individual id, a
// leaving adult is the partner and a leaving child is the oldest one.
// Slots beyond the recorded capacity (a third adult, a fourth child) are not
// tracked.
func (t *Table) Transition(i int, op household.Op) (household.Composition, error) {
	next, err := t.composition[i].Apply(op)
	if err != nil {
		return t.composition[i], err
	}
	if err := t.SetComposition(i, next); err != nil {
		return t.composition[i], err
	}

	var adults, children []int64
	m := t.members[i]
	for _, id := range []int64{m.Referent, m.Partner} {
		if id != NoMember {
			adults = append(adults, id)
		}
	}
	for _, id := range m.Children {
		if id != NoMember {
			children = append(children, id)
		}
	}
	a, k := slots(next)
	for len(adults) < a {
		adults = append(adults, t.allocMember())
	}
	adults = adults[:a]
	for len(children) < k {
		children = append(children, t.allocMember())
	}
	children = children[len(children)-k:]

	out := Members{Referent: NoMember, Partner: NoMember, Children: [3]int64{NoMember, NoMember, NoMember}}
	if a > 0 {
		out.Referent = adults[0]
	}
	if a > 1 {
		out.Partner = adults[1]
	}
	copy(out.Children[:], children)
	t.members[i] = out

	return next, nil
}

func (t *Table) allocMember() int64 {
	id := t.nextMember
	t.nextMember++
	return id
}

func (t *Table) reserve(id int64) {
	if id >= t.nextMember {
		t.nextMember = id + 1
	}
}

func (t *Table) reserveMembers(m Members) {
	t.reserve(m.Referent)
	t.reserve(m.Partner)
	for _, id := range m.Children {
		t.reserve(id)
	}
}

// Current returns the committed buffer of column c. Read-only.
func (t *Table) Current(c Column) []float64 { return t.attitudes[t.cur][c] }

// Next returns the write buffer of column c for the round in progress.
func (t *Table) Next(c Column) []float64 { return t.attitudes[1-t.cur][c] }

// Value returns the committed value of column c at row i.
func (t *Table) Value(c Column, i int) float64 { return t.attitudes[t.cur][c][i] }

// Set writes v into both buffers of column c at row i, outside any round.
// It is used for exogenous updates (interventions, tests).
func (t *Table) Set(c Column, i int, v float64) error {
	if !inUnit(v) {
		return fmt.Errorf("Set(%s, %d): v=%v: %w", c, t.ids[i], v, ErrOutOfRange)
	}
	t.attitudes[0][c][i] = v
	t.attitudes[1][c][i] = v

	return nil
}

// Commit validates the next buffers of cols, swaps every column in one batch
// and bumps Rounds and PeerFeeds for each changed row (row index → number of
// contributing peers).
func (t *Table) Commit(changed map[int]int, cols ...Column) error {
	if len(cols) == 0 {
		cols = Columns()
	}
	next := 1 - t.cur
	for _, c := range cols {
		for i, v := range t.attitudes[next][c] {
			if !inUnit(v) {
				t.resync(next)
				return fmt.Errorf("Commit: id=%d %s=%v: %w", t.ids[i], c, v, ErrAttitudeOutOfRange)
			}
		}
	}

	t.cur = next
	t.resync(1 - t.cur)
	for i, peers := range changed {
		t.rounds[i]++
		t.peerFeeds[i] += int64(peers)
	}

	return nil
}

// Discard abandons a round in progress: the next buffers are reset to the
// committed state.
func (t *Table) Discard() { t.resync(1 - t.cur) }

// resync copies the committed buffers into buffer b.
func (t *Table) resync(b int) {
	for c := range t.attitudes[b] {
		copy(t.attitudes[b][c], t.attitudes[t.cur][c])
	}
}

// AddPeerFeeds credits row i with n peer contacts outside propagation
// (gatherings).
func (t *Table) AddPeerFeeds(i int, n int64) { t.peerFeeds[i] += n }

// Mean returns the committed mean of column c over non-attractor rows.
func (t *Table) Mean(c Column) float64 {
	var sum float64
	var n int
	for i, v := range t.Current(c) {
		if t.IsAttractor(i) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0
	}

	return sum / float64(n)
}

// Row materializes row i with committed attitudes.
func (t *Table) Row(i int) Row {
	return Row{
		ID:            t.ids[i],
		Created:       t.created[i],
		Region:        t.region[i],
		Attractor:     t.attractor[i],
		NetworkSize:   t.networkSize[i],
		Rounds:        t.rounds[i],
		PeerFeeds:     t.peerFeeds[i],
		Weights:       t.weights[i],
		Assortativity: t.assort[i],
		Calculation:   t.Value(Calculation, i),
		Confidence:    t.Value(Confidence, i),
		Complacency:   t.Value(Complacency, i),
		Members:       t.members[i],
		Composition:   t.composition[i],
	}
}

// Lookup materializes the row with the given id.
func (t *Table) Lookup(id int64) (Row, error) {
	i, ok := t.index[id]
	if !ok {
		return Row{}, fmt.Errorf("Lookup(%d): %w", id, ErrUnknownEntity)
	}

	return t.Row(i), nil
}

// Rows returns a snapshot of every row in table order.
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.ids))
	for i := range out {
		out[i] = t.Row(i)
	}

	return out
}
