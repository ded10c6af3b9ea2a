// SPDX-License-Identifier: MIT
// Package: vaxsim/household
//
// transitions.go - partial composition transitions.
//
// Contract:
//   • Every transition is a pure function (Composition) → (Composition, error).
//   • Undefined inputs return an error wrapping ErrUndefinedTransition; the
//     zero-children and ambiguous-count cases additionally wrap ErrNoChildren
//     and ErrAmbiguousChildren. There is no silent default.
//   • PlusChild saturates in the 3-plus bucket; MinusChild on a 3-plus state
//     yields the 2-kids state of the same partnership kind.

package household

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrUndefinedTransition indicates a transition with no well-defined target.
	ErrUndefinedTransition = errors.New("household: undefined composition transition")

	// ErrNoChildren indicates a child removal from a composition without children.
	ErrNoChildren = errors.New("household: composition has no children")

	// ErrAmbiguousChildren indicates a child transition on a state whose child
	// count is not resolvable (aggregates, POLY_1PLUSKIDS).
	ErrAmbiguousChildren = errors.New("household: ambiguous child count")

	// ErrUnknownComposition indicates an unparseable or undeclared composition.
	ErrUnknownComposition = errors.New("household: unknown composition")
)

// Op names a composition transition.
type Op uint8

const (
	OpPlusAdult Op = iota
	OpMinusAdult
	OpPlusChild
	OpMinusChild
)

var opNames = [...]string{"PlusAdult", "MinusAdult", "PlusChild", "MinusChild"}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", uint8(o))
}

// Ops lists every transition in declaration order.
func Ops() []Op { return []Op{OpPlusAdult, OpMinusAdult, OpPlusChild, OpMinusChild} }

// Transition tables; a missing key is an undefined transition.
var (
	plusAdult = map[Composition]Composition{
		SoloNoKids:    DuoNoKids,
		Solo1Kid:      Duo1Kid,
		Solo2Kids:     Duo2Kids,
		Solo3PlusKids: Duo3PlusKids,
	}
	minusAdult = map[Composition]Composition{
		DuoNoKids:       SoloNoKids,
		Duo1Kid:         Solo1Kid,
		Duo2Kids:        Solo2Kids,
		Duo3PlusKids:    Solo3PlusKids,
		RegDuoNoKids:    SoloNoKids,
		RegDuo1Kid:      Solo1Kid,
		RegDuo2Kids:     Solo2Kids,
		RegDuo3PlusKids: Solo3PlusKids,
	}
	plusChild = map[Composition]Composition{
		SoloNoKids:      Solo1Kid,
		Solo1Kid:        Solo2Kids,
		Solo2Kids:       Solo3PlusKids,
		Solo3PlusKids:   Solo3PlusKids,
		DuoNoKids:       Duo1Kid,
		Duo1Kid:         Duo2Kids,
		Duo2Kids:        Duo3PlusKids,
		Duo3PlusKids:    Duo3PlusKids,
		RegDuoNoKids:    RegDuo1Kid,
		RegDuo1Kid:      RegDuo2Kids,
		RegDuo2Kids:     RegDuo3PlusKids,
		RegDuo3PlusKids: RegDuo3PlusKids,
		PolyNoKids:      Poly1PlusKids,
	}
	minusChild = map[Composition]Composition{
		Solo1Kid:        SoloNoKids,
		Solo2Kids:       Solo1Kid,
		Solo3PlusKids:   Solo2Kids,
		Duo1Kid:         DuoNoKids,
		Duo2Kids:        Duo1Kid,
		Duo3PlusKids:    Duo2Kids,
		RegDuo1Kid:      RegDuoNoKids,
		RegDuo2Kids:     RegDuo1Kid,
		RegDuo3PlusKids: RegDuo2Kids,
	}
)

// transitionErrorf builds "Op(STATE): detail: <sentinels>".
func transitionErrorf(op Op, c Composition, detail string, errs ...error) error {
	if len(errs) == 2 {
		return fmt.Errorf("%s(%s): %s: %w: %w", op, c, detail, errs[0], errs[1])
	}
	return fmt.Errorf("%s(%s): %s: %w", op, c, detail, errs[0])
}

// PlusAdult adds an adult: SOLO_* → DUO_* with the same child count.
func (c Composition) PlusAdult() (Composition, error) {
	if next, ok := plusAdult[c]; ok {
		return next, nil
	}
	return c, transitionErrorf(OpPlusAdult, c, "only solo households take a partner", ErrUndefinedTransition)
}

// MinusAdult removes an adult: DUO_*/REGDUO_* → SOLO_* with the same child count.
func (c Composition) MinusAdult() (Composition, error) {
	if next, ok := minusAdult[c]; ok {
		return next, nil
	}
	return c, transitionErrorf(OpMinusAdult, c, "only duo households lose a partner", ErrUndefinedTransition)
}

// PlusChild adds a child within the same partnership kind, saturating at 3-plus.
func (c Composition) PlusChild() (Composition, error) {
	if next, ok := plusChild[c]; ok {
		return next, nil
	}
	if c.ambiguousChildren() {
		return c, transitionErrorf(OpPlusChild, c, "child count not resolvable", ErrUndefinedTransition, ErrAmbiguousChildren)
	}
	return c, transitionErrorf(OpPlusChild, c, "no target state", ErrUndefinedTransition)
}

// MinusChild removes a child within the same partnership kind.
func (c Composition) MinusChild() (Composition, error) {
	if next, ok := minusChild[c]; ok {
		return next, nil
	}
	if c.ambiguousChildren() {
		return c, transitionErrorf(OpMinusChild, c, "child count not resolvable", ErrUndefinedTransition, ErrAmbiguousChildren)
	}
	if in := c.Info(); c.Valid() && c != Other && in.Children == 0 {
		return c, transitionErrorf(OpMinusChild, c, "cannot remove a child", ErrUndefinedTransition, ErrNoChildren)
	}
	return c, transitionErrorf(OpMinusChild, c, "no target state", ErrUndefinedTransition)
}

// Apply dispatches op on c.
func (c Composition) Apply(op Op) (Composition, error) {
	switch op {
	case OpPlusAdult:
		return c.PlusAdult()
	case OpMinusAdult:
		return c.MinusAdult()
	case OpPlusChild:
		return c.PlusChild()
	case OpMinusChild:
		return c.MinusChild()
	}
	return c, fmt.Errorf("household: Apply(%s): %w", op, ErrUndefinedTransition)
}

// Defined reports whether op has a target state from c.
func (c Composition) Defined(op Op) bool {
	var table map[Composition]Composition
	switch op {
	case OpPlusAdult:
		table = plusAdult
	case OpMinusAdult:
		table = minusAdult
	case OpPlusChild:
		table = plusChild
	case OpMinusChild:
		table = minusChild
	default:
		return false
	}
	_, ok := table[c]
	return ok
}

// ambiguousChildren covers aggregates and the open-ended poly bucket.
func (c Composition) ambiguousChildren() bool {
	return c.Aggregate() || c == Poly1PlusKids
}
