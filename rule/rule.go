// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package rule

import (
	"fmt"
	"slices"

	"github.com/gogpu/automata/neighbourhood"
)

// Family identifies the counting semantics of a rule.
type Family int

// Rule families.
const (
	FamilyUnknown Family = iota
	Life
	Extended
	Generations
	Vote
	LUKY
	NLUKY
	Cyclic
)

// String returns the family name.
func (f Family) String() string {
	switch f {
	case Life:
		return "life"
	case Extended:
		return "extended"
	case Generations:
		return "generations"
	case Vote:
		return "vote"
	case LUKY:
		return "luky"
	case NLUKY:
		return "nluky"
	case Cyclic:
		return "cyclic"
	default:
		return fmt.Sprintf("Family(%d)", int(f))
	}
}

// Rule is a parsed rule descriptor.
//
// Birth and Survival hold sorted, de-duplicated neighbour counts. For Vote
// rules the counts live in Vote and include the cell itself. LUKY and NLUKY
// ranges are expanded into Birth and Survival.
//
// A Rule returned by Parse must not be modified.
type Rule struct {
	Family Family

	Survival []int
	Birth    []int
	Vote     []int

	// States is the number of cell states, 2 for binary families.
	States int

	// Threshold is the successor count required by Cyclic rules.
	Threshold int

	// Neighbourhood and Range are zero when the rule string does not
	// request a topology; the resolver applies its defaults.
	Neighbourhood neighbourhood.Type
	Range         int

	// Source is the rule string as given to Parse.
	Source string
}

// Binary reports whether the rule has exactly two states with alive
// meaning non-zero.
func (r *Rule) Binary() bool {
	switch r.Family {
	case Life, Extended, Vote, LUKY:
		return true
	}
	return false
}

// Survives reports whether n is a survival count.
func (r *Rule) Survives(n int) bool {
	_, ok := slices.BinarySearch(r.Survival, n)
	return ok
}

// Born reports whether n is a birth count.
func (r *Rule) Born(n int) bool {
	_, ok := slices.BinarySearch(r.Birth, n)
	return ok
}

// Votes reports whether n is a vote count.
func (r *Rule) Votes(n int) bool {
	_, ok := slices.BinarySearch(r.Vote, n)
	return ok
}

// String returns the source rule string.
func (r *Rule) String() string {
	return r.Source
}

func normalize(counts []int) []int {
	out := slices.Clone(counts)
	slices.Sort(out)
	return slices.Compact(out)
}
