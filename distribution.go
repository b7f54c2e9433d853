// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package automata

// Entry is one weighted candidate of a Distribution. A Skip entry takes
// part in the weight sum but never assigns a value.
type Entry struct {
	Value  uint8
	Weight float64
	Skip   bool
}

// Weighted returns an entry assigning value with the given weight.
func Weighted(value uint8, weight float64) Entry {
	return Entry{Value: value, Weight: weight}
}

// Skip returns an entry that consumes weight without assigning a value.
// Cells whose sample lands on it keep their current state.
func Skip(weight float64) Entry {
	return Entry{Weight: weight, Skip: true}
}

// Distribution is an ordered weighted choice over cell states.
type Distribution []Entry

// Sum returns the total weight.
func (d Distribution) Sum() float64 {
	var sum float64
	for _, e := range d {
		sum += e.Weight
	}
	return sum
}

// pick subtracts weights from sample in order and returns the first
// non-skip entry that brings it to zero or below. Skip entries do not stop
// the scan.
func (d Distribution) pick(sample float64) (uint8, bool) {
	for _, e := range d {
		sample -= e.Weight
		if sample <= 0 && !e.Skip {
			return e.Value, true
		}
	}
	return 0, false
}
