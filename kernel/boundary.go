// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package kernel

import (
	"fmt"
	"strconv"
	"strings"
)

// Boundary is the policy for neighbours outside the grid: either a fixed
// state or toroidal wrapping. The zero value is Fixed(0).
type Boundary struct {
	wrap  bool
	value uint8
}

// Fixed returns a policy substituting v for out-of-grid neighbours.
func Fixed(v uint8) Boundary {
	return Boundary{value: v}
}

// Wrap returns the toroidal policy.
func Wrap() Boundary {
	return Boundary{wrap: true}
}

// IsWrap reports whether b wraps around the grid edges.
func (b Boundary) IsWrap() bool { return b.wrap }

// Value returns the fixed out-of-grid state. It is 0 for Wrap.
func (b Boundary) Value() uint8 { return b.value }

// String returns "wrap" or the fixed value in decimal.
func (b Boundary) String() string {
	if b.wrap {
		return "wrap"
	}
	return strconv.Itoa(int(b.value))
}

// ParseBoundary parses "wrap" or a decimal state in 0..255.
func ParseBoundary(s string) (Boundary, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "wrap") {
		return Wrap(), nil
	}
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return Boundary{}, fmt.Errorf("kernel: invalid boundary %q: want \"wrap\" or 0..255", s)
	}
	return Fixed(uint8(v)), nil
}
