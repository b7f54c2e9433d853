// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package kernel

import (
	"fmt"

	"github.com/gogpu/automata/surface"
)

// Plan executes a synthesized transition over packed RGBA8 buffers.
// It mirrors the fragment stage cell for cell.
type Plan struct {
	t        *transition
	layout   surface.Layout
	shape    []int
	strides  []int
	offsets  [][]int
	boundary Boundary

	// Membership tables indexed by neighbour count.
	survival []bool
	birth    []bool
	vote     []bool
}

func newPlan(t *transition, layout surface.Layout, offsets [][]int, b Boundary) *Plan {
	// Vote counts include the cell itself.
	maxCount := len(offsets) + 1
	return &Plan{
		t:        t,
		layout:   layout,
		shape:    layout.Shape(),
		strides:  layout.Strides(),
		offsets:  offsets,
		boundary: b,
		survival: table(t.rule.Survives, maxCount),
		birth:    table(t.rule.Born, maxCount),
		vote:     table(t.rule.Votes, maxCount),
	}
}

func table(member func(int) bool, maxCount int) []bool {
	out := make([]bool, maxCount+1)
	for n := range out {
		out[n] = member(n)
	}
	return out
}

// Layout returns the surface layout the plan addresses.
func (p *Plan) Layout() surface.Layout { return p.layout }

// Boundary returns the boundary policy baked into the plan.
func (p *Plan) Boundary() Boundary { return p.boundary }

// Neighbours returns the number of sampled neighbours per cell.
func (p *Plan) Neighbours() int { return len(p.offsets) }

// Step computes one generation from src into dst. Both buffers must hold
// exactly Layout().PackedLen() bytes and must not overlap.
func (p *Plan) Step(src, dst []byte) error {
	n := p.layout.PackedLen()
	if len(src) != n || len(dst) != n {
		return fmt.Errorf("kernel: step buffers are %d and %d bytes, want %d", len(src), len(dst), n)
	}

	coord := make([]int, len(p.shape))
	for i := 0; i < p.layout.Len(); i++ {
		rem := i
		for axis, s := range p.shape {
			coord[axis] = rem % s
			rem /= s
		}

		own := src[i*surface.BytesPerPixel]
		succ := uint8((int(own) + 1) % p.t.states)

		count := 0
		for _, o := range p.offsets {
			s := p.sample(src, coord, o)
			switch p.t.kind {
			case kindGenerations:
				if s == 1 {
					count++
				}
			case kindCyclic:
				if s == succ {
					count++
				}
			default:
				if s != 0 {
					count++
				}
			}
		}

		px := dst[i*surface.BytesPerPixel : (i+1)*surface.BytesPerPixel]
		px[0] = p.next(own, succ, count)
		px[1] = 0
		px[2] = 0
		px[3] = 0xFF
	}
	return nil
}

func (p *Plan) sample(src []byte, coord, offset []int) uint8 {
	j := 0
	for axis, d := range offset {
		c := coord[axis] + d
		s := p.shape[axis]
		if p.boundary.wrap {
			c = ((c % s) + s) % s
		} else if c < 0 || c >= s {
			return p.boundary.value
		}
		j += c * p.strides[axis]
	}
	return src[j*surface.BytesPerPixel]
}

func (p *Plan) next(own, succ uint8, count int) uint8 {
	switch p.t.kind {
	case kindVote:
		if own != 0 {
			count++
		}
		return bit(p.vote[count])
	case kindGenerations:
		if own == 0 {
			return bit(p.birth[count])
		}
		if own == 1 && p.survival[count] {
			return 1
		}
		return uint8((int(own) + 1) % p.t.states)
	case kindCyclic:
		if count >= p.t.threshold {
			return succ
		}
		return own
	default:
		if own != 0 {
			return bit(p.survival[count])
		}
		return bit(p.birth[count])
	}
}

func bit(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
