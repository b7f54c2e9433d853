// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package kernel

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"slices"

	"github.com/gogpu/automata/neighbourhood"
	"github.com/gogpu/automata/rule"
	"github.com/gogpu/automata/surface"
)

// Entry points of the generated stages.
const (
	VertexEntry   = "vs_main"
	FragmentEntry = "fs_main"
)

// MaxStates is the largest state count a byte-packed cell can hold.
const MaxStates = 256

// MaxNeighbours is the largest neighbourhood a kernel samples. The
// fragment stage unrolls one texture read per neighbour.
const MaxNeighbours = 1024

//go:embed shaders/passthrough.wgsl
var passthroughWGSL string

//go:embed shaders/step_prelude.wgsl
var stepPreludeWGSL string

// FullSurfaceTriangle is the clip-space vertex data drawn by every step:
// three float32x2 positions covering the whole render target.
var FullSurfaceTriangle = [6]float32{-1, -1, 3, -1, -1, 3}

// Program is a synthesized transition kernel.
type Program struct {
	// Vertex is the pass-through vertex stage source.
	Vertex string
	// Fragment is the transition stage source.
	Fragment string
	// Plan runs the same transition on the CPU.
	Plan *Plan
}

// Key returns the hex SHA-256 of both sources. Backends use it as the
// identity of compiled programs.
func (p *Program) Key() string {
	h := sha256.New()
	h.Write([]byte(p.Vertex))
	h.Write([]byte{0})
	h.Write([]byte(p.Fragment))
	return hex.EncodeToString(h.Sum(nil))
}

// Layout returns the surface layout the program addresses.
func (p *Program) Layout() surface.Layout {
	return p.Plan.layout
}

// kind is the aggregation scheme shared by several rule families.
type kind int

const (
	// Count non-zero neighbours; birth/survival on the cell being non-zero.
	kindBinary kind = iota
	// Count non-zero cells including the cell itself.
	kindVote
	// Count neighbours in state 1; non-surviving live cells decay.
	kindGenerations
	// Count neighbours holding the successor state.
	kindCyclic
)

// transition is the validated description both the WGSL emitter and the
// CPU plan are built from.
type transition struct {
	rule      *rule.Rule
	kind      kind
	survival  []int
	birth     []int
	vote      []int
	states    int
	threshold int
}

// Synthesize builds the transition program for r over the given
// neighbourhood, grid shape and boundary policy. It returns a
// *SynthesisError when the combination is invalid.
func Synthesize(r *rule.Rule, offsets []neighbourhood.Offset, shape []int, b Boundary) (*Program, error) {
	t, err := describe(r)
	if err != nil {
		return nil, err
	}

	layout, err := surface.NewLayout(shape)
	if err != nil {
		return nil, synthesisErrorf(r.Source, "%v", err)
	}
	if len(offsets) == 0 {
		return nil, synthesisErrorf(r.Source, "empty neighbourhood")
	}
	if len(offsets) > MaxNeighbours {
		return nil, synthesisErrorf(r.Source, "%d neighbours exceed the limit of %d", len(offsets), MaxNeighbours)
	}
	offs := make([][]int, len(offsets))
	for i, o := range offsets {
		if len(o) != layout.Dimension() {
			return nil, synthesisErrorf(r.Source, "offset %v has %d axes, grid has %d", o, len(o), layout.Dimension())
		}
		offs[i] = slices.Clone(o)
	}

	plan := newPlan(t, layout, offs, b)
	return &Program{
		Vertex:   passthroughWGSL,
		Fragment: emitFragment(plan),
		Plan:     plan,
	}, nil
}

// CheckNeighbourhood reports a *SynthesisError when the neighbourhood r
// requests on a grid of dim axes is larger than MaxNeighbours. It does
// not enumerate the offsets, so it is safe to call before resolving them.
func CheckNeighbourhood(r *rule.Rule, dim int) error {
	if r == nil {
		return synthesisErrorf("", "nil rule")
	}
	if n := neighbourhood.Count(r.Neighbourhood, r.Range, dim); n > MaxNeighbours {
		return synthesisErrorf(r.Source, "%d neighbours exceed the limit of %d", n, MaxNeighbours)
	}
	return nil
}

func describe(r *rule.Rule) (*transition, error) {
	if r == nil {
		return nil, synthesisErrorf("", "nil rule")
	}
	norm := *r
	norm.Survival = sorted(r.Survival)
	norm.Birth = sorted(r.Birth)
	norm.Vote = sorted(r.Vote)
	t := &transition{
		rule:      &norm,
		survival:  norm.Survival,
		birth:     norm.Birth,
		vote:      norm.Vote,
		states:    r.States,
		threshold: r.Threshold,
	}
	switch r.Family {
	case rule.Generations, rule.NLUKY:
		t.kind = kindGenerations
	case rule.Cyclic:
		t.kind = kindCyclic
		if r.Threshold < 1 {
			return nil, synthesisErrorf(r.Source, "cyclic threshold %d is below 1", r.Threshold)
		}
	default:
		if !r.Binary() {
			return nil, synthesisErrorf(r.Source, "unknown rule family %v", r.Family)
		}
		t.kind = kindBinary
		if r.Family == rule.Vote {
			t.kind = kindVote
		}
		t.states = 2
	}
	if t.states < 2 || t.states > MaxStates {
		return nil, synthesisErrorf(r.Source, "state count %d outside 2..%d", t.states, MaxStates)
	}
	for _, list := range [][]int{t.survival, t.birth, t.vote} {
		for _, n := range list {
			if n < 0 {
				return nil, synthesisErrorf(r.Source, "negative neighbour count %d", n)
			}
		}
	}
	return t, nil
}

func sorted(counts []int) []int {
	out := slices.Clone(counts)
	slices.Sort(out)
	return slices.Compact(out)
}
