// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package automata

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"math/rand/v2"

	"github.com/gogpu/automata/backend"
	"github.com/gogpu/automata/kernel"
	"github.com/gogpu/automata/neighbourhood"
	"github.com/gogpu/automata/rule"
	"github.com/gogpu/automata/surface"
)

// ruleState tracks whether a pending rule holds a program for its
// boundary.
type ruleState int

const (
	ruleDefined ruleState = iota
	ruleCompiled
)

// pendingRule is a rule with the iterations accumulated since the last
// Finalize. boundary is the policy its program is synthesized for; it
// follows SetBoundary only while the rule is current.
type pendingRule struct {
	rule       *rule.Rule
	boundary   kernel.Boundary
	state      ruleState
	program    *kernel.Program
	iterations int
	queued     bool
}

// PendingInfo describes one batch entry.
type PendingInfo struct {
	Rule       string
	Compiled   bool
	Iterations int
}

// Automaton holds a host grid and a batch of rule applications that run
// on a backend when Finalize is called.
//
// An Automaton is not safe for concurrent use.
type Automaton struct {
	layout   surface.Layout
	grid     *Grid
	boundary kernel.Boundary

	backend     backend.Backend
	ownsBackend bool

	current *pendingRule
	batch   []*pendingRule
	closed  bool
}

// New creates an automaton over a grid of the given shape and configures
// its backend for it. Without WithBackend or WithBackendName the highest
// priority backend that initializes is used.
func New(shape []int, opts ...Option) (*Automaton, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	layout, err := surface.NewLayout(shape)
	if err != nil {
		return nil, err
	}

	b, owned, err := resolveBackend(o)
	if err != nil {
		return nil, err
	}
	if err := b.Configure(layout); err != nil {
		if owned {
			b.Close()
		}
		return nil, err
	}

	Logger().Info("automata: created", "shape", shape, "backend", b.Name(), "boundary", o.boundary.String())
	return &Automaton{
		layout:      layout,
		grid:        newGrid(layout, o.defaultValue),
		boundary:    o.boundary,
		backend:     b,
		ownsBackend: owned,
	}, nil
}

func resolveBackend(o options) (backend.Backend, bool, error) {
	switch {
	case o.backend != nil:
		if err := o.backend.Init(); err != nil {
			return nil, false, err
		}
		return o.backend, false, nil
	case o.backendName != "":
		b := backend.Get(o.backendName)
		if b == nil {
			return nil, false, fmt.Errorf("%w: %q", backend.ErrBackendNotAvailable, o.backendName)
		}
		if err := b.Init(); err != nil {
			b.Close()
			return nil, false, err
		}
		return b, true, nil
	default:
		b, err := backend.InitDefault()
		if err != nil {
			return nil, false, err
		}
		return b, true, nil
	}
}

// Grid returns the host grid. Changes made through it are uploaded by the
// next Finalize.
func (a *Automaton) Grid() *Grid { return a.grid }

// Shape returns the grid shape.
func (a *Automaton) Shape() []int { return a.layout.Shape() }

// Boundary returns the active boundary policy.
func (a *Automaton) Boundary() kernel.Boundary { return a.boundary }

// BackendName returns the name of the backend in use.
func (a *Automaton) BackendName() string { return a.backend.Name() }

// FillWithDistribution draws every cell from d. rng must return values in
// [0, 1); nil uses math/rand/v2.
func (a *Automaton) FillWithDistribution(d Distribution, rng func() float64) *Automaton {
	if rng == nil {
		rng = rand.Float64
	}
	sum := d.Sum()
	cells := a.grid.cells
	for i := range cells {
		if v, ok := d.pick(rng() * sum); ok {
			cells[i] = v
		}
	}
	return a
}

// SetBoundary sets the boundary policy. The current rule loses its
// program and is synthesized again on the next Iterate or Finalize; its
// accumulated iterations stay and all run under the new policy.
func (a *Automaton) SetBoundary(b kernel.Boundary) *Automaton {
	a.boundary = b
	p := a.current
	if p == nil {
		return a
	}
	p.boundary = b
	if p.state == ruleCompiled {
		p.state = ruleDefined
		p.program = nil
		Logger().Debug("automata: boundary changed, rule invalidated", "rule", p.rule.Source, "boundary", b.String())
	}
	return a
}

// SetOutOfBoundValue uses v for every neighbour outside the grid.
func (a *Automaton) SetOutOfBoundValue(v uint8) *Automaton {
	return a.SetBoundary(kernel.Fixed(v))
}

// SetWrap makes every axis wrap around.
func (a *Automaton) SetWrap() *Automaton {
	return a.SetBoundary(kernel.Wrap())
}

// SetRule parses src and makes it the current rule. The batch is not
// changed. On a parse error the current rule is kept. A replaced rule
// still in the batch keeps the boundary that was active while it was
// current.
func (a *Automaton) SetRule(src string) error {
	r, err := rule.Parse(src)
	if err != nil {
		return err
	}
	a.current = &pendingRule{rule: r, boundary: a.boundary}
	return nil
}

// Iterate adds n iterations of the current rule to the batch. n == 0
// counts as one. The first call after SetRule synthesizes the kernel and
// appends the rule to the batch; later calls only add to its count.
// No backend work happens here.
func (a *Automaton) Iterate(n int) error {
	if a.closed {
		return ErrClosed
	}
	if a.current == nil {
		return ErrNoRule
	}
	if n < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeIterations, n)
	}
	if n == 0 {
		n = 1
	}

	p := a.current
	if err := a.compile(p); err != nil {
		return err
	}
	if !p.queued {
		p.queued = true
		a.batch = append(a.batch, p)
	}
	p.iterations += n
	Logger().Debug("automata: iterate", "rule", p.rule.Source, "n", n, "total", p.iterations)
	return nil
}

// Apply is SetRule followed by Iterate(n).
func (a *Automaton) Apply(src string, n int) error {
	if err := a.SetRule(src); err != nil {
		return err
	}
	return a.Iterate(n)
}

func (a *Automaton) compile(p *pendingRule) error {
	if p.state == ruleCompiled {
		return nil
	}
	dim := a.layout.Dimension()
	if err := kernel.CheckNeighbourhood(p.rule, dim); err != nil {
		return err
	}
	offsets := neighbourhood.Resolve(p.rule.Neighbourhood, p.rule.Range, dim)
	prog, err := kernel.Synthesize(p.rule, offsets, a.layout.Shape(), p.boundary)
	if err != nil {
		return err
	}
	p.program = prog
	p.state = ruleCompiled
	if l := Logger(); l.Enabled(context.Background(), slog.LevelDebug) {
		l.Debug("automata: synthesized", "rule", p.rule.Source, "neighbours", len(offsets), "key", prog.Key()[:12])
	}
	return nil
}

// Finalize runs the batch on the backend: one upload, every entry in
// order for its accumulated iterations, one download. The grid is written
// only when everything succeeded; on error the batch is kept. An empty
// batch is a no-op.
func (a *Automaton) Finalize() error {
	if a.closed {
		return ErrClosed
	}
	if len(a.batch) == 0 {
		return nil
	}
	for _, p := range a.batch {
		if err := a.compile(p); err != nil {
			return err
		}
	}

	if err := a.backend.Upload(a.layout.Pack(a.grid.cells)); err != nil {
		return err
	}
	for _, p := range a.batch {
		if err := a.backend.Run(p.program, p.iterations); err != nil {
			return fmt.Errorf("automata: run %q: %w", p.rule.Source, err)
		}
	}
	pixels, err := a.backend.Download()
	if err != nil {
		return err
	}
	scratch := make([]uint8, a.layout.Len())
	if err := a.layout.Unpack(pixels, scratch); err != nil {
		return err
	}
	copy(a.grid.cells, scratch)

	Logger().Debug("automata: finalized", "entries", len(a.batch))
	for _, p := range a.batch {
		p.iterations = 0
		p.queued = false
	}
	a.batch = nil
	return nil
}

// Pending describes the batch in execution order.
func (a *Automaton) Pending() []PendingInfo {
	out := make([]PendingInfo, len(a.batch))
	for i, p := range a.batch {
		out[i] = PendingInfo{
			Rule:       p.rule.Source,
			Compiled:   p.state == ruleCompiled,
			Iterations: p.iterations,
		}
	}
	return out
}

// Reshape replaces the grid with one of the given shape filled with fill
// and reconfigures the backend. The batch is dropped and the current rule
// must be iterated again.
func (a *Automaton) Reshape(shape []int, fill uint8) error {
	if a.closed {
		return ErrClosed
	}
	layout, err := surface.NewLayout(shape)
	if err != nil {
		return err
	}
	if err := a.backend.Configure(layout); err != nil {
		return err
	}

	a.layout = layout
	a.grid = newGrid(layout, fill)
	a.batch = nil
	if a.current != nil {
		a.current = &pendingRule{rule: a.current.rule, boundary: a.boundary}
	}
	Logger().Debug("automata: reshaped", "shape", shape)
	return nil
}

// Snapshot renders the host grid as a grayscale image of the surface,
// each cell scaled to a scale x scale square.
func (a *Automaton) Snapshot(scale int) (image.Image, error) {
	if a.closed {
		return nil, ErrClosed
	}
	return a.layout.Snapshot(a.layout.Pack(a.grid.cells), scale), nil
}

// Close releases the backend if the Automaton created it.
func (a *Automaton) Close() {
	if a.closed {
		return
	}
	a.closed = true
	a.batch = nil
	if a.ownsBackend {
		a.backend.Close()
	}
}
