// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package automata

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/automata/backend"
	"github.com/gogpu/automata/kernel"
	"github.com/gogpu/automata/rule"
)

// lifeReference steps a 2D Conway grid on the host.
func lifeReference(cells []uint8, w, h int, b kernel.Boundary, steps int) []uint8 {
	cur := slices.Clone(cells)
	for range steps {
		next := make([]uint8, len(cur))
		for y := range h {
			for x := range w {
				n := 0
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						if dx == 0 && dy == 0 {
							continue
						}
						nx, ny := x+dx, y+dy
						var v uint8
						switch {
						case b.IsWrap():
							v = cur[(ny+h)%h*w+(nx+w)%w]
						case nx < 0 || ny < 0 || nx >= w || ny >= h:
							v = b.Value()
						default:
							v = cur[ny*w+nx]
						}
						if v != 0 {
							n++
						}
					}
				}
				alive := cur[y*w+x] != 0
				if (alive && (n == 2 || n == 3)) || (!alive && n == 3) {
					next[y*w+x] = 1
				}
			}
		}
		cur = next
	}
	return cur
}

// sequence returns an rng cycling through values.
func sequence(values ...float64) func() float64 {
	i := 0
	return func() float64 {
		v := values[i%len(values)]
		i++
		return v
	}
}

func newSoftware(t *testing.T, shape []int, opts ...Option) *Automaton {
	t.Helper()
	opts = append([]Option{WithBackendName(backend.BackendSoftware)}, opts...)
	a, err := New(shape, opts...)
	if err != nil {
		t.Fatalf("New(%v) error = %v", shape, err)
	}
	t.Cleanup(a.Close)
	return a
}

func TestNewDefaults(t *testing.T) {
	a := newSoftware(t, []int{4, 3})
	if !slices.Equal(a.Shape(), []int{4, 3}) {
		t.Errorf("Shape() = %v", a.Shape())
	}
	if a.Boundary() != kernel.Fixed(0) {
		t.Errorf("Boundary() = %v, want fixed 0", a.Boundary())
	}
	if a.BackendName() != backend.BackendSoftware {
		t.Errorf("BackendName() = %q", a.BackendName())
	}
	if a.Grid().Count(0) != 12 {
		t.Error("cells should start at 0")
	}
}

func TestNewErrors(t *testing.T) {
	if _, err := New([]int{0, 3}); err == nil {
		t.Error("New with zero extent should fail")
	}
	if _, err := New([]int{3, 3}, WithBackendName("nope")); !errors.Is(err, backend.ErrBackendNotAvailable) {
		t.Errorf("unknown backend error = %v, want ErrBackendNotAvailable", err)
	}
}

func TestFillWithDistributionSingleValue(t *testing.T) {
	a := newSoftware(t, []int{7, 5})
	a.FillWithDistribution(Distribution{Weighted(1, 100)}, sequence(0, 0.25, 0.5, 0.999))
	if got := a.Grid().Count(1); got != 35 {
		t.Errorf("Count(1) = %d, want 35", got)
	}
}

func TestFillWithDistributionDeterministic(t *testing.T) {
	d := Distribution{Weighted(0, 50), Weighted(1, 50)}
	fill := func() []uint8 {
		a := newSoftware(t, []int{6, 6})
		a.FillWithDistribution(d, sequence(0.1, 0.7, 0.3, 0.9, 0.5, 0.05, 0.65))
		return a.Grid().Cells()
	}
	first, second := fill(), fill()
	if !slices.Equal(first, second) {
		t.Error("same rng sequence produced different grids")
	}
	// 0.5*100 - 50 == 0 selects the first entry.
	if first[4] != 0 {
		t.Errorf("sample on the boundary picked %d, want 0", first[4])
	}
	if first[1] != 1 {
		t.Errorf("sample 0.7 picked %d, want 1", first[1])
	}
}

func TestFillWithDistributionSkip(t *testing.T) {
	a := newSoftware(t, []int{3, 1}, WithDefaultValue(7))
	// Leading skip consumes mass but falls through to the next value.
	a.FillWithDistribution(Distribution{Skip(50), Weighted(2, 50)}, sequence(0.2))
	if got := a.Grid().Cells(); !slices.Equal(got, []uint8{2, 2, 2}) {
		t.Errorf("leading skip: cells = %v, want all 2", got)
	}
	// Trailing skip leaves the cell unchanged.
	a.FillWithDistribution(Distribution{Weighted(1, 50), Skip(50)}, sequence(0.2, 0.8, 0.2))
	if got := a.Grid().Cells(); !slices.Equal(got, []uint8{1, 2, 1}) {
		t.Errorf("trailing skip: cells = %v, want [1 2 1]", got)
	}
}

func TestIterateWithoutRule(t *testing.T) {
	a := newSoftware(t, []int{3, 3})
	if err := a.Iterate(1); !errors.Is(err, ErrNoRule) {
		t.Errorf("Iterate() error = %v, want ErrNoRule", err)
	}
}

func TestSetRuleParseErrorKeepsCurrent(t *testing.T) {
	a := newSoftware(t, []int{3, 3})
	if err := a.SetRule("23/3"); err != nil {
		t.Fatal(err)
	}
	err := a.SetRule("not a rule")
	var pe *rule.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("SetRule error = %v, want ParseError", err)
	}
	if err := a.Iterate(1); err != nil {
		t.Errorf("Iterate after failed SetRule = %v", err)
	}
	if p := a.Pending(); len(p) != 1 || p[0].Rule != "23/3" {
		t.Errorf("Pending() = %+v", p)
	}
}

func TestIterateSynthesisErrorStaysUncompiled(t *testing.T) {
	a := newSoftware(t, []int{3, 3})
	if err := a.SetRule("23/3/300"); err != nil {
		t.Fatal(err)
	}
	err := a.Iterate(1)
	var se *kernel.SynthesisError
	if !errors.As(err, &se) {
		t.Fatalf("Iterate error = %v, want SynthesisError", err)
	}
	if len(a.Pending()) != 0 {
		t.Error("failed rule entered the batch")
	}
}

func TestIterateCounts(t *testing.T) {
	a := newSoftware(t, []int{3, 3})
	if err := a.SetRule("23/3"); err != nil {
		t.Fatal(err)
	}
	if err := a.Iterate(0); err != nil {
		t.Fatal(err)
	}
	if err := a.Iterate(-2); !errors.Is(err, ErrNegativeIterations) {
		t.Errorf("Iterate(-2) error = %v, want ErrNegativeIterations", err)
	}
	if err := a.Iterate(4); err != nil {
		t.Fatal(err)
	}
	p := a.Pending()
	if len(p) != 1 || !p[0].Compiled || p[0].Iterations != 5 {
		t.Errorf("Pending() = %+v, want one compiled entry with 5 iterations", p)
	}
}

func TestBatchAccumulatesIterations(t *testing.T) {
	const w, h = 8, 8
	a := newSoftware(t, []int{w, h})
	// Glider.
	for _, c := range [][2]int{{1, 0}, {2, 1}, {0, 2}, {1, 2}, {2, 2}} {
		a.Grid().Set(1, c[0], c[1])
	}
	start := a.Grid().Cells()

	if err := a.SetRule("23/3"); err != nil {
		t.Fatal(err)
	}
	if err := a.Iterate(5); err != nil {
		t.Fatal(err)
	}
	if err := a.Iterate(3); err != nil {
		t.Fatal(err)
	}
	if p := a.Pending(); len(p) != 1 || p[0].Iterations != 8 {
		t.Fatalf("Pending() = %+v, want one entry with 8 iterations", p)
	}
	if err := a.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	want := lifeReference(start, w, h, kernel.Fixed(0), 8)
	if got := a.Grid().Cells(); !slices.Equal(got, want) {
		t.Errorf("after 8 steps:\n got %v\nwant %v", got, want)
	}
	if len(a.Pending()) != 0 {
		t.Error("batch not cleared after Finalize")
	}
}

func TestSingleCellDies(t *testing.T) {
	a := newSoftware(t, []int{3, 3})
	a.Grid().Set(1, 1, 1)
	if err := a.Apply("23/3", 1); err != nil {
		t.Fatal(err)
	}
	if err := a.Finalize(); err != nil {
		t.Fatal(err)
	}
	if got := a.Grid().Count(1); got != 0 {
		t.Errorf("live cells = %d, want 0", got)
	}
}

func TestEndToEndFixedBoundaryOne(t *testing.T) {
	const w, h = 5, 5
	a := newSoftware(t, []int{w, h})
	a.SetOutOfBoundValue(1)
	a.Grid().Set(1, 2, 2)
	start := a.Grid().Cells()

	if err := a.Apply("23/3", 1); err != nil {
		t.Fatal(err)
	}
	if err := a.Finalize(); err != nil {
		t.Fatal(err)
	}
	if a.Grid().Get(2, 2) != 0 {
		t.Error("isolated seed survived")
	}
	want := lifeReference(start, w, h, kernel.Fixed(1), 1)
	if got := a.Grid().Cells(); !slices.Equal(got, want) {
		t.Errorf("grid:\n got %v\nwant %v", got, want)
	}
}

func TestBoundaryChangeRecompiles(t *testing.T) {
	const w, h = 6, 6
	a := newSoftware(t, []int{w, h})
	a.FillWithDistribution(Distribution{Weighted(0, 60), Weighted(1, 40)},
		sequence(0.1, 0.9, 0.4, 0.7, 0.2, 0.65, 0.8, 0.05, 0.5))
	start := a.Grid().Cells()

	if err := a.SetRule("23/3"); err != nil {
		t.Fatal(err)
	}
	if err := a.Iterate(1); err != nil {
		t.Fatal(err)
	}
	a.SetWrap()
	if p := a.Pending(); len(p) != 1 || p[0].Compiled {
		t.Fatalf("Pending() after SetWrap = %+v, want one uncompiled entry", p)
	}
	if err := a.Iterate(1); err != nil {
		t.Fatal(err)
	}
	if p := a.Pending(); len(p) != 1 || !p[0].Compiled || p[0].Iterations != 2 {
		t.Fatalf("Pending() = %+v, want one compiled entry with 2 iterations", p)
	}
	if err := a.Finalize(); err != nil {
		t.Fatal(err)
	}

	want := lifeReference(start, w, h, kernel.Wrap(), 2)
	if got := a.Grid().Cells(); !slices.Equal(got, want) {
		t.Errorf("grid:\n got %v\nwant %v", got, want)
	}
}

func TestFinalizeCompilesInvalidatedEntry(t *testing.T) {
	const w, h = 5, 5
	a := newSoftware(t, []int{w, h})
	for x := 1; x <= 3; x++ {
		a.Grid().Set(1, x, 0)
	}
	start := a.Grid().Cells()
	if err := a.Apply("23/3", 1); err != nil {
		t.Fatal(err)
	}
	a.SetWrap()
	if err := a.Finalize(); err != nil {
		t.Fatal(err)
	}
	want := lifeReference(start, w, h, kernel.Wrap(), 1)
	if got := a.Grid().Cells(); !slices.Equal(got, want) {
		t.Errorf("grid:\n got %v\nwant %v", got, want)
	}
}

func TestReplacedRuleKeepsItsBoundary(t *testing.T) {
	const w, h = 5, 5
	a := newSoftware(t, []int{w, h})
	for x := 1; x <= 3; x++ {
		a.Grid().Set(1, x, 0)
	}
	start := a.Grid().Cells()

	if err := a.Apply("23/3", 1); err != nil {
		t.Fatal(err)
	}
	a.SetWrap()
	// Every cell survives and nothing is born.
	if err := a.Apply("012345678/", 1); err != nil {
		t.Fatal(err)
	}
	a.SetOutOfBoundValue(1)
	if p := a.Pending(); len(p) != 2 || p[0].Compiled {
		t.Fatalf("Pending() = %+v, want the first entry uncompiled", p)
	}
	if err := a.Finalize(); err != nil {
		t.Fatal(err)
	}

	want := lifeReference(start, w, h, kernel.Wrap(), 1)
	if got := a.Grid().Cells(); !slices.Equal(got, want) {
		t.Errorf("grid:\n got %v\nwant %v", got, want)
	}
	if fixed := lifeReference(start, w, h, kernel.Fixed(1), 1); slices.Equal(want, fixed) {
		t.Fatal("wrap and fixed 1 references agree, grid does not tell them apart")
	}
}

func TestIterateRejectsOversizedNeighbourhood(t *testing.T) {
	a := newSoftware(t, []int{4, 4})
	for _, src := range []string{"23/3 M150", "23/3 M2000"} {
		err := a.Apply(src, 1)
		var se *kernel.SynthesisError
		if !errors.As(err, &se) {
			t.Fatalf("Apply(%q) error = %v, want SynthesisError", src, err)
		}
	}
	if len(a.Pending()) != 0 {
		t.Errorf("Pending() = %+v, want empty", a.Pending())
	}
}

func TestBatchEntriesNotMerged(t *testing.T) {
	a := newSoftware(t, []int{4, 4})
	for _, src := range []string{"23/3", "LUKY 3323", "23/3"} {
		if err := a.Apply(src, 2); err != nil {
			t.Fatal(err)
		}
	}
	p := a.Pending()
	if len(p) != 3 {
		t.Fatalf("len(Pending()) = %d, want 3", len(p))
	}
	for i, want := range []string{"23/3", "LUKY 3323", "23/3"} {
		if p[i].Rule != want || p[i].Iterations != 2 {
			t.Errorf("Pending()[%d] = %+v", i, p[i])
		}
	}
}

func TestMixedBatchMatchesSequentialRuns(t *testing.T) {
	const w, h = 10, 10
	d := Distribution{Weighted(0, 70), Weighted(1, 30)}
	rng := func() func() float64 { return sequence(0.3, 0.8, 0.1, 0.95, 0.6, 0.2, 0.75) }

	batched := newSoftware(t, []int{w, h}, WithBoundary(kernel.Fixed(1)))
	batched.FillWithDistribution(d, rng())
	for _, step := range []struct {
		rule string
		n    int
	}{{"E 2,7,8/3,8", 3}, {"LUKY 3323", 1}, {"E 2,7,8/3,8", 2}} {
		if err := batched.Apply(step.rule, step.n); err != nil {
			t.Fatal(err)
		}
	}
	if err := batched.Finalize(); err != nil {
		t.Fatal(err)
	}

	stepped := newSoftware(t, []int{w, h}, WithBoundary(kernel.Fixed(1)))
	stepped.FillWithDistribution(d, rng())
	for _, step := range []struct {
		rule string
		n    int
	}{{"E 2,7,8/3,8", 3}, {"LUKY 3323", 1}, {"E 2,7,8/3,8", 2}} {
		if err := stepped.Apply(step.rule, step.n); err != nil {
			t.Fatal(err)
		}
		if err := stepped.Finalize(); err != nil {
			t.Fatal(err)
		}
	}

	if !slices.Equal(batched.Grid().Cells(), stepped.Grid().Cells()) {
		t.Error("one batch and per-rule finalizes disagree")
	}
}

func TestIterateAfterFinalizeRequeues(t *testing.T) {
	a := newSoftware(t, []int{5, 5})
	if err := a.Apply("23/3", 2); err != nil {
		t.Fatal(err)
	}
	prog := a.current.program
	if err := a.Finalize(); err != nil {
		t.Fatal(err)
	}
	if err := a.Finalize(); err != nil {
		t.Errorf("Finalize on empty batch = %v", err)
	}
	if err := a.Iterate(1); err != nil {
		t.Fatal(err)
	}
	p := a.Pending()
	if len(p) != 1 || p[0].Iterations != 1 {
		t.Errorf("Pending() = %+v, want one entry with 1 iteration", p)
	}
	if a.current.program != prog {
		t.Error("rule was synthesized again without a boundary change")
	}
}

// failingDownload wraps the software backend and fails Download.
type failingDownload struct {
	*backend.SoftwareBackend
}

var errDownload = errors.New("download failed")

func (f failingDownload) Download() ([]byte, error) { return nil, errDownload }

func TestFinalizeFailureLeavesGrid(t *testing.T) {
	sw := backend.NewSoftwareBackend()
	defer sw.Close()
	a, err := New([]int{3, 3}, WithBackend(failingDownload{sw}))
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	a.Grid().Set(1, 1, 1)
	before := a.Grid().Cells()

	if err := a.Apply("23/3", 1); err != nil {
		t.Fatal(err)
	}
	if err := a.Finalize(); !errors.Is(err, errDownload) {
		t.Fatalf("Finalize() error = %v, want errDownload", err)
	}
	if !slices.Equal(a.Grid().Cells(), before) {
		t.Error("grid changed by a failed Finalize")
	}
	if len(a.Pending()) != 1 {
		t.Error("batch dropped by a failed Finalize")
	}
}

func TestReshape(t *testing.T) {
	a := newSoftware(t, []int{4, 4})
	if err := a.Apply("23/3", 3); err != nil {
		t.Fatal(err)
	}
	if err := a.Reshape([]int{3, 2, 2}, 5); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(a.Shape(), []int{3, 2, 2}) {
		t.Errorf("Shape() = %v", a.Shape())
	}
	if a.Grid().Count(5) != 12 {
		t.Error("reshaped grid not filled")
	}
	if len(a.Pending()) != 0 {
		t.Error("batch survived Reshape")
	}
	// The rule is kept and synthesized for the new shape.
	if err := a.Iterate(1); err != nil {
		t.Fatal(err)
	}
	if err := a.Finalize(); err != nil {
		t.Fatal(err)
	}
	if err := a.Reshape([]int{-1}, 0); err == nil {
		t.Error("Reshape with negative extent should fail")
	}
}

func TestThreeDimensionalBlock(t *testing.T) {
	// "E 1..26/1" on a 3D grid: an isolated cell dies and lights its
	// Moore shell.
	a := newSoftware(t, []int{5, 5, 5})
	a.Grid().Set(1, 2, 2, 2)
	if err := a.Apply("E 1..26/1", 1); err != nil {
		t.Fatal(err)
	}
	if err := a.Finalize(); err != nil {
		t.Fatal(err)
	}
	if got := a.Grid().Count(1); got != 26 {
		t.Errorf("live cells = %d, want 26", got)
	}
	if a.Grid().Get(2, 2, 2) != 0 || a.Grid().Get(1, 1, 1) != 1 || a.Grid().Get(0, 0, 0) != 0 {
		t.Error("wrong cells alive")
	}
}

func TestSnapshot(t *testing.T) {
	a := newSoftware(t, []int{4, 3})
	a.Grid().Set(1, 3, 2)
	img, err := a.Snapshot(2)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 6 {
		t.Errorf("Snapshot bounds = %v, want 8x6", b)
	}
	if r, _, _, _ := img.At(7, 5).RGBA(); r == 0 {
		t.Error("live cell not visible in snapshot")
	}
}

func TestCloseKeepsInjectedBackend(t *testing.T) {
	sw := backend.NewSoftwareBackend()
	defer sw.Close()
	a, err := New([]int{3, 3}, WithBackend(sw))
	if err != nil {
		t.Fatal(err)
	}
	a.Close()
	a.Close()
	if _, err := sw.Download(); err != nil {
		t.Errorf("injected backend closed by Automaton.Close: %v", err)
	}
	if err := a.Finalize(); !errors.Is(err, ErrClosed) {
		t.Errorf("Finalize after Close = %v, want ErrClosed", err)
	}
	if err := a.Iterate(1); !errors.Is(err, ErrClosed) {
		t.Errorf("Iterate after Close = %v, want ErrClosed", err)
	}
}
