// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package kernel

import (
	"testing"

	"github.com/gogpu/automata/neighbourhood"
	"github.com/gogpu/automata/rule"
	"github.com/gogpu/automata/surface"
)

// lifeReference computes one Life step on a 2D grid indexed [x + y*w].
func lifeReference(cells []uint8, w, h int, b Boundary) []uint8 {
	get := func(x, y int) uint8 {
		if b.IsWrap() {
			x = (x%w + w) % w
			y = (y%h + h) % h
		} else if x < 0 || x >= w || y < 0 || y >= h {
			return b.Value()
		}
		return cells[x+y*w]
	}
	out := make([]uint8, len(cells))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			n := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if (dx != 0 || dy != 0) && get(x+dx, y+dy) != 0 {
						n++
					}
				}
			}
			alive := cells[x+y*w] != 0
			if (alive && (n == 2 || n == 3)) || (!alive && n == 3) {
				out[x+y*w] = 1
			}
		}
	}
	return out
}

func step(t *testing.T, ruleStr string, typ neighbourhood.Type, shape []int, b Boundary, cells []uint8, n int) []uint8 {
	t.Helper()
	p, err := Synthesize(rule.MustParse(ruleStr), neighbourhood.Resolve(typ, 1, len(shape)), shape, b)
	if err != nil {
		t.Fatal(err)
	}
	layout := p.Layout()
	src := layout.Pack(cells)
	dst := make([]byte, len(src))
	for i := 0; i < n; i++ {
		if err := p.Plan.Step(src, dst); err != nil {
			t.Fatal(err)
		}
		src, dst = dst, src
	}
	out := make([]uint8, layout.Len())
	if err := layout.Unpack(src, out); err != nil {
		t.Fatal(err)
	}
	return out
}

func TestPlanSingleCellDies(t *testing.T) {
	cells := make([]uint8, 9)
	cells[4] = 1
	got := step(t, "23/3", neighbourhood.Moore, []int{3, 3}, Fixed(0), cells, 1)
	for i, c := range got {
		if c != 0 {
			t.Errorf("cell %d = %d, want 0", i, c)
		}
	}
}

func TestPlanFixedBoundaryOne(t *testing.T) {
	cells := make([]uint8, 25)
	cells[2+2*5] = 1
	got := step(t, "23/3", neighbourhood.Moore, []int{5, 5}, Fixed(1), cells, 1)
	want := lifeReference(cells, 5, 5, Fixed(1))
	if got[12] != 0 {
		t.Error("isolated centre cell survived")
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("cell %d = %d, want %d", i, got[i], want[i])
		}
	}
	// Corners see five live out-of-grid neighbours; edge cells see three.
	if got[0] != 0 || got[1] != 1 {
		t.Errorf("corner/edge = %d/%d, want 0/1", got[0], got[1])
	}
}

func TestPlanMatchesReference(t *testing.T) {
	const w, h = 8, 6
	cells := make([]uint8, w*h)
	seed := uint32(12345)
	for i := range cells {
		seed = seed*1664525 + 1013904223
		if seed>>28 < 5 {
			cells[i] = 1
		}
	}
	for _, b := range []Boundary{Fixed(0), Fixed(1), Wrap()} {
		want := cells
		for i := 0; i < 8; i++ {
			want = lifeReference(want, w, h, b)
		}
		got := step(t, "23/3", neighbourhood.Moore, []int{w, h}, b, cells, 8)
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("boundary %v: cell %d = %d, want %d", b, i, got[i], want[i])
			}
		}
	}
}

func TestPlanBlinkerWraps(t *testing.T) {
	// Vertical blinker across the top/bottom seam of a 5x5 torus.
	cells := make([]uint8, 25)
	for _, y := range []int{4, 0, 1} {
		cells[2+y*5] = 1
	}
	got := step(t, "23/3", neighbourhood.Moore, []int{5, 5}, Wrap(), cells, 1)
	for x := 0; x < 5; x++ {
		want := uint8(0)
		if x >= 1 && x <= 3 {
			want = 1
		}
		if got[x] != want {
			t.Errorf("row 0, x=%d = %d, want %d", x, got[x], want)
		}
	}
}

func TestPlanGenerationsDecay(t *testing.T) {
	// A lone live cell cannot survive "23/3/4": 1 -> 2 -> 3 -> 0.
	cells := make([]uint8, 9)
	cells[4] = 1
	for i, want := range []uint8{2, 3, 0} {
		got := step(t, "23/3/4", neighbourhood.Moore, []int{3, 3}, Fixed(0), cells, i+1)
		if got[4] != want {
			t.Errorf("after %d steps centre = %d, want %d", i+1, got[4], want)
		}
	}
}

func TestPlanVoteCountsSelf(t *testing.T) {
	// "vote 1": a cell is on when exactly one cell of its closed
	// neighbourhood is on. The lone live cell keeps itself alive.
	cells := []uint8{0, 0, 0, 0, 1, 0, 0, 0, 0}
	got := step(t, "vote 1", neighbourhood.VonNeumann, []int{3, 3}, Fixed(0), cells, 1)
	want := []uint8{0, 1, 0, 1, 1, 1, 0, 1, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("cell %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestPlanCyclicAdvances(t *testing.T) {
	cells := []uint8{0, 1, 2, 0}
	got := step(t, "cyclic R1/T1/C3", neighbourhood.Moore, []int{4}, Wrap(), cells, 1)
	// Each cell advances when a neighbour holds its successor.
	want := []uint8{1, 2, 0, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("cell %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestPlanThreeDimensions(t *testing.T) {
	// A lone cell in a 3x3x3 cube under "E 1..26/1" (any live neighbour
	// births) lights the whole cube.
	shape := []int{3, 3, 3}
	layout, _ := surface.NewLayout(shape)
	cells := make([]uint8, layout.Len())
	cells[layout.Index([]int{1, 1, 1})] = 1
	got := step(t, "E 1..26/1", neighbourhood.Moore, shape, Fixed(0), cells, 1)
	for i, c := range got {
		want := uint8(1)
		if i == layout.Index([]int{1, 1, 1}) {
			want = 0
		}
		if c != want {
			t.Errorf("cell %v = %d, want %d", layout.Coord(i), c, want)
		}
	}
}

func TestPlanStepLengthMismatch(t *testing.T) {
	p, err := Synthesize(rule.MustParse("23/3"), moore2D(), []int{2, 2}, Fixed(0))
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Plan.Step(make([]byte, 16), make([]byte, 12)); err == nil {
		t.Error("expected error for mismatched buffers")
	}
}
