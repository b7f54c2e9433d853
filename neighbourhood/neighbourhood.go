// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package neighbourhood

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/gogpu/automata/internal/cache"
)

// Type names a neighbourhood topology family.
type Type string

// Supported topologies.
const (
	Moore      Type = "moore"
	VonNeumann Type = "von-neumann"
	Axis       Type = "axis"
	Corner     Type = "corner"
	Edge       Type = "edge"
	Face       Type = "face"
)

// Defaults applied by Resolve.
const (
	DefaultType      = Moore
	DefaultRange     = 1
	DefaultDimension = 2
)

// Offset is a relative coordinate delta, one entry per axis.
type Offset []int

// String returns the comma-joined coordinates, e.g. "-1,0".
// This is the key of the canonical order.
func (o Offset) String() string {
	var sb strings.Builder
	for i, c := range o {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(c))
	}
	return sb.String()
}

// Generator enumerates the offsets of one topology family.
// The result is unsorted and never contains the origin.
type Generator func(r, dim int) []Offset

var generators = map[Type]Generator{
	Moore:      moore,
	VonNeumann: vonNeumann,
	Axis:       axis,
	Corner:     corner,
	Edge:       edge,
	Face:       face,
}

// Types returns the supported topology names in a stable order.
func Types() []Type {
	return []Type{Moore, VonNeumann, Axis, Corner, Edge, Face}
}

// Supported reports whether t names a known topology.
func Supported(t Type) bool {
	_, ok := generators[t]
	return ok
}

// Generate enumerates the offsets of topology t without sorting them.
func Generate(t Type, r, dim int) ([]Offset, error) {
	gen, ok := generators[t]
	if !ok {
		return nil, fmt.Errorf("neighbourhood: unknown topology %q", t)
	}
	if r < 1 {
		return nil, fmt.Errorf("neighbourhood: range must be positive, got %d", r)
	}
	if dim < 1 {
		return nil, fmt.Errorf("neighbourhood: dimension must be positive, got %d", dim)
	}
	return gen(r, dim), nil
}

type resolveKey struct {
	t   Type
	r   int
	dim int
}

var resolved = cache.New[resolveKey, []Offset](64)

// normalize applies the defaults of Resolve.
func normalize(t Type, r, dim int) (Type, int, int) {
	if !Supported(t) {
		t = DefaultType
	}
	if r < 1 {
		r = DefaultRange
	}
	if dim < 1 {
		dim = DefaultDimension
	}
	return t, r, dim
}

// Count returns the number of offsets Resolve would return for the same
// arguments, without enumerating them. Counts that do not fit an int are
// reported as math.MaxInt.
func Count(t Type, r, dim int) int {
	t, r, dim = normalize(t, r, dim)
	side := 2*float64(r) + 1
	inner := 2*float64(r) - 1
	d := float64(dim)

	var n float64
	switch t {
	case Moore:
		n = math.Pow(side, d) - 1
	case VonNeumann:
		// Lattice points with L1 norm <= r, minus the origin.
		for k := 0; k <= dim && k <= r; k++ {
			n += math.Pow(2, float64(k)) * binomial(dim, k) * binomial(r, k)
		}
		n--
	case Axis:
		n = 2 * float64(r) * d
	case Corner:
		n = math.Pow(2, d)
	case Edge:
		n = math.Pow(2, d)
		if dim > 1 {
			n += d * math.Pow(2, d-1) * inner
		}
	case Face:
		n = math.Pow(side, d) - math.Pow(inner, d)
	}
	if n >= math.MaxInt {
		return math.MaxInt
	}
	return int(math.Round(n))
}

func binomial(n, k int) float64 {
	out := 1.0
	for i := 1; i <= k; i++ {
		out = out * float64(n-k+i) / float64(i)
	}
	return out
}

// Resolve returns the canonically ordered neighbourhood of topology t.
// Unknown or empty types fall back to moore, r < 1 becomes 1 and dim < 1
// becomes 2. The returned slice is a fresh copy owned by the caller.
func Resolve(t Type, r, dim int) []Offset {
	t, r, dim = normalize(t, r, dim)

	offsets, _ := resolved.GetOrCreate(resolveKey{t, r, dim}, func() ([]Offset, error) {
		out := generators[t](r, dim)
		Sort(out)
		return out, nil
	})
	return clone(offsets)
}

// Sort orders offsets by comparing their comma-joined string forms.
// This is a string order, so "-1,0" sorts after "-1,-1" and "-1" before "-2".
func Sort(offsets []Offset) {
	slices.SortStableFunc(offsets, func(a, b Offset) int {
		return strings.Compare(a.String(), b.String())
	})
}

func clone(in []Offset) []Offset {
	out := make([]Offset, len(in))
	for i, o := range in {
		out[i] = slices.Clone(o)
	}
	return out
}

// enumerate visits every offset of the hypercube [-r, r]^dim except the
// origin and keeps those accepted by keep.
func enumerate(r, dim int, keep func(Offset) bool) []Offset {
	var out []Offset
	cur := make(Offset, dim)
	for i := range cur {
		cur[i] = -r
	}
	for {
		if !isOrigin(cur) && keep(cur) {
			out = append(out, slices.Clone(cur))
		}
		// Odometer increment, last axis fastest.
		i := dim - 1
		for ; i >= 0; i-- {
			if cur[i] < r {
				cur[i]++
				break
			}
			cur[i] = -r
		}
		if i < 0 {
			return out
		}
	}
}

func isOrigin(o Offset) bool {
	for _, c := range o {
		if c != 0 {
			return false
		}
	}
	return true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func moore(r, dim int) []Offset {
	return enumerate(r, dim, func(Offset) bool { return true })
}

func vonNeumann(r, dim int) []Offset {
	return enumerate(r, dim, func(o Offset) bool {
		sum := 0
		for _, c := range o {
			sum += abs(c)
		}
		return sum <= r
	})
}

func axis(r, dim int) []Offset {
	return enumerate(r, dim, func(o Offset) bool {
		return countNonZero(o) == 1
	})
}

func corner(r, dim int) []Offset {
	return enumerate(r, dim, func(o Offset) bool {
		return countAtRange(o, r) == dim
	})
}

func edge(r, dim int) []Offset {
	need := dim - 1
	if need < 1 {
		need = 1
	}
	return enumerate(r, dim, func(o Offset) bool {
		return countAtRange(o, r) >= need
	})
}

func face(r, dim int) []Offset {
	return enumerate(r, dim, func(o Offset) bool {
		return countAtRange(o, r) >= 1
	})
}

func countNonZero(o Offset) int {
	n := 0
	for _, c := range o {
		if c != 0 {
			n++
		}
	}
	return n
}

func countAtRange(o Offset, r int) int {
	n := 0
	for _, c := range o {
		if abs(c) == r {
			n++
		}
	}
	return n
}
