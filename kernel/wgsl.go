// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package kernel

import (
	"fmt"
	"strconv"
	"strings"
)

// emitFragment writes the transition stage for p. Every shape extent,
// stride and rule constant is inlined as a literal.
func emitFragment(p *Plan) string {
	var b strings.Builder
	w := p.layout.Width()

	b.WriteString(stepPreludeWGSL)
	fmt.Fprintf(&b, "\n// shape %v, %d neighbours, boundary %s\n", p.shape, len(p.offsets), p.boundary)
	b.WriteString("@fragment\n")
	fmt.Fprintf(&b, "fn %s(@builtin(position) position: vec4<f32>) -> @location(0) vec4<f32> {\n", FragmentEntry)
	b.WriteString("    let u = i32(position.x);\n")
	b.WriteString("    let v = i32(position.y);\n")
	fmt.Fprintf(&b, "    let i = v * %d + u;\n", w)
	for axis, s := range p.shape {
		if p.strides[axis] == 1 {
			fmt.Fprintf(&b, "    let c%d = i %% %d;\n", axis, s)
		} else {
			fmt.Fprintf(&b, "    let c%d = (i / %d) %% %d;\n", axis, p.strides[axis], s)
		}
	}
	b.WriteString("    let own = cell(u, v);\n")
	if p.t.kind == kindCyclic {
		fmt.Fprintf(&b, "    let succ = (own + 1u) %% %du;\n", p.t.states)
	}
	b.WriteString("    var count: u32 = 0u;\n")

	for _, o := range p.offsets {
		emitSample(&b, p, o)
	}

	b.WriteString("\n")
	emitNext(&b, p)
	b.WriteString("    return vec4<f32>(f32(next) / 255.0, 0.0, 0.0, 1.0);\n")
	b.WriteString("}\n")
	return b.String()
}

func emitSample(b *strings.Builder, p *Plan, o []int) {
	w := p.layout.Width()

	fmt.Fprintf(b, "\n    // %s\n", joinInts(o))
	b.WriteString("    {\n")
	var inside []string
	for axis, d := range o {
		s := p.shape[axis]
		moved := shift(axis, d)
		switch {
		case d == 0:
			fmt.Fprintf(b, "        let n%d = c%d;\n", axis, axis)
		case p.boundary.wrap:
			fmt.Fprintf(b, "        let n%d = ((%s) %% %d + %d) %% %d;\n", axis, moved, s, s, s)
		default:
			fmt.Fprintf(b, "        let n%d = %s;\n", axis, moved)
			if d < 0 {
				inside = append(inside, fmt.Sprintf("n%d >= 0", axis))
			} else {
				inside = append(inside, fmt.Sprintf("n%d < %d", axis, s))
			}
		}
	}

	var terms []string
	for axis := range o {
		if p.strides[axis] == 1 {
			terms = append(terms, fmt.Sprintf("n%d", axis))
		} else {
			terms = append(terms, fmt.Sprintf("n%d * %d", axis, p.strides[axis]))
		}
	}
	index := strings.Join(terms, " + ")

	if len(inside) == 0 {
		fmt.Fprintf(b, "        let j = %s;\n", index)
		fmt.Fprintf(b, "        let s = cell(j %% %d, j / %d);\n", w, w)
	} else {
		fmt.Fprintf(b, "        var s: u32 = %du;\n", p.boundary.value)
		fmt.Fprintf(b, "        if (%s) {\n", strings.Join(inside, " && "))
		fmt.Fprintf(b, "            let j = %s;\n", index)
		fmt.Fprintf(b, "            s = cell(j %% %d, j / %d);\n", w, w)
		b.WriteString("        }\n")
	}

	switch p.t.kind {
	case kindGenerations:
		b.WriteString("        if (s == 1u) {\n")
	case kindCyclic:
		b.WriteString("        if (s == succ) {\n")
	default:
		b.WriteString("        if (s != 0u) {\n")
	}
	b.WriteString("            count = count + 1u;\n")
	b.WriteString("        }\n")
	b.WriteString("    }\n")
}

func emitNext(b *strings.Builder, p *Plan) {
	maxCount := len(p.offsets) + 1
	survive := member(p.t.survival, maxCount)
	born := member(p.t.birth, maxCount)

	switch p.t.kind {
	case kindVote:
		b.WriteString("    if (own != 0u) {\n")
		b.WriteString("        count = count + 1u;\n")
		b.WriteString("    }\n")
		b.WriteString("    var next: u32 = 0u;\n")
		fmt.Fprintf(b, "    if (%s) {\n", member(p.t.vote, maxCount))
		b.WriteString("        next = 1u;\n")
		b.WriteString("    }\n")
	case kindGenerations:
		fmt.Fprintf(b, "    var next: u32 = (own + 1u) %% %du;\n", p.t.states)
		b.WriteString("    if (own == 0u) {\n")
		b.WriteString("        next = 0u;\n")
		fmt.Fprintf(b, "        if (%s) {\n", born)
		b.WriteString("            next = 1u;\n")
		b.WriteString("        }\n")
		fmt.Fprintf(b, "    } else if (own == 1u && (%s)) {\n", survive)
		b.WriteString("        next = 1u;\n")
		b.WriteString("    }\n")
	case kindCyclic:
		b.WriteString("    var next: u32 = own;\n")
		fmt.Fprintf(b, "    if (count >= %du) {\n", p.t.threshold)
		b.WriteString("        next = succ;\n")
		b.WriteString("    }\n")
	default:
		b.WriteString("    var next: u32 = 0u;\n")
		b.WriteString("    if (own != 0u) {\n")
		fmt.Fprintf(b, "        if (%s) {\n", survive)
		b.WriteString("            next = 1u;\n")
		b.WriteString("        }\n")
		fmt.Fprintf(b, "    } else if (%s) {\n", born)
		b.WriteString("        next = 1u;\n")
		b.WriteString("    }\n")
	}
}

// member returns a boolean expression testing count against the sorted
// list, folding consecutive values into ranges. Counts above maxCount can
// never occur and are dropped.
func member(counts []int, maxCount int) string {
	var terms []string
	for i := 0; i < len(counts); {
		lo := counts[i]
		if lo > maxCount {
			break
		}
		hi := lo
		i++
		for i < len(counts) && counts[i] == hi+1 && counts[i] <= maxCount {
			hi = counts[i]
			i++
		}
		if lo == hi {
			terms = append(terms, fmt.Sprintf("count == %du", lo))
		} else {
			terms = append(terms, fmt.Sprintf("(count >= %du && count <= %du)", lo, hi))
		}
	}
	if len(terms) == 0 {
		return "false"
	}
	return strings.Join(terms, " || ")
}

func shift(axis, d int) string {
	if d < 0 {
		return fmt.Sprintf("c%d - %d", axis, -d)
	}
	return fmt.Sprintf("c%d + %d", axis, d)
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}
