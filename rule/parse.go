// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package rule

import (
	"strconv"
	"strings"

	"github.com/gogpu/automata/neighbourhood"
)

var suffixTypes = map[byte]neighbourhood.Type{
	'm': neighbourhood.Moore,
	'v': neighbourhood.VonNeumann,
	'n': neighbourhood.VonNeumann,
	'a': neighbourhood.Axis,
	'c': neighbourhood.Corner,
	'e': neighbourhood.Edge,
	'f': neighbourhood.Face,
}

// Parse parses a rule string. It returns a *ParseError when the string is
// not recognized by any dialect.
func Parse(s string) (*Rule, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, parseErrorf(s, "empty rule")
	}

	var (
		nt neighbourhood.Type
		nr int
	)
	if len(fields) >= 2 {
		if t, r, ok := parseSuffix(fields[len(fields)-1]); ok {
			nt, nr = t, r
			fields = fields[:len(fields)-1]
		}
	}

	r, err := parseBody(s, strings.Join(fields, " "))
	if err != nil {
		return nil, err
	}
	if nt != "" {
		r.Neighbourhood = nt
		r.Range = nr
	}
	r.Source = s
	return r, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level rule tables.
func MustParse(s string) *Rule {
	r, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return r
}

func parseSuffix(tok string) (neighbourhood.Type, int, bool) {
	t, ok := suffixTypes[lower(tok[0])]
	if !ok {
		return "", 0, false
	}
	if len(tok) == 1 {
		return t, 0, true
	}
	if !isDigits(tok[1:]) {
		return "", 0, false
	}
	r, err := strconv.Atoi(tok[1:])
	if err != nil {
		return "", 0, false
	}
	return t, r, true
}

func parseBody(src, body string) (*Rule, error) {
	low := strings.ToLower(body)
	switch {
	case strings.HasPrefix(low, "nluky"):
		return parseLUKY(src, body[len("nluky"):], true)
	case strings.HasPrefix(low, "luky"):
		return parseLUKY(src, body[len("luky"):], false)
	case strings.HasPrefix(low, "vote"):
		return parseVote(src, body[len("vote"):])
	case strings.HasPrefix(low, "cyclic"):
		return parseCyclic(src, body[len("cyclic"):])
	case strings.HasPrefix(low, "e"):
		return parseExtended(src, body[1:])
	default:
		return parseLife(src, body)
	}
}

func parseLife(src, body string) (*Rule, error) {
	parts := strings.Split(stripSpaces(body), "/")
	if len(parts) < 2 || len(parts) > 3 {
		return nil, parseErrorf(src, "expected S/B or S/B/C")
	}

	const (
		roleS = iota
		roleB
		roleC
	)
	var (
		values [3]string
		seen   [3]bool
	)
	for i, p := range parts {
		role := i
		if p != "" {
			switch lower(p[0]) {
			case 's':
				role, p = roleS, p[1:]
			case 'b':
				role, p = roleB, p[1:]
			case 'c':
				role, p = roleC, p[1:]
			}
		}
		if seen[role] {
			return nil, parseErrorf(src, "duplicate part %q", parts[i])
		}
		seen[role] = true
		values[role] = p
	}
	if !seen[roleS] || !seen[roleB] {
		return nil, parseErrorf(src, "missing survival or birth part")
	}

	survival, err := parseDigits(src, values[roleS])
	if err != nil {
		return nil, err
	}
	birth, err := parseDigits(src, values[roleB])
	if err != nil {
		return nil, err
	}

	r := &Rule{
		Family:   Life,
		Survival: survival,
		Birth:    birth,
		States:   2,
	}
	if seen[roleC] {
		states, err := parseNumber(src, values[roleC])
		if err != nil {
			return nil, err
		}
		r.Family = Generations
		r.States = states
	}
	return r, nil
}

func parseExtended(src, body string) (*Rule, error) {
	parts := strings.Split(stripSpaces(body), "/")
	if len(parts) != 2 {
		return nil, parseErrorf(src, "expected E S/B")
	}
	survival, err := parseList(src, parts[0])
	if err != nil {
		return nil, err
	}
	birth, err := parseList(src, parts[1])
	if err != nil {
		return nil, err
	}
	return &Rule{
		Family:   Extended,
		Survival: survival,
		Birth:    birth,
		States:   2,
	}, nil
}

func parseVote(src, body string) (*Rule, error) {
	body = stripSpaces(body)
	if body == "" {
		return nil, parseErrorf(src, "vote needs at least one count")
	}
	var (
		votes []int
		err   error
	)
	if strings.ContainsAny(body, ",.") {
		votes, err = parseList(src, body)
	} else {
		votes, err = parseDigits(src, body)
	}
	if err != nil {
		return nil, err
	}
	return &Rule{Family: Vote, Vote: votes, States: 2}, nil
}

func parseLUKY(src, body string, withStates bool) (*Rule, error) {
	want := 4
	if withStates {
		want = 5
	}

	fields := strings.Fields(body)
	var nums []int
	switch {
	case len(fields) == 1 && len(fields[0]) == want && isDigits(fields[0]):
		for i := 0; i < want; i++ {
			nums = append(nums, int(fields[0][i]-'0'))
		}
	case len(fields) == want:
		for _, f := range fields {
			n, err := parseNumber(src, f)
			if err != nil {
				return nil, err
			}
			nums = append(nums, n)
		}
	default:
		return nil, parseErrorf(src, "expected %d numbers", want)
	}

	r := &Rule{Family: LUKY, States: 2}
	if withStates {
		r.Family = NLUKY
		r.States = nums[0]
		nums = nums[1:]
	}
	l, u, k, y := nums[0], nums[1], nums[2], nums[3]
	if l > u {
		return nil, parseErrorf(src, "birth range %d..%d is empty", l, u)
	}
	if k > y {
		return nil, parseErrorf(src, "survival range %d..%d is empty", k, y)
	}
	r.Birth = span(l, u)
	r.Survival = span(k, y)
	return r, nil
}

func parseCyclic(src, body string) (*Rule, error) {
	r := &Rule{Family: Cyclic}
	var haveT, haveC bool
	for _, p := range strings.Split(stripSpaces(body), "/") {
		if len(p) < 2 {
			return nil, parseErrorf(src, "malformed cyclic part %q", p)
		}
		key, val := lower(p[0]), p[1:]
		switch key {
		case 'r':
			n, err := parseNumber(src, val)
			if err != nil {
				return nil, err
			}
			r.Range = n
		case 't':
			n, err := parseNumber(src, val)
			if err != nil {
				return nil, err
			}
			r.Threshold, haveT = n, true
		case 'c':
			n, err := parseNumber(src, val)
			if err != nil {
				return nil, err
			}
			r.States, haveC = n, true
		case 'n':
			switch strings.ToLower(val) {
			case "m":
				r.Neighbourhood = neighbourhood.Moore
			case "n":
				r.Neighbourhood = neighbourhood.VonNeumann
			default:
				return nil, parseErrorf(src, "unknown cyclic neighbourhood %q", val)
			}
		default:
			return nil, parseErrorf(src, "unknown cyclic part %q", p)
		}
	}
	if !haveT || !haveC {
		return nil, parseErrorf(src, "cyclic rule needs T and C parts")
	}
	return r, nil
}

// parseDigits reads a list where every character is one count.
func parseDigits(src, s string) ([]int, error) {
	out := make([]int, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return nil, parseErrorf(src, "unexpected %q", c)
		}
		out = append(out, int(c-'0'))
	}
	return normalize(out), nil
}

// parseList reads comma separated counts and inclusive a..b ranges.
func parseList(src, s string) ([]int, error) {
	if s == "" {
		return []int{}, nil
	}
	var out []int
	for _, item := range strings.Split(s, ",") {
		if lo, hi, ok := strings.Cut(item, ".."); ok {
			a, err := parseNumber(src, lo)
			if err != nil {
				return nil, err
			}
			b, err := parseNumber(src, hi)
			if err != nil {
				return nil, err
			}
			if a > b {
				return nil, parseErrorf(src, "range %d..%d is empty", a, b)
			}
			out = append(out, span(a, b)...)
			continue
		}
		n, err := parseNumber(src, item)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return normalize(out), nil
}

func parseNumber(src, s string) (int, error) {
	if !isDigits(s) {
		return 0, parseErrorf(src, "%q is not a number", s)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, parseErrorf(src, "%q: %v", s, err)
	}
	return n, nil
}

func span(a, b int) []int {
	out := make([]int, 0, b-a+1)
	for i := a; i <= b; i++ {
		out = append(out, i)
	}
	return out
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}
