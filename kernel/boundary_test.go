// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package kernel

import "testing"

func TestBoundaryZeroValueIsFixedZero(t *testing.T) {
	var b Boundary
	if b.IsWrap() || b.Value() != 0 {
		t.Errorf("zero Boundary = %v, want fixed 0", b)
	}
	if b != Fixed(0) {
		t.Error("zero Boundary != Fixed(0)")
	}
}

func TestParseBoundary(t *testing.T) {
	tests := []struct {
		in      string
		want    Boundary
		wantErr bool
	}{
		{"wrap", Wrap(), false},
		{" WRAP ", Wrap(), false},
		{"0", Fixed(0), false},
		{"1", Fixed(1), false},
		{"255", Fixed(255), false},
		{"256", Boundary{}, true},
		{"-1", Boundary{}, true},
		{"torus", Boundary{}, true},
		{"", Boundary{}, true},
	}
	for _, tt := range tests {
		got, err := ParseBoundary(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseBoundary(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseBoundary(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBoundaryString(t *testing.T) {
	if Wrap().String() != "wrap" {
		t.Errorf("Wrap().String() = %q", Wrap().String())
	}
	if Fixed(7).String() != "7" {
		t.Errorf("Fixed(7).String() = %q", Fixed(7).String())
	}
}
