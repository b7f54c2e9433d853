// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package kernel

import "fmt"

// SynthesisError reports a rule, neighbourhood and shape combination that
// cannot produce a valid kernel.
type SynthesisError struct {
	Rule   string
	Reason string
}

func (e *SynthesisError) Error() string {
	if e.Rule == "" {
		return "kernel: " + e.Reason
	}
	return fmt.Sprintf("kernel: rule %q: %s", e.Rule, e.Reason)
}

func synthesisErrorf(rule, format string, args ...any) *SynthesisError {
	return &SynthesisError{Rule: rule, Reason: fmt.Sprintf(format, args...)}
}
