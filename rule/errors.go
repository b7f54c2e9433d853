// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package rule

import "fmt"

// ParseError reports a rule string that could not be parsed.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("rule: cannot parse %q: %s", e.Input, e.Reason)
}

func parseErrorf(input, format string, args ...any) *ParseError {
	return &ParseError{Input: input, Reason: fmt.Sprintf(format, args...)}
}
