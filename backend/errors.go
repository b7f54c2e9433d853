// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"errors"
	"fmt"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not available.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrContextUnavailable is returned when no execution context can be acquired.
	ErrContextUnavailable = errors.New("backend: context unavailable")

	// ErrNotInitialized is returned when operations are called before Init.
	ErrNotInitialized = errors.New("backend: not initialized")

	// ErrNotConfigured is returned when operations are called before Configure.
	ErrNotConfigured = errors.New("backend: not configured")

	// ErrBackendFailed is returned by every call on a backend instance
	// after a resource failure. The instance must be closed and replaced.
	ErrBackendFailed = errors.New("backend: instance failed")

	// ErrLayoutMismatch is returned when a program or buffer does not match
	// the configured layout.
	ErrLayoutMismatch = errors.New("backend: layout mismatch")
)

// ResourceError reports a failure to create or use an execution resource
// (context, texture, buffer, pipeline). It is fatal to the backend instance.
type ResourceError struct {
	// Op is the failing operation, e.g. "init", "configure", "link".
	Op  string
	Err error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("backend: %s: %v", e.Op, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// CompileError reports a program stage that failed to compile.
// Source holds the offending stage source.
type CompileError struct {
	Stage  string
	Source string
	Err    error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("backend: compile %s stage: %v", e.Stage, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// Latch records the first fatal error of a backend instance. The zero
// value is healthy.
type Latch struct {
	cause error
}

// Fail records err as the fatal cause unless one is already recorded
// and returns err.
func (l *Latch) Fail(err error) error {
	if l.cause == nil {
		l.cause = err
		Logger().Warn("backend: instance failed", "err", err)
	}
	return err
}

// Check returns a ResourceError wrapping ErrBackendFailed for op if a
// fatal error was recorded, nil otherwise.
func (l *Latch) Check(op string) error {
	if l.cause == nil {
		return nil
	}
	return &ResourceError{Op: op, Err: fmt.Errorf("%w (cause: %v)", ErrBackendFailed, l.cause)}
}

// Cause returns the recorded fatal error, if any.
func (l *Latch) Cause() error { return l.cause }
