package error

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrorCategory tells a caller how to react to a JoinError.
type ErrorCategory int

const (
	// ErrCategoryConfiguration: a missing mode, an unknown enum value or
	// strategy name, malformed per-side options. Raised at init or start.
	ErrCategoryConfiguration ErrorCategory = iota

	// ErrCategoryIO: an underlying cursor failed to seek or step. Never retried.
	ErrCategoryIO

	// ErrCategoryStrategy: a multiply strategy failed while producing output.
	ErrCategoryStrategy

	// ErrCategoryAlignment: a row strategy left a cursor inside the row it
	// multiplied.
	ErrCategoryAlignment

	// ErrCategoryUsage: the caller broke the cursor protocol, e.g. stepped
	// past the end of the output.
	ErrCategoryUsage
)

var categoryNames = [...]string{"configuration", "io", "strategy", "alignment", "usage"}

func (c ErrorCategory) String() string {
	if c >= 0 && int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// Error codes.
const (
	CodeConfigInvalid      = "CONFIG_INVALID"
	CodeIOFailure          = "IO_FAILURE"
	CodeStrategyFailure    = "STRATEGY_FAILURE"
	CodeAlignmentViolation = "ALIGNMENT_VIOLATION"
	CodeNoOutput           = "NO_OUTPUT"
)

// JoinError is the error type returned by every package of the join engine.
type JoinError struct {
	Code     string
	Category ErrorCategory
	Message  string

	// Detail names the offending value, e.g. `mode "OUTER"`.
	Detail string
	// Hint tells the user how to fix the problem.
	Hint string

	// Operation and Component locate the failure, e.g. "Seek" in "Aligner".
	Operation string
	Component string

	Cause error
	Stack []uintptr
}

// New creates an error with a captured stack.
func New(category ErrorCategory, code, message string) *JoinError {
	return &JoinError{
		Code:     code,
		Category: category,
		Message:  message,
		Stack:    callers(),
	}
}

// Wrap converts err into a JoinError. An err that already carries a
// JoinError keeps its code and category; only a missing location is filled in.
func Wrap(err error, category ErrorCategory, code, operation, component string) *JoinError {
	if err == nil {
		return nil
	}

	var je *JoinError
	if errors.As(err, &je) {
		if je.Operation == "" {
			je.Operation, je.Component = operation, component
		}
		return je
	}

	return &JoinError{
		Code:      code,
		Category:  category,
		Message:   err.Error(),
		Operation: operation,
		Component: component,
		Cause:     err,
		Stack:     callers(),
	}
}

func (e *JoinError) WithDetail(format string, args ...any) *JoinError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

func (e *JoinError) WithHint(hint string) *JoinError {
	e.Hint = hint
	return e
}

// In records where the error was raised.
func (e *JoinError) In(operation, component string) *JoinError {
	e.Operation, e.Component = operation, component
	return e
}

// callers skips itself, New or Wrap, and runtime.Callers.
func callers() []uintptr {
	pcs := make([]uintptr, 32)
	return pcs[:runtime.Callers(3, pcs)]
}

// Error renders "[CODE] message: detail (in Component.Operation): cause".
func (e *JoinError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if e.Detail != "" {
		b.WriteString(": " + e.Detail)
	}
	switch {
	case e.Component != "" && e.Operation != "":
		fmt.Fprintf(&b, " (in %s.%s)", e.Component, e.Operation)
	case e.Operation != "":
		fmt.Fprintf(&b, " (in %s)", e.Operation)
	}
	if e.Cause != nil && e.Cause.Error() != e.Message {
		b.WriteString(": " + e.Cause.Error())
	}
	return b.String()
}

func (e *JoinError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a JoinError with the same code, so
// errors.Is(err, ErrIOFailure) matches any IO failure.
func (e *JoinError) Is(target error) bool {
	t, ok := target.(*JoinError)
	return ok && t.Code != "" && t.Code == e.Code
}

// FormatStack renders the captured stack, one frame per line pair.
func (e *JoinError) FormatStack() string {
	if len(e.Stack) == 0 {
		return ""
	}
	var b strings.Builder
	frames := runtime.CallersFrames(e.Stack)
	for {
		f, more := frames.Next()
		fmt.Fprintf(&b, "%s\n\t%s:%d\n", f.Function, f.File, f.Line)
		if !more {
			return b.String()
		}
	}
}
