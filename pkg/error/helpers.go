package error

import "errors"

// Sentinels for errors.Is. They match any JoinError carrying the same code.
var (
	ErrConfiguration      = &JoinError{Code: CodeConfigInvalid}
	ErrIOFailure          = &JoinError{Code: CodeIOFailure}
	ErrStrategyFailure    = &JoinError{Code: CodeStrategyFailure}
	ErrAlignmentViolation = &JoinError{Code: CodeAlignmentViolation}
	ErrNoOutput           = &JoinError{Code: CodeNoOutput}
)

// Configuration reports invalid options.
func Configuration(message string) *JoinError {
	return New(ErrCategoryConfiguration, CodeConfigInvalid, message)
}

// IOFailure wraps an error returned by a cursor.
func IOFailure(err error, operation, component string) *JoinError {
	return Wrap(err, ErrCategoryIO, CodeIOFailure, operation, component)
}

// StrategyFailure wraps an error raised by a multiply strategy.
func StrategyFailure(err error, operation, component string) *JoinError {
	return Wrap(err, ErrCategoryStrategy, CodeStrategyFailure, operation, component)
}

// AlignmentViolation reports a row strategy that left a cursor inside the row it multiplied.
func AlignmentViolation(side, row string) *JoinError {
	return New(ErrCategoryAlignment, CodeAlignmentViolation,
		"row multiply left cursor inside the multiplied row").
		WithDetail("side %s, row %q", side, row).
		WithHint("a row strategy must advance both cursors to the start of their next row")
}

// CategoryOf returns the category of the first JoinError in err's chain.
func CategoryOf(err error) (ErrorCategory, bool) {
	var je *JoinError
	if errors.As(err, &je) {
		return je.Category, true
	}
	return 0, false
}
