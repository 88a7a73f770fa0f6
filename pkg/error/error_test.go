package error

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinErrorFormat(t *testing.T) {
	err := Configuration("unknown mode").WithDetail("mode %q", "OUTER").In("Init", "Aligner")

	msg := err.Error()
	assert.True(t, strings.HasPrefix(msg, "[CONFIG_INVALID] unknown mode: mode \"OUTER\""))
	assert.Contains(t, msg, "(in Aligner.Init)")
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("disk gone")
	err := IOFailure(cause, "Seek", "MemoryCursor")

	require.NotNil(t, err)
	assert.Equal(t, ErrCategoryIO, err.Category)
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrIOFailure)
	assert.NotErrorIs(t, err, ErrStrategyFailure)
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCategoryIO, CodeIOFailure, "Seek", "x"))
}

func TestWrapEnrichesExisting(t *testing.T) {
	inner := Configuration("bad option")
	wrapped := StrategyFailure(fmt.Errorf("init: %w", inner), "Init", "MathTwoScalar")

	assert.Same(t, inner, wrapped)
	assert.Equal(t, "Init", wrapped.Operation)
	assert.Equal(t, ErrCategoryConfiguration, wrapped.Category)
}

func TestCategoryOf(t *testing.T) {
	cat, ok := CategoryOf(fmt.Errorf("outer: %w", AlignmentViolation("A", "r1")))
	require.True(t, ok)
	assert.Equal(t, ErrCategoryAlignment, cat)

	_, ok = CategoryOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestFormatStack(t *testing.T) {
	err := New(ErrCategoryStrategy, CodeStrategyFailure, "boom")
	assert.Contains(t, err.FormatStack(), "TestFormatStack")
}
