package twotable

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dberror "twotable/pkg/error"
	"twotable/pkg/key"
	"twotable/pkg/multiply"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"NONE", ModeNone},
		{"row", ModeRow},
		{" Ewise ", ModeEWise},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseMode("matrix")
	assert.True(t, errors.Is(err, dberror.ErrConfiguration))
}

func TestModeGranularity(t *testing.T) {
	assert.Equal(t, key.Row, ModeRow.Granularity())
	assert.Equal(t, key.RowFamilyQualifier, ModeEWise.Granularity())
	assert.Equal(t, key.RowFamilyQualifier, ModeNone.Granularity())
	assert.Equal(t, "EWISE", ModeEWise.String())
}

func TestParseOptionsSides(t *testing.T) {
	cfg, err := ParseOptions(map[string]string{
		"mode":          "NONE",
		"A.tableName":   "left",
		"A.emitNoMatch": "true",
		"A.doWholeRow":  "true",
		"B.tableName":   "right",
		"B.rowRanges":   "a:c",
		"B.emitNoMatch": "false",
	})
	require.NoError(t, err)

	assert.Equal(t, ModeNone, cfg.Mode)
	assert.True(t, cfg.A.EmitNoMatch)
	assert.False(t, cfg.B.EmitNoMatch)
	assert.Equal(t, map[string]string{"tableName": "left"}, cfg.A.CursorOptions)
	assert.Equal(t, map[string]string{"tableName": "right", "rowRanges": "a:c"}, cfg.B.CursorOptions)
}

func TestParseOptionsRowModeForwardsElementSettings(t *testing.T) {
	cfg, err := ParseOptions(map[string]string{
		"mode":                           "ROW",
		"elementMultiplyOp":              "math",
		"elementMultiplyOp.opt.scalarOp": "PLUS",
		"rowMultiplyOp.opt.extra":        "1",
	})
	require.NoError(t, err)

	assert.Equal(t, multiply.CartesianName, cfg.RowMultiplyOp)
	assert.Equal(t, map[string]string{
		"multiplyOp":              "math",
		"multiplyOp.opt.scalarOp": "PLUS",
		"extra":                   "1",
	}, cfg.RowMultiplyOptions)
	assert.Empty(t, cfg.ElementMultiplyOp)
}

func TestParseOptionsEWiseDefaults(t *testing.T) {
	cfg, err := ParseOptions(map[string]string{
		"mode":                      "EWISE",
		"rowMultiplyOp":             "cartesian",
		"multiplyOp.opt.scalarType": "LONG",
	})
	require.NoError(t, err)

	assert.Equal(t, multiply.MathName, cfg.ElementMultiplyOp)
	assert.Empty(t, cfg.RowMultiplyOp)
	assert.Equal(t, map[string]string{"scalarType": "LONG"}, cfg.ElementMultiplyOptions)
}

func TestParseOptionsErrors(t *testing.T) {
	_, err := ParseOptions(map[string]string{"A.tableName": "t"})
	assert.True(t, errors.Is(err, dberror.ErrConfiguration))

	_, err = ParseOptions(map[string]string{"mode": "ROW", "B.emitNoMatch": "sometimes"})
	assert.True(t, errors.Is(err, dberror.ErrConfiguration))
}

func TestResumeRangeKeepsEnd(t *testing.T) {
	prev := key.RowRange("a", "m")
	ck := key.NewKey("c", "f", "q", 3)

	r := ResumeRange(prev, ck)
	require.NotNil(t, r.Start)
	assert.False(t, r.StartInclusive)
	assert.True(t, r.Start.Equal(ck))
	assert.Equal(t, prev.End, r.End)
	assert.Equal(t, prev.EndInclusive, r.EndInclusive)
}
