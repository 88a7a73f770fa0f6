package multiply

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twotable/pkg/cursor"
	dberror "twotable/pkg/error"
	"twotable/pkg/iterator"
	"twotable/pkg/key"
)

func seeked(t *testing.T, entries ...key.Entry) *cursor.MemoryCursor {
	t.Helper()
	c := cursor.NewMemoryCursor(cursor.NewTable("t", entries))
	require.NoError(t, c.Seek(key.InfiniteRange(), nil, false))
	return c
}

func ent(row, fam, qual, val string) key.Entry {
	return key.Entry{Key: key.NewKey(row, fam, qual, 1), Value: key.Value(val)}
}

func TestCartesianRowMultiplyProducesAllPairs(t *testing.T) {
	a := seeked(t, ent("r1", "", "a1", "2"), ent("r1", "", "a2", "3"), ent("r2", "", "a1", "9"))
	b := seeked(t, ent("r1", "", "b1", "5"), ent("r1", "", "b2", "7"), ent("r1", "", "b3", "11"), ent("r3", "", "x", "1"))

	m := NewCartesianRowMultiply(DefaultRegistry())
	require.NoError(t, m.Init(nil, nil))

	seq, err := m.MultiplyRow(a, b)
	require.NoError(t, err)

	// both rows were consumed before the first product is produced
	require.True(t, a.HasTop())
	assert.Equal(t, "r2", string(a.TopKey().Row))
	require.True(t, b.HasTop())
	assert.Equal(t, "r3", string(b.TopKey().Row))

	out, err := iterator.Collect(seq)
	require.NoError(t, err)
	require.Len(t, out, 6)

	got := make(map[string]string)
	for _, e := range out {
		assert.Equal(t, "r1", string(e.Key.Row))
		got[string(e.Key.Family)+"*"+string(e.Key.Qualifier)] = string(e.Value)
	}
	assert.Equal(t, map[string]string{
		"a1*b1": "10", "a1*b2": "14", "a1*b3": "22",
		"a2*b1": "15", "a2*b2": "21", "a2*b3": "33",
	}, got)
}

func TestCartesianRowMultiplyForwardsElementOptions(t *testing.T) {
	a := seeked(t, ent("r", "", "x", "2"))
	b := seeked(t, ent("r", "", "y", "3"))

	m := NewCartesianRowMultiply(nil)
	require.NoError(t, m.Init(map[string]string{
		OptMultiplyOp:                     MathName,
		OptMultiplyOpPrefix + OptScalarOp: "PLUS",
	}, nil))

	out, err := iterator.Collect(must(m.MultiplyRow(a, b)))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "5", string(out[0].Value))
}

func TestCartesianRowMultiplyUnknownElement(t *testing.T) {
	m := NewCartesianRowMultiply(DefaultRegistry())
	err := m.Init(map[string]string{OptMultiplyOp: "nope"}, nil)
	assert.ErrorIs(t, err, dberror.ErrConfiguration)
}

func TestCartesianRowMultiplyCursorFailure(t *testing.T) {
	a := cursor.NewCountingCursor(seeked(t, ent("r", "", "x", "2"), ent("r", "", "y", "2")))
	a.FailNext = errors.New("connection reset")
	b := seeked(t, ent("r", "", "y", "3"))

	m := NewCartesianRowMultiply(nil)
	require.NoError(t, m.Init(nil, nil))

	_, err := m.MultiplyRow(a, b)
	assert.ErrorIs(t, err, dberror.ErrIOFailure)
}

func TestCartesianRowMultiplyStrategyFailureSurfacesLazily(t *testing.T) {
	a := seeked(t, ent("r", "", "x", "two"))
	b := seeked(t, ent("r", "", "y", "3"))

	m := NewCartesianRowMultiply(nil)
	require.NoError(t, m.Init(nil, nil))

	seq, err := m.MultiplyRow(a, b)
	require.NoError(t, err)
	_, err = seq.HasNext()
	assert.ErrorIs(t, err, dberror.ErrStrategyFailure)
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{CartesianName}, r.RowNames())
	assert.Equal(t, []string{MathName}, r.ElementNames())

	assert.Error(t, r.RegisterElement(MathName, func() ElementMultiplier { return NewMathTwoScalar() }))
	require.NoError(t, r.RegisterElement("math2", func() ElementMultiplier { return NewMathTwoScalar() }))

	e1, err := r.NewElement("math2")
	require.NoError(t, err)
	e2, err := r.NewElement("math2")
	require.NoError(t, err)
	assert.NotSame(t, e1, e2)

	_, err = r.NewRow("missing")
	assert.ErrorIs(t, err, dberror.ErrConfiguration)
}
