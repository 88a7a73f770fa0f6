package key

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeContains(t *testing.T) {
	r := RowRange("b", "d")

	assert.False(t, r.Contains(NewKey("a", "f", "q", 1)))
	assert.True(t, r.Contains(NewKey("b", "", "", 1)))
	assert.True(t, r.Contains(NewKey("d", "zz", "zz", 0)))
	assert.False(t, r.Contains(NewKey("e", "", "", 1)))
	assert.False(t, r.Contains(NewKey("d\x00", "", "", 1)))

	assert.True(t, InfiniteRange().Contains(NewKey("anything", "", "", 0)))
}

func TestRangeExclusiveStart(t *testing.T) {
	k := NewKey("r", "f", "q", 3)
	r := NewRange(&k, false, nil, false)

	assert.True(t, r.BeforeStartKey(k))
	assert.False(t, r.Contains(k))
	assert.True(t, r.Contains(k.FollowingKey(Full)))
}

func TestExactRow(t *testing.T) {
	r := ExactRow("r1")
	assert.True(t, r.Contains(NewKey("r1", "a", "b", 1)))
	assert.False(t, r.Contains(NewKey("r10", "", "", 1)))
	assert.False(t, r.Contains(NewKey("r0", "", "", 1)))
}

func TestRangeClip(t *testing.T) {
	bound := RowRange("c", "m")

	t.Run("overlap keeps tighter bounds", func(t *testing.T) {
		start := RowKey([]byte("a"))
		end := RowKey([]byte("f"))
		clipped, ok := NewRange(&start, true, &end, true).Clip(bound)
		require.True(t, ok)
		assert.Equal(t, "c", string(clipped.Start.Row))
		assert.Equal(t, "f", string(clipped.End.Row))
		assert.True(t, clipped.EndInclusive)
	})

	t.Run("unbounded end takes bound end", func(t *testing.T) {
		start := RowKey([]byte("d"))
		clipped, ok := NewRange(&start, true, nil, false).Clip(bound)
		require.True(t, ok)
		assert.Equal(t, "d", string(clipped.Start.Row))
		require.NotNil(t, clipped.End)
		assert.False(t, clipped.Contains(NewKey("n", "", "", 1)))
	})

	t.Run("disjoint", func(t *testing.T) {
		start := RowKey([]byte("x"))
		_, ok := NewRange(&start, true, nil, false).Clip(bound)
		assert.False(t, ok)
	})

	t.Run("exclusive bound wins on tie", func(t *testing.T) {
		k := NewKey("c", "f", "q", 1)
		excl := NewRange(&k, false, nil, false)
		start := k
		clipped, ok := NewRange(&start, true, nil, false).Clip(excl)
		require.True(t, ok)
		assert.False(t, clipped.StartInclusive)
	})
}

func TestRangeIsEmpty(t *testing.T) {
	k := NewKey("r", "", "", 1)
	assert.False(t, NewRange(&k, true, &k, true).IsEmpty())
	assert.True(t, NewRange(&k, true, &k, false).IsEmpty())

	later := NewKey("s", "", "", 1)
	assert.True(t, NewRange(&later, true, &k, true).IsEmpty())
	assert.False(t, InfiniteRange().IsEmpty())
}
