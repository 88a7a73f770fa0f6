package cursor

import (
	"sync/atomic"

	"twotable/pkg/key"
)

// CallCounts accumulates the cursor calls observed by a CountingCursor.
// Copies made through DeepCopy share the counters of their origin.
type CallCounts struct {
	Nexts atomic.Int64
	Seeks atomic.Int64
}

// CountingCursor wraps another cursor and counts Next and Seek calls. It can
// also be told to fail a call, which is how IO failures are simulated.
type CountingCursor struct {
	SortedCursor
	counts *CallCounts

	// FailNext, when set, is returned by Next instead of stepping.
	FailNext error
	// FailSeek, when set, is returned by Seek instead of seeking.
	FailSeek error
}

// NewCountingCursor wraps inner with fresh counters.
func NewCountingCursor(inner SortedCursor) *CountingCursor {
	return &CountingCursor{SortedCursor: inner, counts: &CallCounts{}}
}

// Counts returns the shared counters.
func (c *CountingCursor) Counts() *CallCounts { return c.counts }

// Nexts returns the number of Next calls seen so far.
func (c *CountingCursor) Nexts() int64 { return c.counts.Nexts.Load() }

// Seeks returns the number of Seek calls seen so far.
func (c *CountingCursor) Seeks() int64 { return c.counts.Seeks.Load() }

// Reset zeroes the counters.
func (c *CountingCursor) Reset() {
	c.counts.Nexts.Store(0)
	c.counts.Seeks.Store(0)
}

func (c *CountingCursor) Seek(r key.Range, families [][]byte, inclusive bool) error {
	c.counts.Seeks.Add(1)
	if c.FailSeek != nil {
		return c.FailSeek
	}
	return c.SortedCursor.Seek(r, families, inclusive)
}

func (c *CountingCursor) Next() error {
	c.counts.Nexts.Add(1)
	if c.FailNext != nil {
		return c.FailNext
	}
	return c.SortedCursor.Next()
}

func (c *CountingCursor) DeepCopy(env *Environment) (SortedCursor, error) {
	inner, err := c.SortedCursor.DeepCopy(env)
	if err != nil {
		return nil, err
	}
	return &CountingCursor{SortedCursor: inner, counts: c.counts}, nil
}
