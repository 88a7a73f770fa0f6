package iterator

import "twotable/pkg/key"

// EntryIterator is a lazy, finite, one-pass sequence of entries. Multiply
// strategies return one per aligned group; the aligner drains it entry by
// entry and may abandon it at any point.
//
// Implementations are not restartable and not safe for concurrent use.
type EntryIterator interface {
	// HasNext reports whether another entry is available without consuming it.
	// Producing the entry may fail, in which case the error is returned here.
	HasNext() (bool, error)

	// Next returns the next entry and advances the sequence.
	// Calling Next when HasNext reports false returns ErrExhausted.
	Next() (key.Entry, error)
}
