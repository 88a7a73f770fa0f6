package iterator

import (
	"errors"

	"twotable/pkg/key"
)

// ErrExhausted is returned by Next when the sequence has no more entries.
var ErrExhausted = errors.New("iterator exhausted")

// ForEach calls fn for every remaining entry, stopping at the first error.
func ForEach(it EntryIterator, fn func(key.Entry) error) error {
	for {
		ok, err := it.HasNext()
		if err != nil || !ok {
			return err
		}
		e, err := it.Next()
		if err != nil {
			return err
		}
		if err := fn(e); err != nil {
			return err
		}
	}
}

// Collect consumes the whole sequence into memory.
func Collect(it EntryIterator) ([]key.Entry, error) {
	var out []key.Entry
	err := ForEach(it, func(e key.Entry) error {
		out = append(out, e)
		return nil
	})
	return out, err
}
