package iterator

import "twotable/pkg/key"

// sliceIterator walks entries that are already in memory.
type sliceIterator struct {
	entries []key.Entry
	pos     int
}

func (s *sliceIterator) HasNext() (bool, error) {
	return s.pos < len(s.entries), nil
}

func (s *sliceIterator) Next() (key.Entry, error) {
	if s.pos >= len(s.entries) {
		return key.Entry{}, ErrExhausted
	}
	s.pos++
	return s.entries[s.pos-1], nil
}

// FromSlice returns a sequence over entries. The slice is not copied.
func FromSlice(entries []key.Entry) EntryIterator {
	return &sliceIterator{entries: entries}
}

// Singleton returns a sequence holding only e.
func Singleton(e key.Entry) EntryIterator {
	return FromSlice([]key.Entry{e})
}

// Empty returns a sequence with no entries.
func Empty() EntryIterator {
	return FromSlice(nil)
}
