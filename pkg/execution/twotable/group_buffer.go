package twotable

import (
	"twotable/pkg/iterator"
	"twotable/pkg/key"
)

// groupBuffer holds the output of one aligned group. It keeps up to two
// entries pulled ahead of the consumer so it can tell whether the current
// entry is the last one of the group, which is when checkpointing is safe.
type groupBuffer struct {
	seq       iterator.EntryIterator
	first     key.Entry
	second    key.Entry
	hasFirst  bool
	hasSecond bool
}

// newGroupBuffer wraps seq and pulls its first two entries.
func newGroupBuffer(seq iterator.EntryIterator) (*groupBuffer, error) {
	gb := &groupBuffer{seq: seq}
	if err := gb.fill(); err != nil {
		return nil, err
	}
	return gb, nil
}

// HasNext returns true while an entry is available.
func (gb *groupBuffer) HasNext() bool {
	return gb.hasFirst
}

// Peek returns the current entry without consuming it.
func (gb *groupBuffer) Peek() key.Entry {
	return gb.first
}

// IsLast reports whether the current entry is the final one of the group.
func (gb *groupBuffer) IsLast() bool {
	return gb.hasFirst && !gb.hasSecond
}

// Advance drops the current entry and pulls the next one from the sequence.
func (gb *groupBuffer) Advance() error {
	gb.first, gb.hasFirst = gb.second, gb.hasSecond
	gb.second, gb.hasSecond = key.Entry{}, false
	return gb.fill()
}

func (gb *groupBuffer) fill() error {
	for !gb.hasFirst || !gb.hasSecond {
		if gb.seq == nil {
			return nil
		}
		ok, err := gb.seq.HasNext()
		if err != nil {
			return err
		}
		if !ok {
			gb.seq = nil
			return nil
		}
		e, err := gb.seq.Next()
		if err != nil {
			return err
		}
		if !gb.hasFirst {
			gb.first, gb.hasFirst = e, true
		} else {
			gb.second, gb.hasSecond = e, true
		}
	}
	return nil
}
