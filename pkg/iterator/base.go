package iterator

import "twotable/pkg/key"

// ReadNextFunc produces the next entry of a lazy sequence.
// Returns:
//   - key.Entry: the produced entry when ok is true
//   - bool: false once the sequence is finished
//   - error: failure while producing the entry
type ReadNextFunc func() (key.Entry, bool, error)

// FuncIterator implements the lookahead caching logic shared by lazily
// computed sequences. A strategy only supplies the ReadNextFunc; HasNext
// caches one entry so that it can be answered without consuming.
type FuncIterator struct {
	next     key.Entry
	cached   bool
	done     bool
	err      error
	readNext ReadNextFunc
}

// NewFuncIterator creates a lazy iterator that calls readNext on demand.
func NewFuncIterator(readNext ReadNextFunc) *FuncIterator {
	return &FuncIterator{readNext: readNext}
}

// HasNext implements EntryIterator. A failure from readNext is sticky: every
// later call reports the same error.
func (it *FuncIterator) HasNext() (bool, error) {
	if it.err != nil {
		return false, it.err
	}
	if it.cached {
		return true, nil
	}
	if it.done {
		return false, nil
	}

	e, ok, err := it.readNext()
	if err != nil {
		it.err = err
		return false, err
	}
	if !ok {
		it.done = true
		return false, nil
	}
	it.next, it.cached = e, true
	return true, nil
}

// Next implements EntryIterator.
func (it *FuncIterator) Next() (key.Entry, error) {
	ok, err := it.HasNext()
	if err != nil {
		return key.Entry{}, err
	}
	if !ok {
		return key.Entry{}, ErrExhausted
	}
	e := it.next
	it.next, it.cached = key.Entry{}, false
	return e, nil
}
