package cursor

import "twotable/pkg/key"

// SortedCursor is a resumable, seekable sequence of entries sorted by key.
// It is the only view the aligner has of a table.
//
// A cursor is positioned by Seek and then stepped with Next. TopKey and
// TopValue are only meaningful while HasTop reports true; the returned key
// and value must not be modified by the caller.
type SortedCursor interface {
	// Init configures the cursor from string options. Invalid option values
	// fail with a configuration error.
	Init(opts map[string]string, env *Environment) error

	// Seek positions the cursor at the first entry inside r. A non-empty
	// families list restricts the entries seen: with inclusive set only the
	// listed column families are returned, otherwise all but the listed ones.
	Seek(r key.Range, families [][]byte, inclusive bool) error

	// Next advances to the following entry.
	Next() error

	// HasTop reports whether the cursor is positioned on an entry.
	HasTop() bool

	// TopKey returns the key of the current entry.
	TopKey() key.Key

	// TopValue returns the value of the current entry.
	TopValue() key.Value

	// DeepCopy returns an independent cursor over the same data, positioned
	// identically. Stepping the copy never affects the original.
	DeepCopy(env *Environment) (SortedCursor, error)
}

// TopEntry returns the current entry of c as an independent copy.
func TopEntry(c SortedCursor) key.Entry {
	return key.Entry{Key: c.TopKey(), Value: c.TopValue()}.Clone()
}
