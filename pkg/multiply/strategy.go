package multiply

import (
	"twotable/pkg/cursor"
	"twotable/pkg/iterator"
	"twotable/pkg/key"
)

// RowMultiplier combines two rows that matched on row id.
type RowMultiplier interface {
	// Init configures the strategy. Options arrive with their
	// "rowMultiplyOp.opt." prefix removed.
	Init(opts map[string]string, env *cursor.Environment) error

	// MultiplyRow is called with both cursors on the first entry of rows that
	// share the same row id. The returned sequence is drained lazily; once it
	// is exhausted both cursors must sit at the first entry of their next row,
	// or be exhausted.
	MultiplyRow(a, b cursor.SortedCursor) (iterator.EntryIterator, error)
}

// Match describes two entries aligned on row, family and qualifier.
type Match struct {
	Row        []byte
	FamilyA    []byte
	QualifierA []byte
	FamilyB    []byte
	QualifierB []byte
	KeyA       key.Key
	KeyB       key.Key
	ValueA     key.Value
	ValueB     key.Value
}

// ElementMultiplier combines a single pair of aligned entries. It must not
// move any cursor.
type ElementMultiplier interface {
	// Init configures the strategy. Options arrive with their
	// "elementMultiplyOp.opt." prefix removed.
	Init(opts map[string]string, env *cursor.Environment) error

	// Multiply returns zero or more entries for the pair.
	Multiply(m Match) (iterator.EntryIterator, error)
}

// NewMatch builds the Match for two entries.
func NewMatch(a, b key.Entry) Match {
	return Match{
		Row:        a.Key.Row,
		FamilyA:    a.Key.Family,
		QualifierA: a.Key.Qualifier,
		FamilyB:    b.Key.Family,
		QualifierB: b.Key.Qualifier,
		KeyA:       a.Key,
		KeyB:       b.Key,
		ValueA:     a.Value,
		ValueB:     b.Value,
	}
}

func newerTimestamp(a, b key.Key) int64 {
	if a.Timestamp > b.Timestamp {
		return a.Timestamp
	}
	return b.Timestamp
}
