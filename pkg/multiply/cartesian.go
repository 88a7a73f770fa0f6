package multiply

import (
	"bytes"
	"strings"

	"twotable/pkg/cursor"
	dberror "twotable/pkg/error"
	"twotable/pkg/iterator"
	"twotable/pkg/key"
	"twotable/pkg/logging"
)

// Options understood by CartesianRowMultiply.
const (
	OptMultiplyOp       = "multiplyOp"
	OptMultiplyOpPrefix = "multiplyOp.opt."
)

// CartesianRowMultiply reads both matching rows into memory and pairs every
// entry of A with every entry of B. Each pair is combined by an element
// strategy, "math" unless the multiplyOp option names another one.
//
// With the default element strategy each product is written to
// (row, A qualifier, B qualifier), the cell of an outer product.
type CartesianRowMultiply struct {
	registry *Registry
	elem     ElementMultiplier
}

// NewCartesianRowMultiply creates the strategy. Element strategies are looked
// up in registry.
func NewCartesianRowMultiply(registry *Registry) *CartesianRowMultiply {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &CartesianRowMultiply{registry: registry}
}

// Init implements RowMultiplier.
func (m *CartesianRowMultiply) Init(opts map[string]string, env *cursor.Environment) error {
	name := MathName
	elemOpts := make(map[string]string)

	for k, v := range opts {
		switch {
		case k == OptMultiplyOp:
			name = v
		case strings.HasPrefix(k, OptMultiplyOpPrefix):
			elemOpts[strings.TrimPrefix(k, OptMultiplyOpPrefix)] = v
		default:
			logging.WithComponent("CartesianRowMultiply").Warn("ignoring unrecognized option", "option", k, "value", v)
		}
	}

	if name == MathName {
		if _, ok := elemOpts[OptKeyLayout]; !ok {
			elemOpts[OptKeyLayout] = LayoutOuter
		}
	}

	elem, err := m.registry.NewElement(name)
	if err != nil {
		return err
	}
	if err := elem.Init(elemOpts, env); err != nil {
		return dberror.Wrap(err, dberror.ErrCategoryConfiguration, dberror.CodeConfigInvalid, "Init", "CartesianRowMultiply")
	}
	m.elem = elem
	return nil
}

// MultiplyRow implements RowMultiplier. Both rows are read eagerly, so the
// cursors already sit on their next rows when the call returns.
func (m *CartesianRowMultiply) MultiplyRow(a, b cursor.SortedCursor) (iterator.EntryIterator, error) {
	if m.elem == nil {
		return nil, dberror.Configuration("strategy not initialized").In("MultiplyRow", "CartesianRowMultiply")
	}

	rowA, err := readRow(a)
	if err != nil {
		return nil, dberror.IOFailure(err, "MultiplyRow", "CartesianRowMultiply")
	}
	rowB, err := readRow(b)
	if err != nil {
		return nil, dberror.IOFailure(err, "MultiplyRow", "CartesianRowMultiply")
	}

	i, j := 0, 0
	var current iterator.EntryIterator

	return iterator.NewFuncIterator(func() (key.Entry, bool, error) {
		for {
			if current != nil {
				ok, err := current.HasNext()
				if err != nil {
					return key.Entry{}, false, dberror.StrategyFailure(err, "Multiply", "CartesianRowMultiply")
				}
				if ok {
					e, err := current.Next()
					if err != nil {
						return key.Entry{}, false, dberror.StrategyFailure(err, "Multiply", "CartesianRowMultiply")
					}
					return e, true, nil
				}
				current = nil
			}

			if i >= len(rowA) || len(rowB) == 0 {
				return key.Entry{}, false, nil
			}

			current, err = m.elem.Multiply(NewMatch(rowA[i], rowB[j]))
			if err != nil {
				return key.Entry{}, false, dberror.StrategyFailure(err, "Multiply", "CartesianRowMultiply")
			}

			j++
			if j == len(rowB) {
				i, j = i+1, 0
			}
		}
	}), nil
}

// readRow copies every entry of the current row of c and leaves c at the
// first entry of the next row.
func readRow(c cursor.SortedCursor) ([]key.Entry, error) {
	if !c.HasTop() {
		return nil, nil
	}
	row := append([]byte(nil), c.TopKey().Row...)

	var entries []key.Entry
	for c.HasTop() && bytes.Equal(c.TopKey().Row, row) {
		entries = append(entries, cursor.TopEntry(c))
		if err := c.Next(); err != nil {
			return nil, err
		}
	}
	return entries, nil
}
