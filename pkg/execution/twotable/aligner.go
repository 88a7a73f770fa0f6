package twotable

import (
	"bytes"
	"errors"
	"io"
	"log/slog"

	"twotable/pkg/cursor"
	dberror "twotable/pkg/error"
	"twotable/pkg/iterator"
	"twotable/pkg/key"
	"twotable/pkg/logging"
	"twotable/pkg/multiply"
)

// Stats counts the work done by an aligner since it was created.
type Stats struct {
	Groups      int64 // non-empty multiply groups produced
	Matches     int64 // aligned pairs (NONE, EWISE) or rows (ROW)
	PassThrough int64 // unmatched entries emitted unchanged
	SkipSteps   int64 // Next calls made while skipping a lagging cursor
	SkipSeeks   int64 // reseeks made while skipping a lagging cursor
	Emitted     int64 // entries consumed by the caller
}

// Aligner merges two sorted cursors and emits entries in groups. Each group is
// either the output of a multiply strategy for one aligned position, or one
// unmatched entry passed through unchanged.
//
// An Aligner is itself a cursor.SortedCursor and is driven the same way:
// Seek (or Start), then HasTop/TopKey/TopValue/Next until HasTop is false.
// It is not safe for concurrent use; Fork gives an independent copy.
type Aligner struct {
	cfg      Config
	registry *multiply.Registry
	env      *cursor.Environment
	log      *slog.Logger

	a, b   cursor.SortedCursor
	rowOp  multiply.RowMultiplier
	elemOp multiply.ElementMultiplier

	seekRange key.Range
	families  [][]byte
	inclusive bool

	group    *groupBuffer
	emitted  key.Key
	groupRow []byte
	stats    Stats
}

var _ cursor.SortedCursor = (*Aligner)(nil)

// NewAligner returns an unconfigured aligner that takes its configuration and
// tables from Init. Strategies are looked up in registry, or in the default
// registry when nil.
func NewAligner(registry *multiply.Registry) *Aligner {
	if registry == nil {
		registry = multiply.DefaultRegistry()
	}
	return &Aligner{
		registry:  registry,
		seekRange: key.InfiniteRange(),
		log:       logging.WithComponent("aligner"),
	}
}

// New builds an aligner over two cursors that are already initialized.
func New(a, b cursor.SortedCursor, cfg Config, registry *multiply.Registry, env *cursor.Environment) (*Aligner, error) {
	if a == nil || b == nil {
		return nil, dberror.Configuration("both input cursors are required").In("New", "Aligner")
	}
	al := NewAligner(registry)
	al.env = env
	if err := al.configure(cfg, a, b); err != nil {
		return nil, err
	}
	return al, nil
}

// Open parses opts, opens the named tables from env and returns the aligner.
func Open(opts map[string]string, env *cursor.Environment, registry *multiply.Registry) (*Aligner, error) {
	al := NewAligner(registry)
	if err := al.Init(opts, env); err != nil {
		return nil, err
	}
	return al, nil
}

// Init implements cursor.SortedCursor. It parses opts and opens the tables
// named by A.tableName and B.tableName. When only one side names a table the
// other side reads a deep copy of it, which joins a table with itself.
func (al *Aligner) Init(opts map[string]string, env *cursor.Environment) error {
	cfg, err := ParseOptions(opts)
	if err != nil {
		return err
	}
	a, b, err := openSides(cfg, env)
	if err != nil {
		return err
	}
	al.env = env
	return al.configure(cfg, a, b)
}

func openSides(cfg Config, env *cursor.Environment) (cursor.SortedCursor, cursor.SortedCursor, error) {
	nameA := cfg.A.CursorOptions[cursor.OptTableName]
	nameB := cfg.B.CursorOptions[cursor.OptTableName]

	var (
		a, b cursor.SortedCursor
		err  error
	)
	switch {
	case nameA != "" && nameB != "":
		if a, err = cursor.Open(copyOptions(cfg.A.CursorOptions), env); err != nil {
			return nil, nil, err
		}
		if b, err = cursor.Open(copyOptions(cfg.B.CursorOptions), env); err != nil {
			return nil, nil, err
		}
	case nameA != "":
		if a, err = cursor.Open(copyOptions(cfg.A.CursorOptions), env); err != nil {
			return nil, nil, err
		}
		if b, err = a.DeepCopy(env); err != nil {
			return nil, nil, dberror.IOFailure(err, "DeepCopy", "Aligner")
		}
	case nameB != "":
		if b, err = cursor.Open(copyOptions(cfg.B.CursorOptions), env); err != nil {
			return nil, nil, err
		}
		if a, err = b.DeepCopy(env); err != nil {
			return nil, nil, dberror.IOFailure(err, "DeepCopy", "Aligner")
		}
	default:
		return nil, nil, dberror.Configuration("no input table").
			WithHint("set A.tableName, B.tableName or both").In("Init", "Aligner")
	}
	return a, b, nil
}

// configure instantiates fresh strategies for cfg and resets all state.
func (al *Aligner) configure(cfg Config, a, b cursor.SortedCursor) error {
	al.rowOp, al.elemOp = nil, nil

	switch cfg.Mode {
	case ModeRow:
		op, err := al.registry.NewRow(cfg.RowMultiplyOp)
		if err != nil {
			return err
		}
		if err := op.Init(copyOptions(cfg.RowMultiplyOptions), al.env); err != nil {
			return dberror.Wrap(err, dberror.ErrCategoryConfiguration, dberror.CodeConfigInvalid, "Init", "Aligner")
		}
		al.rowOp = op
	case ModeEWise:
		op, err := al.registry.NewElement(cfg.ElementMultiplyOp)
		if err != nil {
			return err
		}
		if err := op.Init(copyOptions(cfg.ElementMultiplyOptions), al.env); err != nil {
			return dberror.Wrap(err, dberror.ErrCategoryConfiguration, dberror.CodeConfigInvalid, "Init", "Aligner")
		}
		al.elemOp = op
	case ModeNone:
	default:
		return dberror.Configuration("unknown mode").WithDetail("%s", cfg.Mode).In("Init", "Aligner")
	}

	al.cfg = cfg
	al.a, al.b = a, b
	al.log = logging.WithMode("aligner", cfg.Mode.String())
	al.seekRange = key.InfiniteRange()
	al.families, al.inclusive = nil, false
	al.group, al.groupRow = nil, nil
	return nil
}

// Mode returns the configured mode.
func (al *Aligner) Mode() Mode { return al.cfg.Mode }

// Stats returns a snapshot of the aligner's counters.
func (al *Aligner) Stats() Stats { return al.stats }

// Start positions the aligner at the first group inside r.
func (al *Aligner) Start(r key.Range) error {
	return al.Seek(r, nil, false)
}

// Seek implements cursor.SortedCursor. A range whose exclusive start is a row
// marker resumes at the following row; if that is past the end of r, the
// aligner has no output.
func (al *Aligner) Seek(r key.Range, families [][]byte, inclusive bool) error {
	if al.a == nil || al.b == nil {
		return dberror.Configuration("aligner not initialized").In("Seek", "Aligner")
	}
	al.group, al.groupRow = nil, nil

	r = reentryRange(r)
	al.seekRange, al.families, al.inclusive = r, families, inclusive
	if r.IsEmpty() {
		al.log.Debug("seek range is empty", "range", r.String())
		return nil
	}

	if err := al.a.Seek(r, families, inclusive); err != nil {
		return dberror.IOFailure(err, "Seek", "Aligner").WithDetail("side A")
	}
	if err := al.b.Seek(r, families, inclusive); err != nil {
		return dberror.IOFailure(err, "Seek", "Aligner").WithDetail("side B")
	}
	return al.fail(al.computeNextGroup())
}

// reentryRange moves an exclusive row-marker start to the next row.
func reentryRange(r key.Range) key.Range {
	if r.Start != nil && !r.StartInclusive && r.Start.IsRowSentinel() {
		next := r.Start.FollowingKey(key.Row)
		return key.NewRange(&next, true, r.End, r.EndInclusive)
	}
	return r
}

// HasTop implements cursor.SortedCursor.
func (al *Aligner) HasTop() bool {
	return al.group != nil && al.group.HasNext()
}

// HasOutput is HasTop.
func (al *Aligner) HasOutput() bool { return al.HasTop() }

// TopKey implements cursor.SortedCursor.
func (al *Aligner) TopKey() key.Key {
	return al.group.Peek().Key
}

// TopValue implements cursor.SortedCursor.
func (al *Aligner) TopValue() key.Value {
	return al.group.Peek().Value
}

// TopEntry returns a copy of the current entry.
func (al *Aligner) TopEntry() key.Entry {
	return al.group.Peek().Clone()
}

// Next implements cursor.SortedCursor. When the current group runs out the
// next one is computed; any error leaves the aligner without output.
func (al *Aligner) Next() error {
	if !al.HasTop() {
		return dberror.New(dberror.ErrCategoryUsage, dberror.CodeNoOutput, "next called on aligner without output").
			In("Next", "Aligner")
	}
	al.stats.Emitted++

	if err := al.group.Advance(); err != nil {
		return al.fail(dberror.StrategyFailure(err, "Next", "Aligner"))
	}
	if al.group.HasNext() {
		return nil
	}

	al.group = nil
	if err := al.checkRowDrained(); err != nil {
		return al.fail(err)
	}
	return al.fail(al.computeNextGroup())
}

// Advance is Next.
func (al *Aligner) Advance() error { return al.Next() }

// SafeState returns a checkpoint from which ResumeRange restarts the join
// right after the current entry. It is only available while the current
// entry is the last one of its group and both cursors are past the
// checkpoint.
func (al *Aligner) SafeState() (key.Key, bool) {
	if al.group == nil || !al.group.IsLast() {
		return key.Key{}, false
	}
	resume := reentryRange(key.NewRange(&al.emitted, false, nil, false))
	for _, c := range []cursor.SortedCursor{al.a, al.b} {
		if c.HasTop() && resume.BeforeStartKey(c.TopKey()) {
			return key.Key{}, false
		}
	}
	return al.emitted.Clone(), true
}

// DeepCopy implements cursor.SortedCursor.
func (al *Aligner) DeepCopy(env *cursor.Environment) (cursor.SortedCursor, error) {
	return al.Fork(env)
}

// Fork returns an independent aligner with deep copies of both cursors and
// freshly initialized strategies. The fork shares the configuration and has
// no output until it is seeked.
func (al *Aligner) Fork(env *cursor.Environment) (*Aligner, error) {
	if al.a == nil || al.b == nil {
		return nil, dberror.Configuration("aligner not initialized").In("Fork", "Aligner")
	}
	a, err := al.a.DeepCopy(env)
	if err != nil {
		return nil, dberror.IOFailure(err, "DeepCopy", "Aligner").WithDetail("side A")
	}
	b, err := al.b.DeepCopy(env)
	if err != nil {
		closeCursor(a)
		return nil, dberror.IOFailure(err, "DeepCopy", "Aligner").WithDetail("side B")
	}
	cp := NewAligner(al.registry)
	cp.env = env
	if err := cp.configure(al.cfg, a, b); err != nil {
		closeCursor(a)
		closeCursor(b)
		return nil, err
	}
	return cp, nil
}

func closeCursor(c cursor.SortedCursor) error {
	if closer, ok := c.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Close releases both cursors. Cursors implementing io.Closer are closed.
func (al *Aligner) Close() error {
	al.group, al.groupRow = nil, nil
	var errs []error
	for _, c := range []cursor.SortedCursor{al.a, al.b} {
		errs = append(errs, closeCursor(c))
	}
	al.a, al.b = nil, nil
	return errors.Join(errs...)
}

// computeNextGroup advances the cursors until a non-empty group is ready or
// no more output is possible.
func (al *Aligner) computeNextGroup() error {
	pk := al.cfg.Mode.Granularity()

	for {
		hasA, hasB := al.a.HasTop(), al.b.HasTop()
		switch {
		case !hasA && !hasB:
			return nil
		case !hasB:
			if !al.cfg.A.EmitNoMatch {
				return nil
			}
			return al.passThrough(al.a, "A")
		case !hasA:
			if !al.cfg.B.EmitNoMatch {
				return nil
			}
			return al.passThrough(al.b, "B")
		}

		cmp := al.a.TopKey().CompareTo(al.b.TopKey(), pk)
		if cmp < 0 {
			if al.cfg.A.EmitNoMatch {
				return al.passThrough(al.a, "A")
			}
			if ok, err := al.skip(al.a, al.b.TopKey().Clone(), pk); err != nil || !ok {
				return err
			}
			continue
		}
		if cmp > 0 {
			if al.cfg.B.EmitNoMatch {
				return al.passThrough(al.b, "B")
			}
			if ok, err := al.skip(al.b, al.a.TopKey().Clone(), pk); err != nil || !ok {
				return err
			}
			continue
		}

		ready, err := al.multiply()
		if err != nil || ready {
			return err
		}
	}
}

// skip moves the lagging cursor c toward target. It returns false when the
// target lies beyond the seek range.
func (al *Aligner) skip(c cursor.SortedCursor, target key.Key, pk key.PartialKey) (bool, error) {
	res, err := SkipUntil(c, target, pk, al.seekRange, al.families, al.inclusive)
	al.stats.SkipSteps += int64(res.Steps)
	if res.Reseeked {
		al.stats.SkipSeeks++
	}
	if err != nil {
		return false, err
	}
	if !res.HasTop && c.HasTop() {
		al.log.Debug("skip target outside seek range", "target", target.String())
		return false, nil
	}
	return true, nil
}

// passThrough emits the top entry of c unchanged as a group of its own.
func (al *Aligner) passThrough(c cursor.SortedCursor, side string) error {
	e := cursor.TopEntry(c)
	if err := c.Next(); err != nil {
		return dberror.IOFailure(err, "Next", "Aligner").WithDetail("side %s", side)
	}
	gb, err := newGroupBuffer(iterator.Singleton(e))
	if err != nil {
		return err
	}
	al.emitted = e.Key
	al.group = gb
	al.stats.PassThrough++
	return nil
}

// multiply handles an aligned position. It returns true when a non-empty group
// is ready.
func (al *Aligner) multiply() (bool, error) {
	al.stats.Matches++

	var seq iterator.EntryIterator
	switch al.cfg.Mode {
	case ModeNone:
		return false, al.stepBoth()

	case ModeRow:
		row := append([]byte(nil), al.a.TopKey().Row...)
		al.emitted = key.RowKey(row)
		al.groupRow = row

		var err error
		if seq, err = al.rowOp.MultiplyRow(al.a, al.b); err != nil {
			return false, dberror.StrategyFailure(err, "MultiplyRow", "Aligner")
		}

	case ModeEWise:
		ea, eb := cursor.TopEntry(al.a), cursor.TopEntry(al.b)
		al.emitted = ea.Key
		if eb.Key.Compare(ea.Key) > 0 {
			al.emitted = eb.Key
		}

		var err error
		if seq, err = al.elemOp.Multiply(multiply.NewMatch(ea, eb)); err != nil {
			return false, dberror.StrategyFailure(err, "Multiply", "Aligner")
		}
		if err := al.stepBoth(); err != nil {
			return false, err
		}
	}

	gb, err := newGroupBuffer(seq)
	if err != nil {
		return false, dberror.StrategyFailure(err, "Multiply", "Aligner")
	}
	if gb.HasNext() {
		al.group = gb
		al.stats.Groups++
		return true, nil
	}
	return false, al.checkRowDrained()
}

func (al *Aligner) stepBoth() error {
	if err := al.a.Next(); err != nil {
		return dberror.IOFailure(err, "Next", "Aligner").WithDetail("side A")
	}
	if err := al.b.Next(); err != nil {
		return dberror.IOFailure(err, "Next", "Aligner").WithDetail("side B")
	}
	return nil
}

// checkRowDrained verifies that a finished row group left neither cursor in
// the row it multiplied.
func (al *Aligner) checkRowDrained() error {
	if al.groupRow == nil {
		return nil
	}
	row := al.groupRow
	al.groupRow = nil

	for _, side := range []struct {
		name string
		c    cursor.SortedCursor
	}{{"A", al.a}, {"B", al.b}} {
		if side.c.HasTop() && bytes.Equal(side.c.TopKey().Row, row) {
			al.log.Error("row strategy left cursor inside its row", "side", side.name, "row", string(row))
			return dberror.AlignmentViolation(side.name, string(row)).In("Next", "Aligner")
		}
	}
	return nil
}

// fail drops any pending output when err is non-nil.
func (al *Aligner) fail(err error) error {
	if err != nil {
		al.group, al.groupRow = nil, nil
		logging.WithError(err).Debug("aligner stopped", "mode", al.cfg.Mode.String())
	}
	return err
}
