package cursor

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	dberror "twotable/pkg/error"
	"twotable/pkg/key"
	"twotable/pkg/logging"
)

// Option names understood by MemoryCursor.Init.
const (
	OptTableName   = "tableName"
	OptRowRanges   = "rowRanges"
	OptColFamilies = "colFamilies"
)

// MemoryCursor walks an in-memory Table. Besides the range and family filter
// given to Seek it can be restricted to a fixed set of row ranges and column
// families through its options.
type MemoryCursor struct {
	table     *Table
	rowRanges []key.Range
	fixedFams map[string]struct{}

	seekRange key.Range
	families  map[string]struct{}
	inclusive bool
	pos       int
	seeked    bool

	log *slog.Logger
}

// NewMemoryCursor creates a cursor over t. The cursor has no top entry until
// it is seeked.
func NewMemoryCursor(t *Table) *MemoryCursor {
	c := &MemoryCursor{table: t, seekRange: key.InfiniteRange()}
	if t != nil {
		c.log = logging.WithTable(t.Name())
	}
	return c
}

// Init implements SortedCursor. tableName is required unless the cursor was
// built over a table already.
func (c *MemoryCursor) Init(opts map[string]string, env *Environment) error {
	if name, ok := opts[OptTableName]; ok && name != "" {
		if env == nil || env.Catalog == nil {
			return dberror.Configuration("no catalog available to open table").
				WithDetail("table %q", name).In("Init", "MemoryCursor")
		}
		t, found := env.Catalog.Get(name)
		if !found {
			return dberror.Configuration("unknown table").
				WithDetail("table %q", name).
				WithHint(fmt.Sprintf("registered tables: %s", strings.Join(env.Catalog.Names(), ", "))).
				In("Init", "MemoryCursor")
		}
		c.table = t
		c.log = logging.WithTable(name)
	}
	if c.table == nil {
		return dberror.Configuration("missing tableName option").In("Init", "MemoryCursor")
	}

	if list, ok := opts[OptRowRanges]; ok && list != "" {
		ranges, err := ParseRowRanges(list)
		if err != nil {
			return err
		}
		c.rowRanges = ranges
	}

	if list, ok := opts[OptColFamilies]; ok && list != "" {
		c.fixedFams = make(map[string]struct{})
		for _, f := range strings.Split(list, ",") {
			c.fixedFams[strings.TrimSpace(f)] = struct{}{}
		}
	}

	for name, v := range opts {
		switch name {
		case OptTableName, OptRowRanges, OptColFamilies:
		default:
			c.log.Warn("ignoring unrecognized cursor option", "option", name, "value", v)
		}
	}
	return nil
}

// Seek implements SortedCursor.
func (c *MemoryCursor) Seek(r key.Range, families [][]byte, inclusive bool) error {
	if c.table == nil {
		return dberror.Configuration("cursor not initialized").In("Seek", "MemoryCursor")
	}

	c.seekRange = r
	c.inclusive = inclusive
	c.families = nil
	if len(families) > 0 {
		c.families = make(map[string]struct{}, len(families))
		for _, f := range families {
			c.families[string(f)] = struct{}{}
		}
	}

	c.pos = c.search(r.Start, r.StartInclusive)
	c.seeked = true
	c.settle()
	return nil
}

// Next implements SortedCursor.
func (c *MemoryCursor) Next() error {
	if !c.HasTop() {
		return fmt.Errorf("next called on exhausted cursor over %q", c.table.Name())
	}
	c.pos++
	c.settle()
	return nil
}

// HasTop implements SortedCursor.
func (c *MemoryCursor) HasTop() bool {
	return c.seeked && c.table != nil && c.pos < len(c.table.entries)
}

// TopKey implements SortedCursor.
func (c *MemoryCursor) TopKey() key.Key {
	return c.table.entries[c.pos].Key
}

// TopValue implements SortedCursor.
func (c *MemoryCursor) TopValue() key.Value {
	return c.table.entries[c.pos].Value
}

// DeepCopy implements SortedCursor.
func (c *MemoryCursor) DeepCopy(env *Environment) (SortedCursor, error) {
	cp := *c
	return &cp, nil
}

// search returns the index of the first entry at or after start.
func (c *MemoryCursor) search(start *key.Key, inclusive bool) int {
	entries := c.table.entries
	if start == nil {
		return 0
	}
	return sort.Search(len(entries), func(i int) bool {
		cmp := entries[i].Key.Compare(*start)
		if inclusive {
			return cmp >= 0
		}
		return cmp > 0
	})
}

// settle moves pos forward to the next entry accepted by every filter, or to
// the end of the table once the seek range is passed.
func (c *MemoryCursor) settle() {
	entries := c.table.entries
	for c.pos < len(entries) {
		k := entries[c.pos].Key
		if c.seekRange.AfterEndKey(k) {
			c.pos = len(entries)
			return
		}

		if len(c.rowRanges) > 0 {
			rr, ok := c.rowRangeFor(k)
			if !ok {
				c.pos = len(entries)
				return
			}
			if rr.BeforeStartKey(k) {
				if next := c.search(rr.Start, rr.StartInclusive); next > c.pos {
					c.pos = next
					continue
				}
			}
		}

		if c.acceptFamily(k.Family) {
			return
		}
		c.pos++
	}
}

// rowRangeFor returns the first row range that does not end before k.
func (c *MemoryCursor) rowRangeFor(k key.Key) (key.Range, bool) {
	for _, rr := range c.rowRanges {
		if !rr.AfterEndKey(k) {
			return rr, true
		}
	}
	return key.Range{}, false
}

func (c *MemoryCursor) acceptFamily(fam []byte) bool {
	if c.fixedFams != nil {
		if _, ok := c.fixedFams[string(fam)]; !ok {
			return false
		}
	}
	if c.families == nil {
		return true
	}
	_, listed := c.families[string(fam)]
	return listed == c.inclusive
}

// ParseRowRanges parses "a:b,c:d" into sorted row ranges. Each bound is an
// inclusive row; an empty bound leaves that side open, so ":b" is every row up
// to b and "c:" every row from c on. A bare "r" is the single row r.
func ParseRowRanges(list string) ([]key.Range, error) {
	var ranges []key.Range
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		start, end, found := strings.Cut(part, ":")
		if !found {
			end = start
		}
		if start != "" && end != "" && start > end {
			return nil, dberror.Configuration("malformed rowRanges option").
				WithDetail("range %q starts after it ends", part).In("Init", "MemoryCursor")
		}
		ranges = append(ranges, key.RowRange(start, end))
	}
	if len(ranges) == 0 {
		return nil, dberror.Configuration("malformed rowRanges option").
			WithDetail("no ranges in %q", list).In("Init", "MemoryCursor")
	}

	sort.SliceStable(ranges, func(i, j int) bool {
		if ranges[i].Start == nil {
			return ranges[j].Start != nil
		}
		if ranges[j].Start == nil {
			return false
		}
		return ranges[i].Start.Compare(*ranges[j].Start) < 0
	})
	return ranges, nil
}

// Open creates a MemoryCursor over the table named in opts.
func Open(opts map[string]string, env *Environment) (SortedCursor, error) {
	c := NewMemoryCursor(nil)
	if err := c.Init(opts, env); err != nil {
		return nil, err
	}
	return c, nil
}
