package cursor

import (
	"fmt"
	"sort"
	"sync"

	"twotable/pkg/key"
)

// Environment is handed to Init and DeepCopy. It gives cursors access to the
// tables they are allowed to open.
type Environment struct {
	Catalog *Catalog
}

// NewEnvironment creates an environment over catalog. A nil catalog is replaced
// by an empty one.
func NewEnvironment(catalog *Catalog) *Environment {
	if catalog == nil {
		catalog = NewCatalog()
	}
	return &Environment{Catalog: catalog}
}

// Table is an immutable, sorted set of entries.
type Table struct {
	name    string
	entries []key.Entry
}

// NewTable copies and sorts entries into a table. Duplicate keys are kept in
// their input order.
func NewTable(name string, entries []key.Entry) *Table {
	sorted := make([]key.Entry, len(entries))
	for i, e := range entries {
		sorted[i] = e.Clone()
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Key.Compare(sorted[j].Key) < 0
	})
	return &Table{name: name, entries: sorted}
}

func (t *Table) Name() string { return t.name }

func (t *Table) Len() int { return len(t.entries) }

// Entries returns the sorted entries. The slice must not be modified.
func (t *Table) Entries() []key.Entry { return t.entries }

// Catalog is a concurrency-safe registry of named tables.
type Catalog struct {
	mu     sync.RWMutex
	tables map[string]*Table
}

func NewCatalog() *Catalog {
	return &Catalog{tables: make(map[string]*Table)}
}

// Register adds t to the catalog. Registering a second table with the same
// name is an error.
func (c *Catalog) Register(t *Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.tables[t.name]; exists {
		return fmt.Errorf("table %q already registered", t.name)
	}
	c.tables[t.name] = t
	return nil
}

// Get looks up a table by name.
func (c *Catalog) Get(name string) (*Table, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tables[name]
	return t, ok
}

// Names returns the registered table names in sorted order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
