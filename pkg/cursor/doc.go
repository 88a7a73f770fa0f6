// Package cursor defines the ordered cursor contract consumed by the two-table
// aligner, and an in-memory implementation of it.
//
// A cursor is configured with Init from string options, positioned with Seek
// and stepped with Next. Tables are registered by name in a Catalog carried
// by an Environment:
//
//	cat := cursor.NewCatalog()
//	_ = cat.Register(cursor.NewTable("A", entries))
//	c := cursor.NewMemoryCursor(nil)
//	err := c.Init(map[string]string{"tableName": "A"}, cursor.NewEnvironment(cat))
//
// CountingCursor wraps any cursor to count the calls made on it.
package cursor
