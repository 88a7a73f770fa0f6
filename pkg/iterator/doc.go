// Package iterator provides the lazy entry sequence contract returned by
// multiply strategies together with helpers to build and consume them.
//
// Sequences are pull based: HasNext answers without consuming, Next consumes.
// FuncIterator turns a read function into a sequence with one entry of
// lookahead; FromSlice, Singleton and Empty wrap materialized data.
//
//	entries, err := iterator.Collect(seq)
package iterator
