// Package key defines the sorted data model shared by cursors and the
// two-table aligner: keys and their total order, comparison granularities,
// values, entries and key ranges.
//
// Key order follows the storage convention used by the tables being joined:
// row, family, qualifier and visibility ascend bytewise, timestamps descend
// so that the newest version of a cell is read first, and delete markers
// precede live cells of the same version.
//
// # Granularity
//
// A PartialKey truncates comparisons to a prefix of the components:
//
//	a.CompareTo(b, key.Row)                // same row?
//	a.CompareTo(b, key.RowFamilyQualifier) // same cell column?
//
// # Sentinels
//
// RowKey builds the first possible key of a row. The aligner hands it out as
// a checkpoint after a whole row has been multiplied; a range starting
// exclusively at such a key resumes at the following row.
package key
