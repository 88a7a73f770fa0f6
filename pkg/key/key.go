package key

import (
	"bytes"
	"fmt"
	"math"
)

// PartialKey selects the prefix of key components used when comparing two keys.
// Two keys are aligned under a PartialKey when they compare equal on that prefix.
type PartialKey int

const (
	Row PartialKey = iota
	RowFamily
	RowFamilyQualifier
	RowFamilyQualifierVisibility
	RowFamilyQualifierVisibilityTime
	Full
)

func (pk PartialKey) String() string {
	switch pk {
	case Row:
		return "ROW"
	case RowFamily:
		return "ROW_COLFAM"
	case RowFamilyQualifier:
		return "ROW_COLFAM_COLQUAL"
	case RowFamilyQualifierVisibility:
		return "ROW_COLFAM_COLQUAL_COLVIS"
	case RowFamilyQualifierVisibilityTime:
		return "ROW_COLFAM_COLQUAL_COLVIS_TIME"
	case Full:
		return "ROW_COLFAM_COLQUAL_COLVIS_TIME_DEL"
	default:
		return fmt.Sprintf("PartialKey(%d)", int(pk))
	}
}

// Key identifies a single cell. Keys are ordered by row, family, qualifier and
// visibility ascending, then by timestamp descending so that the newest version
// of a cell comes first. Delete markers sort before live cells of the same version.
type Key struct {
	Row        []byte
	Family     []byte
	Qualifier  []byte
	Visibility []byte
	Timestamp  int64
	Deleted    bool
}

// Value is the opaque payload stored under a Key.
type Value []byte

// Entry is a Key/Value pair, the unit flowing through cursors and multiply strategies.
type Entry struct {
	Key   Key
	Value Value
}

// NewKey builds a live key from string components.
func NewKey(row, family, qualifier string, ts int64) Key {
	return Key{
		Row:       []byte(row),
		Family:    []byte(family),
		Qualifier: []byte(qualifier),
		Timestamp: ts,
	}
}

// RowKey returns the whole-row sentinel for row: empty family, qualifier and
// visibility with the maximal timestamp. It sorts before every real key of the row.
func RowKey(row []byte) Key {
	return Key{
		Row:       cloneBytes(row),
		Timestamp: math.MaxInt64,
	}
}

// Compare orders k against other using every component.
func (k Key) Compare(other Key) int {
	return k.CompareTo(other, Full)
}

// CompareTo orders k against other using only the components named by pk.
func (k Key) CompareTo(other Key, pk PartialKey) int {
	if c := bytes.Compare(k.Row, other.Row); c != 0 || pk == Row {
		return c
	}
	if c := bytes.Compare(k.Family, other.Family); c != 0 || pk == RowFamily {
		return c
	}
	if c := bytes.Compare(k.Qualifier, other.Qualifier); c != 0 || pk == RowFamilyQualifier {
		return c
	}
	if c := bytes.Compare(k.Visibility, other.Visibility); c != 0 || pk == RowFamilyQualifierVisibility {
		return c
	}

	// newer timestamps first
	if k.Timestamp != other.Timestamp {
		if k.Timestamp > other.Timestamp {
			return -1
		}
		return 1
	}
	if pk == RowFamilyQualifierVisibilityTime || k.Deleted == other.Deleted {
		return 0
	}
	if k.Deleted {
		return -1
	}
	return 1
}

// Equal reports whether both keys are identical in every component.
func (k Key) Equal(other Key) bool {
	return k.Compare(other) == 0
}

// Truncate copies the components of k named by pk. Components past pk are left
// empty and the timestamp is maximal, so the result is the first possible key
// sharing that prefix.
func (k Key) Truncate(pk PartialKey) Key {
	out := Key{Row: cloneBytes(k.Row), Timestamp: math.MaxInt64}
	if pk >= RowFamily {
		out.Family = cloneBytes(k.Family)
	}
	if pk >= RowFamilyQualifier {
		out.Qualifier = cloneBytes(k.Qualifier)
	}
	if pk >= RowFamilyQualifierVisibility {
		out.Visibility = cloneBytes(k.Visibility)
	}
	if pk >= RowFamilyQualifierVisibilityTime {
		out.Timestamp = k.Timestamp
	}
	if pk >= Full {
		out.Deleted = k.Deleted
	}
	return out
}

// FollowingKey returns the smallest key that sorts after every key sharing the
// pk prefix of k.
func (k Key) FollowingKey(pk PartialKey) Key {
	switch pk {
	case Row:
		return Key{Row: followingBytes(k.Row), Timestamp: math.MaxInt64}
	case RowFamily:
		return Key{Row: cloneBytes(k.Row), Family: followingBytes(k.Family), Timestamp: math.MaxInt64}
	case RowFamilyQualifier:
		return Key{
			Row:       cloneBytes(k.Row),
			Family:    cloneBytes(k.Family),
			Qualifier: followingBytes(k.Qualifier),
			Timestamp: math.MaxInt64,
		}
	case RowFamilyQualifierVisibility:
		return Key{
			Row:        cloneBytes(k.Row),
			Family:     cloneBytes(k.Family),
			Qualifier:  cloneBytes(k.Qualifier),
			Visibility: followingBytes(k.Visibility),
			Timestamp:  math.MaxInt64,
		}
	case RowFamilyQualifierVisibilityTime:
		out := k.Clone()
		out.Deleted = false
		if out.Timestamp == math.MinInt64 {
			return k.FollowingKey(RowFamilyQualifierVisibility)
		}
		out.Timestamp--
		return out
	default:
		out := k.Clone()
		if out.Deleted {
			out.Deleted = false
			return out
		}
		return out.FollowingKey(RowFamilyQualifierVisibilityTime)
	}
}

// IsRowSentinel reports whether k is the whole-row marker produced by RowKey.
func (k Key) IsRowSentinel() bool {
	return len(k.Family) == 0 && len(k.Qualifier) == 0 && len(k.Visibility) == 0 &&
		k.Timestamp == math.MaxInt64
}

// Clone deep-copies every byte slice of k.
func (k Key) Clone() Key {
	return Key{
		Row:        cloneBytes(k.Row),
		Family:     cloneBytes(k.Family),
		Qualifier:  cloneBytes(k.Qualifier),
		Visibility: cloneBytes(k.Visibility),
		Timestamp:  k.Timestamp,
		Deleted:    k.Deleted,
	}
}

func (k Key) String() string {
	del := ""
	if k.Deleted {
		del = " DEL"
	}
	return fmt.Sprintf("%s %s:%s [%s] %d%s", k.Row, k.Family, k.Qualifier, k.Visibility, k.Timestamp, del)
}

// Clone deep-copies the entry.
func (e Entry) Clone() Entry {
	return Entry{Key: e.Key.Clone(), Value: Value(cloneBytes(e.Value))}
}

func (e Entry) String() string {
	return fmt.Sprintf("%s -> %s", e.Key, e.Value)
}

func followingBytes(b []byte) []byte {
	out := make([]byte, len(b)+1)
	copy(out, b)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
