package key

import "strings"

// Range is an interval over keys. A nil Start or End means the range is
// unbounded on that side.
type Range struct {
	Start          *Key
	StartInclusive bool
	End            *Key
	EndInclusive   bool
}

// NewRange builds a range from optional bounds. Bounds are copied.
func NewRange(start *Key, startInclusive bool, end *Key, endInclusive bool) Range {
	r := Range{StartInclusive: startInclusive, EndInclusive: endInclusive}
	if start != nil {
		s := start.Clone()
		r.Start = &s
	}
	if end != nil {
		e := end.Clone()
		r.End = &e
	}
	return r
}

// InfiniteRange covers every key.
func InfiniteRange() Range {
	return Range{StartInclusive: true, EndInclusive: true}
}

// ExactRow covers every key of a single row.
func ExactRow(row string) Range {
	start := RowKey([]byte(row))
	end := start.FollowingKey(Row)
	return Range{Start: &start, StartInclusive: true, End: &end, EndInclusive: false}
}

// RowRange covers rows in [startRow, endRow]. An empty string leaves that side unbounded.
func RowRange(startRow, endRow string) Range {
	r := InfiniteRange()
	if startRow != "" {
		s := RowKey([]byte(startRow))
		r.Start = &s
	}
	if endRow != "" {
		e := RowKey([]byte(endRow)).FollowingKey(Row)
		r.End = &e
		r.EndInclusive = false
	}
	return r
}

// BeforeStartKey reports whether k lies before the start of r.
func (r Range) BeforeStartKey(k Key) bool {
	if r.Start == nil {
		return false
	}
	c := k.Compare(*r.Start)
	if r.StartInclusive {
		return c < 0
	}
	return c <= 0
}

// AfterEndKey reports whether k lies past the end of r.
func (r Range) AfterEndKey(k Key) bool {
	if r.End == nil {
		return false
	}
	c := k.Compare(*r.End)
	if r.EndInclusive {
		return c > 0
	}
	return c >= 0
}

// Contains reports whether k falls inside r.
func (r Range) Contains(k Key) bool {
	return !r.BeforeStartKey(k) && !r.AfterEndKey(k)
}

// IsEmpty reports whether no key can fall inside r.
func (r Range) IsEmpty() bool {
	if r.Start == nil || r.End == nil {
		return false
	}
	c := r.Start.Compare(*r.End)
	if c > 0 {
		return true
	}
	return c == 0 && !(r.StartInclusive && r.EndInclusive)
}

// Clip intersects r with bound. The second result is false when the two
// ranges are disjoint.
func (r Range) Clip(bound Range) (Range, bool) {
	out := r

	if bound.Start != nil {
		if out.Start == nil {
			out.Start, out.StartInclusive = bound.Start, bound.StartInclusive
		} else if c := out.Start.Compare(*bound.Start); c < 0 || (c == 0 && !bound.StartInclusive) {
			out.Start, out.StartInclusive = bound.Start, bound.StartInclusive
		}
	}

	if bound.End != nil {
		if out.End == nil {
			out.End, out.EndInclusive = bound.End, bound.EndInclusive
		} else if c := out.End.Compare(*bound.End); c > 0 || (c == 0 && !bound.EndInclusive) {
			out.End, out.EndInclusive = bound.End, bound.EndInclusive
		}
	}

	if out.IsEmpty() {
		return Range{}, false
	}
	return out, true
}

func (r Range) String() string {
	var b strings.Builder
	if r.Start == nil {
		b.WriteString("(-inf")
	} else {
		if r.StartInclusive {
			b.WriteString("[")
		} else {
			b.WriteString("(")
		}
		b.WriteString(r.Start.String())
	}
	b.WriteString(", ")
	if r.End == nil {
		b.WriteString("+inf)")
	} else {
		b.WriteString(r.End.String())
		if r.EndInclusive {
			b.WriteString("]")
		} else {
			b.WriteString(")")
		}
	}
	return b.String()
}
