package twotable

import (
	"twotable/pkg/cursor"
	dberror "twotable/pkg/error"
	"twotable/pkg/key"
)

// MaxNextAttempts is how many single steps SkipUntil tries before reseeking.
const MaxNextAttempts = 10

// SkipResult reports what SkipUntil did.
type SkipResult struct {
	// HasTop is false when the cursor ran out of entries, or when the target
	// lies outside the seek range.
	HasTop   bool
	Steps    int
	Reseeked bool
}

// SkipUntil advances c until its top key is not less than target when both
// are compared under pk, or until c is exhausted. Nearby targets are reached
// with up to MaxNextAttempts calls to Next; farther ones with a single Seek to
// the start of target's pk prefix, clipped to seekRange.
func SkipUntil(c cursor.SortedCursor, target key.Key, pk key.PartialKey,
	seekRange key.Range, families [][]byte, inclusive bool) (SkipResult, error) {
	var res SkipResult

	for res.Steps < MaxNextAttempts && c.HasTop() && target.CompareTo(c.TopKey(), pk) > 0 {
		if err := c.Next(); err != nil {
			return res, dberror.IOFailure(err, "Next", "SkipUntil")
		}
		res.Steps++
	}

	if c.HasTop() && target.CompareTo(c.TopKey(), pk) > 0 {
		seekKey := target.Truncate(pk)
		skipTo, ok := key.NewRange(&seekKey, true, nil, false).Clip(seekRange)
		if !ok {
			return res, nil
		}
		if err := c.Seek(skipTo, families, inclusive); err != nil {
			return res, dberror.IOFailure(err, "Seek", "SkipUntil")
		}
		res.Reseeked = true
	}

	res.HasTop = c.HasTop()
	return res, nil
}
