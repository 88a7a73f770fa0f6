// Package twotable implements a streaming merge of two sorted tables.
//
// An Aligner walks two cursors in key order. Depending on its Mode it either
// drops aligned entries (NONE), hands aligned rows to a row strategy (ROW), or
// hands aligned cells to an element strategy (EWISE). Entries that have no
// partner are skipped, or passed through unchanged when emitNoMatch is set for
// their side.
//
// A lagging cursor is brought forward with SkipUntil, which steps a few times
// and then reseeks. Work can be suspended after any group: SafeState yields a
// checkpoint and ResumeRange turns it into the range that continues the join.
//
//	al, err := twotable.Open(map[string]string{
//		"mode":        "EWISE",
//		"A.tableName": "left",
//		"B.tableName": "right",
//	}, env, nil)
//	if err != nil {
//		return err
//	}
//	if err := al.Start(key.InfiniteRange()); err != nil {
//		return err
//	}
//	for al.HasTop() {
//		fmt.Println(al.TopEntry())
//		if err := al.Next(); err != nil {
//			return err
//		}
//	}
package twotable
