package twotable

import "twotable/pkg/key"

// ResumeRange returns the range that continues a join over prev after the
// entry at which checkpoint was taken.
func ResumeRange(prev key.Range, checkpoint key.Key) key.Range {
	return key.NewRange(&checkpoint, false, prev.End, prev.EndInclusive)
}

// Batch is a run of entries read by Drain.
type Batch struct {
	Entries []key.Entry

	// Checkpoint resumes the join right after the last entry of Entries. It
	// is set whenever HasCheckpoint is.
	Checkpoint    key.Key
	HasCheckpoint bool

	// Done is true once the aligner has no more output.
	Done bool
}

// Drain reads at least limit entries from al, then keeps reading until a
// checkpoint is available. A limit of zero or less reads everything.
func Drain(al *Aligner, limit int) (Batch, error) {
	var b Batch
	for al.HasTop() {
		e := al.TopEntry()
		ck, safe := al.SafeState()

		if err := al.Next(); err != nil {
			return b, err
		}
		b.Entries = append(b.Entries, e)
		b.Checkpoint, b.HasCheckpoint = ck, safe

		if safe && limit > 0 && len(b.Entries) >= limit {
			b.Done = !al.HasTop()
			return b, nil
		}
	}
	b.Done = true
	return b, nil
}
