package journal

import "fmt"

// Journal is the append-only undo log described in spec §4.2. All
// operations are O(1) amortized except truncation, which is O(removed).
//
// Journal is not safe for concurrent use; callers serialize access
// (the core engine's single-writer loop, per spec §5).
type Journal struct {
	records []Record
	// head is the absolute index of records[0]. Indices handed to and
	// accepted from callers (Len, TruncateTail, TruncateHead) are always
	// absolute journal positions, never offsets into the backing slice.
	head int
}

// New creates an empty Journal.
func New() *Journal {
	return &Journal{}
}

// Append adds a record to the tail. Called by the instrumented host
// import callbacks (on_store/on_grow/on_global_set) just before the
// guest's mutation executes.
func (j *Journal) Append(r Record) {
	j.records = append(j.records, r)
}

// Len returns the current absolute journal length, i.e. the number of
// records ever appended minus the number truncated from the head.
func (j *Journal) Len() int {
	return j.head + len(j.records)
}

// At returns the record at absolute index i. Panics if i is out of
// range — an out-of-range access is an engine bug (§7 "assertion
// failures"), not a recoverable condition.
func (j *Journal) At(i int) Record {
	rel := i - j.head
	if rel < 0 || rel >= len(j.records) {
		panic(fmt.Sprintf("journal: index %d out of range [%d, %d)", i, j.head, j.Len()))
	}
	return j.records[rel]
}

// TruncateTail discards records at indices [newLen, Len()). The caller
// is responsible for having already applied those records' inverses to
// the VM (§4.2) — Journal itself does not know how to undo a record.
func (j *Journal) TruncateTail(newLen int) {
	rel := newLen - j.head
	if rel < 0 || rel > len(j.records) {
		panic(fmt.Sprintf("journal: truncate_tail(%d) out of range [%d, %d]", newLen, j.head, j.Len()))
	}
	j.records = j.records[:rel]
}

// PopTail removes and returns the last record, decreasing Len() by one.
// Used by the rewinder to walk backward one record at a time.
func (j *Journal) PopTail() Record {
	n := len(j.records)
	if n == 0 {
		panic("journal: PopTail on empty journal")
	}
	r := j.records[n-1]
	j.records = j.records[:n-1]
	return r
}

// TruncateHead discards records at absolute indices [0, newHead) without
// touching the VM. Used only when the caller (history compaction, §4.8)
// can prove those records will never be reapplied by any surviving Call
// Log entry.
func (j *Journal) TruncateHead(newHead int) {
	if newHead < j.head || newHead > j.Len() {
		panic(fmt.Sprintf("journal: truncate_head(%d) out of range [%d, %d]", newHead, j.head, j.Len()))
	}
	rel := newHead - j.head
	// Copy the survivors into a fresh slice so the discarded prefix's
	// backing array is no longer referenced and can be collected. The
	// copy costs O(remaining), not O(removed).
	remaining := make([]Record, len(j.records)-rel)
	copy(remaining, j.records[rel:])
	j.records = remaining
	j.head = newHead
}

// HeadIndex returns the absolute index of the first record still held,
// i.e. the low end of the compaction watermark.
func (j *Journal) HeadIndex() int {
	return j.head
}

// Clear discards every record and resets the head watermark to zero,
// used by spec §4.7 State Reset. Unlike TruncateHead/TruncateTail, this
// does not require the caller to have applied any inverse — reset
// replaces the VM's memory wholesale, so no undo record remains
// reachable.
func (j *Journal) Clear() {
	j.records = nil
	j.head = 0
}
