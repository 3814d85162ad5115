package timeline

import "sort"

// BinarySearchThreshold is the Call Log length above which
// FindInsertionIndex switches from a tail-scan to sort.Search, per
// spec §4.3 ("implementers should scan from the tail... binary search
// is acceptable if the log grows large").
const BinarySearchThreshold = 256

// Log is the ordered sequence of externally submitted invocations
// (spec §4.3). It is not safe for concurrent use; the core engine's
// single-writer loop serializes access.
type Log struct {
	entries []Entry
}

// NewLog creates an empty Call Log.
func NewLog() *Log {
	return &Log{}
}

// Len returns the number of entries currently held.
func (l *Log) Len() int {
	return len(l.entries)
}

// At returns the entry at index i.
func (l *Log) At(i int) Entry {
	return l.entries[i]
}

// Set replaces the entry at index i, used during replay to rewrite
// JournalLengthBefore as later entries are re-executed (spec §4.5 step 5).
func (l *Log) Set(i int, e Entry) {
	l.entries[i] = e
}

// All returns a copy of every entry currently in the log, ordered
// ascending by Timestamp.
func (l *Log) All() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// FindInsertionIndex returns the smallest i such that entries[i].Timestamp
// > ts, or Len() if no such entry exists (spec §4.3). Typical inserts
// land near the tail, so this scans backward from the end; once the log
// grows past BinarySearchThreshold it switches to sort.Search instead of
// paying an O(n) scan on every insert.
func (l *Log) FindInsertionIndex(ts Timestamp) int {
	n := len(l.entries)
	if n == 0 {
		return 0
	}
	if n > BinarySearchThreshold {
		return sort.Search(n, func(i int) bool {
			return l.entries[i].Timestamp.Compare(ts) > 0
		})
	}
	i := n
	for i > 0 && l.entries[i-1].Timestamp.Compare(ts) > 0 {
		i--
	}
	return i
}

// InsertAt shifts entries at [i, Len()) right by one and places e at i.
func (l *Log) InsertAt(i int, e Entry) {
	l.entries = append(l.entries, Entry{})
	copy(l.entries[i+1:], l.entries[i:])
	l.entries[i] = e
}

// RemovePrefix drops the first k entries (spec §4.8 history compaction).
func (l *Log) RemovePrefix(k int) {
	if k <= 0 {
		return
	}
	remaining := make([]Entry, len(l.entries)-k)
	copy(remaining, l.entries[k:])
	l.entries = remaining
}

// Reset discards every entry, used by spec §4.7 State Reset.
func (l *Log) Reset() {
	l.entries = nil
}
