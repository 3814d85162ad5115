package timeline

import "fmt"

// Timestamp is the totally ordered key described in spec §3: a triple
// of (Time, Offset, PlayerID). Time is a monotonically non-decreasing
// logical clock chosen by the embedder; Offset distinguishes multiple
// invocations submitted by the same peer within one Time tick; PlayerID
// identifies the submitter.
//
// Ordering compares (Time, PlayerID, Offset) lexicographically in that
// order — PlayerID before Offset is load-bearing (§3): it deterministically
// interleaves concurrent peers so every host agrees on one total order
// regardless of arrival sequence. §9 flags the source's comparator (a
// short-circuiting disjunction) as not a correct total order; this type
// implements the specified lexicographic comparison instead.
type Timestamp struct {
	Time     int64
	Offset   int64
	PlayerID int64
}

// Compare returns -1, 0, or 1 as t sorts before, equal to, or after o.
func (t Timestamp) Compare(o Timestamp) int {
	if t.Time != o.Time {
		return cmp64(t.Time, o.Time)
	}
	if t.PlayerID != o.PlayerID {
		return cmp64(t.PlayerID, o.PlayerID)
	}
	return cmp64(t.Offset, o.Offset)
}

// Less reports whether t sorts strictly before o.
func (t Timestamp) Less(o Timestamp) bool {
	return t.Compare(o) < 0
}

// Equal reports whether t and o denote the same point on the timeline.
func (t Timestamp) Equal(o Timestamp) bool {
	return t == o
}

func cmp64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (t Timestamp) String() string {
	return fmt.Sprintf("{time:%d offset:%d player:%d}", t.Time, t.Offset, t.PlayerID)
}
