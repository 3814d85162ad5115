package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkEntry(t int64) Entry {
	return Entry{Name: "f", Timestamp: Timestamp{Time: t}}
}

func TestLog_FindInsertionIndex_Empty(t *testing.T) {
	l := NewLog()
	assert.Equal(t, 0, l.FindInsertionIndex(Timestamp{Time: 1}))
}

func TestLog_InsertAtTail(t *testing.T) {
	l := NewLog()
	l.InsertAt(l.FindInsertionIndex(Timestamp{Time: 1}), mkEntry(1))
	l.InsertAt(l.FindInsertionIndex(Timestamp{Time: 3}), mkEntry(3))
	require.Equal(t, 2, l.Len())
	assert.Equal(t, int64(1), l.At(0).Timestamp.Time)
	assert.Equal(t, int64(3), l.At(1).Timestamp.Time)
}

func TestLog_InsertInMiddle(t *testing.T) {
	l := NewLog()
	for _, tm := range []int64{1, 3} {
		l.InsertAt(l.FindInsertionIndex(Timestamp{Time: tm}), mkEntry(tm))
	}
	idx := l.FindInsertionIndex(Timestamp{Time: 2})
	assert.Equal(t, 1, idx)
	l.InsertAt(idx, mkEntry(2))
	got := []int64{l.At(0).Timestamp.Time, l.At(1).Timestamp.Time, l.At(2).Timestamp.Time}
	assert.Equal(t, []int64{1, 2, 3}, got)
}

func TestLog_FindInsertionIndex_BinarySearchPath(t *testing.T) {
	l := NewLog()
	for i := int64(0); i < int64(BinarySearchThreshold+10); i++ {
		l.InsertAt(l.Len(), mkEntry(i * 2))
	}
	idx := l.FindInsertionIndex(Timestamp{Time: 5})
	assert.Equal(t, 3, idx) // entries are 0,2,4,6,...; first > 5 is 6 at index 3
}

func TestLog_RemovePrefix(t *testing.T) {
	l := NewLog()
	for _, tm := range []int64{1, 2, 3, 4, 5} {
		l.InsertAt(l.Len(), mkEntry(tm))
	}
	l.RemovePrefix(2)
	require.Equal(t, 3, l.Len())
	assert.Equal(t, int64(3), l.At(0).Timestamp.Time)
}

func TestLog_Reset(t *testing.T) {
	l := NewLog()
	l.InsertAt(0, mkEntry(1))
	l.Reset()
	assert.Equal(t, 0, l.Len())
}
