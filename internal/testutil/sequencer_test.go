package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foldrun/timefold/internal/timeline"
)

func TestSequencer_NextIncrementsOffsetPerPlayerPerTime(t *testing.T) {
	s := NewSequencer(0)

	first := s.Next(1)
	second := s.Next(1)
	third := s.Next(2)

	assert.Equal(t, timeline.Timestamp{Time: 0, Offset: 0, PlayerID: 1}, first)
	assert.Equal(t, timeline.Timestamp{Time: 0, Offset: 1, PlayerID: 1}, second)
	assert.Equal(t, timeline.Timestamp{Time: 0, Offset: 0, PlayerID: 2}, third)
}

func TestSequencer_AdvanceResetsOffsetsAtNewTime(t *testing.T) {
	s := NewSequencer(0)
	s.Next(1)
	s.Next(1)

	s.Advance(5)
	assert.Equal(t, int64(5), s.CurrentTime())

	ts := s.Next(1)
	assert.Equal(t, timeline.Timestamp{Time: 5, Offset: 0, PlayerID: 1}, ts)
}

func TestSequencer_AdvanceRejectsNegativeDelta(t *testing.T) {
	s := NewSequencer(0)
	assert.Panics(t, func() { s.Advance(-1) })
}

func TestSequencer_ResetReproducesSameSequence(t *testing.T) {
	s := NewSequencer(0)
	s.Advance(3)
	first := s.Next(1)

	s.Reset(0)
	s.Advance(3)
	second := s.Next(1)

	assert.Equal(t, first, second)
}

func TestSequencer_ThreadSafe(t *testing.T) {
	s := NewSequencer(0)
	const goroutines = 20
	const perGoroutine = 50

	var wg sync.WaitGroup
	wg.Add(goroutines)
	results := make(chan timeline.Timestamp, goroutines*perGoroutine)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				results <- s.Next(1)
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int64]bool)
	for ts := range results {
		require.False(t, seen[ts.Offset], "duplicate offset %d", ts.Offset)
		seen[ts.Offset] = true
	}
	assert.Len(t, seen, goroutines*perGoroutine)
}
