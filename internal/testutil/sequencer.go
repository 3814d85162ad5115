package testutil

import (
	"sync"

	"github.com/foldrun/timefold/internal/timeline"
)

// Sequencer hands out timeline.Timestamp values deterministically: a
// current logical Time that only moves forward via Advance, and a
// per-(time, player) offset counter so repeated calls for the same
// player at the same time produce the strictly increasing offsets
// spec §4.5 assumes of a well-behaved peer.
//
// Thread-safety: all methods are safe for concurrent use via an
// internal mutex, matching DeterministicClock's contract in the
// teacher this is adapted from.
type Sequencer struct {
	mu      sync.Mutex
	current int64
	offsets map[int64]map[int64]int64 // time -> player_id -> next offset
}

// NewSequencer creates a Sequencer whose current time starts at start.
func NewSequencer(start int64) *Sequencer {
	return &Sequencer{
		current: start,
		offsets: make(map[int64]map[int64]int64),
	}
}

// CurrentTime returns the sequencer's current logical time without
// advancing it.
func (s *Sequencer) CurrentTime() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Advance moves the current time forward by delta, which must be
// non-negative — time in this engine never runs backwards.
func (s *Sequencer) Advance(delta int64) {
	if delta < 0 {
		panic("testutil: Sequencer.Advance called with negative delta")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current += delta
}

// Next returns the next Timestamp for playerID at the sequencer's
// current time, incrementing that player's offset at this time.
func (s *Sequencer) Next(playerID int64) timeline.Timestamp {
	s.mu.Lock()
	defer s.mu.Unlock()

	byPlayer, ok := s.offsets[s.current]
	if !ok {
		byPlayer = make(map[int64]int64)
		s.offsets[s.current] = byPlayer
	}
	offset := byPlayer[playerID]
	byPlayer[playerID] = offset + 1

	return timeline.Timestamp{Time: s.current, Offset: offset, PlayerID: playerID}
}

// Reset returns the sequencer to start, clearing every recorded offset.
// After Reset, the same sequence of Next/Advance calls reproduces the
// same Timestamps.
func (s *Sequencer) Reset(start int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = start
	s.offsets = make(map[int64]map[int64]int64)
}
