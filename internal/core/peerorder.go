package core

import "github.com/foldrun/timefold/internal/timeline"

// PeerOrderMode selects how PeerOrderGuard reacts to an out-of-order
// per-peer insert (spec §4.5: "the Scheduler does not enforce this...
// Implementations may optionally validate and reject").
type PeerOrderMode int

const (
	// PeerOrderIgnore performs no validation; the Call Log may become
	// unsorted if the embedder's monotonicity assumption is violated.
	PeerOrderIgnore PeerOrderMode = iota
	// PeerOrderReject causes Observe to return a CodeOutOfOrder
	// EngineError instead of admitting the timestamp.
	PeerOrderReject
)

// PeerOrderGuard tracks, per (time, player_id) pair, the highest offset
// admitted so far, and flags a later insert bearing a lower offset for
// the same pair (spec §7: "(time, player_id) seen with decreasing
// offset"). It plays the same per-key history-tracking role the
// teacher's CycleDetector plays for (flow, sync, binding) triples, here
// keyed on the timeline's own ordering components instead.
type PeerOrderGuard struct {
	mode PeerOrderMode
	seen map[peerKey]int64
}

type peerKey struct {
	time     int64
	playerID int64
}

// NewPeerOrderGuard creates a guard operating in the given mode.
func NewPeerOrderGuard(mode PeerOrderMode) *PeerOrderGuard {
	return &PeerOrderGuard{mode: mode, seen: make(map[peerKey]int64)}
}

// Observe records ts and, in PeerOrderReject mode, returns a
// CodeOutOfOrder error if a higher offset was already seen for the same
// (time, player_id) pair. In PeerOrderIgnore mode it always records and
// never errors.
func (g *PeerOrderGuard) Observe(ts timeline.Timestamp) error {
	key := peerKey{time: ts.Time, playerID: ts.PlayerID}
	prev, ok := g.seen[key]

	if ok && ts.Offset < prev {
		if g.mode == PeerOrderReject {
			return newCallError(CodeOutOfOrder,
				"offset decreased for (time, player_id) pair", "", ts)
		}
	}

	if !ok || ts.Offset > prev {
		g.seen[key] = ts.Offset
	}
	return nil
}

// Reset discards all tracked history, used by spec §4.7 State Reset.
func (g *PeerOrderGuard) Reset() {
	g.seen = make(map[peerKey]int64)
}
