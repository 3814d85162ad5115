package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foldrun/timefold/internal/timeline"
)

func TestPeerOrderGuard_IgnoreModeNeverErrors(t *testing.T) {
	g := NewPeerOrderGuard(PeerOrderIgnore)
	require.NoError(t, g.Observe(timeline.Timestamp{Time: 1, PlayerID: 1, Offset: 5}))
	require.NoError(t, g.Observe(timeline.Timestamp{Time: 1, PlayerID: 1, Offset: 2}))
}

func TestPeerOrderGuard_RejectModeFlagsDecreasingOffset(t *testing.T) {
	g := NewPeerOrderGuard(PeerOrderReject)
	require.NoError(t, g.Observe(timeline.Timestamp{Time: 1, PlayerID: 1, Offset: 5}))
	err := g.Observe(timeline.Timestamp{Time: 1, PlayerID: 1, Offset: 2})
	require.Error(t, err)
	assert.True(t, IsOutOfOrder(err))
}

func TestPeerOrderGuard_DifferentPlayersDoNotInterfere(t *testing.T) {
	g := NewPeerOrderGuard(PeerOrderReject)
	require.NoError(t, g.Observe(timeline.Timestamp{Time: 1, PlayerID: 1, Offset: 5}))
	require.NoError(t, g.Observe(timeline.Timestamp{Time: 1, PlayerID: 2, Offset: 0}))
}

func TestPeerOrderGuard_DifferentTimesDoNotInterfere(t *testing.T) {
	g := NewPeerOrderGuard(PeerOrderReject)
	require.NoError(t, g.Observe(timeline.Timestamp{Time: 1, PlayerID: 1, Offset: 5}))
	require.NoError(t, g.Observe(timeline.Timestamp{Time: 2, PlayerID: 1, Offset: 0}))
}

func TestPeerOrderGuard_ResetClearsHistory(t *testing.T) {
	g := NewPeerOrderGuard(PeerOrderReject)
	require.NoError(t, g.Observe(timeline.Timestamp{Time: 1, PlayerID: 1, Offset: 5}))
	g.Reset()
	require.NoError(t, g.Observe(timeline.Timestamp{Time: 1, PlayerID: 1, Offset: 0}))
}
