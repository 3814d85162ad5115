package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimestamp_OrdersByTimeThenPlayerThenOffset(t *testing.T) {
	a := Timestamp{Time: 1, PlayerID: 0, Offset: 5}
	b := Timestamp{Time: 2, PlayerID: 0, Offset: 0}
	assert.True(t, a.Less(b))

	// Same time, different player: player_id breaks the tie before offset.
	c := Timestamp{Time: 1, PlayerID: 0, Offset: 9}
	d := Timestamp{Time: 1, PlayerID: 1, Offset: 0}
	assert.True(t, c.Less(d))

	// Same time and player: offset breaks the tie.
	e := Timestamp{Time: 1, PlayerID: 0, Offset: 0}
	f := Timestamp{Time: 1, PlayerID: 0, Offset: 1}
	assert.True(t, e.Less(f))
}

func TestTimestamp_Equal(t *testing.T) {
	a := Timestamp{Time: 1, PlayerID: 2, Offset: 3}
	b := Timestamp{Time: 1, PlayerID: 2, Offset: 3}
	assert.True(t, a.Equal(b))
	assert.Equal(t, 0, a.Compare(b))
}

func TestTimestamp_PlayerIDPrecedesOffset(t *testing.T) {
	// A late-arriving lower-offset entry from a higher player id must
	// still sort after an earlier player id's higher-offset entry, at
	// the same time tick — this is the load-bearing property from §3.
	low := Timestamp{Time: 5, PlayerID: 0, Offset: 100}
	high := Timestamp{Time: 5, PlayerID: 1, Offset: 0}
	assert.True(t, low.Less(high))
}
