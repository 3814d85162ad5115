package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplayBudget_ChargeWithinLimit(t *testing.T) {
	b := NewReplayBudget(3)
	require.NoError(t, b.Charge())
	require.NoError(t, b.Charge())
	require.NoError(t, b.Charge())
	assert.Equal(t, 3, b.Current())
}

func TestReplayBudget_ChargeExceedsLimit(t *testing.T) {
	b := NewReplayBudget(1)
	require.NoError(t, b.Charge())
	err := b.Charge()
	require.Error(t, err)
	assert.True(t, IsReplayBudgetExceeded(err))
}

func TestReplayBudget_ZeroMeansUnlimited(t *testing.T) {
	b := NewReplayBudget(0)
	for i := 0; i < 10_000; i++ {
		require.NoError(t, b.Charge())
	}
}

func TestReplayBudget_ResetClearsCounter(t *testing.T) {
	b := NewReplayBudget(1)
	require.NoError(t, b.Charge())
	b.Reset()
	require.NoError(t, b.Charge())
}
