package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nimbus-mining/poolclient/stratum"
)

func TestNoopStartStopTracksMining(t *testing.T) {
	n := NewNoop()
	require.False(t, n.IsMining())

	require.NoError(t, n.Start(Modes{"default"}))
	require.True(t, n.IsMining())

	require.NoError(t, n.Stop())
	require.False(t, n.IsMining())
}

func TestNoopAcceptedSolutionIgnoresStale(t *testing.T) {
	n := NewNoop()

	n.AcceptedSolution(true)
	require.Zero(t, n.rate.Value())

	n.AcceptedSolution(false)
	require.Equal(t, float64(1), n.rate.Value())
}

func TestNoopMiningProgressReflectsState(t *testing.T) {
	n := NewNoop()
	_, mining := n.MiningProgress()
	require.False(t, mining)

	require.NoError(t, n.Start(Modes{"default"}))
	_, mining = n.MiningProgress()
	require.True(t, mining)
}

func TestNoopSetWorkStoresCurrent(t *testing.T) {
	n := NewNoop()
	w := stratum.Work{JobID: "job-7"}
	n.SetWork(w)
	require.Equal(t, "job-7", n.current.JobID)
}
