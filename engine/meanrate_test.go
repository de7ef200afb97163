package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMeanRateAccumulatesValue(t *testing.T) {
	r := NewMeanRate()
	require.Zero(t, r.Value())
	require.True(t, r.GetLastSubmitTime().IsZero())

	r.Add(1)
	r.Add(2.5)
	require.Equal(t, float64(3), r.Value()) // diff is truncated to uint64 on accumulation
	require.False(t, r.GetLastSubmitTime().IsZero())
}

func TestMeanRateValuePerZeroBeforeAnySubmit(t *testing.T) {
	r := NewMeanRate()
	require.Zero(t, r.ValuePer(1e9))
}
