package lib

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPleaRing_FIFOAndRoundTrip(t *testing.T) {
	r := NewPleaRing(64)
	t0 := time.Now()

	require.True(t, r.Enqueue(t0))
	require.Equal(t, 1, r.Count())

	elapsed := r.Dequeue(t0.Add(15 * time.Millisecond))
	require.GreaterOrEqual(t, elapsed, 15*time.Millisecond)
	require.Equal(t, 0, r.Count())
}

func TestPleaRing_DequeueEmptyReturnsZero(t *testing.T) {
	r := NewPleaRing(64)
	require.Equal(t, time.Duration(0), r.Dequeue(time.Now()))
}

func TestPleaRing_CountTracksEnqueueDequeue(t *testing.T) {
	r := NewPleaRing(64)
	now := time.Now()

	for i := 0; i < 10; i++ {
		require.True(t, r.Enqueue(now))
	}
	require.Equal(t, 10, r.Count())

	for i := 0; i < 4; i++ {
		r.Dequeue(now)
	}
	require.Equal(t, 6, r.Count())

	r.Clear()
	require.Equal(t, 0, r.Count())
	require.Equal(t, time.Duration(0), r.OldestAge(now))
}

func TestPleaRing_EnqueueFailsWhenFull(t *testing.T) {
	r := NewPleaRing(64)
	now := time.Now()
	for i := 0; i < 64; i++ {
		require.True(t, r.Enqueue(now))
	}
	require.False(t, r.Enqueue(now))
	require.Equal(t, 64, r.Count())
}

func TestPleaRing_OldestAgeTracksHead(t *testing.T) {
	r := NewPleaRing(64)
	t0 := time.Now()
	r.Enqueue(t0)
	r.Enqueue(t0.Add(time.Second))

	age := r.OldestAge(t0.Add(5 * time.Second))
	require.GreaterOrEqual(t, age, 5*time.Second)

	r.Dequeue(t0)
	age = r.OldestAge(t0.Add(5 * time.Second))
	require.LessOrEqual(t, age, 4*time.Second+1)
}
