package target

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiffToTarget_One(t *testing.T) {
	got := DiffToTarget(1.0)
	require.Equal(t, DIFF1().String(), got.String())
}

func TestDiffToTarget_Monotonic(t *testing.T) {
	diffs := []float64{0.00001, 0.0001, 0.5, 1, 2, 10, 1000, 1_000_000}
	prev := DiffToTarget(diffs[0])
	for _, d := range diffs[1:] {
		cur := DiffToTarget(d)
		require.True(t, cur.Cmp(prev) <= 0, "target for diff=%v (%s) should be <= target for a smaller diff (%s)", d, cur.String(), prev.String())
		prev = cur
	}
}

func TestDiffToTarget_FloorsMinDiff(t *testing.T) {
	got := DiffToTarget(0)
	want := DiffToTarget(MinDiff)
	require.Equal(t, want.String(), got.String())
}
