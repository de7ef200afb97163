package stratum

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func baseWork() Work {
	return Work{
		JobID:         "job-1",
		PrevHash:      "abcd",
		CoinbasePart1: "cb1",
		CoinbasePart2: "cb2",
		MerkleBranch:  []string{"aa", "bb"},
		Version:       "20000000",
		Bits:          "1a2b3c4d",
		Time:          "deadbeef",
		CleanJob:      true,
		ExtraNonce1:   "0011",
		Target:        *uint256.NewInt(1000),
	}
}

func TestWorkEqualTrueForIdenticalValues(t *testing.T) {
	a, b := baseWork(), baseWork()
	require.True(t, a.Equal(b))
}

func TestWorkEqualFalseOnFieldDifference(t *testing.T) {
	a := baseWork()

	b := baseWork()
	b.JobID = "job-2"
	require.False(t, a.Equal(b))

	c := baseWork()
	c.MerkleBranch = []string{"aa", "cc"}
	require.False(t, a.Equal(c))

	d := baseWork()
	d.MerkleBranch = []string{"aa"}
	require.False(t, a.Equal(d))

	e := baseWork()
	e.Target = *uint256.NewInt(2000)
	require.False(t, a.Equal(e))
}

func TestSolutionHexAccessors(t *testing.T) {
	var sol Solution
	require.Len(t, sol.HashMixHex(), 64)
	require.Len(t, sol.MerkleRootHex(), 64)
}
