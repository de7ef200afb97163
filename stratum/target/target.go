// Package target converts pool-supplied floating point difficulty values
// into the 256-bit integer targets the mining engine compares hashes
// against. All arithmetic is done with github.com/holiman/uint256 fixed
// width integers; difficulty is only ever a float at the wire boundary,
// never in the arithmetic itself.
package target

import (
	"math"

	"github.com/holiman/uint256"
)

// DiffMult scales a floating point difficulty into an integer before
// division so that sub-1.0 difficulties (down to MinDiff) don't truncate
// to zero.
const DiffMult = 100000 // 1e5

// MinDiff is the floor applied to any pool-supplied difficulty.
const MinDiff = 0.0001 // 1e-4

// diff1Hex is the canonical difficulty-1 target shared by Bitcoin-derived
// proof-of-work schemes.
const diff1Hex = "0xffff0000000000000000000000000000000000000000000000000000"

var diff1Target = mustParseDiff1()

func mustParseDiff1() *uint256.Int {
	v, err := uint256.FromHex(diff1Hex)
	if err != nil {
		panic(err) // diff1Hex is a fixed, known-good constant
	}
	return v
}

// DIFF1 returns the canonical difficulty-1 target.
func DIFF1() *uint256.Int {
	return new(uint256.Int).Set(diff1Target)
}

// DiffToTarget computes target = DIFF1 * DiffMult / floor(d * DiffMult)
// using 256-bit integer division. d is floored to at least MinDiff before
// scaling. The result is monotonically non-increasing as d increases: a
// larger difficulty always yields a target no larger than a smaller one's.
func DiffToTarget(d float64) *uint256.Int {
	if d < MinDiff {
		d = MinDiff
	}

	scaled := uint64(math.Floor(d * DiffMult))
	if scaled == 0 {
		scaled = 1
	}

	numerator := new(uint256.Int).Mul(diff1Target, uint256.NewInt(DiffMult))
	return numerator.Div(numerator, uint256.NewInt(scaled))
}
