package stratum

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/holiman/uint256"
)

// Work is a mining job assembled from a mining.notify, bound to the
// extranonce1 and target in effect on the connection at the moment it
// arrived. Two Work values compare equal iff every bound field is equal:
// a value comparison is deliberate, not an oversight, since Work carries
// no pointers worth identity-comparing.
type Work struct {
	JobID         string
	PrevHash      string
	CoinbasePart1 string
	CoinbasePart2 string
	MerkleBranch  []string
	Version       string
	Bits          string
	Time          string
	CleanJob      bool

	ExtraNonce1 string
	Target      uint256.Int
}

// Equal reports whether two Work values are identical in every bound field.
func (w Work) Equal(o Work) bool {
	if w.JobID != o.JobID ||
		w.PrevHash != o.PrevHash ||
		w.CoinbasePart1 != o.CoinbasePart1 ||
		w.CoinbasePart2 != o.CoinbasePart2 ||
		w.Version != o.Version ||
		w.Bits != o.Bits ||
		w.Time != o.Time ||
		w.CleanJob != o.CleanJob ||
		w.ExtraNonce1 != o.ExtraNonce1 ||
		!w.Target.Eq(&o.Target) {
		return false
	}
	if len(w.MerkleBranch) != len(o.MerkleBranch) {
		return false
	}
	for i := range w.MerkleBranch {
		if w.MerkleBranch[i] != o.MerkleBranch[i] {
			return false
		}
	}
	return true
}

// Solution is a candidate nonce computed by the mining engine against a
// particular Work. The Client treats it as opaque beyond its accessors and
// the back-reference to Work used for staleness checks.
type Solution struct {
	Work Work

	JobID       string
	ExtraNonce2 string
	Time        string
	Nonce       string
	HashMix     chainhash.Hash
	BlockTxBlob string
	MerkleRoot  chainhash.Hash
}

// HashMixHex renders the 32-byte hash-mix value as the hex string expected
// in mining.submit params.
func (s Solution) HashMixHex() string {
	return s.HashMix.String()
}

// MerkleRootHex renders the solution's merkle root as the hex string
// expected as the trailing mining.submit parameter.
func (s Solution) MerkleRootHex() string {
	return s.MerkleRoot.String()
}
