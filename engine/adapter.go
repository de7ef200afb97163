// Package engine defines the thin boundary between the Pool Manager and
// whatever actually computes hashes. The engine itself — GPU/ASIC drivers,
// kernel scheduling, hashrate accounting hardware — is an external
// collaborator; this package only describes the interface the Manager
// drives it through and carries the bookkeeping (accepted-share hashrate
// estimation) that naturally lives on this side of the boundary.
package engine

import "github.com/nimbus-mining/poolclient/stratum"

// Modes selects which execution paths the engine should run when started,
// e.g. which GPU devices or kernel variants. The Manager passes through
// whatever its configuration carries; the engine interprets it.
type Modes = []string

// Adapter is the interface the Pool Manager drives a mining engine through.
// All methods must be safe to call from the Manager's goroutine; engines
// that need their own internal concurrency should hide it behind this
// interface.
type Adapter interface {
	Start(modes Modes) error
	Stop() error
	IsMining() bool

	SetWork(w stratum.Work)

	AcceptedSolution(stale bool)
	RejectedSolution(stale bool)

	OnSolutionFound(cb func(sol stratum.Solution) bool)
	OnMinerRestart(cb func())

	MiningProgress() (hashrateGHS float64, ok bool)

	SetPoolAddresses(host string, port uint16)
}
