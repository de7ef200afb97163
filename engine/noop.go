package engine

import (
	"sync"
	"time"

	"github.com/nimbus-mining/poolclient/stratum"
)

// Noop is a reference Adapter that never actually computes a hash. It
// tracks accepted-share hashrate the same way a real engine would and
// exposes MiningProgress off that, but OnSolutionFound never fires — it is
// the adapter the tests and cmd/poolclient wire the Manager up with, and it
// does not mine anything.
type Noop struct {
	mu      sync.Mutex
	mining  bool
	current stratum.Work

	rate *MeanRate

	restartCb func()
	foundCb   func(stratum.Solution) bool
}

// NewNoop constructs an idle Noop adapter.
func NewNoop() *Noop {
	return &Noop{rate: NewMeanRate()}
}

func (n *Noop) Start(modes Modes) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.mining = true
	return nil
}

func (n *Noop) Stop() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.mining = false
	return nil
}

func (n *Noop) IsMining() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.mining
}

func (n *Noop) SetWork(w stratum.Work) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = w
}

// AcceptedSolution counts one more share toward the rate estimate. A real
// engine would weight this by the share's difficulty; Noop doesn't mine
// anything so it just counts shares.
func (n *Noop) AcceptedSolution(stale bool) {
	if stale {
		return
	}
	n.rate.Add(1)
}

func (n *Noop) RejectedSolution(stale bool) {}

func (n *Noop) OnSolutionFound(cb func(stratum.Solution) bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.foundCb = cb
}

func (n *Noop) OnMinerRestart(cb func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.restartCb = cb
}

func (n *Noop) MiningProgress() (float64, bool) {
	ghs := n.rate.ValuePer(time.Second) / 1e9
	return ghs, n.IsMining()
}

func (n *Noop) SetPoolAddresses(host string, port uint16) {}
