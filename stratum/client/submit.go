package client

import (
	"github.com/nimbus-mining/poolclient/stratum"
)

// SubmitSolution hands a candidate solution to the Client. The staleness
// and authorization checks run synchronously against atomic state, so a
// solution bound to work the strand has already superseded is rejected
// immediately with a zero round trip, before anything touches the wire.
// A solution that passes those checks is handed off to the strand for the
// actual mining.submit write; its outcome arrives later via
// Observers.OnSolutionAccepted or OnSolutionRejected.
func (c *Client) SubmitSolution(sol stratum.Solution) {
	cur := c.CurrentWork()
	if !cur.Equal(sol.Work) {
		c.rejectLocally(true)
		return
	}
	if !(c.subscribed.Load() && c.authorized.Load()) {
		c.rejectLocally(true)
		return
	}
	if c.pleas.Count() > c.parallelReqLimit {
		c.rejectLocally(true)
		return
	}

	select {
	case c.submitCh <- &submitReq{sol: sol}:
	default:
		c.rejectLocally(true)
	}
}

func (c *Client) rejectLocally(stale bool) {
	if c.obs.OnSolutionRejected != nil {
		c.obs.OnSolutionRejected(stale, 0)
	}
}

// SubmitHashrate reports the miner's current hashrate to the pool via
// mining.submithashrate, best-effort. hashrateCh holds one report: while no
// strand is reading it, the first report waits there for the next
// connection and any further ones are silently dropped.
func (c *Client) SubmitHashrate(hashrate float64) {
	select {
	case c.hashrateCh <- hashrate:
	default:
	}
}
