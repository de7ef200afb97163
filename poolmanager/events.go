package poolmanager

import (
	"time"

	"github.com/nimbus-mining/poolclient/stratum"
	"github.com/nimbus-mining/poolclient/stratum/client"
)

// wireObservers installs the Client and engine callbacks that couple the
// pool connection lifecycle to the mining engine.
func (m *Manager) wireObservers() {
	m.client.SetObservers(client.Observers{
		OnConnected:        m.onConnected,
		OnDisconnected:     m.onDisconnected,
		OnResetWork:        func() {},
		OnWorkReceived:     m.onWorkReceived,
		OnSolutionAccepted: m.onSolutionAccepted,
		OnSolutionRejected: m.onSolutionRejected,
	})

	m.adapter.OnSolutionFound(m.onSolutionFound)
	m.adapter.OnMinerRestart(m.onMinerRestart)
}

func (m *Manager) onConnected() {
	m.mu.Lock()
	m.reconnectTry = 0
	ep := m.activeEndpointLocked()
	m.mu.Unlock()

	if ep != nil {
		m.adapter.SetPoolAddresses(ep.Host, ep.Port)
	}
	if !m.adapter.IsMining() {
		if err := m.adapter.Start(m.modes); err != nil {
			m.log.Errorf("engine start failed: %s", err)
		}
	}
}

func (m *Manager) onDisconnected() {
	if m.adapter.IsMining() {
		if err := m.adapter.Stop(); err != nil {
			m.log.Warnf("engine stop failed: %s", err)
		}
	}
	if m.running.Load() {
		go m.tryReconnect(m.ctx)
	}
}

func (m *Manager) onWorkReceived(w stratum.Work) {
	m.mu.Lock()
	m.reconnectTry = 0
	m.mu.Unlock()
	m.adapter.SetWork(w)
}

func (m *Manager) onSolutionAccepted(stale bool, roundTrip time.Duration) {
	m.accepted.Add(1)
	if stale {
		m.stale.Add(1)
	}
	m.logRoundTrip("accepted", stale, roundTrip)
	m.adapter.AcceptedSolution(stale)
}

func (m *Manager) onSolutionRejected(stale bool, roundTrip time.Duration) {
	m.rejected.Add(1)
	if stale {
		m.stale.Add(1)
	}
	m.logRoundTrip("rejected", stale, roundTrip)
	m.adapter.RejectedSolution(stale)
}

// logRoundTrip logs the Client-reported round trip alongside the Manager's
// own independently-timed one, for telemetry that doesn't depend on the
// Client's internal plea queue being correct.
func (m *Manager) logRoundTrip(outcome string, stale bool, clientRoundTrip time.Duration) {
	var ownRoundTrip time.Duration
	if submitted := m.lastSubmitAtNano.Load(); submitted != 0 {
		ownRoundTrip = time.Since(time.Unix(0, submitted))
	}
	m.log.Debugf("solution %s: client-rtt=%s manager-rtt=%s stale=%v", outcome, clientRoundTrip, ownRoundTrip, stale)
}

// onSolutionFound is the engine's callback for a freshly computed nonce. It
// always returns false: the Client, not the engine, owns whether the nonce
// was ultimately consumed.
func (m *Manager) onSolutionFound(sol stratum.Solution) bool {
	if !m.client.IsConnected() {
		m.log.Warnf("wasted nonce: solution found while disconnected, job=%s", sol.JobID)
		return false
	}
	m.lastSubmitAtNano.Store(time.Now().UnixNano())
	m.client.SubmitSolution(sol)
	return false
}

func (m *Manager) onMinerRestart() {
	if err := m.adapter.Stop(); err != nil {
		m.log.Warnf("engine stop during restart failed: %s", err)
	}
	if err := m.adapter.Start(m.modes); err != nil {
		m.log.Errorf("engine restart failed: %s", err)
	}
}

func (m *Manager) activeEndpointLocked() *stratum.Endpoint {
	if m.activeIdx < 0 || m.activeIdx >= len(m.endpoints) {
		return nil
	}
	return m.endpoints[m.activeIdx]
}
