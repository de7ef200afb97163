package poolmanager

import (
	"context"
	"time"

	"github.com/hako/durafmt"
	"golang.org/x/exp/slices"

	"github.com/nimbus-mining/poolclient/stratum"
)

const reconnectCountdown = 3 * time.Second

// tryReconnect implements the failover policy: retry the current endpoint
// up to reconnectTries times, then advance to the next endpoint in the
// list, wrapping modulo its length. An endpoint whose host is the literal
// string "exit" stops the Manager instead of being dialed.
func (m *Manager) tryReconnect(ctx context.Context) {
	m.mu.Lock()
	n := len(m.endpoints)
	m.mu.Unlock()
	if n == 0 {
		m.log.Warnf("reconnect requested with no endpoints configured")
		return
	}

	if !m.countdown(ctx) {
		return
	}

	next, stop := m.advance()
	if stop {
		m.log.Infof("endpoint list reached exit sentinel, stopping")
		m.Stop()
		return
	}
	if next == nil {
		return
	}
	m.client.Connect(ctx, next)
}

// advance applies the retry/failover policy and returns the endpoint to
// dial next, or stop=true if the advanced endpoint is the "exit" sentinel.
func (m *Manager) advance() (next *stratum.Endpoint, stop bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.endpoints) == 1 {
		return m.endpoints[0], false
	}

	m.reconnectTry++
	if m.reconnectTry <= m.reconnectTries && !m.endpoints[m.activeIdx].Unrecoverable() {
		ep := m.endpoints[m.activeIdx]
		m.log.Infof("reconnect attempt %d/%d to %s", m.reconnectTry, m.reconnectTries, ep)
		return ep, false
	}

	m.reconnectTry = 0
	m.activeIdx = (m.activeIdx + 1) % len(m.endpoints)
	for i := 1; i < len(m.endpoints) && m.endpoints[m.activeIdx].Unrecoverable(); i++ {
		m.activeIdx = (m.activeIdx + 1) % len(m.endpoints)
	}
	ep := m.endpoints[m.activeIdx]
	if ep.Host == "exit" {
		return nil, true
	}
	m.log.Infof("failing over to %s", ep)
	return ep, false
}

// countdown sleeps 3 one-second ticks, logging each, and returns false if
// ctx is canceled first.
func (m *Manager) countdown(ctx context.Context) bool {
	remaining := reconnectCountdown
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	m.log.Infof("reconnecting in %s", durafmt.Parse(remaining).LimitFirstN(1))
	for remaining > 0 {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			remaining -= time.Second
			if remaining > 0 {
				m.log.Infof("reconnecting in %s", durafmt.Parse(remaining).LimitFirstN(1))
			}
		}
	}
	return true
}

// endpointHosts lists configured endpoints in order, for diagnostics.
func (m *Manager) endpointHosts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	hosts := make([]string, len(m.endpoints))
	for i, ep := range m.endpoints {
		hosts[i] = ep.Address()
	}
	return slices.Clone(hosts)
}
