// Package poolmanager owns the ordered list of candidate pool endpoints,
// drives the Stratum client through connect attempts, implements the
// retry/failover policy, and bridges pool events to the mining engine.
package poolmanager

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nimbus-mining/poolclient/engine"
	"github.com/nimbus-mining/poolclient/internal/lib"
	"github.com/nimbus-mining/poolclient/stratum"
	"github.com/nimbus-mining/poolclient/stratum/client"
)

// Stats is a snapshot of the Manager's and active endpoint's state,
// exposed for diagnostics (see internal/statusapi).
type Stats struct {
	Running       bool
	Connected     bool
	ClientState   string
	ActiveAddress string
	ReconnectTry  int
	HashrateGHS   float64
	Mining        bool
	Accepted      uint64
	Rejected      uint64
	Stale         uint64
	Uptime        time.Duration
}

// Manager drives one Stratum client against an ordered list of endpoints.
type Manager struct {
	log lib.ILogger

	client  *client.Client
	adapter engine.Adapter
	modes   engine.Modes

	reconnectTries        int
	hashrateReportingTime time.Duration

	mu           sync.Mutex
	endpoints    []*stratum.Endpoint
	activeIdx    int
	reconnectTry int

	running   atomic.Bool
	startedAt atomic.Int64 // unix nano, 0 before the first Start

	accepted atomic.Uint64
	rejected atomic.Uint64
	stale    atomic.Uint64

	// lastSubmitAtNano is the Manager's own timestamp for the most recently
	// forwarded solution, kept independently of the Client's plea queue so
	// logRoundTrip can log its own round-trip figure alongside the
	// Client-reported one.
	lastSubmitAtNano atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New constructs a Manager. reconnectTries and hashrateReportingTime
// default to 3 and 60s respectively when non-positive.
func New(cl *client.Client, adapter engine.Adapter, modes engine.Modes, log lib.ILogger, reconnectTries int, hashrateReportingTime time.Duration) *Manager {
	if reconnectTries <= 0 {
		reconnectTries = 3
	}
	if hashrateReportingTime <= 0 {
		hashrateReportingTime = 60 * time.Second
	}
	m := &Manager{
		log:                   log,
		client:                cl,
		adapter:               adapter,
		modes:                 modes,
		reconnectTries:        reconnectTries,
		hashrateReportingTime: hashrateReportingTime,
		activeIdx:             -1,
	}
	m.wireObservers()
	return m
}

// AddConnection parses uri and appends it to the endpoint list. The first
// endpoint added becomes the active one.
func (m *Manager) AddConnection(uri string, declaredDialect stratum.DialectMode) error {
	ep, err := stratum.ParseEndpoint(uri, declaredDialect)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.endpoints = append(m.endpoints, ep)
	if m.activeIdx < 0 {
		m.activeIdx = 0
	}
	m.mu.Unlock()
	return nil
}

// ClearConnections drops every endpoint and disconnects the client.
func (m *Manager) ClearConnections() {
	m.mu.Lock()
	m.endpoints = nil
	m.activeIdx = -1
	m.reconnectTry = 0
	m.mu.Unlock()
	m.client.Disconnect()
}

// Start spawns the reporting task and connects to the active endpoint. It
// fails if no endpoints have been added.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if len(m.endpoints) == 0 {
		m.mu.Unlock()
		return ErrNoEndpoints
	}
	ep := m.endpoints[m.activeIdx]
	m.mu.Unlock()

	m.running.Store(true)
	m.startedAt.Store(time.Now().UnixNano())

	runCtx, cancel := context.WithCancel(ctx)
	m.ctx = runCtx
	m.cancel = cancel

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.runReporting(runCtx)
	}()

	m.client.Connect(runCtx, ep)
	return nil
}

// Stop marks the Manager as no longer running, disconnects the client, and
// stops the engine.
func (m *Manager) Stop() {
	m.running.Store(false)
	if m.cancel != nil {
		m.cancel()
	}
	m.client.Disconnect()
	if err := m.adapter.Stop(); err != nil {
		m.log.Warnf("engine stop failed: %s", err)
	}
	m.wg.Wait()
}

// Stats snapshots the Manager's and engine's current state.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	addr := ""
	if m.activeIdx >= 0 && m.activeIdx < len(m.endpoints) {
		addr = m.endpoints[m.activeIdx].Address()
	}
	stats := Stats{
		Running:       m.running.Load(),
		Connected:     m.client.IsConnected(),
		ClientState:   m.client.State(),
		ActiveAddress: addr,
		ReconnectTry:  m.reconnectTry,
		Accepted:      m.accepted.Load(),
		Rejected:      m.rejected.Load(),
		Stale:         m.stale.Load(),
	}
	m.mu.Unlock()

	if started := m.startedAt.Load(); started != 0 {
		stats.Uptime = time.Since(time.Unix(0, started))
	}

	ghs, mining := m.adapter.MiningProgress()
	stats.HashrateGHS = ghs
	stats.Mining = mining
	return stats
}
