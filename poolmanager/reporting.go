package poolmanager

import (
	"context"
	"time"
)

const reportingTick = time.Second

// runReporting wakes every second and, once every hashrateReportingTime,
// asks the engine for its mining progress, logs it, and forwards the
// figure to the pool via the Client's best-effort hashrate submission.
func (m *Manager) runReporting(ctx context.Context) {
	ticker := time.NewTicker(reportingTick)
	defer ticker.Stop()

	var elapsed time.Duration
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			elapsed += reportingTick
			if elapsed < m.hashrateReportingTime {
				continue
			}
			elapsed = 0

			ghs, mining := m.adapter.MiningProgress()
			m.log.Infof("mining progress: %.3f GH/s (mining=%v)", ghs, mining)
			if mining {
				m.client.SubmitHashrate(ghs * 1e9)
			}
		}
	}
}
