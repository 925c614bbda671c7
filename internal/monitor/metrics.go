package monitor

import (
	"time"

	"github.com/TLimoges33/Syn-OS-sub017/internal/model"
)

// Metrics composes a consistent snapshot of registry, ring, and journal
// counters. It is a pure read: each collection is locked briefly and
// independently, and the returned value shares no memory with the monitor.
func (m *Monitor) Metrics() model.SystemMetrics {
	views := m.registry.Snapshot()

	var active, degraded, failed int
	for _, view := range views {
		switch view.State {
		case model.StateActive:
			active++
		case model.StateDegraded:
			degraded++
		case model.StateFailed:
			failed++
		}
	}

	m.healthMu.Lock()
	aggregate := m.aggregate
	lastCheck := m.lastCheck
	m.healthMu.Unlock()

	return model.SystemMetrics{
		TotalComponents:      len(views),
		ActiveComponents:     active,
		DegradedComponents:   degraded,
		FailedComponents:     failed,
		AggregateHealthIndex: aggregate,
		LiveLogEntries:       m.ring.Len(),
		TotalLogEntries:      m.ring.Appended(),
		DroppedLogEntries:    m.ring.Dropped(),
		LiveEvents:           m.journal.Len(),
		TotalEvents:          m.journal.Recorded(),
		DroppedEvents:        m.journal.Dropped(),
		UptimeSeconds:        int64(time.Since(m.startedAt) / time.Second),
		StartedAt:            m.startedAt,
		LastHealthCheck:      lastCheck,
	}
}
