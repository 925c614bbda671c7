package monitor

import (
	"strings"
	"testing"
	"time"

	"github.com/TLimoges33/Syn-OS-sub017/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	config := DefaultConfig()
	config.LogCapacity = 100
	config.EventCapacity = 100
	return config
}

func newTestMonitor(t *testing.T) *Monitor {
	t.Helper()
	return New(testConfig(), discardLogger())
}

func warningHealthLogs(m *Monitor, component string) []model.LogEntry {
	var result []model.LogEntry
	for _, entry := range m.Logs(0) {
		if entry.Level == model.LevelWarning && entry.Category == model.CategoryHealth &&
			strings.Contains(entry.Message, component) {
			result = append(result, entry)
		}
	}
	return result
}

func eventsOfType(m *Monitor, evType model.EventType) []model.Event {
	var result []model.Event
	for _, event := range m.Events(0) {
		if event.Type == evType {
			result = append(result, event)
		}
	}
	return result
}

func TestMonitorStaleComponentDegrades(t *testing.T) {
	// Register net-monitor active, advance past the staleness threshold with
	// no heartbeat, run one sweep: degraded, -20 health, one warning log
	// with category health referencing it, one state-change event.
	m := newTestMonitor(t)
	require.NoError(t, m.Register("net-monitor", model.StateActive, true))

	m.sweep(time.Now().Add(6 * time.Second))

	view, err := m.Component("net-monitor")
	require.NoError(t, err)
	assert.Equal(t, model.StateDegraded, view.State)
	assert.Equal(t, 80, view.HealthScore)

	assert.Len(t, warningHealthLogs(m, "net-monitor"), 1)
	assert.Len(t, eventsOfType(m, model.EventStateChange), 1)
}

func TestMonitorDegradeFiresOncePerEpisode(t *testing.T) {
	m := newTestMonitor(t)
	require.NoError(t, m.Register("net-monitor", model.StateActive, true))

	deadline := time.Now().Add(6 * time.Second)
	m.sweep(deadline)
	m.sweep(deadline.Add(time.Second))
	m.sweep(deadline.Add(2 * time.Second))

	view, err := m.Component("net-monitor")
	require.NoError(t, err)
	assert.Equal(t, model.StateDegraded, view.State)
	assert.Equal(t, 80, view.HealthScore, "penalty applied exactly once")

	assert.Len(t, warningHealthLogs(m, "net-monitor"), 1)
	assert.Len(t, eventsOfType(m, model.EventStateChange), 1)
}

func TestMonitorDegradedFailsAfterThreshold(t *testing.T) {
	m := newTestMonitor(t)
	require.NoError(t, m.Register("flaky", model.StateActive, true))

	when := time.Now().Add(6 * time.Second)
	for i := 0; i < m.policy.FailAfter; i++ {
		m.sweep(when.Add(time.Duration(i) * time.Second))
	}

	view, err := m.Component("flaky")
	require.NoError(t, err)
	assert.Equal(t, model.StateFailed, view.State)

	transitions := eventsOfType(m, model.EventStateChange)
	assert.Len(t, transitions, 2) // active->degraded, degraded->failed
}

func TestMonitorHeartbeatStartsNewEpisode(t *testing.T) {
	m := newTestMonitor(t)
	require.NoError(t, m.Register("bouncy", model.StateActive, true))

	m.sweep(time.Now().Add(6 * time.Second))
	view, err := m.Component("bouncy")
	require.NoError(t, err)
	require.Equal(t, model.StateDegraded, view.State)

	require.NoError(t, m.Heartbeat("bouncy"))
	view, err = m.Component("bouncy")
	require.NoError(t, err)
	assert.Equal(t, model.StateActive, view.State)

	// A second staleness episode fires the transition and penalty again.
	m.sweep(time.Now().Add(6 * time.Second))
	view, err = m.Component("bouncy")
	require.NoError(t, err)
	assert.Equal(t, model.StateDegraded, view.State)
	assert.Equal(t, 60, view.HealthScore)
	assert.Len(t, warningHealthLogs(m, "bouncy"), 2)
}

func TestMonitorDisabledComponentSkipped(t *testing.T) {
	m := newTestMonitor(t)
	require.NoError(t, m.Register("dormant", model.StateActive, false))

	m.sweep(time.Now().Add(time.Minute))

	view, err := m.Component("dormant")
	require.NoError(t, err)
	assert.Equal(t, model.StateActive, view.State)
	assert.Equal(t, 100, view.HealthScore)
}

func TestMonitorAggregateIndex(t *testing.T) {
	m := newTestMonitor(t)
	require.NoError(t, m.Register("a", model.StateActive, true))
	require.NoError(t, m.Register("b", model.StateActive, true))

	t.Run("healthy components keep index at 100", func(t *testing.T) {
		m.sweep(time.Now())
		assert.Equal(t, 100, m.Metrics().AggregateHealthIndex)
	})

	t.Run("unhealthy components drag the index down", func(t *testing.T) {
		_, err := m.SetHealth("a", 10)
		require.NoError(t, err)
		_, err = m.SetHealth("b", 40)
		require.NoError(t, err)

		m.sweep(time.Now())
		assert.Equal(t, 90, m.Metrics().AggregateHealthIndex)
		assert.NotEmpty(t, eventsOfType(m, model.EventAggregateLevelChange))
	})

	t.Run("index recovers when components heal", func(t *testing.T) {
		_, err := m.SetHealth("a", 100)
		require.NoError(t, err)
		_, err = m.SetHealth("b", 100)
		require.NoError(t, err)

		m.sweep(time.Now())
		assert.Equal(t, 100, m.Metrics().AggregateHealthIndex)
	})
}

func TestMonitorAggregateIndexFloor(t *testing.T) {
	m := newTestMonitor(t)

	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j",
		"k", "l", "m", "n", "o", "p", "q", "r", "s", "t", "u"} {
		require.NoError(t, m.Register(name, model.StateActive, true))
		_, err := m.SetHealth(name, 0)
		require.NoError(t, err)
	}

	m.sweep(time.Now())
	assert.Equal(t, 0, m.Metrics().AggregateHealthIndex)
}

func TestMonitorMetricsSnapshot(t *testing.T) {
	m := newTestMonitor(t)
	require.NoError(t, m.Register("a", model.StateActive, true))
	require.NoError(t, m.Register("b", model.StateInactive, true))

	m.Append(model.LogEntry{Level: model.LevelInfo, Category: model.CategorySystem, Message: "hello"})
	m.RecordEvent(model.EventInfo, "", "something happened")
	m.sweep(time.Now())

	metrics := m.Metrics()
	assert.Equal(t, 2, metrics.TotalComponents)
	assert.Equal(t, 1, metrics.ActiveComponents)
	assert.Equal(t, 0, metrics.FailedComponents)
	assert.GreaterOrEqual(t, metrics.AggregateHealthIndex, 0)
	assert.LessOrEqual(t, metrics.AggregateHealthIndex, 100)
	assert.Equal(t, metrics.LiveLogEntries, len(m.Logs(0)))
	assert.Equal(t, metrics.LiveEvents, len(m.Events(0)))
	assert.GreaterOrEqual(t, metrics.TotalLogEntries, uint64(metrics.LiveLogEntries))
	assert.False(t, metrics.LastHealthCheck.IsZero())
	assert.False(t, metrics.StartedAt.IsZero())
}

func TestMonitorLogIssueCounters(t *testing.T) {
	m := newTestMonitor(t)
	require.NoError(t, m.Register("noisy", model.StateActive, true))

	m.Append(model.LogEntry{Level: model.LevelError, Category: model.CategoryComponent, CallerName: "noisy", Message: "boom"})
	m.Append(model.LogEntry{Level: model.LevelWarning, Category: model.CategoryComponent, CallerName: "noisy", Message: "hmm"})
	m.Append(model.LogEntry{Level: model.LevelInfo, Category: model.CategoryComponent, CallerName: "noisy", Message: "fine"})

	view, err := m.Component("noisy")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), view.ErrorCount)
	assert.Equal(t, uint64(1), view.WarningCount)
}

func TestMonitorLifecycle(t *testing.T) {
	config := testConfig()
	config.TickIntervalMS = 10
	config.StaleAfterMS = 20
	m := New(config, discardLogger())

	require.NoError(t, m.Start())
	assert.ErrorIs(t, m.Start(), ErrAlreadyRunning)

	require.NoError(t, m.Register("live", model.StateActive, true))

	// The loop degrades the component once its heartbeat goes stale.
	require.Eventually(t, func() bool {
		view, err := m.Component("live")
		return err == nil && view.State == model.StateDegraded
	}, 2*time.Second, 5*time.Millisecond)

	assert.False(t, m.Metrics().LastHealthCheck.IsZero())

	m.Stop()
	m.Stop() // idempotent

	require.NoError(t, m.Start())
	m.Stop()
}

func TestMonitorLogHook(t *testing.T) {
	m := newTestMonitor(t)

	var received []model.LogEntry
	m.SetLogHook(func(entry model.LogEntry) {
		received = append(received, entry)
	})

	m.Append(model.LogEntry{Level: model.LevelInfo, Category: model.CategorySystem, Message: "tapped"})

	require.Len(t, received, 1)
	assert.Equal(t, "tapped", received[0].Message)
}
