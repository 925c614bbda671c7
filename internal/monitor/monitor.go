// Package monitor implements the resident component health service: a
// registry of named components tracked by heartbeat, a bounded log ring, a
// bounded event journal, and a periodic sweep that degrades stale components
// and maintains an aggregate health index.
package monitor

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/TLimoges33/Syn-OS-sub017/internal/model"
)

// Monitor owns all monitoring state and the sweep goroutine. The registry,
// log ring, and event journal are independently locked; no operation holds
// more than one of those locks at a time, and cross-collection references
// are by component name only.
type Monitor struct {
	ring     *LogRing
	journal  *EventJournal
	registry *Registry
	policy   Policy
	logger   *slog.Logger

	startedAt time.Time

	healthMu  sync.Mutex
	aggregate int
	lastCheck time.Time

	// onLog, if set before Start, is invoked after each stored log entry.
	// It must not block.
	onLog func(model.LogEntry)

	runMu   sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// New creates a monitor from the given configuration. The logger is the
// always-on diagnostic sink that warning-and-above ring entries mirror to.
func New(config Config, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}

	m := &Monitor{
		ring:      NewLogRing(config.LogCapacity, logger),
		journal:   NewEventJournal(config.EventCapacity),
		registry:  NewRegistry(),
		policy:    config.Policy(),
		logger:    logger,
		startedAt: time.Now(),
		aggregate: 100,
	}

	if level, err := model.ParseLevel(config.MinLogLevel); err == nil {
		m.ring.SetLevel(level)
	}

	return m
}

// SetLogHook installs a callback invoked for every stored log entry. Must be
// called before Start.
func (m *Monitor) SetLogHook(hook func(model.LogEntry)) {
	m.onLog = hook
}

// Start launches the sweep goroutine.
func (m *Monitor) Start() error {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	if m.running {
		return ErrAlreadyRunning
	}

	m.stopCh = make(chan struct{})
	m.running = true
	m.wg.Add(1)
	go m.run(m.stopCh)

	m.logger.Info("monitor started",
		"tick", m.policy.TickInterval,
		"stale_after", m.policy.StaleAfter,
		"log_capacity", m.ring.Capacity(),
		"event_capacity", m.journal.Capacity(),
	)

	return nil
}

// Stop signals the sweep goroutine and joins it before returning, so no tick
// can touch the collections after Stop completes.
func (m *Monitor) Stop() {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	if !m.running {
		return
	}

	close(m.stopCh)
	m.wg.Wait()
	m.running = false

	m.logger.Info("monitor stopped")
}

// run is the sweep loop. It sleeps between ticks and checks the stop channel
// each iteration; there is no other cancellation path.
func (m *Monitor) run(stopCh <-chan struct{}) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.policy.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case now := <-ticker.C:
			m.sweep(now)
		}
	}
}

// sweep runs one evaluation pass: apply staleness transitions, recompute the
// aggregate health index, and stamp the last-check time. Logs and events for
// transitions are emitted after the registry lock is released.
func (m *Monitor) sweep(now time.Time) {
	transitions := m.registry.sweep(now, m.policy)

	for _, tr := range transitions {
		m.Append(model.LogEntry{
			Level:      model.LevelWarning,
			Category:   model.CategoryHealth,
			Timestamp:  now,
			CallerName: "monitor",
			Message:    fmt.Sprintf("component %s: %s -> %s (health %d)", tr.name, tr.from, tr.to, tr.score),
		})
		m.journal.Record(model.EventStateChange, tr.name, fmt.Sprintf("%s -> %s", tr.from, tr.to),
			int64(tr.from), int64(tr.to), int64(tr.score))
	}

	aggregate := m.computeAggregate()

	m.healthMu.Lock()
	previous := m.aggregate
	m.aggregate = aggregate
	m.lastCheck = now
	m.healthMu.Unlock()

	if aggregate != previous {
		m.journal.Record(model.EventAggregateLevelChange, "",
			fmt.Sprintf("aggregate health index %d -> %d", previous, aggregate),
			int64(previous), int64(aggregate))
	}
}

// computeAggregate rebuilds the aggregate index from scratch: start at 100
// and subtract a step per enabled component below the unhealthy threshold,
// floored at 0. Recomputing rather than decaying gives the index a natural
// recovery path as components heal.
func (m *Monitor) computeAggregate() int {
	aggregate := 100
	for _, view := range m.registry.Snapshot() {
		if view.Enabled && view.HealthScore < m.policy.UnhealthyBelow {
			aggregate -= m.policy.AggregateStep
		}
	}
	if aggregate < 0 {
		aggregate = 0
	}
	return aggregate
}

// Register adds a component and records a registration event.
func (m *Monitor) Register(name string, state model.ComponentState, enabled bool) error {
	if err := m.registry.Register(name, state, enabled); err != nil {
		return err
	}

	m.journal.Record(model.EventComponentRegistered, name, "component registered", int64(state))
	m.Append(model.LogEntry{
		Level:      model.LevelInfo,
		Category:   model.CategoryComponent,
		CallerName: "monitor",
		Message:    fmt.Sprintf("component %s registered in state %s", name, state),
	})

	return nil
}

// Unregister removes a component from the registry.
func (m *Monitor) Unregister(name string) error {
	if err := m.registry.Unregister(name); err != nil {
		return err
	}

	m.Append(model.LogEntry{
		Level:      model.LevelInfo,
		Category:   model.CategoryComponent,
		CallerName: "monitor",
		Message:    fmt.Sprintf("component %s unregistered", name),
	})

	return nil
}

// Heartbeat refreshes a component's liveness. A state change back to active
// is journaled.
func (m *Monitor) Heartbeat(name string) error {
	prev, err := m.registry.Heartbeat(name)
	if err != nil {
		return err
	}

	if prev != model.StateActive {
		m.journal.Record(model.EventStateChange, name, fmt.Sprintf("%s -> %s", prev, model.StateActive),
			int64(prev), int64(model.StateActive))
	}

	return nil
}

// AdjustHealth applies a clamped delta to a component's health score.
func (m *Monitor) AdjustHealth(name string, delta int) (int, error) {
	return m.registry.AdjustHealth(name, delta)
}

// SetHealth sets a component's health score to a clamped absolute value.
func (m *Monitor) SetHealth(name string, score int) (int, error) {
	return m.registry.SetHealth(name, score)
}

// SetEnabled toggles sweep evaluation for a component.
func (m *Monitor) SetEnabled(name string, enabled bool) error {
	return m.registry.SetEnabled(name, enabled)
}

// Append stores a log entry in the ring and feeds the stream hook. A caller
// name matching a registered component bumps that component's error or
// warning counter.
func (m *Monitor) Append(entry model.LogEntry) {
	m.ring.Append(entry)

	if entry.Level >= model.LevelWarning && entry.CallerName != "" {
		m.registry.NoteIssue(entry.CallerName, entry.Level)
	}

	if m.onLog != nil {
		m.onLog(entry)
	}
}

// RecordEvent journals an externally reported event.
func (m *Monitor) RecordEvent(evType model.EventType, component, description string, aux ...int64) model.Event {
	return m.journal.Record(evType, component, description, aux...)
}

// SetLogLevel sets the minimum level accepted into the log ring.
func (m *Monitor) SetLogLevel(level model.LogLevel) error {
	if err := m.ring.SetLevel(level); err != nil {
		return err
	}

	m.logger.Info("log level changed", "level", level.String())
	return nil
}

// LogLevel returns the ring's current minimum level.
func (m *Monitor) LogLevel() model.LogLevel {
	return m.ring.Level()
}

// Logs returns up to limit recent log entries, oldest first.
func (m *Monitor) Logs(limit int) []model.LogEntry {
	return m.ring.Snapshot(limit)
}

// Events returns up to limit recent events, oldest first.
func (m *Monitor) Events(limit int) []model.Event {
	return m.journal.Snapshot(limit)
}

// Components returns read-only views of all registered components.
func (m *Monitor) Components() []model.ComponentView {
	return m.registry.Snapshot()
}

// Component returns a read-only view of a single component.
func (m *Monitor) Component(name string) (model.ComponentView, error) {
	return m.registry.Get(name)
}
