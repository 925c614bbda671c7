package monitor

import (
	"sync"
	"time"

	"github.com/TLimoges33/Syn-OS-sub017/internal/model"
)

type componentEntry struct {
	name          string
	state         model.ComponentState
	enabled       bool
	healthScore   int
	errorCount    uint64
	warningCount  uint64
	lastHeartbeat time.Time
	registeredAt  time.Time

	// staleTicks counts consecutive sweeps spent stale while degraded.
	staleTicks int
}

// Registry maps component names to lifecycle state and health counters.
// Names are unique; duplicate registration is rejected and the original
// entry is left untouched. All accessors hand out copies, never live
// references.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*componentEntry
	order   []string
}

// NewRegistry creates an empty component registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*componentEntry),
	}
}

// Register adds a component under a unique name. The initial state must be
// one of the defined lifecycle states; components typically enter as
// inactive or initializing and become active on their first heartbeat.
func (r *Registry) Register(name string, state model.ComponentState, enabled bool) error {
	if name == "" || len(name) > model.MaxComponentName {
		return ErrInvalidName
	}
	if !state.Valid() {
		return ErrInvalidState
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; exists {
		return ErrDuplicateComponent
	}

	now := time.Now()
	r.entries[name] = &componentEntry{
		name:          name,
		state:         state,
		enabled:       enabled,
		healthScore:   100,
		lastHeartbeat: now,
		registeredAt:  now,
	}
	r.order = append(r.order, name)

	return nil
}

// Unregister removes a component. Later snapshots never include the entry,
// and the sweep skips names it can no longer resolve.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; !exists {
		return ErrUnknownComponent
	}

	delete(r.entries, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	return nil
}

// Heartbeat updates the component's last-seen timestamp. Any non-active
// component returns to active on a fresh heartbeat; this is the only
// recovery path, the sweep never un-degrades a component on its own.
// It returns the state the component held before the heartbeat.
func (r *Registry) Heartbeat(name string) (model.ComponentState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.entries[name]
	if !exists {
		return model.StateInactive, ErrUnknownComponent
	}

	prev := entry.state
	entry.lastHeartbeat = time.Now()
	entry.state = model.StateActive
	entry.staleTicks = 0

	return prev, nil
}

// AdjustHealth applies a signed delta to the component's health score,
// clamped into [0, 100]. It returns the resulting score.
func (r *Registry) AdjustHealth(name string, delta int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.entries[name]
	if !exists {
		return 0, ErrUnknownComponent
	}

	entry.healthScore = clampScore(entry.healthScore + delta)
	return entry.healthScore, nil
}

// SetHealth sets the component's health score to an absolute value,
// clamped into [0, 100]. It returns the resulting score.
func (r *Registry) SetHealth(name string, score int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.entries[name]
	if !exists {
		return 0, ErrUnknownComponent
	}

	entry.healthScore = clampScore(score)
	return entry.healthScore, nil
}

// SetEnabled toggles whether the sweep evaluates the component.
func (r *Registry) SetEnabled(name string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.entries[name]
	if !exists {
		return ErrUnknownComponent
	}

	entry.enabled = enabled
	return nil
}

// NoteIssue increments the component's error or warning counter for a log
// entry at the given level referencing it.
func (r *Registry) NoteIssue(name string, level model.LogLevel) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.entries[name]
	if !exists {
		return
	}

	switch {
	case level >= model.LevelError:
		entry.errorCount++
	case level == model.LevelWarning:
		entry.warningCount++
	}
}

// Get returns a copy of a single component's current state.
func (r *Registry) Get(name string) (model.ComponentView, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.entries[name]
	if !exists {
		return model.ComponentView{}, ErrUnknownComponent
	}

	return entry.view(), nil
}

// Snapshot returns read-only copies of all components in registration order.
func (r *Registry) Snapshot() []model.ComponentView {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]model.ComponentView, 0, len(r.order))
	for _, name := range r.order {
		if entry, exists := r.entries[name]; exists {
			result = append(result, entry.view())
		}
	}

	return result
}

// Len returns the number of registered components.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}

// transition records a state change made by a sweep.
type transition struct {
	name  string
	from  model.ComponentState
	to    model.ComponentState
	score int
}

// sweep evaluates staleness for every enabled component at the given instant
// and applies state transitions under the registry lock. An active component
// whose heartbeat is older than the staleness threshold degrades exactly once
// per staleness episode; a degraded component that stays stale for failAfter
// consecutive sweeps fails. The caller emits logs and events for the returned
// transitions after the lock is released.
func (r *Registry) sweep(now time.Time, policy Policy) []transition {
	r.mu.Lock()
	defer r.mu.Unlock()

	var transitions []transition

	for _, name := range r.order {
		entry, exists := r.entries[name]
		if !exists || !entry.enabled {
			continue
		}

		stale := now.Sub(entry.lastHeartbeat) > policy.StaleAfter

		switch entry.state {
		case model.StateActive:
			if stale {
				entry.state = model.StateDegraded
				entry.healthScore = clampScore(entry.healthScore - policy.DegradePenalty)
				entry.staleTicks = 1
				transitions = append(transitions, transition{
					name:  name,
					from:  model.StateActive,
					to:    model.StateDegraded,
					score: entry.healthScore,
				})
			}
		case model.StateDegraded:
			if stale {
				entry.staleTicks++
				if policy.FailAfter > 0 && entry.staleTicks >= policy.FailAfter {
					entry.state = model.StateFailed
					transitions = append(transitions, transition{
						name:  name,
						from:  model.StateDegraded,
						to:    model.StateFailed,
						score: entry.healthScore,
					})
				}
			}
		}
	}

	return transitions
}

func (e *componentEntry) view() model.ComponentView {
	return model.ComponentView{
		Name:          e.name,
		State:         e.state,
		Enabled:       e.enabled,
		HealthScore:   e.healthScore,
		ErrorCount:    e.errorCount,
		WarningCount:  e.warningCount,
		LastHeartbeat: e.lastHeartbeat,
		RegisteredAt:  e.registeredAt,
	}
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
