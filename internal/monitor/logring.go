package monitor

import (
	"log/slog"
	"sync"
	"time"

	"github.com/TLimoges33/Syn-OS-sub017/internal/model"
)

// DefaultLogCapacity is the log ring capacity used when none is configured.
const DefaultLogCapacity = 5000

// LogRing is an append-only, capacity-bounded log store with FIFO eviction.
// When full, the oldest entry is evicted before the new one is inserted, so
// occupancy never exceeds the configured capacity. Entries at warning level
// or above are mirrored to an always-on diagnostic sink so they survive even
// if the ring itself is later lost.
type LogRing struct {
	mu       sync.Mutex
	entries  []model.LogEntry
	head     int
	count    int
	capacity int
	minLevel model.LogLevel
	appended uint64
	dropped  uint64
	mirror   *slog.Logger
}

// NewLogRing creates a log ring holding at most capacity entries.
func NewLogRing(capacity int, mirror *slog.Logger) *LogRing {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	if mirror == nil {
		mirror = slog.Default()
	}

	return &LogRing{
		entries:  make([]model.LogEntry, capacity),
		capacity: capacity,
		minLevel: model.LevelTrace,
		mirror:   mirror,
	}
}

// Append stores a log entry, evicting the oldest entry first when the ring is
// at capacity. It is best-effort from the caller's point of view: a malformed
// entry is counted as dropped and never propagated as a failure. Overlong
// strings are truncated rather than rejected.
func (r *LogRing) Append(entry model.LogEntry) {
	if !entry.Level.Valid() || !entry.Category.Valid() {
		r.mu.Lock()
		r.dropped++
		r.mu.Unlock()
		return
	}

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	entry.CallerName = truncate(entry.CallerName, model.MaxCallerName)
	entry.Message = truncate(entry.Message, model.MaxMessageLen)

	// Mirror before taking the lock; the sink may do I/O and lock-held time
	// must stay bounded.
	if entry.Level >= model.LevelWarning {
		emit := r.mirror.Warn
		if entry.Level >= model.LevelError {
			emit = r.mirror.Error
		}
		emit(entry.Message,
			"level", entry.Level.String(),
			"category", entry.Category.String(),
			"caller", entry.CallerName,
			"caller_id", entry.CallerID,
		)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.Level < r.minLevel {
		return
	}

	if r.count == r.capacity {
		// Evict oldest: advance head, reuse its slot.
		r.head = (r.head + 1) % r.capacity
		r.count--
	}

	r.entries[(r.head+r.count)%r.capacity] = entry
	r.count++
	r.appended++
}

// Snapshot returns a copy of the most recent entries in insertion order
// (oldest first). A non-positive limit returns all live entries.
func (r *LogRing) Snapshot(limit int) []model.LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.count
	if limit > 0 && limit < n {
		n = limit
	}

	result := make([]model.LogEntry, n)
	start := r.count - n
	for i := 0; i < n; i++ {
		result[i] = r.entries[(r.head+start+i)%r.capacity]
	}

	return result
}

// SetLevel sets the minimum level accepted into the ring.
func (r *LogRing) SetLevel(level model.LogLevel) error {
	if !level.Valid() {
		return ErrInvalidLevel
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.minLevel = level
	return nil
}

// Level returns the minimum level accepted into the ring.
func (r *LogRing) Level() model.LogLevel {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.minLevel
}

// Len returns the current number of live entries.
func (r *LogRing) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.count
}

// Capacity returns the configured maximum number of entries.
func (r *LogRing) Capacity() int {
	return r.capacity
}

// Appended returns the cumulative count of entries stored since creation,
// including entries that have since been evicted.
func (r *LogRing) Appended() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.appended
}

// Dropped returns the count of malformed entries that were discarded.
func (r *LogRing) Dropped() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.dropped
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
