package monitor

import (
	"sync"
	"time"

	"github.com/TLimoges33/Syn-OS-sub017/internal/model"

	"github.com/google/uuid"
)

// DefaultEventCapacity is the event journal capacity used when none is configured.
const DefaultEventCapacity = 1000

// EventJournal is a capacity-bounded list of typed events with the same FIFO
// eviction discipline as the log ring. Events reference components weakly, by
// name only.
type EventJournal struct {
	mu       sync.Mutex
	events   []model.Event
	head     int
	count    int
	capacity int
	recorded uint64
	dropped  uint64
}

// NewEventJournal creates an event journal holding at most capacity events.
func NewEventJournal(capacity int) *EventJournal {
	if capacity <= 0 {
		capacity = DefaultEventCapacity
	}

	return &EventJournal{
		events:   make([]model.Event, capacity),
		capacity: capacity,
	}
}

// Record appends a new event, evicting the oldest when full. Up to four
// auxiliary integers are kept; extras are discarded. A malformed event type
// is counted as dropped and otherwise ignored.
func (j *EventJournal) Record(evType model.EventType, component, description string, aux ...int64) model.Event {
	if !evType.Valid() {
		j.mu.Lock()
		j.dropped++
		j.mu.Unlock()
		return model.Event{}
	}

	event := model.Event{
		ID:          uuid.NewString(),
		Type:        evType,
		Timestamp:   time.Now(),
		Component:   truncate(component, model.MaxComponentName),
		Description: truncate(description, model.MaxDescription),
	}
	for i := 0; i < len(aux) && i < model.MaxEventAux; i++ {
		event.Aux[i] = aux[i]
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if j.count == j.capacity {
		j.head = (j.head + 1) % j.capacity
		j.count--
	}

	j.events[(j.head+j.count)%j.capacity] = event
	j.count++
	j.recorded++

	return event
}

// Snapshot returns a copy of the most recent events in insertion order
// (oldest first). A non-positive limit returns all live events.
func (j *EventJournal) Snapshot(limit int) []model.Event {
	j.mu.Lock()
	defer j.mu.Unlock()

	n := j.count
	if limit > 0 && limit < n {
		n = limit
	}

	result := make([]model.Event, n)
	start := j.count - n
	for i := 0; i < n; i++ {
		result[i] = j.events[(j.head+start+i)%j.capacity]
	}

	return result
}

// Len returns the current number of live events.
func (j *EventJournal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.count
}

// Capacity returns the configured maximum number of events.
func (j *EventJournal) Capacity() int {
	return j.capacity
}

// Recorded returns the cumulative count of events stored since creation.
func (j *EventJournal) Recorded() uint64 {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.recorded
}

// Dropped returns the count of malformed events that were discarded.
func (j *EventJournal) Dropped() uint64 {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.dropped
}
