package model

import (
	"encoding/json"
	"time"
)

// Size limits for bounded fields. Strings crossing the control boundary are
// truncated to these before storage.
const (
	MaxComponentName = 31
	MaxCallerName    = 31
	MaxMessageLen    = 255
	MaxDescription   = 127
	MaxEventAux      = 4
)

// ComponentState represents the lifecycle state of a monitored component.
// Values are wire-stable; do not reorder.
type ComponentState uint8

const (
	// StateInactive indicates the component is registered but not running
	StateInactive ComponentState = iota
	// StateInitializing indicates the component is starting up
	StateInitializing
	// StateActive indicates the component is running and heartbeating
	StateActive
	// StateDegraded indicates the component missed its heartbeat window
	StateDegraded
	// StateFailed indicates the component stayed degraded past the failure threshold
	StateFailed
)

var stateNames = map[ComponentState]string{
	StateInactive:     "INACTIVE",
	StateInitializing: "INITIALIZING",
	StateActive:       "ACTIVE",
	StateDegraded:     "DEGRADED",
	StateFailed:       "FAILED",
}

func (s ComponentState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// Valid reports whether s is one of the defined states.
func (s ComponentState) Valid() bool {
	_, ok := stateNames[s]
	return ok
}

func (s ComponentState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// LogLevel is the ordered severity of a log entry.
// Values are wire-stable; do not reorder.
type LogLevel uint8

const (
	LevelTrace LogLevel = iota
	LevelDebug
	LevelInfo
	LevelNotice
	LevelWarning
	LevelError
	LevelCritical
	LevelAlert
	LevelEmergency
)

var levelNames = map[LogLevel]string{
	LevelTrace:     "TRACE",
	LevelDebug:     "DEBUG",
	LevelInfo:      "INFO",
	LevelNotice:    "NOTICE",
	LevelWarning:   "WARNING",
	LevelError:     "ERROR",
	LevelCritical:  "CRITICAL",
	LevelAlert:     "ALERT",
	LevelEmergency: "EMERGENCY",
}

func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "UNKNOWN"
}

// Valid reports whether l is one of the defined levels.
func (l LogLevel) Valid() bool {
	_, ok := levelNames[l]
	return ok
}

func (l LogLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// LogCategory classifies the subsystem a log entry originated from.
// Values are wire-stable; do not reorder.
type LogCategory uint8

const (
	CategorySystem LogCategory = iota
	CategoryComponent
	CategoryHealth
	CategoryPerformance
	CategorySecurity
	CategoryNetwork
	CategoryStorage
	CategoryMemory
	CategoryProcess
	CategoryKernel
	CategoryUser
)

var categoryNames = map[LogCategory]string{
	CategorySystem:      "system",
	CategoryComponent:   "component",
	CategoryHealth:      "health",
	CategoryPerformance: "performance",
	CategorySecurity:    "security",
	CategoryNetwork:     "network",
	CategoryStorage:     "storage",
	CategoryMemory:      "memory",
	CategoryProcess:     "process",
	CategoryKernel:      "kernel",
	CategoryUser:        "user",
}

func (c LogCategory) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether c is one of the defined categories.
func (c LogCategory) Valid() bool {
	_, ok := categoryNames[c]
	return ok
}

func (c LogCategory) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// EventType represents the type of a system event.
// Values are wire-stable; do not reorder.
type EventType uint8

const (
	// EventComponentRegistered indicates a component joined the registry
	EventComponentRegistered EventType = iota
	// EventStateChange indicates a component changed lifecycle state
	EventStateChange
	// EventAggregateLevelChange indicates the aggregate health index moved
	EventAggregateLevelChange
	// EventHealthCheck indicates a sweep of the registry completed
	EventHealthCheck
	// EventError indicates an error was reported
	EventError
	// EventWarning indicates a warning was reported
	EventWarning
	// EventInfo indicates an informational occurrence
	EventInfo
)

var eventTypeNames = map[EventType]string{
	EventComponentRegistered:  "COMPONENT_REGISTERED",
	EventStateChange:          "STATE_CHANGE",
	EventAggregateLevelChange: "AGGREGATE_LEVEL_CHANGE",
	EventHealthCheck:          "HEALTH_CHECK",
	EventError:                "ERROR",
	EventWarning:              "WARNING",
	EventInfo:                 "INFO",
}

func (e EventType) String() string {
	if name, ok := eventTypeNames[e]; ok {
		return name
	}
	return "UNKNOWN"
}

// Valid reports whether e is one of the defined event types.
func (e EventType) Valid() bool {
	_, ok := eventTypeNames[e]
	return ok
}

func (e EventType) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.String())
}

// LogEntry is a single structured log record held by the log ring. Messages
// arrive already formatted; no deferred formatting happens after append.
type LogEntry struct {
	Level      LogLevel    `json:"level"`
	Category   LogCategory `json:"category"`
	Timestamp  time.Time   `json:"timestamp"`
	CallerID   int32       `json:"caller_id"`
	CallerName string      `json:"caller_name"`
	Message    string      `json:"message"`
}

// Event is a discrete typed notification, distinct from the log stream.
// Component is a weak reference by name; the component may have been
// unregistered by the time the event is read.
type Event struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	Component   string    `json:"component,omitempty"`
	Description string    `json:"description"`
	Aux         [4]int64  `json:"aux"`
}

// ComponentView is a read-only copy of a registry entry. No live references
// to registry internals leak through it.
type ComponentView struct {
	Name          string         `json:"name"`
	State         ComponentState `json:"state"`
	Enabled       bool           `json:"enabled"`
	HealthScore   int            `json:"health_score"`
	ErrorCount    uint64         `json:"error_count"`
	WarningCount  uint64         `json:"warning_count"`
	LastHeartbeat time.Time      `json:"last_heartbeat"`
	RegisteredAt  time.Time      `json:"registered_at"`
}

// SystemMetrics is a point-in-time aggregate snapshot. Live counts are
// current occupancy; total counts are cumulative since startup.
type SystemMetrics struct {
	TotalComponents      int       `json:"total_components"`
	ActiveComponents     int       `json:"active_components"`
	DegradedComponents   int       `json:"degraded_components"`
	FailedComponents     int       `json:"failed_components"`
	AggregateHealthIndex int       `json:"aggregate_health_index"`
	LiveLogEntries       int       `json:"live_log_entries"`
	TotalLogEntries      uint64    `json:"total_log_entries"`
	DroppedLogEntries    uint64    `json:"dropped_log_entries"`
	LiveEvents           int       `json:"live_events"`
	TotalEvents          uint64    `json:"total_events"`
	DroppedEvents        uint64    `json:"dropped_events"`
	UptimeSeconds        int64     `json:"uptime_seconds"`
	StartedAt            time.Time `json:"started_at"`
	LastHealthCheck      time.Time `json:"last_health_check"`
}
