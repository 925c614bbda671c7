package gate

import (
	"bytes"
	"encoding/binary"

	"github.com/TLimoges33/Syn-OS-sub017/internal/model"
)

// Command opcodes. Values are wire-stable; do not reorder.
const (
	OpGetStatus uint16 = iota + 1
	OpRegisterComponent
	OpUpdateHealth
	OpLogEvent
	OpSetLogLevel
)

// Ack codes returned in the first field of ackFrame.
const (
	AckOK uint32 = 0
)

// All boundary payloads are fixed-layout, fixed-width, little-endian structs.
// Every field is explicitly sized and padded; nothing pointer-shaped crosses
// the boundary. Strings are fixed-capacity and null-terminated.

// statusRequest is the get-status payload. Flags are reserved.
type statusRequest struct {
	Flags uint32
}

// registerRequest is the register-component payload.
type registerRequest struct {
	Name     [32]byte
	State    uint8
	Enabled  uint8
	Reserved [2]byte
}

// updateHealthRequest is the update-health payload. Absolute selects whether
// Value replaces the score or is applied as a delta.
type updateHealthRequest struct {
	Name     [32]byte
	Absolute uint8
	Reserved [3]byte
	Value    int32
}

// logEventRequest is the log-event payload.
type logEventRequest struct {
	Level      uint8
	Category   uint8
	Reserved   [2]byte
	CallerID   int32
	CallerName [32]byte
	Message    [256]byte
}

// setLogLevelRequest is the set-log-level payload.
type setLogLevelRequest struct {
	Level    uint8
	Reserved [3]byte
}

// ackFrame is the response to every mutating command.
type ackFrame struct {
	Code  uint32
	Value int32
}

// statusFrame is the fixed-layout encoding of SystemMetrics handed across
// the boundary by get-status and by offset reads.
type statusFrame struct {
	TotalComponents      uint32
	ActiveComponents     uint32
	DegradedComponents   uint32
	FailedComponents     uint32
	AggregateHealthIndex uint32
	LiveLogEntries       uint32
	LiveEvents           uint32
	Reserved             uint32
	TotalLogEntries      uint64
	DroppedLogEntries    uint64
	TotalEvents          uint64
	DroppedEvents        uint64
	UptimeSeconds        int64
	StartedAtUnix        int64
	LastHealthCheckUnix  int64
}

// StatusFrameSize is the encoded size of the metrics structure visible to
// offset reads.
var StatusFrameSize = binary.Size(statusFrame{})

// decode validates that the payload is exactly the fixed size of out before
// copying it. A short or oversized payload is a boundary-copy failure and
// leaves out untouched.
func decode(payload []byte, out any) error {
	want := binary.Size(out)
	if want < 0 || len(payload) != want {
		return ErrBadPayload
	}
	return binary.Read(bytes.NewReader(payload), binary.LittleEndian, out)
}

func encode(in any) []byte {
	var buf bytes.Buffer
	// Fixed-width struct of scalars; cannot fail.
	binary.Write(&buf, binary.LittleEndian, in)
	return buf.Bytes()
}

// cstring extracts a null-terminated string from a fixed-capacity field.
func cstring(field []byte) string {
	if i := bytes.IndexByte(field, 0); i >= 0 {
		return string(field[:i])
	}
	return string(field)
}

// putCString copies s into a fixed-capacity field, truncating to leave room
// for the terminator.
func putCString(field []byte, s string) {
	n := copy(field, s)
	if n == len(field) {
		n--
	}
	for i := n; i < len(field); i++ {
		field[i] = 0
	}
}

func encodeStatus(metrics model.SystemMetrics) []byte {
	return encode(&statusFrame{
		TotalComponents:      uint32(metrics.TotalComponents),
		ActiveComponents:     uint32(metrics.ActiveComponents),
		DegradedComponents:   uint32(metrics.DegradedComponents),
		FailedComponents:     uint32(metrics.FailedComponents),
		AggregateHealthIndex: uint32(metrics.AggregateHealthIndex),
		LiveLogEntries:       uint32(metrics.LiveLogEntries),
		LiveEvents:           uint32(metrics.LiveEvents),
		TotalLogEntries:      metrics.TotalLogEntries,
		DroppedLogEntries:    metrics.DroppedLogEntries,
		TotalEvents:          metrics.TotalEvents,
		DroppedEvents:        metrics.DroppedEvents,
		UptimeSeconds:        metrics.UptimeSeconds,
		StartedAtUnix:        metrics.StartedAt.Unix(),
		LastHealthCheckUnix:  metrics.LastHealthCheck.Unix(),
	})
}
