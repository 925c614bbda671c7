// Package gate is the privilege-boundary control interface of the health
// monitor: exclusive open/close, offset reads of the encoded metrics
// snapshot, and a fixed command set with validated fixed-layout payloads.
package gate

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/TLimoges33/Syn-OS-sub017/internal/model"
	"github.com/TLimoges33/Syn-OS-sub017/internal/monitor"
)

var (
	// ErrBusy is returned when Open is attempted while another caller holds
	// the gateway. Contention is expected and benign; it is not logged as
	// an error.
	ErrBusy = errors.New("gateway busy")

	// ErrBadPayload is returned when a command payload fails size or shape
	// validation. No state is mutated.
	ErrBadPayload = errors.New("bad command payload")

	// ErrUnsupported is returned for unknown command opcodes.
	ErrUnsupported = errors.New("unsupported command")
)

// Gateway mediates external access to a Monitor. At most one caller holds it
// open at a time; a second open is rejected immediately with ErrBusy, there
// is no queuing.
type Gateway struct {
	mon    *monitor.Monitor
	logger *slog.Logger

	mu   sync.Mutex
	held bool
}

// New creates a gateway over the given monitor.
func New(mon *monitor.Monitor, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}

	return &Gateway{
		mon:    mon,
		logger: logger,
	}
}

// Open acquires exclusive access. It fails fast with ErrBusy while another
// caller holds the gateway.
func (g *Gateway) Open() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.held {
		return ErrBusy
	}

	g.held = true
	return nil
}

// Close releases exclusivity unconditionally.
func (g *Gateway) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.held = false
}

// Held reports whether the gateway is currently open.
func (g *Gateway) Held() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.held
}

// ReadAt copies bytes of the encoded metrics snapshot into p starting at the
// given offset, supporting partial reads in bounded chunks. An offset at or
// beyond the structure size yields zero bytes, not an error.
func (g *Gateway) ReadAt(p []byte, offset int64) (int, error) {
	if offset < 0 {
		return 0, ErrBadPayload
	}

	frame := encodeStatus(g.mon.Metrics())
	if offset >= int64(len(frame)) {
		return 0, nil
	}

	return copy(p, frame[offset:]), nil
}

// Write accepts and logs the payload at info level. It is reserved for
// future control use and currently has no other effect.
func (g *Gateway) Write(p []byte) (int, error) {
	g.logger.Info("gateway write", "bytes", len(p))

	g.mon.Append(model.LogEntry{
		Level:      model.LevelInfo,
		Category:   model.CategorySystem,
		CallerName: "gateway",
		Message:    "write received on control node",
	})

	return len(p), nil
}

// Command dispatches one of the fixed control operations. Payload size and
// shape are validated before anything is deserialized or acted on; malformed
// input fails with ErrBadPayload and mutates nothing, unknown opcodes fail
// with ErrUnsupported.
func (g *Gateway) Command(op uint16, payload []byte) ([]byte, error) {
	switch op {
	case OpGetStatus:
		return g.getStatus(payload)
	case OpRegisterComponent:
		return g.registerComponent(payload)
	case OpUpdateHealth:
		return g.updateHealth(payload)
	case OpLogEvent:
		return g.logEvent(payload)
	case OpSetLogLevel:
		return g.setLogLevel(payload)
	default:
		return nil, ErrUnsupported
	}
}

func (g *Gateway) getStatus(payload []byte) ([]byte, error) {
	var req statusRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}

	return encodeStatus(g.mon.Metrics()), nil
}

func (g *Gateway) registerComponent(payload []byte) ([]byte, error) {
	var req registerRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}

	state := model.ComponentState(req.State)
	if !state.Valid() {
		return nil, ErrBadPayload
	}

	name := cstring(req.Name[:])
	if err := g.mon.Register(name, state, req.Enabled != 0); err != nil {
		return nil, err
	}

	return encode(&ackFrame{Code: AckOK}), nil
}

func (g *Gateway) updateHealth(payload []byte) ([]byte, error) {
	var req updateHealthRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}

	name := cstring(req.Name[:])

	var (
		score int
		err   error
	)
	if req.Absolute != 0 {
		score, err = g.mon.SetHealth(name, int(req.Value))
	} else {
		score, err = g.mon.AdjustHealth(name, int(req.Value))
	}
	if err != nil {
		return nil, err
	}

	return encode(&ackFrame{Code: AckOK, Value: int32(score)}), nil
}

func (g *Gateway) logEvent(payload []byte) ([]byte, error) {
	var req logEventRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}

	level := model.LogLevel(req.Level)
	category := model.LogCategory(req.Category)
	if !level.Valid() || !category.Valid() {
		return nil, ErrBadPayload
	}

	g.mon.Append(model.LogEntry{
		Level:      level,
		Category:   category,
		CallerID:   req.CallerID,
		CallerName: cstring(req.CallerName[:]),
		Message:    cstring(req.Message[:]),
	})

	return encode(&ackFrame{Code: AckOK}), nil
}

func (g *Gateway) setLogLevel(payload []byte) ([]byte, error) {
	var req setLogLevelRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}

	level := model.LogLevel(req.Level)
	if !level.Valid() {
		return nil, ErrBadPayload
	}

	if err := g.mon.SetLogLevel(level); err != nil {
		return nil, err
	}

	return encode(&ackFrame{Code: AckOK, Value: int32(level)}), nil
}
