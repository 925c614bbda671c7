package monitor

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/TLimoges33/Syn-OS-sub017/internal/model"
)

// Policy holds the tunable scoring parameters applied by the sweep loop.
// The point values are policy, not architecture; they can be replaced
// wholesale without touching the loop.
type Policy struct {
	// TickInterval is the period between sweeps.
	TickInterval time.Duration
	// StaleAfter is the maximum heartbeat gap before a component is stale.
	StaleAfter time.Duration
	// DegradePenalty is subtracted from the health score on active→degraded.
	DegradePenalty int
	// UnhealthyBelow is the score under which a component drags the
	// aggregate index down.
	UnhealthyBelow int
	// AggregateStep is subtracted from the aggregate index per unhealthy
	// component.
	AggregateStep int
	// FailAfter is the number of consecutive stale sweeps before a degraded
	// component fails. Zero disables the failed transition.
	FailAfter int
}

// DefaultPolicy returns the reference scoring parameters.
func DefaultPolicy() Policy {
	return Policy{
		TickInterval:   time.Second,
		StaleAfter:     5 * time.Second,
		DegradePenalty: 20,
		UnhealthyBelow: 50,
		AggregateStep:  5,
		FailAfter:      5,
	}
}

// Config is the file-loadable monitor configuration. Durations are
// expressed in milliseconds for plain JSON compatibility.
type Config struct {
	LogCapacity    int    `json:"log_capacity"`
	EventCapacity  int    `json:"event_capacity"`
	TickIntervalMS int    `json:"tick_interval_ms"`
	StaleAfterMS   int    `json:"stale_after_ms"`
	DegradePenalty int    `json:"degrade_penalty"`
	UnhealthyBelow int    `json:"unhealthy_below"`
	AggregateStep  int    `json:"aggregate_step"`
	FailAfter      int    `json:"fail_after"`
	MinLogLevel    string `json:"min_log_level"`
}

// DefaultConfig returns the configuration used when no file is provided.
func DefaultConfig() Config {
	policy := DefaultPolicy()

	return Config{
		LogCapacity:    DefaultLogCapacity,
		EventCapacity:  DefaultEventCapacity,
		TickIntervalMS: int(policy.TickInterval / time.Millisecond),
		StaleAfterMS:   int(policy.StaleAfter / time.Millisecond),
		DegradePenalty: policy.DegradePenalty,
		UnhealthyBelow: policy.UnhealthyBelow,
		AggregateStep:  policy.AggregateStep,
		FailAfter:      policy.FailAfter,
		MinLogLevel:    model.LevelTrace.String(),
	}
}

// LoadConfig reads a JSON configuration file over the defaults.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("error reading config file: %w", err)
	}

	if err := json.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return config, err
	}

	return config, nil
}

// Validate checks the configuration for values the monitor cannot run with.
func (c Config) Validate() error {
	if c.LogCapacity <= 0 {
		return fmt.Errorf("log_capacity must be positive, got %d", c.LogCapacity)
	}
	if c.EventCapacity <= 0 {
		return fmt.Errorf("event_capacity must be positive, got %d", c.EventCapacity)
	}
	if c.TickIntervalMS <= 0 {
		return fmt.Errorf("tick_interval_ms must be positive, got %d", c.TickIntervalMS)
	}
	if c.StaleAfterMS <= 0 {
		return fmt.Errorf("stale_after_ms must be positive, got %d", c.StaleAfterMS)
	}
	if c.DegradePenalty < 0 || c.AggregateStep < 0 || c.FailAfter < 0 {
		return fmt.Errorf("penalty values must not be negative")
	}
	if _, err := model.ParseLevel(c.MinLogLevel); err != nil {
		return fmt.Errorf("min_log_level: %w", err)
	}

	return nil
}

// Policy converts the file representation into sweep parameters.
func (c Config) Policy() Policy {
	return Policy{
		TickInterval:   time.Duration(c.TickIntervalMS) * time.Millisecond,
		StaleAfter:     time.Duration(c.StaleAfterMS) * time.Millisecond,
		DegradePenalty: c.DegradePenalty,
		UnhealthyBelow: c.UnhealthyBelow,
		AggregateStep:  c.AggregateStep,
		FailAfter:      c.FailAfter,
	}
}
