package monitor

import "errors"

var (
	// ErrDuplicateComponent is returned when registering a name that already exists.
	ErrDuplicateComponent = errors.New("component already registered")

	// ErrUnknownComponent is returned when an operation references a name
	// that is not in the registry.
	ErrUnknownComponent = errors.New("unknown component")

	// ErrInvalidName is returned when a component name is empty or too long.
	ErrInvalidName = errors.New("invalid component name")

	// ErrInvalidLevel is returned when a log level is outside the defined set.
	ErrInvalidLevel = errors.New("invalid log level")

	// ErrInvalidState is returned when a component state is outside the defined set.
	ErrInvalidState = errors.New("invalid component state")

	// ErrAlreadyRunning is returned when Start is called on a running monitor.
	ErrAlreadyRunning = errors.New("monitor already running")
)
