package trace

import "fmt"

// Level controls logging verbosity.
type Level uint8

const (
	// LevelOff disables logging.
	LevelOff Level = iota
	// LevelError emits only failures.
	LevelError
	// LevelInfo emits command progress and summaries.
	LevelInfo
	// LevelDebug emits everything, including per-request detail.
	LevelDebug
)

// String returns the string representation of Level.
func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelError:
		return "error"
	case LevelInfo:
		return "info"
	case LevelDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// ParseLevel converts a string to a Level.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "off", "OFF":
		return LevelOff, nil
	case "error", "ERROR":
		return LevelError, nil
	case "info", "INFO":
		return LevelInfo, nil
	case "debug", "DEBUG":
		return LevelDebug, nil
	default:
		return LevelOff, fmt.Errorf("invalid log level: %q (expected off|error|info|debug)", s)
	}
}

// Allows reports whether a sink at level l should emit an event at level
// ev.
func (l Level) Allows(ev Level) bool {
	return ev != LevelOff && ev <= l
}
