package trace

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Setup builds the standard tracer: a text sink on console plus an NDJSON
// sink in a timestamped file under fileDir. Either side can be disabled
// with LevelOff; when both are off the Nop tracer is returned. The cleanup
// function flushes and closes the sinks.
func Setup(console io.Writer, consoleLevel, fileLevel Level, fileDir string) (Tracer, func(), error) {
	var sinks []Tracer

	if consoleLevel > LevelOff {
		sinks = append(sinks, NewStreamTracer(console, consoleLevel, FormatText))
	}

	if fileLevel > LevelOff {
		if fileDir == "" {
			return nil, nil, fmt.Errorf("log file output enabled but no directory configured")
		}
		if err := os.MkdirAll(fileDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory %s: %w", fileDir, err)
		}

		name := fmt.Sprintf("scrobvault_%s.log", time.Now().Format("20060102-150405"))
		f, err := os.OpenFile(filepath.Join(fileDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		sinks = append(sinks, NewStreamTracer(f, fileLevel, FormatNDJSON))
	}

	if len(sinks) == 0 {
		return Nop, func() {}, nil
	}

	tracer := NewMultiTracer(sinks...)
	cleanup := func() {
		_ = tracer.Close() //nolint:errcheck
	}
	return tracer, cleanup, nil
}
