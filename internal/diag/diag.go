// Package diag is the process-wide diagnostic sink shared by the backtest
// and live paths. Messages go to a single replaceable callback; with no
// callback installed they are silently dropped.
package diag

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Level classifies diagnostic messages.
type Level uint8

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
	LevelSignal
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARNING"
	case LevelError:
		return "ERROR"
	case LevelSignal:
		return "SIGNAL"
	default:
		return "UNKNOWN"
	}
}

// Callback receives every diagnostic message. Invocations may come from any
// worker goroutine.
type Callback func(level Level, msg string)

var (
	mu       sync.Mutex
	callback Callback
)

// SetCallback replaces the active sink. Pass nil to discard messages.
// Replacement serializes against in-flight Log calls.
func SetCallback(cb Callback) {
	mu.Lock()
	defer mu.Unlock()
	callback = cb
}

// Log delivers a message to the active callback, if any.
func Log(level Level, msg string) {
	mu.Lock()
	defer mu.Unlock()
	if callback != nil {
		callback(level, msg)
	}
}

// Logf is Log with fmt-style formatting.
func Logf(level Level, format string, args ...any) {
	Log(level, fmt.Sprintf(format, args...))
}

// ZerologCallback adapts a zerolog logger into a Callback. SIGNAL messages
// are logged at info level tagged with a signal channel marker.
func ZerologCallback(logger zerolog.Logger) Callback {
	return func(level Level, msg string) {
		switch level {
		case LevelSignal:
			logger.Info().Str("channel", "signal").Msg(msg)
		case LevelWarning:
			logger.Warn().Msg(msg)
		case LevelError:
			logger.Error().Msg(msg)
		default:
			logger.Info().Msg(msg)
		}
	}
}
