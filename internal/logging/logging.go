// Package logging wraps log/slog with the debug-gated attempt logging
// SFE_DEBUG requires, following the teacher's slog-wrapping idiom.
package logging

import (
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
)

var debugEnabled atomic.Bool

// SetDebug toggles verbose structured logging of attempts, timings and
// failure categories. Called once at startup from config.
func SetDebug(enabled bool) {
	debugEnabled.Store(enabled)
	level := slog.LevelInfo
	if enabled {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// DebugEnabled reports whether SFE_DEBUG is active.
func DebugEnabled() bool {
	return debugEnabled.Load()
}

// Error logs an error message, matching the teacher's LogError helper.
func Error(format string, args ...interface{}) {
	slog.Error(fmt.Sprintf(format, args...))
}

// Attempt logs one extraction or poll attempt when SFE_DEBUG is set; a
// no-op otherwise so call sites can log unconditionally without branching.
func Attempt(component, event string, attrs ...any) {
	if !debugEnabled.Load() {
		return
	}
	slog.Debug(event, append([]any{"component", component}, attrs...)...)
}
