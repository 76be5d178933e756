// Package logger provides component-scoped structured logging for riskdesk.
// All services log through the *CF helpers (component + fields) so every line
// carries the emitting component name.
package logger

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu   sync.RWMutex
	base *slog.Logger
)

// Setup initializes the process logger at the given level.
// Unknown levels fall back to INFO. Safe to call more than once; the most
// recent call wins.
func Setup(level string) {
	var l slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		l = slog.LevelDebug
	case "WARN":
		l = slog.LevelWarn
	case "ERROR":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: l})

	mu.Lock()
	base = slog.New(handler)
	mu.Unlock()
}

func get() *slog.Logger {
	mu.RLock()
	l := base
	mu.RUnlock()
	if l == nil {
		Setup("INFO")
		mu.RLock()
		l = base
		mu.RUnlock()
	}
	return l
}

func attrs(component string, fields map[string]interface{}) []any {
	out := make([]any, 0, 2+len(fields)*2)
	out = append(out, "component", component)
	for k, v := range fields {
		out = append(out, k, v)
	}
	return out
}

// DebugCF logs at debug level with a component tag and structured fields.
func DebugCF(component, msg string, fields map[string]interface{}) {
	get().Debug(msg, attrs(component, fields)...)
}

// InfoCF logs at info level with a component tag and structured fields.
func InfoCF(component, msg string, fields map[string]interface{}) {
	get().Info(msg, attrs(component, fields)...)
}

// WarnCF logs at warn level with a component tag and structured fields.
func WarnCF(component, msg string, fields map[string]interface{}) {
	get().Warn(msg, attrs(component, fields)...)
}

// ErrorCF logs at error level with a component tag and structured fields.
func ErrorCF(component, msg string, fields map[string]interface{}) {
	get().Error(msg, attrs(component, fields)...)
}
