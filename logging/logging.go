package logging

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is the GPI diagnostic severity scale.
type Level int32

const (
	LevelTrace    Level = 5
	LevelDebug    Level = 10
	LevelInfo     Level = 20
	LevelWarning  Level = 30
	LevelError    Level = 40
	LevelCritical Level = 50
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch {
	case l <= LevelTrace:
		return "trace"
	case l <= LevelDebug:
		return "debug"
	case l <= LevelInfo:
		return "info"
	case l <= LevelWarning:
		return "warning"
	case l <= LevelError:
		return "error"
	default:
		return "critical"
	}
}

// zapLevel maps a GPI level onto the nearest zapcore level.
func (l Level) zapLevel() zapcore.Level {
	switch {
	case l <= LevelDebug:
		return zapcore.DebugLevel
	case l <= LevelInfo:
		return zapcore.InfoLevel
	case l <= LevelWarning:
		return zapcore.WarnLevel
	case l <= LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.DPanicLevel
	}
}

// Handler receives one fully formatted diagnostic record. Installed by the
// embedded interpreter so its own logging machinery sees native records.
type Handler func(name string, level Level, file, function string, line int, msg string)

// FilterFunc decides whether a record at the given level would be emitted.
// It runs before message formatting so suppressed records cost nothing.
type FilterFunc func(name string, level Level) bool

// Bridge routes diagnostic records either to an installed external handler
// or to the native zap fallback sink.
type Bridge struct {
	mu       sync.Mutex
	handler  Handler
	filter   FilterFunc
	fallback *zap.Logger
}

// NewBridge creates a bridge writing to the given fallback logger.
// A nil logger falls back to a nop sink.
func NewBridge(fallback *zap.Logger) *Bridge {
	if fallback == nil {
		fallback = zap.NewNop()
	}
	return &Bridge{fallback: fallback}
}

// SetHandler installs an external handler. Pass nil to restore the native
// fallback sink.
func (b *Bridge) SetHandler(h Handler) {
	b.mu.Lock()
	b.handler = h
	b.mu.Unlock()
}

// SetFilter installs a level-filter predicate. Pass nil to remove filtering.
func (b *Bridge) SetFilter(f FilterFunc) {
	b.mu.Lock()
	b.filter = f
	b.mu.Unlock()
}

// Enabled reports whether a record for the named logger at the given level
// would be emitted. Callers use this to skip expensive argument preparation.
func (b *Bridge) Enabled(name string, level Level) bool {
	b.mu.Lock()
	f := b.filter
	b.mu.Unlock()
	if f == nil {
		return true
	}
	return f(name, level)
}

// Log formats and routes one diagnostic record. The filter predicate is
// consulted before formatting.
func (b *Bridge) Log(name string, level Level, file, function string, line int, format string, args ...any) {
	b.mu.Lock()
	h := b.handler
	f := b.filter
	b.mu.Unlock()

	if f != nil && !f(name, level) {
		return
	}

	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}

	if h != nil {
		h(name, level, file, function, line, msg)
		return
	}

	if ce := b.fallback.Check(level.zapLevel(), msg); ce != nil {
		ce.Write(
			zap.String("logger", name),
			zap.String("file", file),
			zap.String("func", function),
			zap.Int("line", line),
		)
	}
}
