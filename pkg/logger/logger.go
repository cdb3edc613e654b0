// Package logger provides a zap-based application logger that stamps
// every record with the service name and, when available, the current
// trace id.
package logger

import (
	"context"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is the minimum severity a logger emits.
type Level int8

// Supported levels, lowest first.
const (
	LevelDebug Level = iota - 1
	LevelInfo
	LevelWarn
	LevelError
)

// TraceIDFn extracts a trace id from the context; it returns "" when no
// trace is active.
type TraceIDFn func(ctx context.Context) string

// Logger wraps zap with context-aware convenience methods.
type Logger struct {
	z         *zap.SugaredLogger
	traceIDFn TraceIDFn
}

// New constructs a JSON logger writing to w at the given minimum level.
func New(w io.Writer, minLevel Level, service string, traceIDFn TraceIDFn) *Logger {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(cfg),
		zapcore.AddSync(w),
		zapcore.Level(minLevel),
	)
	z := zap.New(core).With(zap.String("service", service)).Sugar()
	return &Logger{z: z, traceIDFn: traceIDFn}
}

// Debug logs at debug level with alternating key/value pairs.
func (l *Logger) Debug(ctx context.Context, msg string, kv ...any) {
	l.z.Debugw(msg, l.with(ctx, kv)...)
}

// Info logs at info level with alternating key/value pairs.
func (l *Logger) Info(ctx context.Context, msg string, kv ...any) {
	l.z.Infow(msg, l.with(ctx, kv)...)
}

// Warn logs at warn level with alternating key/value pairs.
func (l *Logger) Warn(ctx context.Context, msg string, kv ...any) {
	l.z.Warnw(msg, l.with(ctx, kv)...)
}

// Error logs at error level with alternating key/value pairs.
func (l *Logger) Error(ctx context.Context, msg string, kv ...any) {
	l.z.Errorw(msg, l.with(ctx, kv)...)
}

// Sync flushes buffered records.
func (l *Logger) Sync() error { return l.z.Sync() }

func (l *Logger) with(ctx context.Context, kv []any) []any {
	if l.traceIDFn == nil {
		return kv
	}
	if id := l.traceIDFn(ctx); id != "" {
		kv = append(kv, "trace_id", id)
	}
	return kv
}
