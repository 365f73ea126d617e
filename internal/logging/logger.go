// Package logging provides the structured LogSink every component writes
// audit and diagnostic lines through, backed by go.uber.org/zap.
package logging

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Sink is the leveled logging contract every component writes through:
// three channels, each call emitting a single timestamped line. Components
// depend on this interface, never on *Logger directly, so tests can
// substitute a recording fake.
type Sink interface {
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field is a structured key/value attached to a log line.
type Field = zap.Field

// String, Float64, Int, Bool construct Fields; re-exported so callers don't
// need a direct zap import.
func String(key, val string) Field   { return zap.String(key, val) }
func Float64(key string, v float64) Field { return zap.Float64(key, v) }
func Int(key string, v int) Field    { return zap.Int(key, v) }
func Bool(key string, v bool) Field  { return zap.Bool(key, v) }
func Err(err error) Field            { return zap.Error(err) }

// Config selects the logger's level and output encoding.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // "json" or "console"
}

// Logger wraps a zap.Logger to satisfy Sink.
type Logger struct {
	z *zap.Logger
}

// New builds a Logger per cfg. Timestamps are truncated to second precision
// in console mode (local wall clock); JSON mode keeps zap's default ISO8601
// millisecond timestamp for machine consumption.
func New(cfg Config) (*Logger, error) {
	level := zapcore.InfoLevel
	if err := level.Set(strings.ToLower(orDefault(cfg.Level, "info"))); err != nil {
		return nil, fmt.Errorf("logging: invalid level %q: %w", cfg.Level, err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"

	var encoder zapcore.Encoder
	format := strings.ToLower(orDefault(cfg.Format, "console"))
	switch format {
	case "json":
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encCfg)
	default:
		// Local wall-clock, second precision.
		encCfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(t.Local().Format("2006-01-02T15:04:05"))
		}
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(os.Stdout)), level)
	return &Logger{z: zap.New(core)}, nil
}

func (l *Logger) Info(msg string, fields ...Field)  { l.z.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.z.Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...Field) { l.z.Error(msg, fields...) }

// Sync flushes any buffered log entries; call before process exit.
func (l *Logger) Sync() error { return l.z.Sync() }

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
