// Package logging builds the zap loggers used by the commands and services.
package logging

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a JSON logger writing to stderr at the named level
// ("debug", "info", "warn", "error"). An empty level means info.
func New(level string) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if s := strings.TrimSpace(level); s != "" {
		if err := lvl.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
			return nil, fmt.Errorf("log level %q: %w", level, err)
		}
	}

	config := zap.Config{
		Level:       zap.NewAtomicLevelAt(lvl),
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		DisableCaller:    true,
	}
	return config.Build()
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

// Time starts timing the named operation. Call the returned function when the
// operation ends, passing its error slot, to log the duration and outcome.
func Time(l *zap.Logger, op string) func(errp *error) {
	start := time.Now()
	return func(errp *error) {
		fields := []zap.Field{zap.String("op", op), zap.Duration("dur", time.Since(start))}
		if errp != nil && *errp != nil {
			l.Warn("operation failed", append(fields, zap.Error(*errp))...)
			return
		}
		l.Debug("operation done", fields...)
	}
}
