// Package observability contains logging and metrics setup for the
// connector and its tools.
package observability

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/chocoteam/cpp-integration/pkg/config"
)

// SetupLogger builds the process logger from c, installs it as the zap global
// and routes the stdlib log package through it. Callers defer Sync.
func SetupLogger(c config.LogConfig) (*zap.Logger, error) {
	enc := newEncoder(c.Format, c.Development)
	level := zap.NewAtomicLevelAt(parseLevel(c.Level))

	outs := c.Outputs
	if len(outs) == 0 {
		outs = []string{"stderr"}
	}
	cores := make([]zapcore.Core, 0, len(outs))
	for _, out := range outs {
		ws, err := openOutput(out, c)
		if err != nil {
			return nil, err
		}
		cores = append(cores, zapcore.NewCore(enc, ws, level))
	}

	opts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel)}
	if c.Development {
		opts = append(opts, zap.Development())
	}
	lg := zap.New(zapcore.NewTee(cores...), opts...)
	zap.ReplaceGlobals(lg)
	_, _ = zap.RedirectStdLogAt(lg, zap.InfoLevel)
	return lg, nil
}

// Or returns l, or the global logger when l is nil.
func Or(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.L()
	}
	return l
}

// parseLevel accepts zap level names plus "warning"; anything else is info.
func parseLevel(s string) zapcore.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zapcore.ParseLevel(s)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

func newEncoder(format string, dev bool) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	if dev {
		ec = zap.NewDevelopmentEncoderConfig()
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	if strings.EqualFold(format, "json") {
		return zapcore.NewJSONEncoder(ec)
	}
	return zapcore.NewConsoleEncoder(ec)
}

// openOutput maps stdout and stderr to the process streams. Anything else is
// a file path, rotated with lumberjack when rotation is enabled.
func openOutput(out string, c config.LogConfig) (zapcore.WriteSyncer, error) {
	switch strings.ToLower(out) {
	case "stdout":
		return zapcore.Lock(os.Stdout), nil
	case "stderr":
		return zapcore.Lock(os.Stderr), nil
	}
	if r := c.Rotation; r.Enable {
		name := out
		if strings.TrimSpace(r.Filename) != "" {
			name = r.Filename
		}
		return zapcore.AddSync(&lumberjack.Logger{
			Filename:   name,
			MaxSize:    max(r.MaxSizeMB, 10),
			MaxBackups: max(r.MaxBackups, 1),
			MaxAge:     max(r.MaxAgeDays, 7),
			Compress:   r.Compress,
		}), nil
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return nil, fmt.Errorf("log output %s: %w", out, err)
	}
	f, err := os.OpenFile(out, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("log output %s: %w", out, err)
	}
	return zapcore.AddSync(f), nil
}
