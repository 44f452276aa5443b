// Package logging writes process logs as one JSON object per line.
package logging

import (
	"io"
	"os"
	"sort"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Fields map[string]any

var std atomic.Pointer[zap.Logger]

func init() {
	SetOutput(os.Stderr)
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
	}
}

// SetOutput redirects process logs, mainly for tests and the simulator.
func SetOutput(w io.Writer) {
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), zapcore.AddSync(w), zapcore.InfoLevel)
	std.Store(zap.New(core))
}

// Sync flushes buffered entries. Call it before the process exits.
func Sync() {
	_ = std.Load().Sync()
}

func Info(msg string, fields Fields) {
	std.Load().Info(msg, zapFields(fields, nil)...)
}

func Warn(msg string, fields Fields) {
	std.Load().Warn(msg, zapFields(fields, nil)...)
}

// Error logs msg with the error text under "error".
func Error(msg string, err error, fields Fields) {
	std.Load().Error(msg, zapFields(fields, err)...)
}

// Fatal logs like Error and exits the process.
func Fatal(msg string, err error, fields Fields) {
	std.Load().Fatal(msg, zapFields(fields, err)...)
}

func zapFields(fields Fields, err error) []zap.Field {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]zap.Field, 0, len(keys)+1)
	for _, k := range keys {
		out = append(out, zap.Any(k, fields[k]))
	}
	if err != nil {
		out = append(out, zap.Error(err))
	}
	return out
}
