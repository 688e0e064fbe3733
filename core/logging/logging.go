// Package logging is a thin wrapper of zap logging library.
package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvFormat is the environment variable that selects log encoding: "json" (default) or "console".
const EnvFormat = EnvPrefix + "_FORMAT"

var root = newRoot(os.Getenv(EnvFormat))

func newRoot(format string) *zap.Logger {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	var enc zapcore.Encoder
	if strings.EqualFold(format, "console") {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(ec)
	} else {
		enc = zapcore.NewJSONEncoder(ec)
	}
	return zap.New(zapcore.NewCore(enc, zapcore.Lock(os.Stderr), zap.DebugLevel))
}

// New creates a named logger whose level is controlled by PkgLevel.
//
// Every package that logs declares, next to its package docstring:
//
//	var logger = logging.New("foo")
func New(pkg string) *zap.Logger {
	return root.Named(pkg).WithOptions(zap.IncreaseLevel(GetLevel(pkg).al))
}

// Sync flushes buffered log entries.
func Sync() {
	root.Sync()
}
