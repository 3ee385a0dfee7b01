// Package logger builds the zap logger the CLI hands to every component.
package logger

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Options configures New.
type Options struct {
	// Verbose enables debug output.
	Verbose bool
	// Quiet limits output to warnings and errors. Verbose wins over Quiet.
	Quiet bool
	// Format is FormatConsole or FormatJSON; console when empty.
	Format string
	// Color colors console level names.
	Color bool
	// Output defaults to stderr.
	Output io.Writer
}

// Level maps the verbosity flags to a zap level.
//
//	-v       -> DebugLevel
//	(none)   -> InfoLevel
//	-q       -> WarnLevel
func Level(verbose, quiet bool) zapcore.Level {
	switch {
	case verbose:
		return zapcore.DebugLevel
	case quiet:
		return zapcore.WarnLevel
	}
	return zapcore.InfoLevel
}

// New builds a sugared logger for opts.
func New(opts Options) (*zap.SugaredLogger, error) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	var enc zapcore.Encoder
	switch opts.Format {
	case "", FormatConsole:
		cfg := zapcore.EncoderConfig{
			MessageKey:       "msg",
			LevelKey:         "level",
			NameKey:          "logger",
			EncodeLevel:      zapcore.CapitalLevelEncoder,
			ConsoleSeparator: " ",
		}
		if opts.Color {
			cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		enc = zapcore.NewConsoleEncoder(cfg)
	case FormatJSON:
		cfg := zap.NewProductionEncoderConfig()
		cfg.TimeKey = "ts"
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(cfg)
	default:
		return nil, errors.WithHintf(errors.Newf("unknown log format %q", opts.Format),
			"use %q or %q", FormatConsole, FormatJSON)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(out), Level(opts.Verbose, opts.Quiet))
	return zap.New(core).Sugar(), nil
}

// Nop returns a logger that discards everything.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
