// Package log provides structured logging for dialog using zerolog.
//
// Core log lines carry a component field: WithComponent builds a logger
// with it set, and pkg/branch adds component=branch to its WithBranch
// logger. Init must be called once during process
// startup (by cmd/dialog and cmd/dialog-diagnose) before any logging
// happens on another goroutine.
package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the global logger instance.
var Logger zerolog.Logger

// Level represents a configured log level.
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// Config holds logging configuration.
type Config struct {
	Level      Level
	JSONOutput bool
	Output     io.Writer
}

// Init initializes the global logger.
func Init(cfg Config) {
	var level zerolog.Level
	switch cfg.Level {
	case DebugLevel:
		level = zerolog.DebugLevel
	case InfoLevel:
		level = zerolog.InfoLevel
	case WarnLevel:
		level = zerolog.WarnLevel
	case ErrorLevel:
		level = zerolog.ErrorLevel
	default:
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	if cfg.JSONOutput {
		Logger = zerolog.New(output).With().Timestamp().Logger()
	} else {
		Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	}
}

// WithComponent creates a child logger tagged with the given component,
// e.g. "prolly", "branch", "sync", "router".
func WithComponent(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}

// WithBranch creates a child logger tagged with a branch id.
func WithBranch(branchID string) zerolog.Logger {
	return Logger.With().Str("branch", branchID).Logger()
}

// WithSubject creates a child logger tagged with a subject DID.
func WithSubject(did string) zerolog.Logger {
	return Logger.With().Str("subject", did).Logger()
}

// WithAddress creates a child logger tagged with a remote address.
func WithAddress(address string) zerolog.Logger {
	return Logger.With().Str("address", address).Logger()
}

func Info(msg string)  { Logger.Info().Msg(msg) }
func Debug(msg string) { Logger.Debug().Msg(msg) }
func Warn(msg string)  { Logger.Warn().Msg(msg) }
func Error(msg string) { Logger.Error().Msg(msg) }

func Errorf(format string, err error) { Logger.Error().Err(err).Msg(format) }

func Fatal(msg string) { Logger.Fatal().Msg(msg) }
