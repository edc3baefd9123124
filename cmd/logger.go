package cmd

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/s0up4200/areena/config"
)

// setupLogger configures the zerolog logger. verbosity and quiet come from
// the command line and take precedence over the configured level.
func setupLogger(cfg config.LoggingConfig, verbosity int, quiet bool) zerolog.Logger {
	return newLogger(cfg, verbosity, quiet, os.Stderr, isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()))
}

func newLogger(cfg config.LoggingConfig, verbosity int, quiet bool, out io.Writer, tty bool) zerolog.Logger {
	level := logLevel(cfg.Level, verbosity, quiet)
	zerolog.SetGlobalLevel(level)

	var console io.Writer = out
	if cfg.Format != "json" {
		console = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			NoColor:    !cfg.Color || !tty,
		}
	}

	writer := console
	if cfg.File != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
		}
		writer = zerolog.MultiLevelWriter(console, file)
	}

	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

func logLevel(configured string, verbosity int, quiet bool) zerolog.Level {
	switch {
	case verbosity > 1:
		return zerolog.TraceLevel
	case verbosity == 1:
		return zerolog.DebugLevel
	case quiet:
		return zerolog.WarnLevel
	}

	switch strings.ToLower(configured) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
