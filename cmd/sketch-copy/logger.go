package main

import (
	"io"

	sketchcopy "github.com/kataras/sketch-copy"
	"github.com/kataras/sketch-copy/pkg/config"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

func newLogger(cfg config.LogConfig, w io.Writer) sketchcopy.Logger {
	if cfg.Format == config.LogFormatJSON {
		zl := zerolog.New(w).Level(cfg.ZerologLevel()).With().Timestamp().Str("app", "sketch-copy").Logger()
		return &jsonLogger{log: zl}
	}
	return &cliLogger{w: w, level: cfg.ZerologLevel()}
}

// cliLogger implements sketchcopy.Logger with colored terminal output.
type cliLogger struct {
	w     io.Writer
	level zerolog.Level
}

func (l *cliLogger) Debugf(format string, args ...any) {
	if l.level <= zerolog.DebugLevel {
		color.New(color.FgHiBlack).Fprintf(l.w, "  "+format+"\n", args...)
	}
}

func (l *cliLogger) Infof(format string, args ...any) {
	if l.level <= zerolog.InfoLevel {
		color.New(color.FgYellow).Fprintf(l.w, format+"\n", args...)
	}
}

func (l *cliLogger) Warnf(format string, args ...any) {
	if l.level <= zerolog.WarnLevel {
		color.New(color.FgYellow).Fprintf(l.w, "⚠ "+format+"\n", args...)
	}
}

func (l *cliLogger) Errorf(format string, args ...any) {
	color.New(color.FgRed).Fprintf(l.w, "✗ "+format+"\n", args...)
}

// jsonLogger implements sketchcopy.Logger with one JSON object per line.
type jsonLogger struct {
	log zerolog.Logger
}

func (l *jsonLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *jsonLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *jsonLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *jsonLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}
