/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LevelForVerbosity maps a cumulative -v count onto a zerolog level.
func LevelForVerbosity(verbosity int) zerolog.Level {
	switch {
	case verbosity >= 2:
		return zerolog.TraceLevel
	case verbosity == 1:
		return zerolog.DebugLevel
	default:
		return zerolog.InfoLevel
	}
}

// Setup configures zerolog for the process. Logs go to stderr so that
// command output on stdout stays machine readable.
func Setup(verbosity int) zerolog.Logger {
	return SetupWithWriter(verbosity, os.Stderr)
}

// SetupWithWriter configures zerolog with a console writer on w.
func SetupWithWriter(verbosity int, w io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	consoleWriter := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "2006-01-02 15:04:05.000",
	}

	logger := zerolog.New(consoleWriter).With().Timestamp().Caller().Logger().Level(LevelForVerbosity(verbosity))
	log.Logger = logger
	return logger
}

// Announce logs the active profile and level at warn so they are always visible.
func Announce(logger zerolog.Logger, profile string) {
	logger.Warn().Msgf("Using profile %s", profile)
	logger.Warn().Msgf("Log level %s", strings.ToUpper(logger.GetLevel().String()))
}
