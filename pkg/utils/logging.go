/*
 * xtream-player is a web IPTV player backend for Xtream Codes panels.
 * Copyright (C) 2025  Lucas Duport
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// LogConfig describes how the process logger is built.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json or console
	Debug  bool   // forces debug level, same as DEBUG_LOGGING=true
	Output io.Writer
}

var (
	logMu  sync.RWMutex
	logger zerolog.Logger
)

func init() {
	InitLogging(LogConfig{
		Level:  os.Getenv("LOG_LEVEL"),
		Format: GetEnvOrDefault("LOG_FORMAT", "console"),
		Debug:  os.Getenv("DEBUG_LOGGING") == "true",
	})
}

// InitLogging (re)configures the process logger. Safe to call more than once.
func InitLogging(cfg LogConfig) {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if strings.ToLower(cfg.Format) != "json" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "2006-01-02 15:04:05.000"}
	}

	level := parseLevel(cfg.Level)
	if cfg.Debug {
		level = zerolog.DebugLevel
	}

	logMu.Lock()
	defer logMu.Unlock()
	zerolog.TimeFieldFormat = time.RFC3339
	logger = zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// InfoLog logs an info message
func InfoLog(format string, v ...interface{}) {
	logWithCaller(zerolog.InfoLevel, format, v...)
}

// WarnLog logs a warning message
func WarnLog(format string, v ...interface{}) {
	logWithCaller(zerolog.WarnLevel, format, v...)
}

// DebugLog logs a debug message if debug logging is enabled
func DebugLog(format string, v ...interface{}) {
	logWithCaller(zerolog.DebugLevel, format, v...)
}

// ErrorLog logs an error message
func ErrorLog(format string, v ...interface{}) {
	logWithCaller(zerolog.ErrorLevel, format, v...)
}

func logWithCaller(level zerolog.Level, format string, v ...interface{}) {
	logMu.RLock()
	l := logger
	logMu.RUnlock()

	ev := l.WithLevel(level)
	if ev == nil {
		return
	}
	if _, file, line, ok := runtime.Caller(2); ok {
		ev = ev.Str("caller", fmt.Sprintf("%s:%d", filepath.Base(file), line))
	}
	ev.Msgf(format, v...)
}
