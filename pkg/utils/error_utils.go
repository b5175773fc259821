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
)

// ErrorDetailLevel represents the level of error detail to display
type ErrorDetailLevel int

const (
	// ErrorDetailNone suppresses printing, errors still carry their location
	ErrorDetailNone ErrorDetailLevel = iota
	// ErrorDetailSimple adds file, line and function (default)
	ErrorDetailSimple
	// ErrorDetailFull adds the full location and a stack trace
	ErrorDetailFull
)

// errorOutput receives PrintErrorAndReturn output.
var errorOutput io.Writer = os.Stderr

// getErrorDetailLevel reads ERROR_DETAIL_LEVEL.
func getErrorDetailLevel() ErrorDetailLevel {
	switch strings.ToLower(os.Getenv("ERROR_DETAIL_LEVEL")) {
	case "none":
		return ErrorDetailNone
	case "full":
		return ErrorDetailFull
	default:
		return ErrorDetailSimple
	}
}

// locatedError keeps the original error reachable through errors.Is/As.
type locatedError struct {
	msg string
	err error
}

func (e *locatedError) Error() string { return e.msg }
func (e *locatedError) Unwrap() error { return e.err }

func formatError(err error, skip int) error {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return &locatedError{msg: fmt.Sprintf("error occurred: %v", err), err: err}
	}
	fnName := "unknown"
	if fn := runtime.FuncForPC(pc); fn != nil {
		fnName = fn.Name()
	}

	if getErrorDetailLevel() == ErrorDetailFull {
		buf := make([]byte, 4096)
		n := runtime.Stack(buf, false)
		stack := strings.SplitN(string(buf[:n]), "\n", 2)
		trace := ""
		if len(stack) == 2 {
			trace = stack[1]
		}
		return &locatedError{err: err, msg: fmt.Sprintf(`
Error Location:
  Full Path: %s
  File: %s
  Line: %d
  Function: %s
Error Details:
  %v
Stack Trace:
%s`, file, filepath.Base(file), line, fnName, err, trace)}
	}

	return &locatedError{err: err, msg: fmt.Sprintf("%s:%d [%s]: %v",
		filepath.Base(file), line, filepath.Base(fnName), err)}
}

// ErrorWithLocation wraps an error with the caller's location.
func ErrorWithLocation(err error) error {
	if err == nil {
		return nil
	}
	return formatError(err, 2)
}

// PrintErrorAndReturn prints the located error unless ERROR_DETAIL_LEVEL=none and returns it
func PrintErrorAndReturn(err error) error {
	if err == nil {
		return nil
	}
	wrapped := formatError(err, 2)
	if getErrorDetailLevel() != ErrorDetailNone {
		fmt.Fprintln(errorOutput, wrapped)
	}
	return wrapped
}

// RedactError replaces every non-empty secret in err's message with a mask.
// Transport errors from net/http quote the full request URL, which for
// player_api.php includes the subscriber's password.
func RedactError(err error, secrets ...string) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	changed := false
	for _, s := range secrets {
		if s == "" || !strings.Contains(msg, s) {
			continue
		}
		msg = strings.ReplaceAll(msg, s, MaskString(s))
		changed = true
	}
	if !changed {
		return err
	}
	return &redactedError{msg: msg, err: err}
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }
