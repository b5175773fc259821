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

package xtream

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorKind classifies adapter failures.
type ErrorKind int

const (
	// Unreachable covers transport failures, timeouts, non-2xx statuses
	// and requests refused by the circuit breaker.
	Unreachable ErrorKind = iota + 1
	// UnexpectedFormat means the body was not JSON or not the expected shape.
	UnexpectedFormat
)

func (k ErrorKind) String() string {
	switch k {
	case Unreachable:
		return "unreachable"
	case UnexpectedFormat:
		return "unexpected format"
	default:
		return "unknown"
	}
}

// AdapterError is returned by every Client call except Categories.
type AdapterError struct {
	Kind   ErrorKind
	Action string
	Status int // HTTP status when one was received
	Err    error
}

func (e *AdapterError) Error() string {
	action := e.Action
	if action == "" {
		action = "auth"
	}
	if e.Status != 0 {
		return fmt.Sprintf("xtream %s: %s (HTTP %d): %v", action, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("xtream %s: %s: %v", action, e.Kind, e.Err)
}

func (e *AdapterError) Unwrap() error { return e.Err }

// Timeout reports whether the upstream did not answer in time.
func (e *AdapterError) Timeout() bool {
	if e.Kind != Unreachable {
		return false
	}
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

// IsKind reports whether err is an AdapterError of kind k.
func IsKind(err error, k ErrorKind) bool {
	var ae *AdapterError
	return errors.As(err, &ae) && ae.Kind == k
}

// statusError is a non-2xx answer.
type statusError struct {
	code int
}

func (e *statusError) Error() string { return fmt.Sprintf("unexpected status code: %d", e.code) }

var errBodyTooLarge = errors.New("response body exceeds size limit")
