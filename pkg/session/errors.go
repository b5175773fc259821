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

package session

import (
	"errors"
	"fmt"

	"github.com/lucasduport/xtream-player/pkg/xtream"
)

var (
	// ErrSessionNotFound is returned for unknown session ids.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired is returned once for a session found past its
	// expiration; the session is logged out at that point.
	ErrSessionExpired = errors.New("session expired")
)

// AuthErrorKind classifies authentication failures.
type AuthErrorKind int

const (
	// InvalidCredentials means the panel answered without both payloads,
	// or the input was rejected before any request.
	InvalidCredentials AuthErrorKind = iota + 1
	// Network covers transport failures and non-2xx statuses.
	Network
	// Timeout means the panel did not answer within the auth timeout.
	Timeout
)

func (k AuthErrorKind) String() string {
	switch k {
	case InvalidCredentials:
		return "invalid credentials"
	case Network:
		return "network error"
	case Timeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// AuthError is returned by every failed authentication.
type AuthError struct {
	Kind AuthErrorKind
	Err  error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: %s: %v", e.Kind, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// IsAuthKind reports whether err is an AuthError of kind k.
func IsAuthKind(err error, k AuthErrorKind) bool {
	var ae *AuthError
	return errors.As(err, &ae) && ae.Kind == k
}

// authError maps an adapter failure onto the authentication taxonomy.
func authError(err error) *AuthError {
	var ae *xtream.AdapterError
	if errors.As(err, &ae) {
		switch {
		case ae.Kind == xtream.UnexpectedFormat:
			return &AuthError{Kind: InvalidCredentials, Err: err}
		case ae.Timeout():
			return &AuthError{Kind: Timeout, Err: err}
		}
	}
	return &AuthError{Kind: Network, Err: err}
}
