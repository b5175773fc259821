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
	"context"
	"errors"
	"sync"

	"github.com/lucasduport/xtream-player/pkg/types"
)

// State is the lifecycle state of a Client.
type State int

const (
	Anonymous State = iota
	Authenticating
	Active
	Expired
	LoggedOut
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticating:
		return "authenticating"
	case Active:
		return "active"
	case Expired:
		return "expired"
	case LoggedOut:
		return "logged out"
	default:
		return "unknown"
	}
}

// Client holds at most one current session on top of a Manager. A new
// successful authentication or restore replaces and logs out the previous
// session. Each Client is independent, so several can share one Manager.
type Client struct {
	m *Manager

	mu      sync.Mutex
	current string
	state   State
	pending int
}

// NewClient returns an anonymous client.
func NewClient(m *Manager) *Client {
	return &Client{m: m}
}

// State returns the lifecycle state. Expired and LoggedOut behave like
// Anonymous: there is no current session.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending > 0 {
		return Authenticating
	}
	return c.state
}

// Authenticate logs in. On failure the previous session, if any, stays current.
func (c *Client) Authenticate(ctx context.Context, creds types.Credentials) (*types.Session, error) {
	c.mu.Lock()
	c.pending++
	c.mu.Unlock()

	s, err := c.m.Authenticate(ctx, creds)

	c.mu.Lock()
	c.pending--
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	prior := c.swap(s.ID)
	c.mu.Unlock()

	return s, c.m.Logout(ctx, prior)
}

// Restore makes a remembered session current without a network round trip.
func (c *Client) Restore(ctx context.Context, p types.Persisted) (*types.Session, error) {
	s, err := c.m.Restore(ctx, p)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	prior := c.swap(s.ID)
	c.mu.Unlock()

	if prior == s.ID {
		return s, nil
	}
	return s, c.m.Logout(ctx, prior)
}

// swap installs id as current and returns the previous id. c.mu must be held.
func (c *Client) swap(id string) string {
	prior := c.current
	c.current = id
	c.state = Active
	return prior
}

// Current returns the current session, or false when there is none. An
// expired session is logged out here.
func (c *Client) Current(ctx context.Context) (*types.Session, bool) {
	c.mu.Lock()
	id := c.current
	c.mu.Unlock()
	if id == "" {
		return nil, false
	}

	s, err := c.m.Get(ctx, id)
	if err == nil {
		return s, true
	}
	if !IsGone(err) {
		return nil, false
	}

	c.mu.Lock()
	if c.current == id {
		c.current = ""
		c.state = LoggedOut
		if errors.Is(err, ErrSessionExpired) {
			c.state = Expired
		}
	}
	c.mu.Unlock()
	return nil, false
}

// Logout ends the current session. Without one it does nothing.
func (c *Client) Logout(ctx context.Context) error {
	c.mu.Lock()
	id := c.current
	c.current = ""
	if id != "" {
		c.state = LoggedOut
	}
	c.mu.Unlock()

	return c.m.Logout(ctx, id)
}
