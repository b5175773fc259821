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

// Package session creates, restores and expires Xtream sessions.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lucasduport/xtream-player/pkg/cache"
	"github.com/lucasduport/xtream-player/pkg/metrics"
	"github.com/lucasduport/xtream-player/pkg/types"
	"github.com/lucasduport/xtream-player/pkg/utils"
	"github.com/lucasduport/xtream-player/pkg/validation"
	"github.com/lucasduport/xtream-player/pkg/xtream"
)

// Authenticator probes a panel. *xtream.Client implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, creds types.Credentials) (*xtream.AuthResponse, error)
}

// Manager is the keyed session store used by the HTTP API. Expiration is
// checked lazily on access; there is no background sweeper.
type Manager struct {
	upstream Authenticator
	repo     Repository
	cache    cache.Cache

	now   func() time.Time
	newID func() string
}

// NewManager wires a store. Logging out a session invalidates its entries in c.
func NewManager(upstream Authenticator, repo Repository, c cache.Cache) *Manager {
	return &Manager{
		upstream: upstream,
		repo:     repo,
		cache:    c,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

// NormalizeHost trims whitespace and trailing slashes.
func NormalizeHost(host string) string {
	return strings.TrimRight(strings.TrimSpace(host), "/")
}

// Authenticate probes the panel and stores a new active session.
func (m *Manager) Authenticate(ctx context.Context, creds types.Credentials) (*types.Session, error) {
	creds.Host = NormalizeHost(creds.Host)
	if err := validation.Struct(creds); err != nil {
		metrics.AuthAttempts.WithLabelValues("rejected").Inc()
		return nil, &AuthError{Kind: InvalidCredentials, Err: err}
	}

	utils.DebugLog("Authenticating %s on %s", utils.MaskString(creds.Username), creds.Host)
	resp, err := m.upstream.Authenticate(ctx, creds)
	if err != nil {
		ae := authError(err)
		metrics.AuthAttempts.WithLabelValues(strings.ReplaceAll(ae.Kind.String(), " ", "_")).Inc()
		utils.WarnLog("Authentication of %s on %s failed: %v", utils.MaskString(creds.Username), creds.Host, ae)
		return nil, ae
	}

	now := m.now()
	s := &types.Session{
		ID:         m.newID(),
		Host:       creds.Host,
		Username:   creds.Username,
		Password:   creds.Password,
		UserInfo:   resp.UserInfo,
		ServerInfo: resp.ServerInfo,
		CreatedAt:  now,
		ExpiresAt:  accountExpiry(resp.UserInfo),
		Active:     true,
	}
	if err := m.repo.Save(ctx, s); err != nil {
		return nil, utils.PrintErrorAndReturn(fmt.Errorf("saving session: %w", err))
	}

	metrics.AuthAttempts.WithLabelValues("ok").Inc()
	metrics.ActiveSessions.Inc()
	utils.InfoLog("Session %s created for %s on %s", s.ID, utils.MaskString(s.Username), s.Host)
	return s, nil
}

// Restore re-establishes a remembered session without contacting the
// panel. Bad credentials only surface on the next upstream call.
func (m *Manager) Restore(ctx context.Context, p types.Persisted) (*types.Session, error) {
	p.Credentials.Host = NormalizeHost(p.Credentials.Host)
	if p.SessionID == "" {
		p.SessionID = m.newID()
	}
	if err := validation.Struct(p); err != nil {
		return nil, err
	}

	for name, b := range map[string]*types.Blob{"user_info": &p.UserInfo, "server_info": &p.ServerInfo} {
		if len(*b) > 0 && !b.IsObject() {
			utils.WarnLog("Ignoring remembered %s of session %s: not a JSON object", name, p.SessionID)
			*b = nil
		}
	}

	created := p.Timestamp
	if created.IsZero() {
		created = m.now()
	}
	s := &types.Session{
		ID:         p.SessionID,
		Host:       p.Credentials.Host,
		Username:   p.Credentials.Username,
		Password:   p.Credentials.Password,
		UserInfo:   p.UserInfo,
		ServerInfo: p.ServerInfo,
		CreatedAt:  created,
		ExpiresAt:  accountExpiry(p.UserInfo),
		Active:     true,
	}

	// Cached stream URLs embed the credentials, so a restore onto a known
	// id starts from an empty cache.
	existed := false
	if _, err := m.repo.Get(ctx, s.ID); err == nil {
		existed = true
		if err := m.cache.Invalidate(ctx, s.ID); err != nil {
			return nil, utils.PrintErrorAndReturn(fmt.Errorf("purging cache of session %s: %w", s.ID, err))
		}
	}
	if err := m.repo.Save(ctx, s); err != nil {
		return nil, utils.PrintErrorAndReturn(fmt.Errorf("saving restored session: %w", err))
	}
	if !existed {
		metrics.ActiveSessions.Inc()
	}
	utils.InfoLog("Session %s restored for %s", s.ID, utils.MaskString(s.Username))
	return s, nil
}

// Get returns a valid session. A session past its expiration or no longer
// active is logged out and ErrSessionExpired is returned.
func (m *Manager) Get(ctx context.Context, id string) (*types.Session, error) {
	s, err := m.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.Valid(m.now()) {
		utils.InfoLog("Session %s expired", id)
		if err := m.Logout(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrSessionExpired
	}
	return s, nil
}

// Logout removes the session and its cached content. Unknown ids are not an error.
func (m *Manager) Logout(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	removed, err := m.repo.Delete(ctx, id)
	if err != nil {
		return utils.PrintErrorAndReturn(fmt.Errorf("deleting session %s: %w", id, err))
	}
	if err := m.cache.Invalidate(ctx, id); err != nil {
		return utils.PrintErrorAndReturn(fmt.Errorf("purging cache of session %s: %w", id, err))
	}
	if removed {
		metrics.ActiveSessions.Dec()
		utils.InfoLog("Session %s logged out", id)
	}
	return nil
}

// Alive reports whether the session is still stored. Unlike Get it does not
// check expiry, and a storage error counts as alive.
func (m *Manager) Alive(ctx context.Context, id string) bool {
	_, err := m.repo.Get(ctx, id)
	return !errors.Is(err, ErrSessionNotFound)
}

// IsGone reports whether err means the session cannot be used anymore.
func IsGone(err error) bool {
	return errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrSessionExpired)
}

// accountExpiry reads user_info.exp_date. Panels send Unix seconds as a
// string, a number, or "null" for unlimited accounts.
func accountExpiry(userInfo types.Blob) *time.Time {
	sec, ok := userInfo.LookupInt("exp_date")
	if !ok || sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}
