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

// Package cache keeps normalized collections per session.
package cache

import (
	"context"
	"sync"

	"github.com/lucasduport/xtream-player/pkg/metrics"
	"github.com/lucasduport/xtream-player/pkg/types"
)

// Key identifies one cached collection. Scope distinguishes collections of
// the same kind within a session, such as the episodes of different series.
type Key struct {
	SessionID string
	Kind      types.CollectionKind
	Scope     string
}

// Cache stores collections. Put replaces an entry wholesale; Invalidate
// drops every entry of a session. Entries are never evicted otherwise.
type Cache interface {
	Get(ctx context.Context, key Key) (types.Collection, bool)
	Put(ctx context.Context, key Key, c types.Collection) error
	Invalidate(ctx context.Context, sessionID string) error
}

// Memory is an in-process Cache.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]map[Key]types.Collection
}

// NewMemory creates an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]map[Key]types.Collection)}
}

// Get returns the collection stored under key.
func (m *Memory) Get(_ context.Context, key Key) (types.Collection, bool) {
	m.mu.RLock()
	c, ok := m.entries[key.SessionID][key]
	m.mu.RUnlock()

	result := "miss"
	if ok {
		result = "hit"
	}
	metrics.CacheLookups.WithLabelValues(string(key.Kind), result).Inc()
	return c, ok
}

// Put stores c under key, replacing any previous entry.
func (m *Memory) Put(_ context.Context, key Key, c types.Collection) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	bySession, ok := m.entries[key.SessionID]
	if !ok {
		bySession = make(map[Key]types.Collection)
		m.entries[key.SessionID] = bySession
	}
	bySession[key] = c
	return nil
}

// Invalidate removes every entry of the session.
func (m *Memory) Invalidate(_ context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.entries, sessionID)
	m.mu.Unlock()
	metrics.CacheInvalidations.Inc()
	return nil
}

// Len returns the number of entries held for a session.
func (m *Memory) Len(sessionID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries[sessionID])
}
