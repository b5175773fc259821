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

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/lucasduport/xtream-player/pkg/cache"
	"github.com/lucasduport/xtream-player/pkg/metrics"
	"github.com/lucasduport/xtream-player/pkg/types"
	"github.com/lucasduport/xtream-player/pkg/utils"
)

// GetCollection returns a cached collection. Read failures are logged and reported as a miss.
func (m *DBManager) GetCollection(ctx context.Context, key cache.Key) (types.Collection, bool) {
	var c types.Collection
	if m == nil || m.db == nil {
		return c, false
	}

	var payload []byte
	err := m.db.QueryRowContext(ctx, `
		SELECT payload FROM content_cache
		WHERE session_id = $1 AND collection = $2 AND scope = $3
	`, key.SessionID, string(key.Kind), key.Scope).Scan(&payload)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			utils.ErrorLog("Database error reading cache %s/%s: %v", key.SessionID, key.Kind, err)
		}
		metrics.CacheLookups.WithLabelValues(string(key.Kind), "miss").Inc()
		return c, false
	}

	if err := json.Unmarshal(payload, &c); err != nil {
		utils.WarnLog("Dropping undecodable cache entry %s/%s: %v", key.SessionID, key.Kind, err)
		metrics.CacheLookups.WithLabelValues(string(key.Kind), "miss").Inc()
		return types.Collection{}, false
	}
	metrics.CacheLookups.WithLabelValues(string(key.Kind), "hit").Inc()
	return c, true
}

// PutCollection replaces a cached collection. It fails when the session row is gone.
func (m *DBManager) PutCollection(ctx context.Context, key cache.Key, c types.Collection) error {
	if m == nil || m.db == nil {
		return errNotInitialized
	}
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key.Kind, err)
	}

	_, err = m.db.ExecContext(ctx, `
		INSERT INTO content_cache (session_id, collection, scope, payload, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (session_id, collection, scope)
		DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()
	`, key.SessionID, string(key.Kind), key.Scope, string(payload))
	if err != nil {
		utils.ErrorLog("Database error writing cache %s/%s: %v", key.SessionID, key.Kind, err)
		return fmt.Errorf("writing cache: %w", err)
	}
	return nil
}

// Invalidate removes every cached collection of a session.
func (m *DBManager) Invalidate(ctx context.Context, sessionID string) error {
	if m == nil || m.db == nil {
		return errNotInitialized
	}
	if _, err := m.db.ExecContext(ctx, `DELETE FROM content_cache WHERE session_id = $1`, sessionID); err != nil {
		utils.ErrorLog("Database error invalidating cache of %s: %v", sessionID, err)
		return fmt.Errorf("invalidating cache: %w", err)
	}
	metrics.CacheInvalidations.Inc()
	return nil
}

// Cache adapts the manager to cache.Cache.
func (m *DBManager) Cache() cache.Cache {
	return contentCache{m}
}

type contentCache struct {
	m *DBManager
}

func (c contentCache) Get(ctx context.Context, key cache.Key) (types.Collection, bool) {
	return c.m.GetCollection(ctx, key)
}

func (c contentCache) Put(ctx context.Context, key cache.Key, col types.Collection) error {
	return c.m.PutCollection(ctx, key, col)
}

func (c contentCache) Invalidate(ctx context.Context, sessionID string) error {
	return c.m.Invalidate(ctx, sessionID)
}
