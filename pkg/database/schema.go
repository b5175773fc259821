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
	"fmt"

	"github.com/lucasduport/xtream-player/pkg/utils"
)

var schema = []struct {
	name string
	ddl  string
}{
	{"xtream_sessions", `
		CREATE TABLE IF NOT EXISTS xtream_sessions (
			id TEXT PRIMARY KEY,
			host TEXT NOT NULL,
			username TEXT NOT NULL,
			password TEXT NOT NULL,
			user_info JSON,
			server_info JSON,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			expires_at TIMESTAMPTZ,
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)`},
	{"content_cache", `
		CREATE TABLE IF NOT EXISTS content_cache (
			session_id TEXT NOT NULL REFERENCES xtream_sessions(id) ON DELETE CASCADE,
			collection TEXT NOT NULL,
			scope TEXT NOT NULL DEFAULT '',
			payload JSON NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (session_id, collection, scope)
		)`},
}

// initSchema creates database tables if they don't exist
func (m *DBManager) initSchema(ctx context.Context) error {
	utils.InfoLog("Initializing database schema")
	if m == nil || m.db == nil {
		return errNotInitialized
	}

	for _, t := range schema {
		if _, err := m.db.ExecContext(ctx, t.ddl); err != nil {
			utils.ErrorLog("Failed to create %s table: %v", t.name, err)
			return fmt.Errorf("failed to create %s table: %w", t.name, err)
		}
	}

	utils.InfoLog("Database schema initialized successfully")
	return nil
}
