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

	"github.com/lucasduport/xtream-player/pkg/session"
	"github.com/lucasduport/xtream-player/pkg/types"
	"github.com/lucasduport/xtream-player/pkg/utils"
)

// Save inserts or replaces a session row.
func (m *DBManager) Save(ctx context.Context, s *types.Session) error {
	if m == nil || m.db == nil {
		return errNotInitialized
	}
	var expires sql.NullTime
	if s.ExpiresAt != nil {
		expires = sql.NullTime{Time: *s.ExpiresAt, Valid: true}
	}

	_, err := m.db.ExecContext(ctx, `
		INSERT INTO xtream_sessions
		  (id, host, username, password, user_info, server_info, created_at, expires_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
		  host = EXCLUDED.host,
		  username = EXCLUDED.username,
		  password = EXCLUDED.password,
		  user_info = EXCLUDED.user_info,
		  server_info = EXCLUDED.server_info,
		  expires_at = EXCLUDED.expires_at,
		  is_active = EXCLUDED.is_active
	`, s.ID, s.Host, s.Username, s.Password, jsonParam(s.UserInfo), jsonParam(s.ServerInfo), s.CreatedAt, expires, s.Active)
	if err != nil {
		utils.ErrorLog("Database error saving session %s: %v", s.ID, err)
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// Get loads a session row.
func (m *DBManager) Get(ctx context.Context, id string) (*types.Session, error) {
	if m == nil || m.db == nil {
		return nil, errNotInitialized
	}

	var (
		s                    types.Session
		userInfo, serverInfo []byte
		expires              sql.NullTime
	)
	err := m.db.QueryRowContext(ctx, `
		SELECT id, host, username, password, user_info, server_info, created_at, expires_at, is_active
		FROM xtream_sessions WHERE id = $1
	`, id).Scan(&s.ID, &s.Host, &s.Username, &s.Password, &userInfo, &serverInfo, &s.CreatedAt, &expires, &s.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, session.ErrSessionNotFound
	}
	if err != nil {
		utils.ErrorLog("Database error loading session %s: %v", id, err)
		return nil, fmt.Errorf("loading session: %w", err)
	}

	if len(userInfo) > 0 {
		s.UserInfo = types.Blob(userInfo)
	}
	if len(serverInfo) > 0 {
		s.ServerInfo = types.Blob(serverInfo)
	}
	if expires.Valid {
		t := expires.Time
		s.ExpiresAt = &t
	}
	return &s, nil
}

// Delete removes a session row; its cache rows go with it.
func (m *DBManager) Delete(ctx context.Context, id string) (bool, error) {
	if m == nil || m.db == nil {
		return false, errNotInitialized
	}
	res, err := m.db.ExecContext(ctx, `DELETE FROM xtream_sessions WHERE id = $1`, id)
	if err != nil {
		utils.ErrorLog("Database error deleting session %s: %v", id, err)
		return false, fmt.Errorf("deleting session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// jsonParam passes a blob to a JSON column. JSON keeps the text as sent,
// unlike JSONB. lib/pq sends []byte as bytea, so the text form is used.
func jsonParam(b types.Blob) interface{} {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
