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

package types

import "time"

// Session is the record created by a successful upstream authentication.
// Username and password are kept in plaintext because the upstream protocol
// embeds them in every request and stream URL.
type Session struct {
	ID         string     `json:"id"`
	Host       string     `json:"host"`
	Username   string     `json:"username"`
	Password   string     `json:"password"`
	UserInfo   Blob       `json:"userInfo"`
	ServerInfo Blob       `json:"serverInfo"`
	CreatedAt  time.Time  `json:"createdAt"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	Active     bool       `json:"isActive"`
}

// Valid reports whether the session can be used at now.
func (s *Session) Valid(now time.Time) bool {
	if s == nil || !s.Active {
		return false
	}
	return s.ExpiresAt == nil || now.Before(*s.ExpiresAt)
}

// Credentials returns the upstream credentials of the session.
func (s *Session) Credentials() Credentials {
	return Credentials{Host: s.Host, Username: s.Username, Password: s.Password}
}

// Summary is the session as shown to API clients, without the password.
type Summary struct {
	ID         string     `json:"sessionId"`
	Host       string     `json:"host"`
	Username   string     `json:"username"`
	UserInfo   Blob       `json:"userInfo"`
	ServerInfo Blob       `json:"serverInfo"`
	CreatedAt  time.Time  `json:"createdAt"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
}

// Summary strips the password.
func (s *Session) Summary() Summary {
	return Summary{
		ID:         s.ID,
		Host:       s.Host,
		Username:   s.Username,
		UserInfo:   s.UserInfo,
		ServerInfo: s.ServerInfo,
		CreatedAt:  s.CreatedAt,
		ExpiresAt:  s.ExpiresAt,
	}
}

// Persisted is what a remembered login keeps across restarts: the session
// plus the credentials that produced it.
type Persisted struct {
	SessionID   string      `json:"sessionId" validate:"required"`
	Credentials Credentials `json:"credentials"`
	UserInfo    Blob        `json:"userInfo"`
	ServerInfo  Blob        `json:"serverInfo"`
	Timestamp   time.Time   `json:"timestamp"`
	ExpiresAt   time.Time   `json:"expiresAt"`
}
