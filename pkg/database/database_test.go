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
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lucasduport/xtream-player/pkg/cache"
	"github.com/lucasduport/xtream-player/pkg/session"
	"github.com/lucasduport/xtream-player/pkg/types"
)

// testManager connects to XTREAM_PLAYER_TEST_DSN or skips.
func testManager(t *testing.T) *DBManager {
	t.Helper()
	dsn := os.Getenv("XTREAM_PLAYER_TEST_DSN")
	if dsn == "" {
		t.Skip("XTREAM_PLAYER_TEST_DSN not set")
	}
	m, err := NewDBManager(context.Background(), Config{DSN: dsn})
	if err != nil {
		t.Fatalf("NewDBManager: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func TestConnString(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"dsn wins", Config{DSN: "postgres://x", Host: "h"}, "postgres://x"},
		{
			"fields",
			Config{Host: "h", Port: "1", Name: "n", User: "u", Password: "p", SSLMode: "disable"},
			"host=h port=1 dbname=n user=u password=p sslmode=disable",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.connString(); got != tt.want {
				t.Errorf("connString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNilManagerGuards(t *testing.T) {
	var m *DBManager
	ctx := context.Background()
	if err := m.Save(ctx, &types.Session{ID: "x"}); err != errNotInitialized {
		t.Errorf("Save on nil manager = %v", err)
	}
	if _, err := m.Get(ctx, "x"); err != errNotInitialized {
		t.Errorf("Get on nil manager = %v", err)
	}
	if _, ok := m.GetCollection(ctx, cache.Key{SessionID: "x"}); ok {
		t.Error("GetCollection on nil manager reported a hit")
	}
	if m.IsInitialized() {
		t.Error("nil manager reports initialized")
	}
}

func TestSessionRoundTrip(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	exp := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	s := &types.Session{
		ID:        uuid.NewString(),
		Host:      "http://panel.example",
		Username:  "alice",
		Password:  "secret",
		UserInfo:  types.Blob(`{"status":"Active", "auth":1}`),
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		ExpiresAt: &exp,
		Active:    true,
	}
	if err := m.Save(ctx, s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := m.Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Username != "alice" || got.Password != "secret" || !got.Active {
		t.Errorf("Get returned %+v", got)
	}
	if got.ExpiresAt == nil || !got.ExpiresAt.Equal(exp) {
		t.Errorf("ExpiresAt = %v, want %v", got.ExpiresAt, exp)
	}
	if string(got.UserInfo) != string(s.UserInfo) {
		t.Errorf("UserInfo = %s, want %s byte for byte", got.UserInfo, s.UserInfo)
	}
	if got.ServerInfo != nil {
		t.Errorf("ServerInfo = %s, want nil", got.ServerInfo)
	}

	deleted, err := m.Delete(ctx, s.ID)
	if err != nil || !deleted {
		t.Fatalf("Delete = %v, %v", deleted, err)
	}
	if _, err := m.Get(ctx, s.ID); err != session.ErrSessionNotFound {
		t.Errorf("Get after delete = %v, want ErrSessionNotFound", err)
	}
	if deleted, _ := m.Delete(ctx, s.ID); deleted {
		t.Error("second Delete reported a row")
	}
}

func TestContentCache(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()
	c := m.Cache()

	s := &types.Session{ID: uuid.NewString(), Host: "http://h", Username: "u", Password: "p", CreatedAt: time.Now(), Active: true}
	if err := m.Save(ctx, s); err != nil {
		t.Fatalf("Save: %v", err)
	}
	t.Cleanup(func() { m.Delete(context.Background(), s.ID) })

	key := cache.Key{SessionID: s.ID, Kind: types.CollectionChannels}
	if _, ok := c.Get(ctx, key); ok {
		t.Fatal("empty cache reported a hit")
	}

	want := types.Collection{Kind: types.CollectionChannels, Channels: []types.Channel{{ID: "channel_1", Name: "One"}}}
	if err := c.Put(ctx, key, want); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok := c.Get(ctx, key)
	if !ok || len(got.Channels) != 1 || got.Channels[0].Name != "One" {
		t.Fatalf("Get = %+v, %v", got, ok)
	}

	if err := c.Invalidate(ctx, s.ID); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, ok := c.Get(ctx, key); ok {
		t.Error("entry survived Invalidate")
	}
}
