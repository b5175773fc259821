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

// Package store remembers one login across process restarts.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
	bolt "go.etcd.io/bbolt"

	"github.com/lucasduport/xtream-player/pkg/types"
	"github.com/lucasduport/xtream-player/pkg/utils"
	"github.com/lucasduport/xtream-player/pkg/validation"
)

// SessionKey is the fixed key of the remembered login.
const SessionKey = "iptv_session"

// DefaultTTL is how long a remembered login stays usable.
const DefaultTTL = 7 * 24 * time.Hour

var bucketCredentials = []byte("credentials")

// CredentialStore keeps a single remembered login. Credentials are stored
// in plaintext because the upstream protocol needs them verbatim; the file
// is created with mode 0600.
type CredentialStore struct {
	db  *bolt.DB
	ttl time.Duration
	now func() time.Time

	mu  sync.Mutex
	mem []byte // used when no path is configured
}

// Open opens the store at path. An empty path gives a memory-only store.
func Open(path string, ttl time.Duration) (*CredentialStore, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &CredentialStore{ttl: ttl, now: time.Now}
	if path == "" {
		return s, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketCredentials)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	utils.WarnLog("Remembered credentials are stored unencrypted in %s", path)
	s.db = db
	return s, nil
}

// Close releases the database file.
func (s *CredentialStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save remembers a login for the store's TTL, replacing any previous one.
func (s *CredentialStore) Save(p types.Persisted) error {
	now := s.now()
	p.Timestamp = now
	p.ExpiresAt = now.Add(s.ttl)
	return s.write(p)
}

// Load returns the remembered login. Expired, malformed or incomplete
// records are discarded and reported as absent.
func (s *CredentialStore) Load() (*types.Persisted, bool) {
	data, err := s.read()
	if err != nil {
		utils.ErrorLog("Reading remembered session: %v", err)
		return nil, false
	}
	if data == nil {
		return nil, false
	}

	var p types.Persisted
	if err := json.Unmarshal(data, &p); err != nil {
		utils.WarnLog("Discarding malformed remembered session: %v", err)
		s.discard()
		return nil, false
	}
	if err := validation.Struct(p); err != nil {
		utils.WarnLog("Discarding incomplete remembered session: %v", err)
		s.discard()
		return nil, false
	}
	if !s.now().Before(p.ExpiresAt) {
		utils.InfoLog("Remembered session expired at %s", p.ExpiresAt.Format(time.RFC3339))
		s.discard()
		return nil, false
	}
	return &p, true
}

// Refresh pushes the expiration of the remembered login to now plus the
// TTL. It reports false when nothing usable is remembered.
func (s *CredentialStore) Refresh() (bool, error) {
	p, ok := s.Load()
	if !ok {
		return false, nil
	}
	p.ExpiresAt = s.now().Add(s.ttl)
	return true, s.write(*p)
}

// Clear forgets the remembered login.
func (s *CredentialStore) Clear() error {
	if s.db == nil {
		s.mu.Lock()
		s.mem = nil
		s.mu.Unlock()
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCredentials).Delete([]byte(SessionKey))
	})
}

// discard clears an unusable record. A failure only leaves the record for
// the next Load to discard again.
func (s *CredentialStore) discard() {
	if err := s.Clear(); err != nil {
		utils.WarnLog("Could not clear remembered session: %v", err)
	}
}

func (s *CredentialStore) write(p types.Persisted) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.put(data)
}

func (s *CredentialStore) read() ([]byte, error) {
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.mem == nil {
			return nil, nil
		}
		return append([]byte(nil), s.mem...), nil
	}

	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketCredentials).Get([]byte(SessionKey)); v != nil {
			out = append([]byte(nil), v...)
		}
		return nil
	})
	return out, err
}

// put stores data under SessionKey.
func (s *CredentialStore) put(data []byte) error {
	if s.db == nil {
		s.mu.Lock()
		s.mem = data
		s.mu.Unlock()
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCredentials).Put([]byte(SessionKey), data)
	})
}
