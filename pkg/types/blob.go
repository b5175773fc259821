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

import (
	"bytes"
	"strconv"

	"github.com/buger/jsonparser"
)

// Blob is an upstream JSON value kept byte-for-byte. The core never
// destructures it; presentation code may use Lookup for optional fields.
type Blob []byte

// MarshalJSON emits the stored bytes, or null when empty.
func (b Blob) MarshalJSON() ([]byte, error) {
	if len(b) == 0 {
		return []byte("null"), nil
	}
	return b, nil
}

// UnmarshalJSON stores a copy of data.
func (b *Blob) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*b = nil
		return nil
	}
	*b = append((*b)[:0], data...)
	return nil
}

// IsObject reports whether the blob holds a JSON object.
func (b Blob) IsObject() bool {
	_, dt, _, err := jsonparser.Get(b)
	return err == nil && dt == jsonparser.Object
}

// Lookup returns the scalar at path as a string. Numbers and booleans are
// returned in their JSON text form; missing paths, nulls and nested values
// report false.
func (b Blob) Lookup(path ...string) (string, bool) {
	if len(b) == 0 {
		return "", false
	}
	v, dt, _, err := jsonparser.Get(b, path...)
	if err != nil {
		return "", false
	}
	switch dt {
	case jsonparser.String:
		s, err := jsonparser.ParseString(v)
		if err != nil {
			return "", false
		}
		return s, true
	case jsonparser.Number, jsonparser.Boolean:
		return string(v), true
	default:
		return "", false
	}
}

// LookupInt is Lookup followed by an integer parse; quoted numbers are accepted.
func (b Blob) LookupInt(path ...string) (int64, bool) {
	s, ok := b.Lookup(path...)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
