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

package xtream

import (
	"testing"

	"github.com/goccy/go-json"
)

func TestFlexInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{`12`, 12},
		{`"12"`, 12},
		{`""`, 0},
		{`null`, 0},
		{`"abc"`, 0},
	}
	for _, tt := range tests {
		var got FlexInt
		if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
			t.Errorf("Unmarshal(%s) error = %v", tt.in, err)
			continue
		}
		if int(got) != tt.want {
			t.Errorf("Unmarshal(%s) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFlexString(t *testing.T) {
	tests := map[string]string{
		`"7"`:    "7",
		`7`:      "7",
		`null`:   "",
		`"a\"b"`: `a"b`,
	}
	for in, want := range tests {
		var got FlexString
		if err := json.Unmarshal([]byte(in), &got); err != nil {
			t.Errorf("Unmarshal(%s) error = %v", in, err)
			continue
		}
		if string(got) != want {
			t.Errorf("Unmarshal(%s) = %q, want %q", in, got, want)
		}
	}
}
