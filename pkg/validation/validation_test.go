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

package validation

import (
	"errors"
	"testing"

	"github.com/lucasduport/xtream-player/pkg/types"
)

func TestIsPanelURL(t *testing.T) {
	tests := map[string]bool{
		"http://panel.example":          true,
		"https://panel.example:8443/":   true,
		"http://panel.example/sub/":     true,
		"panel.example":                 false,
		"ftp://panel.example":           false,
		"http://":                       false,
		"http://panel.example/?u=1":     false,
		"":                              false,
		"http://panel.example/#section": false,
	}
	for in, want := range tests {
		if got := IsPanelURL(in); got != want {
			t.Errorf("IsPanelURL(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestStructCredentials(t *testing.T) {
	tests := []struct {
		name   string
		creds  types.Credentials
		fields []string
	}{
		{name: "valid", creds: types.Credentials{Host: "http://h.example/", Username: "u", Password: "p"}},
		{name: "missing all", creds: types.Credentials{}, fields: []string{"Host", "Username", "Password"}},
		{name: "bad host", creds: types.Credentials{Host: "h.example", Username: "u", Password: "p"}, fields: []string{"Host"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.creds)
			if len(tt.fields) == 0 {
				if err != nil {
					t.Fatalf("Struct() = %v, want nil", err)
				}
				return
			}
			var verr *Error
			if !errors.As(err, &verr) {
				t.Fatalf("Struct() = %v, want *Error", err)
			}
			if len(verr.Fields) != len(tt.fields) {
				t.Fatalf("fields = %+v, want %v", verr.Fields, tt.fields)
			}
			for i, f := range tt.fields {
				if verr.Fields[i].Field != f {
					t.Errorf("field[%d] = %s, want %s", i, verr.Fields[i].Field, f)
				}
			}
			if verr.Error() == "" {
				t.Error("empty message")
			}
		})
	}
}
