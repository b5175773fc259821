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

package utils

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
)

func TestGetErrorDetailLevel(t *testing.T) {
	tests := []struct {
		name          string
		envValue      string
		expectedLevel ErrorDetailLevel
	}{
		{name: "none detail level", envValue: "none", expectedLevel: ErrorDetailNone},
		{name: "full detail level", envValue: "FULL", expectedLevel: ErrorDetailFull},
		{name: "simple detail level", envValue: "simple", expectedLevel: ErrorDetailSimple},
		{name: "empty env defaults to simple", envValue: "", expectedLevel: ErrorDetailSimple},
		{name: "invalid value defaults to simple", envValue: "verbose", expectedLevel: ErrorDetailSimple},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ERROR_DETAIL_LEVEL", tt.envValue)
			if got := getErrorDetailLevel(); got != tt.expectedLevel {
				t.Errorf("getErrorDetailLevel() = %v, want %v", got, tt.expectedLevel)
			}
		})
	}
}

func TestErrorWithLocation(t *testing.T) {
	base := errors.New("upstream said no")

	tests := []struct {
		name            string
		detailLevel     string
		expectedParts   []string
		unexpectedParts []string
	}{
		{
			name:            "simple detail level",
			detailLevel:     "simple",
			expectedParts:   []string{"error_utils_test.go", "upstream said no"},
			unexpectedParts: []string{"Stack Trace:", "Error Location:"},
		},
		{
			name:        "full detail level",
			detailLevel: "full",
			expectedParts: []string{
				"Error Location:",
				"File: error_utils_test.go",
				"Function:",
				"upstream said no",
				"Stack Trace:",
			},
		},
		{
			name:            "none detail level still locates",
			detailLevel:     "none",
			expectedParts:   []string{"error_utils_test.go", "upstream said no"},
			unexpectedParts: []string{"Stack Trace:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ERROR_DETAIL_LEVEL", tt.detailLevel)

			got := ErrorWithLocation(base)
			if !errors.Is(got, base) {
				t.Fatalf("ErrorWithLocation() lost the wrapped error")
			}
			gotStr := got.Error()
			for _, expected := range tt.expectedParts {
				if !strings.Contains(gotStr, expected) {
					t.Errorf("output missing %q in:\n%s", expected, gotStr)
				}
			}
			for _, unexpected := range tt.unexpectedParts {
				if strings.Contains(gotStr, unexpected) {
					t.Errorf("output contains %q in:\n%s", unexpected, gotStr)
				}
			}
		})
	}

	if ErrorWithLocation(nil) != nil {
		t.Error("ErrorWithLocation(nil) should be nil")
	}
}

func TestPrintErrorAndReturn(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		detailLevel string
		shouldPrint bool
	}{
		{name: "nil error returns nil", err: nil, detailLevel: "simple", shouldPrint: false},
		{name: "prints with simple detail level", err: errors.New("boom"), detailLevel: "simple", shouldPrint: true},
		{name: "prints with full detail level", err: errors.New("boom"), detailLevel: "full", shouldPrint: true},
		{name: "suppresses print with none detail level", err: errors.New("boom"), detailLevel: "none", shouldPrint: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ERROR_DETAIL_LEVEL", tt.detailLevel)

			var buf bytes.Buffer
			errorOutput = &buf
			defer func() { errorOutput = os.Stderr }()

			got := PrintErrorAndReturn(tt.err)
			if tt.err == nil {
				if got != nil {
					t.Errorf("PrintErrorAndReturn() = %v, want nil", got)
				}
				return
			}
			if printed := buf.Len() > 0; printed != tt.shouldPrint {
				t.Errorf("PrintErrorAndReturn() printing = %v, want %v", printed, tt.shouldPrint)
			}
			if !errors.Is(got, tt.err) {
				t.Error("PrintErrorAndReturn() did not wrap the original error")
			}
		})
	}
}

func TestRedactError(t *testing.T) {
	inner := errors.New(`Get "http://panel.example/player_api.php?username=alice&password=hunter2secret": dial tcp: connection refused`)

	got := RedactError(inner, "hunter2secret", "")
	if strings.Contains(got.Error(), "hunter2secret") {
		t.Fatalf("password leaked: %s", got)
	}
	if !strings.Contains(got.Error(), "connection refused") {
		t.Errorf("cause lost: %s", got)
	}
	if !errors.Is(got, inner) {
		t.Error("redacted error should unwrap to the original")
	}

	if RedactError(inner, "absent") != inner {
		t.Error("error without secrets should be returned unchanged")
	}
	if RedactError(nil, "x") != nil {
		t.Error("RedactError(nil) should be nil")
	}
}
