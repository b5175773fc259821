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
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lucasduport/xtream-player/pkg/utils"
)

// dumpBody saves a body that failed shape validation so panel quirks can
// be inspected later. Nothing is written when dir is empty.
func dumpBody(dir, action string, body []byte) string {
	if dir == "" || len(body) == 0 {
		return ""
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		utils.ErrorLog("Failed to create debug directory: %v", err)
		return ""
	}
	if action == "" {
		action = "auth"
	}
	name := filepath.Join(dir, fmt.Sprintf("%s_%s.json", action, time.Now().Format("20060102_150405.000")))
	if err := os.WriteFile(name, body, 0o600); err != nil {
		utils.ErrorLog("Failed to save debug data: %v", err)
		return ""
	}
	utils.DebugLog("Saved unexpected %s body (%d bytes) to %s", action, len(body), name)
	return name
}
