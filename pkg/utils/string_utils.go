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
	"net/url"
	"strings"
)

// MaskString masks sensitive parts of strings for logging.
func MaskString(s string) string {
	if len(s) <= 8 {
		if len(s) == 0 {
			return "[empty]"
		}
		return s[:1] + "******"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// MaskURL hides credentials in Xtream URLs for logging. It handles both
// path-style stream URLs ({host}/{kind}/{user}/{pass}/{id}.{ext}) and
// player_api.php query strings.
func MaskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "[unparseable url]"
	}

	q := u.Query()
	masked := false
	for _, key := range []string{"username", "password"} {
		if v := q.Get(key); v != "" {
			q.Set(key, MaskString(v))
			masked = true
		}
	}
	if masked {
		u.RawQuery = q.Encode()
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) >= 4 {
		switch parts[len(parts)-4] {
		case "live", "movie", "series":
			parts[len(parts)-3] = MaskString(parts[len(parts)-3])
			parts[len(parts)-2] = MaskString(parts[len(parts)-2])
			u.Path = "/" + strings.Join(parts, "/")
		}
	}
	return u.String()
}
