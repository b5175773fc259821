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

package server

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jamesnetherton/m3u"

	"github.com/lucasduport/xtream-player/pkg/types"
	"github.com/lucasduport/xtream-player/pkg/utils"
)

// getPlaylist exports the live channels of a session as an M3U playlist.
// ?category=<id> keeps a single category.
func (c *Config) getPlaylist(ctx *gin.Context) {
	s := currentSession(ctx)
	channels, err := c.library.Channels(ctx.Request.Context(), s)
	if err != nil {
		status, msg := fetchStatus(err)
		abortWithError(ctx, status, msg)
		return
	}

	playlist := buildPlaylist(channels, ctx.Query("category"))

	var buf bytes.Buffer
	if err := marshallInto(&buf, playlist); err != nil {
		utils.ErrorLog("Playlist export failed: %v", err)
		abortWithError(ctx, http.StatusInternalServerError, msgInternal)
		return
	}

	utils.DebugLog("Exported %d tracks for session %s", len(playlist.Tracks), s.ID)
	ctx.Header("Content-Disposition", `attachment; filename="playlist.m3u"`)
	ctx.Data(http.StatusOK, "audio/x-mpegurl", buf.Bytes())
}

// buildPlaylist turns channels into tracks, optionally keeping one category.
func buildPlaylist(channels []types.Channel, category string) *m3u.Playlist {
	p := &m3u.Playlist{Tracks: make([]m3u.Track, 0, len(channels))}
	for _, ch := range channels {
		if category != "" && ch.CategoryID != category {
			continue
		}
		tags := []m3u.Tag{
			{Name: "tvg-id", Value: ch.EPGChannelID},
			{Name: "tvg-name", Value: ch.Name},
		}
		if ch.Logo != "" {
			tags = append(tags, m3u.Tag{Name: "tvg-logo", Value: ch.Logo})
		}
		tags = append(tags, m3u.Tag{Name: "group-title", Value: ch.CategoryName})

		p.Tracks = append(p.Tracks, m3u.Track{
			Name:   ch.Name,
			Length: -1,
			URI:    ch.StreamURL,
			Tags:   tags,
		})
	}
	return p
}

// marshallInto writes a playlist in extended M3U format.
func marshallInto(into io.Writer, p *m3u.Playlist) error {
	if _, err := io.WriteString(into, "#EXTM3U\n"); err != nil {
		return err
	}
	for _, track := range p.Tracks {
		var buffer bytes.Buffer
		fmt.Fprintf(&buffer, "#EXTINF:%d", track.Length)
		for _, tag := range track.Tags {
			fmt.Fprintf(&buffer, " %s=%q", tag.Name, tag.Value)
		}
		name := strings.ReplaceAll(track.Name, "\n", " ")
		if _, err := fmt.Fprintf(into, "%s,%s\n%s\n", buffer.String(), name, track.URI); err != nil {
			return err
		}
	}
	return nil
}
