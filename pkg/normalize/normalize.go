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

// Package normalize maps loosely typed player_api.php records to the
// player's domain entities. Every function is pure: the same input yields
// byte-identical identifiers and stream URLs.
package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/buger/jsonparser"

	"github.com/lucasduport/xtream-player/pkg/types"
	"github.com/lucasduport/xtream-player/pkg/utils"
)

// Placeholders for records without a usable name.
const (
	UnnamedChannel  = "Canal sem nome"
	UnnamedMovie    = "Filme sem nome"
	UnnamedSeries   = "Série sem nome"
	DefaultCategory = "Outros"
	DefaultSeason   = "1"
	defaultExt      = "mp4"
)

// EpisodeTitle is the placeholder title of an untitled episode.
func EpisodeTitle(num string) string {
	return "Episódio " + num
}

// Channels normalizes a get_live_streams array.
func Channels(raw []byte, creds types.Credentials) ([]types.Channel, error) {
	out := []types.Channel{}
	err := eachRecord(raw, "stream_id", func(rec []byte) {
		out = append(out, Channel(rec, creds))
	})
	return out, err
}

// Channel normalizes one live stream record.
func Channel(rec []byte, creds types.Credentials) types.Channel {
	id := text(rec, "stream_id")
	return types.Channel{
		ID:           types.ContentID(types.KindLive, id),
		StreamID:     id,
		Name:         orDefault(text(rec, "name"), UnnamedChannel),
		CategoryID:   text(rec, "category_id"),
		CategoryName: orDefault(text(rec, "category_name"), DefaultCategory),
		StreamURL:    LiveURL(creds, id),
		Logo:         text(rec, "stream_icon"),
		EPGChannelID: text(rec, "epg_channel_id"),
		Added:        Timestamp(text(rec, "added")),
		NSFW:         truthy(text(rec, "is_adult")),
	}
}

// Movies normalizes a get_vod_streams array.
func Movies(raw []byte, creds types.Credentials) ([]types.Movie, error) {
	out := []types.Movie{}
	err := eachRecord(raw, "stream_id", func(rec []byte) {
		out = append(out, Movie(rec, creds))
	})
	return out, err
}

// Movie normalizes one VOD record.
func Movie(rec []byte, creds types.Credentials) types.Movie {
	id := text(rec, "stream_id")
	ext := orDefault(text(rec, "container_extension"), defaultExt)
	return types.Movie{
		ID:                 types.ContentID(types.KindMovie, id),
		StreamID:           id,
		Name:               orDefault(text(rec, "name"), UnnamedMovie),
		CategoryID:         text(rec, "category_id"),
		CategoryName:       orDefault(text(rec, "category_name"), DefaultCategory),
		StreamURL:          MovieURL(creds, id, ext),
		Logo:               text(rec, "stream_icon"),
		Plot:               text(rec, "plot"),
		Cast:               text(rec, "cast"),
		Director:           text(rec, "director"),
		Genre:              text(rec, "genre"),
		ReleaseDate:        text(rec, "releasedate"),
		Rating:             text(rec, "rating"),
		Duration:           text(rec, "duration"),
		ContainerExtension: ext,
		Added:              Timestamp(text(rec, "added")),
	}
}

// SeriesList normalizes a get_series array.
func SeriesList(raw []byte) ([]types.Series, error) {
	out := []types.Series{}
	err := eachRecord(raw, "series_id", func(rec []byte) {
		out = append(out, Series(rec))
	})
	return out, err
}

// Series normalizes one series record. Series carry no stream URL.
func Series(rec []byte) types.Series {
	id := text(rec, "series_id")
	release := text(rec, "releaseDate")
	if release == "" {
		release = text(rec, "release_date")
	}
	return types.Series{
		ID:           types.ContentID(types.KindSeries, id),
		SeriesID:     id,
		Name:         orDefault(text(rec, "name"), UnnamedSeries),
		CategoryID:   text(rec, "category_id"),
		CategoryName: orDefault(text(rec, "category_name"), DefaultCategory),
		Logo:         text(rec, "cover"),
		Plot:         text(rec, "plot"),
		Cast:         text(rec, "cast"),
		Director:     text(rec, "director"),
		Genre:        text(rec, "genre"),
		ReleaseDate:  release,
		Rating:       text(rec, "rating"),
		LastModified: Timestamp(text(rec, "last_modified")),
	}
}

// LiveURL is {host}/live/{username}/{password}/{id}.m3u8.
func LiveURL(creds types.Credentials, streamID string) string {
	return fmt.Sprintf("%s/live/%s/%s/%s.m3u8", trimHost(creds.Host), creds.Username, creds.Password, streamID)
}

// MovieURL is {host}/movie/{username}/{password}/{id}.{ext}.
func MovieURL(creds types.Credentials, streamID, ext string) string {
	return fmt.Sprintf("%s/movie/%s/%s/%s.%s", trimHost(creds.Host), creds.Username, creds.Password, streamID, orDefault(ext, defaultExt))
}

// EpisodeURL is {host}/series/{username}/{password}/{id}.{ext}.
func EpisodeURL(creds types.Credentials, episodeID, ext string) string {
	return fmt.Sprintf("%s/series/%s/%s/%s.%s", trimHost(creds.Host), creds.Username, creds.Password, episodeID, orDefault(ext, defaultExt))
}

// Timestamp converts Unix seconds to a UTC time. Missing, unparseable or
// non-positive values yield nil.
func Timestamp(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	sec, err := strconv.ParseInt(s, 10, 64)
	if err != nil || sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}

// eachRecord calls fn for each object in a JSON array that has idKey.
func eachRecord(raw []byte, idKey string, fn func(rec []byte)) error {
	skipped := 0
	var itemErr error
	_, err := jsonparser.ArrayEach(raw, func(value []byte, dt jsonparser.ValueType, _ int, err error) {
		if err != nil {
			itemErr = err
			return
		}
		if dt != jsonparser.Object || text(value, idKey) == "" {
			skipped++
			return
		}
		fn(value)
	})
	if err == nil {
		err = itemErr
	}
	if err != nil {
		return fmt.Errorf("not a record array: %w", err)
	}
	if skipped > 0 {
		utils.DebugLog("Skipped %d records without %s", skipped, idKey)
	}
	return nil
}

// text returns the scalar at keys in its text form, or "".
func text(rec []byte, keys ...string) string {
	v, dt, _, err := jsonparser.Get(rec, keys...)
	if err != nil {
		return ""
	}
	switch dt {
	case jsonparser.String:
		s, err := jsonparser.ParseString(v)
		if err != nil {
			return ""
		}
		return strings.TrimSpace(s)
	case jsonparser.Number, jsonparser.Boolean:
		return string(v)
	default:
		return ""
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func truthy(s string) bool {
	return s == "1" || strings.EqualFold(s, "true")
}

func trimHost(host string) string {
	return strings.TrimRight(host, "/")
}
