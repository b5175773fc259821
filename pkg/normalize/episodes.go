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

package normalize

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/buger/jsonparser"

	"github.com/lucasduport/xtream-player/pkg/types"
)

// ErrNoEpisodes is returned when a get_series_info body has no episodes key.
var ErrNoEpisodes = errors.New("no episodes in series info")

// SeriesInfo normalizes a get_series_info body into sorted seasons plus
// the untouched info object.
func SeriesInfo(raw []byte, creds types.Credentials) ([]types.Season, types.Blob, error) {
	var info types.Blob
	if v, dt, _, err := jsonparser.Get(raw, "info"); err == nil && dt == jsonparser.Object {
		info = append(types.Blob(nil), v...)
	}

	episodes, dt, _, err := jsonparser.Get(raw, "episodes")
	if err != nil {
		return nil, nil, ErrNoEpisodes
	}

	var list []types.Episode
	switch dt {
	case jsonparser.Object:
		// {"1": [...], "2": [...]}
		err = jsonparser.ObjectEach(episodes, func(key, value []byte, vt jsonparser.ValueType, _ int) error {
			season := string(key)
			if vt == jsonparser.Array {
				list = append(list, seasonEpisodes(value, season, creds)...)
			}
			return nil
		})
	case jsonparser.Array:
		// [[...], [...]] or a flat [...] of episodes carrying their own season
		_, err = jsonparser.ArrayEach(episodes, func(value []byte, vt jsonparser.ValueType, _ int, _ error) {
			switch vt {
			case jsonparser.Array:
				list = append(list, seasonEpisodes(value, "", creds)...)
			case jsonparser.Object:
				if text(value, "id") != "" {
					list = append(list, Episode(value, "", creds))
				}
			}
		})
	default:
		return nil, nil, ErrNoEpisodes
	}
	if err != nil {
		return nil, nil, fmt.Errorf("malformed episodes: %w", err)
	}

	return GroupEpisodes(list), info, nil
}

func seasonEpisodes(arr []byte, season string, creds types.Credentials) []types.Episode {
	var out []types.Episode
	jsonparser.ArrayEach(arr, func(value []byte, vt jsonparser.ValueType, _ int, _ error) {
		if vt == jsonparser.Object && text(value, "id") != "" {
			out = append(out, Episode(value, season, creds))
		}
	})
	return out
}

// Episode normalizes one episode record. seasonKey is the key the episode
// was listed under; when empty the record's own season is used, then "1".
// Metadata missing at the top level is read from the nested info object.
func Episode(rec []byte, seasonKey string, creds types.Credentials) types.Episode {
	id := text(rec, "id")
	num := text(rec, "episode_num")
	ext := orDefault(text(rec, "container_extension"), defaultExt)

	season := seasonKey
	if season == "" {
		season = text(rec, "season")
	}
	if season == "" {
		season = DefaultSeason
	}

	return types.Episode{
		ID:                 types.ContentID(types.KindEpisode, id),
		StreamID:           id,
		EpisodeNum:         num,
		Season:             season,
		Title:              orDefault(text(rec, "title"), EpisodeTitle(num)),
		Plot:               firstText(rec, []string{"plot"}, []string{"info", "plot"}),
		Duration:           firstText(rec, []string{"duration"}, []string{"info", "duration"}),
		ReleaseDate:        firstText(rec, []string{"releasedate"}, []string{"info", "releasedate"}, []string{"info", "air_date"}),
		Rating:             firstText(rec, []string{"rating"}, []string{"info", "rating"}),
		Logo:               firstText(rec, []string{"movie_image"}, []string{"info", "movie_image"}),
		StreamURL:          EpisodeURL(creds, id, ext),
		ContainerExtension: ext,
		Added:              Timestamp(text(rec, "added")),
	}
}

// GroupEpisodes groups episodes by season. Seasons and the episodes within
// each season are ordered by their numeric value; non-numeric values sort
// after numeric ones, by text. The sort is stable.
func GroupEpisodes(episodes []types.Episode) []types.Season {
	idx := map[string]int{}
	seasons := []types.Season{}
	for _, ep := range episodes {
		key := ep.Season
		if key == "" {
			key = DefaultSeason
			ep.Season = key
		}
		i, ok := idx[key]
		if !ok {
			i = len(seasons)
			idx[key] = i
			seasons = append(seasons, types.Season{Number: key})
		}
		seasons[i].Episodes = append(seasons[i].Episodes, ep)
	}

	sort.SliceStable(seasons, func(i, j int) bool {
		return numericLess(seasons[i].Number, seasons[j].Number)
	})
	for _, s := range seasons {
		eps := s.Episodes
		sort.SliceStable(eps, func(i, j int) bool {
			return numericLess(eps[i].EpisodeNum, eps[j].EpisodeNum)
		})
	}
	return seasons
}

func numericLess(a, b string) bool {
	na, ea := strconv.ParseFloat(a, 64)
	nb, eb := strconv.ParseFloat(b, 64)
	aNum := ea == nil && !math.IsNaN(na)
	bNum := eb == nil && !math.IsNaN(nb)
	switch {
	case aNum && bNum:
		return na < nb
	case aNum != bNum:
		return aNum
	default:
		return a < b
	}
}

func firstText(rec []byte, paths ...[]string) string {
	for _, p := range paths {
		if v := text(rec, p...); v != "" {
			return v
		}
	}
	return ""
}
