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

// CollectionKind names one cacheable list.
type CollectionKind string

const (
	CollectionChannels         CollectionKind = "channels"
	CollectionMovies           CollectionKind = "movies"
	CollectionSeries           CollectionKind = "series"
	CollectionEpisodes         CollectionKind = "episodes"
	CollectionLiveCategories   CollectionKind = "live_categories"
	CollectionMovieCategories  CollectionKind = "movie_categories"
	CollectionSeriesCategories CollectionKind = "series_categories"
)

// CategoryCollection maps a category namespace to its collection kind.
func CategoryCollection(k CategoryKind) CollectionKind {
	switch k {
	case CategoryMovies:
		return CollectionMovieCategories
	case CategorySeries:
		return CollectionSeriesCategories
	default:
		return CollectionLiveCategories
	}
}

// Collection is one normalized list as stored in the content cache.
// Only the slice matching Kind is populated.
type Collection struct {
	Kind       CollectionKind `json:"kind"`
	Channels   []Channel      `json:"channels,omitempty"`
	Movies     []Movie        `json:"movies,omitempty"`
	Series     []Series       `json:"series,omitempty"`
	Seasons    []Season       `json:"seasons,omitempty"`
	SeriesInfo Blob           `json:"seriesInfo,omitempty"`
	Categories []Category     `json:"categories,omitempty"`
}

// Len is the number of top-level items.
func (c Collection) Len() int {
	switch c.Kind {
	case CollectionChannels:
		return len(c.Channels)
	case CollectionMovies:
		return len(c.Movies)
	case CollectionSeries:
		return len(c.Series)
	case CollectionEpisodes:
		n := 0
		for _, s := range c.Seasons {
			n += len(s.Episodes)
		}
		return n
	default:
		return len(c.Categories)
	}
}
