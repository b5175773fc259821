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
	"fmt"
	"strings"
	"time"
)

// ContentKind is one of the four identifier namespaces.
type ContentKind string

const (
	KindLive    ContentKind = "live"
	KindMovie   ContentKind = "movie"
	KindSeries  ContentKind = "series"
	KindEpisode ContentKind = "episode"
)

// idPrefix is the identifier prefix of each kind. Live content uses
// "channel" rather than its kind name.
func (k ContentKind) idPrefix() string {
	if k == KindLive {
		return "channel"
	}
	return string(k)
}

// ContentID builds the stable identifier "{prefix}_{upstreamID}".
func ContentID(kind ContentKind, upstreamID string) string {
	return kind.idPrefix() + "_" + upstreamID
}

// ParseContentID splits an identifier built by ContentID.
func ParseContentID(id string) (ContentKind, string, error) {
	prefix, upstream, ok := strings.Cut(id, "_")
	if !ok || upstream == "" {
		return "", "", fmt.Errorf("malformed content id %q", id)
	}
	for _, k := range []ContentKind{KindLive, KindMovie, KindSeries, KindEpisode} {
		if k.idPrefix() == prefix {
			return k, upstream, nil
		}
	}
	return "", "", fmt.Errorf("unknown content kind in id %q", id)
}

// CategoryKind scopes a category namespace. The three namespaces are never merged.
type CategoryKind string

const (
	CategoryLive   CategoryKind = "live"
	CategoryMovies CategoryKind = "movies"
	CategorySeries CategoryKind = "series"
)

// ParseCategoryKind accepts the API names, defaulting to live for "".
func ParseCategoryKind(s string) (CategoryKind, error) {
	switch CategoryKind(strings.ToLower(s)) {
	case "", CategoryLive:
		return CategoryLive, nil
	case CategoryMovies, "movie", "vod":
		return CategoryMovies, nil
	case CategorySeries:
		return CategorySeries, nil
	}
	return "", fmt.Errorf("unknown category type %q", s)
}

// Channel is a live stream.
type Channel struct {
	ID           string     `json:"id"`
	StreamID     string     `json:"streamId"`
	Name         string     `json:"name"`
	CategoryID   string     `json:"categoryId"`
	CategoryName string     `json:"categoryName"`
	StreamURL    string     `json:"streamUrl"`
	Logo         string     `json:"logo"`
	EPGChannelID string     `json:"epgChannelId"`
	Added        *time.Time `json:"added"`
	NSFW         bool       `json:"isNsfw"`
}

// Movie is a video-on-demand title.
type Movie struct {
	ID                 string     `json:"id"`
	StreamID           string     `json:"streamId"`
	Name               string     `json:"name"`
	CategoryID         string     `json:"categoryId"`
	CategoryName       string     `json:"categoryName"`
	StreamURL          string     `json:"streamUrl"`
	Logo               string     `json:"logo"`
	Plot               string     `json:"plot"`
	Cast               string     `json:"cast"`
	Director           string     `json:"director"`
	Genre              string     `json:"genre"`
	ReleaseDate        string     `json:"releaseDate"`
	Rating             string     `json:"rating"`
	Duration           string     `json:"duration"`
	ContainerExtension string     `json:"containerExtension"`
	Added              *time.Time `json:"added"`
}

// Series is a show; its episodes are fetched separately.
type Series struct {
	ID           string     `json:"id"`
	SeriesID     string     `json:"seriesId"`
	Name         string     `json:"name"`
	CategoryID   string     `json:"categoryId"`
	CategoryName string     `json:"categoryName"`
	Logo         string     `json:"logo"`
	Plot         string     `json:"plot"`
	Cast         string     `json:"cast"`
	Director     string     `json:"director"`
	Genre        string     `json:"genre"`
	ReleaseDate  string     `json:"releaseDate"`
	Rating       string     `json:"rating"`
	LastModified *time.Time `json:"lastModified"`
}

// Episode belongs to a season of a series.
type Episode struct {
	ID                 string     `json:"id"`
	StreamID           string     `json:"streamId"`
	EpisodeNum         string     `json:"episodeNum"`
	Season             string     `json:"season"`
	Title              string     `json:"title"`
	Plot               string     `json:"plot"`
	Duration           string     `json:"duration"`
	ReleaseDate        string     `json:"releaseDate"`
	Rating             string     `json:"rating"`
	Logo               string     `json:"logo"`
	StreamURL          string     `json:"streamUrl"`
	ContainerExtension string     `json:"containerExtension"`
	Added              *time.Time `json:"added"`
}

// Season groups episodes in ascending episode order.
type Season struct {
	Number   string    `json:"season"`
	Episodes []Episode `json:"episodes"`
}

// Category is scoped to one CategoryKind.
type Category struct {
	ID       string       `json:"categoryId"`
	Name     string       `json:"categoryName"`
	ParentID int          `json:"parentId"`
	Kind     CategoryKind `json:"kind"`
}
