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

// Package library serves normalized collections for a session, fetching
// from the panel only on a cache miss.
package library

import (
	"context"
	"errors"
	"fmt"

	"github.com/lucasduport/xtream-player/pkg/cache"
	"github.com/lucasduport/xtream-player/pkg/normalize"
	"github.com/lucasduport/xtream-player/pkg/types"
	"github.com/lucasduport/xtream-player/pkg/utils"
	"github.com/lucasduport/xtream-player/pkg/xtream"
)

// Upstream is the part of xtream.Client the library needs.
type Upstream interface {
	LiveStreams(ctx context.Context, creds types.Credentials) ([]byte, error)
	VodStreams(ctx context.Context, creds types.Credentials) ([]byte, error)
	Series(ctx context.Context, creds types.Credentials) ([]byte, error)
	SeriesInfo(ctx context.Context, creds types.Credentials, seriesID string) ([]byte, error)
	Categories(ctx context.Context, creds types.Credentials, kind types.CategoryKind) []types.Category
}

// Messages shown to the user when a list cannot be loaded.
const (
	msgBadFormat   = "Formato de resposta inválido do servidor IPTV"
	msgNoEpisodes  = "Nenhum episódio encontrado para esta série"
	msgUnreachable = "Erro ao conectar com o servidor IPTV"
)

// FetchError is a failed primary list fetch. Message is fit for display.
type FetchError struct {
	Collection types.CollectionKind
	Message    string
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %s: %v", e.Collection, e.Message, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Library is safe for concurrent use if its cache and upstream are.
// Concurrent misses on the same key each fetch; the last Put wins.
type Library struct {
	upstream Upstream
	cache    cache.Cache
	sessions Sessions
}

// Sessions tells whether a session still exists. *session.Manager implements it.
type Sessions interface {
	Alive(ctx context.Context, id string) bool
}

// New creates a library over an upstream and a cache. When sessions is
// non-nil, a fetch that completes after its session logged out is not
// left in the cache.
func New(upstream Upstream, c cache.Cache, sessions Sessions) *Library {
	return &Library{upstream: upstream, cache: c, sessions: sessions}
}

// Channels returns the live channels of the session.
func (l *Library) Channels(ctx context.Context, s *types.Session) ([]types.Channel, error) {
	col, err := l.load(ctx, s, types.CollectionChannels, "", func(creds types.Credentials) (types.Collection, error) {
		raw, err := l.upstream.LiveStreams(ctx, creds)
		if err != nil {
			return types.Collection{}, err
		}
		channels, err := normalize.Channels(raw, creds)
		return types.Collection{Kind: types.CollectionChannels, Channels: channels}, err
	})
	return col.Channels, err
}

// Movies returns the VOD titles of the session.
func (l *Library) Movies(ctx context.Context, s *types.Session) ([]types.Movie, error) {
	col, err := l.load(ctx, s, types.CollectionMovies, "", func(creds types.Credentials) (types.Collection, error) {
		raw, err := l.upstream.VodStreams(ctx, creds)
		if err != nil {
			return types.Collection{}, err
		}
		movies, err := normalize.Movies(raw, creds)
		return types.Collection{Kind: types.CollectionMovies, Movies: movies}, err
	})
	return col.Movies, err
}

// Series returns the shows of the session.
func (l *Library) Series(ctx context.Context, s *types.Session) ([]types.Series, error) {
	col, err := l.load(ctx, s, types.CollectionSeries, "", func(creds types.Credentials) (types.Collection, error) {
		raw, err := l.upstream.Series(ctx, creds)
		if err != nil {
			return types.Collection{}, err
		}
		series, err := normalize.SeriesList(raw)
		return types.Collection{Kind: types.CollectionSeries, Series: series}, err
	})
	return col.Series, err
}

// Episodes returns the seasons of one series and its info object. seriesID
// is either the panel id or a series_N identifier.
func (l *Library) Episodes(ctx context.Context, s *types.Session, seriesID string) ([]types.Season, types.Blob, error) {
	if kind, id, err := types.ParseContentID(seriesID); err == nil && kind == types.KindSeries {
		seriesID = id
	}
	col, err := l.load(ctx, s, types.CollectionEpisodes, seriesID, func(creds types.Credentials) (types.Collection, error) {
		raw, err := l.upstream.SeriesInfo(ctx, creds, seriesID)
		if err != nil {
			return types.Collection{}, err
		}
		seasons, info, err := normalize.SeriesInfo(raw, creds)
		return types.Collection{Kind: types.CollectionEpisodes, Seasons: seasons, SeriesInfo: info}, err
	})
	return col.Seasons, col.SeriesInfo, err
}

// Categories returns the categories of one namespace. It never fails; an
// empty result is not cached so the next call asks the panel again.
func (l *Library) Categories(ctx context.Context, s *types.Session, kind types.CategoryKind) []types.Category {
	key := cache.Key{SessionID: s.ID, Kind: types.CategoryCollection(kind)}
	if col, ok := l.cache.Get(ctx, key); ok {
		return col.Categories
	}

	categories := l.upstream.Categories(ctx, s.Credentials(), kind)
	if len(categories) == 0 {
		return []types.Category{}
	}
	l.store(ctx, key, types.Collection{Kind: key.Kind, Categories: categories})
	return categories
}

// Refresh drops every cached collection of the session.
func (l *Library) Refresh(ctx context.Context, s *types.Session) error {
	utils.InfoLog("Refreshing content of session %s", s.ID)
	return l.cache.Invalidate(ctx, s.ID)
}

// ErrNotFound is returned by Resolve for an id absent from the library.
var ErrNotFound = errors.New("content not found")

// Resolve turns a content identifier into something playable. Episodes are
// searched in the series already browsed.
func (l *Library) Resolve(ctx context.Context, s *types.Session, contentID string) (types.Playable, error) {
	kind, _, err := types.ParseContentID(contentID)
	if err != nil {
		return types.Playable{}, err
	}

	switch kind {
	case types.KindLive:
		channels, err := l.Channels(ctx, s)
		if err != nil {
			return types.Playable{}, err
		}
		for _, c := range channels {
			if c.ID == contentID {
				return types.PlayableChannel(c), nil
			}
		}
	case types.KindMovie:
		movies, err := l.Movies(ctx, s)
		if err != nil {
			return types.Playable{}, err
		}
		for _, m := range movies {
			if m.ID == contentID {
				return types.PlayableMovie(m), nil
			}
		}
	case types.KindEpisode:
		if e, ok := l.cachedEpisode(ctx, s, contentID); ok {
			return types.PlayableEpisode(e), nil
		}
	default:
		return types.Playable{}, fmt.Errorf("%s is not playable", contentID)
	}
	return types.Playable{}, fmt.Errorf("%s: %w", contentID, ErrNotFound)
}

// cachedEpisode looks for an episode in the cached seasons of every listed series.
func (l *Library) cachedEpisode(ctx context.Context, s *types.Session, contentID string) (types.Episode, bool) {
	col, ok := l.cache.Get(ctx, cache.Key{SessionID: s.ID, Kind: types.CollectionSeries})
	if !ok {
		return types.Episode{}, false
	}
	for _, series := range col.Series {
		seasons, ok := l.cache.Get(ctx, cache.Key{SessionID: s.ID, Kind: types.CollectionEpisodes, Scope: series.SeriesID})
		if !ok {
			continue
		}
		for _, season := range seasons.Seasons {
			for _, e := range season.Episodes {
				if e.ID == contentID {
					return e, true
				}
			}
		}
	}
	return types.Episode{}, false
}

// load serves a collection from the cache or fetches, normalizes and stores it.
func (l *Library) load(ctx context.Context, s *types.Session, kind types.CollectionKind, scope string,
	fetch func(types.Credentials) (types.Collection, error)) (types.Collection, error) {
	key := cache.Key{SessionID: s.ID, Kind: kind, Scope: scope}
	if col, ok := l.cache.Get(ctx, key); ok {
		utils.DebugLog("Cache hit for %s of session %s", kind, s.ID)
		return col, nil
	}

	col, err := fetch(s.Credentials())
	if err != nil {
		utils.ErrorLog("Failed to load %s for session %s: %v", kind, s.ID, err)
		return types.Collection{}, fetchError(kind, err)
	}

	l.store(ctx, key, col)
	utils.DebugLog("Loaded %d %s for session %s", col.Len(), kind, s.ID)
	return col, nil
}

// store caches col. The session is checked after the Put: a logout that
// ran before it has already purged the cache and must not be undone.
func (l *Library) store(ctx context.Context, key cache.Key, col types.Collection) {
	if err := l.cache.Put(ctx, key, col); err != nil {
		utils.WarnLog("Could not cache %s for session %s: %v", key.Kind, key.SessionID, err)
		return
	}
	if l.sessions == nil || l.sessions.Alive(ctx, key.SessionID) {
		return
	}
	utils.DebugLog("Session %s ended during fetch of %s, dropping its cache", key.SessionID, key.Kind)
	if err := l.cache.Invalidate(ctx, key.SessionID); err != nil {
		utils.WarnLog("Could not purge cache of session %s: %v", key.SessionID, err)
	}
}

func fetchError(kind types.CollectionKind, err error) *FetchError {
	fe := &FetchError{Collection: kind, Err: err}
	switch {
	case errors.Is(err, normalize.ErrNoEpisodes):
		fe.Message = msgNoEpisodes
	case xtream.IsKind(err, xtream.Unreachable):
		fe.Message = msgUnreachable
	default:
		fe.Message = msgBadFormat
	}
	return fe
}
