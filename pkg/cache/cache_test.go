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

package cache

import (
	"context"
	"reflect"
	"sync"
	"testing"

	"github.com/lucasduport/xtream-player/pkg/types"
)

func movies(names ...string) types.Collection {
	c := types.Collection{Kind: types.CollectionMovies}
	for _, n := range names {
		c.Movies = append(c.Movies, types.Movie{ID: "movie_" + n, Name: n})
	}
	return c
}

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	key := Key{SessionID: "s1", Kind: types.CollectionMovies}

	if _, ok := m.Get(ctx, key); ok {
		t.Fatal("empty cache returned an entry")
	}

	x := movies("1", "2")
	if err := m.Put(ctx, key, x); err != nil {
		t.Fatal(err)
	}
	got, ok := m.Get(ctx, key)
	if !ok || !reflect.DeepEqual(got, x) {
		t.Errorf("Get() = %+v, %v, want %+v", got, ok, x)
	}

	y := movies("3")
	m.Put(ctx, key, y)
	if got, _ := m.Get(ctx, key); !reflect.DeepEqual(got, y) {
		t.Errorf("Put() should replace wholesale, got %+v", got)
	}
}

func TestMemoryKeysDoNotCollide(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	keys := []Key{
		{SessionID: "s1", Kind: types.CollectionMovies},
		{SessionID: "s1", Kind: types.CollectionSeries},
		{SessionID: "s2", Kind: types.CollectionMovies},
		{SessionID: "s1", Kind: types.CollectionEpisodes, Scope: "9"},
		{SessionID: "s1", Kind: types.CollectionEpisodes, Scope: "10"},
	}
	for i, k := range keys {
		m.Put(ctx, k, movies(string(rune('a'+i))))
	}
	for i, k := range keys {
		got, ok := m.Get(ctx, k)
		if !ok || got.Movies[0].Name != string(rune('a'+i)) {
			t.Errorf("Get(%+v) = %+v", k, got)
		}
	}
}

func TestMemoryInvalidate(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	kinds := []types.CollectionKind{
		types.CollectionChannels, types.CollectionMovies, types.CollectionSeries,
		types.CollectionEpisodes, types.CollectionLiveCategories,
		types.CollectionMovieCategories, types.CollectionSeriesCategories,
	}
	for _, k := range kinds {
		m.Put(ctx, Key{SessionID: "s1", Kind: k}, types.Collection{Kind: k})
		m.Put(ctx, Key{SessionID: "s2", Kind: k}, types.Collection{Kind: k})
	}

	if err := m.Invalidate(ctx, "s1"); err != nil {
		t.Fatal(err)
	}
	for _, k := range kinds {
		if _, ok := m.Get(ctx, Key{SessionID: "s1", Kind: k}); ok {
			t.Errorf("%s survived invalidation", k)
		}
		if _, ok := m.Get(ctx, Key{SessionID: "s2", Kind: k}); !ok {
			t.Errorf("%s of another session was dropped", k)
		}
	}
	if m.Len("s1") != 0 || m.Len("s2") != len(kinds) {
		t.Errorf("Len() = %d/%d", m.Len("s1"), m.Len("s2"))
	}

	if err := m.Invalidate(ctx, "unknown"); err != nil {
		t.Errorf("invalidating an unknown session: %v", err)
	}
}

func TestMemoryConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := Key{SessionID: "s", Kind: types.CollectionChannels}
			for j := 0; j < 100; j++ {
				m.Put(ctx, key, types.Collection{Kind: types.CollectionChannels})
				m.Get(ctx, key)
				if j%25 == 0 {
					m.Invalidate(ctx, "s")
				}
			}
		}(i)
	}
	wg.Wait()
}
