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
	"reflect"
	"testing"
	"time"

	"github.com/lucasduport/xtream-player/pkg/types"
)

var creds = types.Credentials{Host: "http://panel.example:8080/", Username: "alice", Password: "s3cr3t"}

func TestChannels(t *testing.T) {
	raw := []byte(`[
		{"stream_id":482,"name":"News 24","category_id":"3","category_name":"Jornalismo","stream_icon":"http://img/1.png","epg_channel_id":"news.br","added":"1700000000","is_adult":"0"},
		{"stream_id":"483","name":"","category_name":null,"added":"not-a-number","is_adult":1},
		{"name":"no id"},
		"garbage"
	]`)

	got, err := Channels(raw, creds)
	if err != nil {
		t.Fatalf("Channels() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Channels() returned %d channels, want 2", len(got))
	}

	added := time.Unix(1700000000, 0).UTC()
	want0 := types.Channel{
		ID:           "channel_482",
		StreamID:     "482",
		Name:         "News 24",
		CategoryID:   "3",
		CategoryName: "Jornalismo",
		StreamURL:    "http://panel.example:8080/live/alice/s3cr3t/482.m3u8",
		Logo:         "http://img/1.png",
		EPGChannelID: "news.br",
		Added:        &added,
	}
	if !reflect.DeepEqual(got[0], want0) {
		t.Errorf("Channels()[0] = %+v\nwant %+v", got[0], want0)
	}

	c := got[1]
	if c.ID != "channel_483" || c.Name != UnnamedChannel || c.CategoryName != DefaultCategory {
		t.Errorf("Channels()[1] defaults = %+v", c)
	}
	if c.Added != nil {
		t.Errorf("unparseable added should be nil, got %v", c.Added)
	}
	if !c.NSFW {
		t.Error("is_adult=1 should mark the channel NSFW")
	}
}

func TestChannelsRejectsNonArray(t *testing.T) {
	if _, err := Channels([]byte(`{"a":1}`), creds); err == nil {
		t.Error("Channels() should fail on an object")
	}
	got, err := Channels([]byte(`[]`), creds)
	if err != nil || got == nil || len(got) != 0 {
		t.Errorf("Channels([]) = %#v, %v", got, err)
	}
}

func TestMovies(t *testing.T) {
	raw := []byte(`[
		{"stream_id":17,"name":"Filme","container_extension":"mkv","plot":"p","cast":"c","director":"d","genre":"g","releasedate":"2020-01-01","rating":"7.5","duration":"01:40:00"},
		{"stream_id":18}
	]`)
	got, err := Movies(raw, creds)
	if err != nil || len(got) != 2 {
		t.Fatalf("Movies() = %+v, %v", got, err)
	}
	if got[0].ID != "movie_17" || got[0].StreamURL != "http://panel.example:8080/movie/alice/s3cr3t/17.mkv" {
		t.Errorf("Movies()[0] = %+v", got[0])
	}
	if got[0].Rating != "7.5" || got[0].Duration != "01:40:00" || got[0].ReleaseDate != "2020-01-01" {
		t.Errorf("Movies()[0] metadata = %+v", got[0])
	}
	if got[1].Name != UnnamedMovie || got[1].ContainerExtension != "mp4" ||
		got[1].StreamURL != "http://panel.example:8080/movie/alice/s3cr3t/18.mp4" {
		t.Errorf("Movies()[1] defaults = %+v", got[1])
	}
	if got[1].Added != nil {
		t.Error("missing added must stay nil")
	}
}

func TestSeriesList(t *testing.T) {
	raw := []byte(`[{"series_id":9,"name":"Show","cover":"http://img/s.png","release_date":"2019","last_modified":"1600000000"},{"series_id":"10"}]`)
	got, err := SeriesList(raw)
	if err != nil || len(got) != 2 {
		t.Fatalf("SeriesList() = %+v, %v", got, err)
	}
	if got[0].ID != "series_9" || got[0].Logo != "http://img/s.png" || got[0].ReleaseDate != "2019" {
		t.Errorf("SeriesList()[0] = %+v", got[0])
	}
	if got[0].LastModified == nil || got[0].LastModified.Unix() != 1600000000 {
		t.Errorf("LastModified = %v", got[0].LastModified)
	}
	if got[1].Name != UnnamedSeries || got[1].CategoryName != DefaultCategory {
		t.Errorf("SeriesList()[1] defaults = %+v", got[1])
	}
}

func TestDeterminism(t *testing.T) {
	rec := []byte(`{"stream_id":"77","name":"X","container_extension":"ts"}`)
	a, b := Movie(rec, creds), Movie(rec, creds)
	if a.ID != b.ID || a.StreamURL != b.StreamURL {
		t.Errorf("normalization is not deterministic: %q/%q vs %q/%q", a.ID, a.StreamURL, b.ID, b.StreamURL)
	}
	ca, cb := Channel(rec, creds), Channel(rec, creds)
	if !reflect.DeepEqual(ca, cb) {
		t.Errorf("Channel() differs across calls: %+v vs %+v", ca, cb)
	}
}

func TestURLsEmbedCredentialsVerbatim(t *testing.T) {
	odd := types.Credentials{Host: "https://h.example//", Username: "us er", Password: "p@ss/w"}
	if got, want := LiveURL(odd, "1"), "https://h.example/live/us er/p@ss/w/1.m3u8"; got != want {
		t.Errorf("LiveURL() = %q, want %q", got, want)
	}
	if got, want := EpisodeURL(odd, "5", ""), "https://h.example/series/us er/p@ss/w/5.mp4"; got != want {
		t.Errorf("EpisodeURL() = %q, want %q", got, want)
	}
}

func TestTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		nil  bool
	}{
		{in: "1700000000", want: 1700000000},
		{in: " 42 ", want: 42},
		{in: "", nil: true},
		{in: "0", nil: true},
		{in: "-5", nil: true},
		{in: "2020-01-01", nil: true},
	}
	for _, tt := range tests {
		got := Timestamp(tt.in)
		if tt.nil {
			if got != nil {
				t.Errorf("Timestamp(%q) = %v, want nil", tt.in, got)
			}
			continue
		}
		if got == nil || got.Unix() != tt.want || got.Location() != time.UTC {
			t.Errorf("Timestamp(%q) = %v, want %d UTC", tt.in, got, tt.want)
		}
	}
}
