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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lucasduport/xtream-player/pkg/cache"
	"github.com/lucasduport/xtream-player/pkg/config"
	"github.com/lucasduport/xtream-player/pkg/library"
	"github.com/lucasduport/xtream-player/pkg/session"
	"github.com/lucasduport/xtream-player/pkg/xtream"
)

const (
	panelAuth   = `{"user_info":{"username":"alice","auth":1,"exp_date":null},"server_info":{"url":"panel","timezone":"UTC"}}`
	panelLive   = `[{"stream_id":1,"name":"News","category_id":"3","category_name":"Info","epg_channel_id":"news.br","stream_icon":"http://img/1.png"},{"stream_id":2,"name":"","category_id":"4"}]`
	panelSeries = `[{"series_id":7,"name":"Show"}]`
	panelInfo   = `{"info":{"name":"Show"},"episodes":{"2":[{"id":"201","episode_num":1}],"1":[{"id":"102","episode_num":"2"},{"id":"101","episode_num":"1"}]}}`
	panelCats   = `[{"category_id":"3","category_name":"Info","parent_id":0}]`
)

type testEnv struct {
	router *gin.Engine
	panel  *httptest.Server
	calls  *int64
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var calls int64
	panel := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		q := r.URL.Query()
		if q.Get("username") != "alice" || q.Get("password") != "secret" {
			w.Write([]byte(`{"user_info":{"auth":0}}`))
			return
		}
		switch q.Get("action") {
		case "":
			w.Write([]byte(panelAuth))
		case "get_live_streams":
			w.Write([]byte(panelLive))
		case "get_vod_streams":
			w.Write([]byte(`<html>maintenance</html>`))
		case "get_series":
			w.Write([]byte(panelSeries))
		case "get_series_info":
			if q.Get("series_id") != "7" {
				w.Write([]byte(`{"info":{}}`))
				return
			}
			w.Write([]byte(panelInfo))
		case "get_live_categories":
			w.Write([]byte(panelCats))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	t.Cleanup(panel.Close)

	cfg := xtream.DefaultConfig()
	cfg.AuthTimeout = time.Second
	cfg.ListTimeout = time.Second
	upstream := xtream.New(cfg, nil)

	c := cache.NewMemory()
	sessions := session.NewManager(upstream, session.NewMemoryRepository(), c)
	lib := library.New(upstream, c, sessions)
	conf := &config.PlayerConfig{HostConfig: &config.HostConfiguration{Port: 8080}, Storage: config.StorageMemory}

	return &testEnv{
		router: NewServer(conf, sessions, lib).Router(),
		panel:  panel,
		calls:  &calls,
	}
}

func (e *testEnv) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var out map[string]interface{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("%s %s: invalid JSON %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w, out
}

func (e *testEnv) login(t *testing.T) string {
	t.Helper()
	body := `{"host":"` + e.panel.URL + `/","username":"alice","password":"secret"}`
	w, out := e.do(t, http.MethodPost, "/api/auth/xtream", body)
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", w.Code, w.Body.String())
	}
	id, _ := out["sessionId"].(string)
	if id == "" {
		t.Fatalf("no sessionId in %v", out)
	}
	return id
}

func TestAuthenticate(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"ok", `{"host":"` + e.panel.URL + `","username":"alice","password":"secret"}`, http.StatusOK},
		{"wrong password", `{"host":"` + e.panel.URL + `","username":"alice","password":"nope"}`, http.StatusUnauthorized},
		{"missing field", `{"host":"` + e.panel.URL + `","username":"alice"}`, http.StatusBadRequest},
		{"bad host", `{"host":"ftp://panel","username":"alice","password":"secret"}`, http.StatusBadRequest},
		{"not json", `hello`, http.StatusBadRequest},
		{"unreachable", `{"host":"http://127.0.0.1:1","username":"alice","password":"secret"}`, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, out := e.do(t, http.MethodPost, "/api/auth/xtream", tt.body)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.status, w.Body.String())
			}
			if success, _ := out["success"].(bool); success != (tt.status == http.StatusOK) {
				t.Errorf("success = %v", out["success"])
			}
			if tt.status == http.StatusOK {
				ui, _ := out["userInfo"].(map[string]interface{})
				if ui["username"] != "alice" {
					t.Errorf("userInfo = %v", out["userInfo"])
				}
			}
		})
	}
}

func TestSessionSummaryHidesPassword(t *testing.T) {
	e := newTestEnv(t)
	id := e.login(t)

	w, _ := e.do(t, http.MethodGet, "/api/auth/"+id, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "secret") {
		t.Errorf("summary leaks the password: %s", w.Body.String())
	}
}

func TestChannelsAreCachedPerSession(t *testing.T) {
	e := newTestEnv(t)
	id := e.login(t)
	before := atomic.LoadInt64(e.calls)

	for i := 0; i < 2; i++ {
		w, out := e.do(t, http.MethodGet, "/api/channels/"+id, "")
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
		}
		channels, _ := out["channels"].([]interface{})
		if len(channels) != 2 {
			t.Fatalf("got %d channels", len(channels))
		}
		second := channels[1].(map[string]interface{})
		if second["name"] != "Canal sem nome" || second["categoryName"] != "Outros" {
			t.Errorf("placeholders not applied: %v", second)
		}
	}
	if got := atomic.LoadInt64(e.calls) - before; got != 1 {
		t.Errorf("panel called %d times, want 1", got)
	}

	if w, _ := e.do(t, http.MethodPost, "/api/refresh/"+id, ""); w.Code != http.StatusOK {
		t.Fatalf("refresh status = %d", w.Code)
	}
	e.do(t, http.MethodGet, "/api/channels/"+id, "")
	if got := atomic.LoadInt64(e.calls) - before; got != 2 {
		t.Errorf("panel called %d times after refresh, want 2", got)
	}
}

func TestUnknownSessionIsRejected(t *testing.T) {
	e := newTestEnv(t)
	for _, path := range []string{"/api/channels/nope", "/api/movies/nope", "/api/categories/nope", "/api/auth/nope"} {
		w, out := e.do(t, http.MethodGet, path, "")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d", path, w.Code)
		}
		if out["error"] != msgSessionInvalid {
			t.Errorf("%s: error = %v", path, out["error"])
		}
	}
}

func TestLogout(t *testing.T) {
	e := newTestEnv(t)
	id := e.login(t)

	for i := 0; i < 2; i++ {
		w, out := e.do(t, http.MethodDelete, "/api/auth/"+id, "")
		if w.Code != http.StatusOK || out["success"] != true {
			t.Fatalf("logout %d: status = %d, body = %s", i, w.Code, w.Body.String())
		}
	}
	if w, _ := e.do(t, http.MethodGet, "/api/channels/"+id, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("channels after logout: status = %d", w.Code)
	}
}

func TestMoviesBadFormat(t *testing.T) {
	e := newTestEnv(t)
	id := e.login(t)

	w, out := e.do(t, http.MethodGet, "/api/movies/"+id, "")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", w.Code)
	}
	if out["success"] != false || out["error"] == "" {
		t.Errorf("body = %v", out)
	}
}

func TestCategories(t *testing.T) {
	e := newTestEnv(t)
	id := e.login(t)

	tests := []struct {
		query string
		count int
	}{
		{"", 1},
		{"?type=live", 1},
		{"?type=movies", 0},
		{"?type=bogus", 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w, out := e.do(t, http.MethodGet, "/api/categories/"+id+tt.query, "")
			if w.Code != http.StatusOK || out["success"] != true {
				t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
			}
			cats, ok := out["categories"].([]interface{})
			if !ok || len(cats) != tt.count {
				t.Errorf("categories = %v, want %d", out["categories"], tt.count)
			}
		})
	}
}

func TestEpisodesAndPlay(t *testing.T) {
	e := newTestEnv(t)
	id := e.login(t)

	if w, _ := e.do(t, http.MethodGet, "/api/series/"+id, ""); w.Code != http.StatusOK {
		t.Fatalf("series status = %d", w.Code)
	}
	w, out := e.do(t, http.MethodGet, "/api/series/"+id+"/series_7/episodes", "")
	if w.Code != http.StatusOK {
		t.Fatalf("episodes status = %d, body = %s", w.Code, w.Body.String())
	}
	seasons := out["seasons"].([]interface{})
	if len(seasons) != 2 || seasons[0].(map[string]interface{})["season"] != "1" {
		t.Fatalf("seasons = %v", seasons)
	}
	first := seasons[0].(map[string]interface{})["episodes"].([]interface{})[0].(map[string]interface{})
	if first["id"] != "episode_101" {
		t.Errorf("first episode = %v", first)
	}

	if w, _ := e.do(t, http.MethodGet, "/api/series/"+id+"/8/episodes", ""); w.Code != http.StatusBadGateway && w.Code != http.StatusNotFound {
		t.Errorf("missing episodes: status = %d", w.Code)
	}

	w, out = e.do(t, http.MethodGet, "/api/play/"+id+"/episode_101", "")
	if w.Code != http.StatusOK {
		t.Fatalf("play status = %d, body = %s", w.Code, w.Body.String())
	}
	if url, _ := out["streamUrl"].(string); !strings.HasSuffix(url, "/series/alice/secret/101.mp4") {
		t.Errorf("streamUrl = %v", out["streamUrl"])
	}

	w, out = e.do(t, http.MethodGet, "/api/play/"+id+"/channel_1", "")
	if w.Code != http.StatusOK || out["live"] != true {
		t.Errorf("channel play: status = %d, body = %v", w.Code, out)
	}

	if w, _ := e.do(t, http.MethodGet, "/api/play/"+id+"/channel_99", ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown channel: status = %d", w.Code)
	}
	if w, _ := e.do(t, http.MethodGet, "/api/play/"+id+"/garbage", ""); w.Code != http.StatusBadRequest {
		t.Errorf("malformed id: status = %d", w.Code)
	}
}

func TestPlaylist(t *testing.T) {
	e := newTestEnv(t)
	id := e.login(t)

	w, _ := e.do(t, http.MethodGet, "/api/playlist/"+id, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.HasPrefix(body, "#EXTM3U\n") {
		t.Errorf("missing header: %q", body)
	}
	if !strings.Contains(body, `#EXTINF:-1 tvg-id="news.br" tvg-name="News" tvg-logo="http://img/1.png" group-title="Info",News`) {
		t.Errorf("unexpected track line in %q", body)
	}
	if !strings.Contains(body, "/live/alice/secret/1.m3u8\n") {
		t.Errorf("missing stream URL in %q", body)
	}

	w, _ = e.do(t, http.MethodGet, "/api/playlist/"+id+"?category=4", "")
	if strings.Count(w.Body.String(), "#EXTINF") != 1 || strings.Contains(w.Body.String(), "News") {
		t.Errorf("category filter not applied: %q", w.Body.String())
	}
}

func TestRestore(t *testing.T) {
	e := newTestEnv(t)
	body := `{"sessionId":"remembered-1","credentials":{"host":"` + e.panel.URL + `","username":"alice","password":"secret"},"userInfo":{"auth":1}}`

	w, out := e.do(t, http.MethodPost, "/api/auth/restore", body)
	if w.Code != http.StatusOK || out["sessionId"] != "remembered-1" {
		t.Fatalf("restore: status = %d, body = %s", w.Code, w.Body.String())
	}
	if w, _ := e.do(t, http.MethodGet, "/api/channels/remembered-1", ""); w.Code != http.StatusOK {
		t.Errorf("channels after restore: status = %d", w.Code)
	}

	w, _ = e.do(t, http.MethodPost, "/api/auth/restore", `{"credentials":{"host":"nope"}}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid restore: status = %d", w.Code)
	}
}

func TestPingAndMetrics(t *testing.T) {
	e := newTestEnv(t)
	if w, out := e.do(t, http.MethodGet, "/api/ping", ""); w.Code != http.StatusOK || out["success"] != true {
		t.Errorf("ping: status = %d", w.Code)
	}
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "xtream_player_api_requests_total") {
		t.Errorf("metrics: status = %d", w.Code)
	}
}

func TestMarshallInto(t *testing.T) {
	p := buildPlaylist(nil, "")
	var buf bytes.Buffer
	if err := marshallInto(&buf, p); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "#EXTM3U\n" {
		t.Errorf("empty playlist = %q", buf.String())
	}
}
