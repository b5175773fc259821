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

// Package xtream talks to Xtream-Codes-compatible panels through player_api.php.
package xtream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/buger/jsonparser"
	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/lucasduport/xtream-player/pkg/metrics"
	"github.com/lucasduport/xtream-player/pkg/types"
	"github.com/lucasduport/xtream-player/pkg/utils"
)

// player_api.php actions
const (
	actionAuth             = ""
	getLiveStreams         = "get_live_streams"
	getVodStreams          = "get_vod_streams"
	getSeries              = "get_series"
	getSeriesInfo          = "get_series_info"
	getLiveCategories      = "get_live_categories"
	getVodCategories       = "get_vod_categories"
	getSeriesCategoriesAct = "get_series_categories"
)

// Config tunes the adapter.
type Config struct {
	UserAgent    string
	AuthTimeout  time.Duration
	ListTimeout  time.Duration
	MaxBodyBytes int64

	// RateLimit is the request rate allowed per second across all panels; 0 disables limiting.
	RateLimit float64
	RateBurst int

	// BreakerFailures consecutive failures open a host's breaker for BreakerCooldown.
	BreakerFailures uint32
	BreakerCooldown time.Duration

	// DumpDir receives bodies that fail shape validation.
	DumpDir string
}

// DefaultConfig returns the timeouts used by the web player: 10s for the
// auth probe and 15s for content lists.
func DefaultConfig() Config {
	return Config{
		UserAgent:       utils.GetUserAgent(),
		AuthTimeout:     10 * time.Second,
		ListTimeout:     15 * time.Second,
		MaxBodyBytes:    64 << 20,
		RateBurst:       10,
		BreakerFailures: 5,
		BreakerCooldown: 30 * time.Second,
	}
}

// Client issues player_api.php requests. It holds no credentials; every
// call receives the session's credentials explicitly. A Client never retries.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[[]byte]
}

// New creates a client. A nil httpClient uses a client without a global
// timeout since every call carries its own deadline.
func New(cfg Config, httpClient *http.Client) *Client {
	def := DefaultConfig()
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.AuthTimeout <= 0 {
		cfg.AuthTimeout = def.AuthTimeout
	}
	if cfg.ListTimeout <= 0 {
		cfg.ListTimeout = def.ListTimeout
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = def.MaxBodyBytes
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = def.BreakerFailures
	}
	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = def.BreakerCooldown
	}
	if httpClient == nil {
		httpClient = &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		}
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		cfg:      cfg,
		http:     httpClient,
		limiter:  rate.NewLimiter(limit, burst),
		breakers: make(map[string]*gobreaker.CircuitBreaker[[]byte]),
	}
}

// AuthResponse holds the two payloads of a successful probe, verbatim.
type AuthResponse struct {
	UserInfo   types.Blob
	ServerInfo types.Blob
}

// Authenticate probes the panel with the credentials. The body must be an
// object carrying both user_info and server_info objects.
func (c *Client) Authenticate(ctx context.Context, creds types.Credentials) (*AuthResponse, error) {
	body, err := c.fetch(ctx, creds, actionAuth, nil, c.cfg.AuthTimeout)
	if err != nil {
		return nil, err
	}
	if err := expectType(body, jsonparser.Object); err != nil {
		return nil, c.formatError(actionAuth, body, err)
	}

	userInfo, dt, _, err := jsonparser.Get(body, "user_info")
	if err != nil || dt != jsonparser.Object {
		return nil, c.formatError(actionAuth, body, errors.New("missing user_info object"))
	}
	serverInfo, dt, _, err := jsonparser.Get(body, "server_info")
	if err != nil || dt != jsonparser.Object {
		return nil, c.formatError(actionAuth, body, errors.New("missing server_info object"))
	}

	return &AuthResponse{
		UserInfo:   append(types.Blob(nil), userInfo...),
		ServerInfo: append(types.Blob(nil), serverInfo...),
	}, nil
}

// LiveStreams returns the raw get_live_streams array.
func (c *Client) LiveStreams(ctx context.Context, creds types.Credentials) ([]byte, error) {
	return c.list(ctx, creds, getLiveStreams)
}

// VodStreams returns the raw get_vod_streams array.
func (c *Client) VodStreams(ctx context.Context, creds types.Credentials) ([]byte, error) {
	return c.list(ctx, creds, getVodStreams)
}

// Series returns the raw get_series array.
func (c *Client) Series(ctx context.Context, creds types.Credentials) ([]byte, error) {
	return c.list(ctx, creds, getSeries)
}

// SeriesInfo returns the raw get_series_info object, which must carry an episodes key.
func (c *Client) SeriesInfo(ctx context.Context, creds types.Credentials, seriesID string) ([]byte, error) {
	q := url.Values{}
	q.Set("series_id", seriesID)
	body, err := c.fetch(ctx, creds, getSeriesInfo, q, c.cfg.ListTimeout)
	if err != nil {
		return nil, err
	}
	if err := expectType(body, jsonparser.Object); err != nil {
		return nil, c.formatError(getSeriesInfo, body, err)
	}
	_, dt, _, err := jsonparser.Get(body, "episodes")
	if err != nil || (dt != jsonparser.Object && dt != jsonparser.Array) {
		return nil, c.formatError(getSeriesInfo, body, errors.New("missing episodes"))
	}
	return body, nil
}

type rawCategory struct {
	CategoryID   FlexString `json:"category_id"`
	CategoryName string     `json:"category_name"`
	ParentID     FlexInt    `json:"parent_id"`
}

// Categories returns the categories of one namespace. Categories only
// enrich browsing, so every failure is logged and yields an empty list.
func (c *Client) Categories(ctx context.Context, creds types.Credentials, kind types.CategoryKind) []types.Category {
	action := getLiveCategories
	switch kind {
	case types.CategoryMovies:
		action = getVodCategories
	case types.CategorySeries:
		action = getSeriesCategoriesAct
	}

	body, err := c.list(ctx, creds, action)
	if err != nil {
		utils.WarnLog("Ignoring %s failure: %v", action, err)
		return []types.Category{}
	}

	var raw []rawCategory
	if err := json.Unmarshal(body, &raw); err != nil {
		utils.WarnLog("Ignoring undecodable %s body: %v", action, err)
		return []types.Category{}
	}

	out := make([]types.Category, 0, len(raw))
	for _, r := range raw {
		name := strings.TrimSpace(r.CategoryName)
		if name == "" {
			name = "Outros"
		}
		out = append(out, types.Category{
			ID:       string(r.CategoryID),
			Name:     name,
			ParentID: int(r.ParentID),
			Kind:     kind,
		})
	}
	return out
}

func (c *Client) list(ctx context.Context, creds types.Credentials, action string) ([]byte, error) {
	body, err := c.fetch(ctx, creds, action, nil, c.cfg.ListTimeout)
	if err != nil {
		return nil, err
	}
	if err := expectType(body, jsonparser.Array); err != nil {
		return nil, c.formatError(action, body, err)
	}
	return body, nil
}

// fetch performs one bounded GET and returns the trimmed body.
func (c *Client) fetch(ctx context.Context, creds types.Credentials, action string, extra url.Values, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	host := strings.TrimRight(strings.TrimSpace(creds.Host), "/")
	u, err := url.Parse(host + "/player_api.php")
	if err != nil || u.Host == "" {
		if err == nil {
			err = fmt.Errorf("no host in %q", host)
		}
		return nil, &AdapterError{Kind: Unreachable, Action: action, Err: fmt.Errorf("invalid panel URL: %w", err)}
	}
	params := url.Values{}
	params.Set("username", creds.Username)
	params.Set("password", creds.Password)
	if action != "" {
		params.Set("action", action)
	}
	for k, vs := range extra {
		for _, v := range vs {
			params.Add(k, v)
		}
	}
	u.RawQuery = params.Encode()

	if err := c.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		} else {
			err = fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
		}
		c.observe(action, "rejected", 0)
		return nil, &AdapterError{Kind: Unreachable, Action: action, Err: err}
	}

	utils.DebugLog("Xtream request: %s", utils.MaskURL(u.String()))
	start := time.Now()

	body, err := c.breaker(host).Execute(func() ([]byte, error) {
		return c.do(ctx, u.String())
	})
	if err != nil {
		ae := &AdapterError{
			Kind:   Unreachable,
			Action: action,
			Err:    utils.RedactError(err, creds.Password, url.QueryEscape(creds.Password)),
		}
		var se *statusError
		switch {
		case errors.As(err, &se):
			ae.Status = se.code
		case errors.Is(err, errBodyTooLarge):
			ae.Kind = UnexpectedFormat
		}
		outcome := "unreachable"
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			outcome = "rejected"
		case ae.Kind == UnexpectedFormat:
			outcome = "unexpected_format"
		case ae.Timeout():
			outcome = "timeout"
		}
		c.observe(action, outcome, time.Since(start))
		return nil, ae
	}

	c.observe(action, "ok", time.Since(start))
	body = bytes.TrimSpace(bytes.TrimPrefix(body, []byte("\xef\xbb\xbf")))
	return body, nil
}

func (c *Client) do(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &statusError{code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > c.cfg.MaxBodyBytes {
		return nil, errBodyTooLarge
	}
	return body, nil
}

// breaker returns the circuit breaker of a panel host.
func (c *Client) breaker(host string) *gobreaker.CircuitBreaker[[]byte] {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cb, ok := c.breakers[host]; ok {
		return cb
	}
	threshold := c.cfg.BreakerFailures
	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        host,
		MaxRequests: 1,
		Timeout:     c.cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, errBodyTooLarge) {
				return true
			}
			var se *statusError
			return errors.As(err, &se) && se.code < 500
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			utils.WarnLog("Upstream circuit for %s: %s -> %s", name, from, to)
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerGauge(to))
		},
	})
	c.breakers[host] = cb
	return cb
}

func breakerGauge(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

func (c *Client) observe(action, outcome string, d time.Duration) {
	if action == "" {
		action = "auth"
	}
	metrics.UpstreamRequests.WithLabelValues(action, outcome).Inc()
	if d > 0 {
		metrics.UpstreamDuration.WithLabelValues(action).Observe(d.Seconds())
	}
}

// formatError wraps a shape failure and keeps the offending body when a dump directory is set.
func (c *Client) formatError(action string, body []byte, err error) error {
	if path := dumpBody(c.cfg.DumpDir, action, body); path != "" {
		err = fmt.Errorf("%w (body saved to %s)", err, path)
	}
	c.observe(action, "unexpected_format", 0)
	return &AdapterError{Kind: UnexpectedFormat, Action: action, Err: err}
}

// expectType checks that body is valid JSON whose top-level value has type want.
func expectType(body []byte, want jsonparser.ValueType) error {
	if len(body) == 0 {
		return errors.New("empty body")
	}
	if !json.Valid(body) {
		return errors.New("body is not JSON")
	}
	_, dt, _, err := jsonparser.Get(body)
	if err != nil {
		return err
	}
	if dt != want {
		return fmt.Errorf("expected %s, got %s", want, dt)
	}
	return nil
}
