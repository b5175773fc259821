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

// Package server exposes the player core over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/lucasduport/xtream-player/pkg/config"
	"github.com/lucasduport/xtream-player/pkg/library"
	"github.com/lucasduport/xtream-player/pkg/session"
	"github.com/lucasduport/xtream-player/pkg/utils"
)

// Config represents the server configuration
type Config struct {
	*config.PlayerConfig

	sessions *session.Manager
	library  *library.Library
	started  time.Time
}

// NewServer wires the HTTP API over a session store and a library.
func NewServer(conf *config.PlayerConfig, sessions *session.Manager, lib *library.Library) *Config {
	return &Config{
		PlayerConfig: conf,
		sessions:     sessions,
		library:      lib,
		started:      time.Now(),
	}
}

// Router builds the gin engine with every route.
func (c *Config) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(), c.corsMiddleware())
	c.routes(router)
	return router
}

func (c *Config) corsMiddleware() gin.HandlerFunc {
	if len(c.CORSOrigins) == 0 {
		return cors.Default()
	}
	cfg := cors.DefaultConfig()
	cfg.AllowOrigins = c.CORSOrigins
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}
	return cors.New(cfg)
}

// Serve listens until ctx is cancelled, then shuts down gracefully.
func (c *Config) Serve(ctx context.Context) error {
	utils.InfoLog("[xtream-player] Server is starting...")

	srv := &http.Server{
		Addr:              c.HostConfig.Addr(),
		Handler:           c.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		utils.InfoLog("[xtream-player] Server is ready and listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	utils.InfoLog("[xtream-player] Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
