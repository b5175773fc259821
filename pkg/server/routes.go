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
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lucasduport/xtream-player/pkg/metrics"
	"github.com/lucasduport/xtream-player/pkg/types"
	"github.com/lucasduport/xtream-player/pkg/utils"
)

func (c *Config) routes(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.GET("/ping", c.ping)

	auth := api.Group("/auth")
	auth.POST("/xtream", c.authenticate)
	auth.POST("/restore", c.restore)
	auth.GET("/:sessionId", c.sessionAuth(), c.getSession)
	auth.DELETE("/:sessionId", c.logout)

	content := api.Group("/", c.sessionAuth())
	content.GET("/channels/:sessionId", c.getChannels)
	content.GET("/movies/:sessionId", c.getMovies)
	content.GET("/series/:sessionId", c.getSeries)
	content.GET("/series/:sessionId/:seriesId/episodes", c.getEpisodes)
	content.GET("/categories/:sessionId", c.getCategories)
	content.POST("/refresh/:sessionId", c.refresh)
	content.GET("/play/:sessionId/:contentId", c.play)
	content.GET("/playlist/:sessionId", c.getPlaylist)

	utils.DebugLog("API routes configured")
}

func (c *Config) ping(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, types.APIResponse{
		Success: true,
		Message: "API is running",
		Data: map[string]interface{}{
			"time":    time.Now().UTC().Format(time.RFC3339),
			"uptime":  time.Since(c.started).Truncate(time.Second).String(),
			"storage": c.Storage,
		},
	})
}

// requestLogger logs each request at debug level and counts it per route.
// Paths carry session ids, so the route template is logged instead.
func requestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := ctx.Writer.Status()
		metrics.APIRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		utils.DebugLog("%s %s -> %d (%s)", ctx.Request.Method, route, status, time.Since(start).Truncate(time.Microsecond))
	}
}
