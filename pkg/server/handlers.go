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

	"github.com/gin-gonic/gin"

	"github.com/lucasduport/xtream-player/pkg/types"
	"github.com/lucasduport/xtream-player/pkg/utils"
)

func (c *Config) getChannels(ctx *gin.Context) {
	channels, err := c.library.Channels(ctx.Request.Context(), currentSession(ctx))
	if err != nil {
		status, msg := fetchStatus(err)
		abortWithError(ctx, status, msg)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "channels": channels})
}

func (c *Config) getMovies(ctx *gin.Context) {
	movies, err := c.library.Movies(ctx.Request.Context(), currentSession(ctx))
	if err != nil {
		status, msg := fetchStatus(err)
		abortWithError(ctx, status, msg)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "movies": movies})
}

func (c *Config) getSeries(ctx *gin.Context) {
	series, err := c.library.Series(ctx.Request.Context(), currentSession(ctx))
	if err != nil {
		status, msg := fetchStatus(err)
		abortWithError(ctx, status, msg)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "series": series})
}

func (c *Config) getEpisodes(ctx *gin.Context) {
	seasons, info, err := c.library.Episodes(ctx.Request.Context(), currentSession(ctx), ctx.Param("seriesId"))
	if err != nil {
		status, msg := fetchStatus(err)
		abortWithError(ctx, status, msg)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "seasons": seasons, "seriesInfo": info})
}

// getCategories always succeeds; an unknown or failing namespace yields an empty list.
func (c *Config) getCategories(ctx *gin.Context) {
	kind, err := types.ParseCategoryKind(ctx.Query("type"))
	if err != nil {
		utils.DebugLog("Unknown category type %q", ctx.Query("type"))
		ctx.JSON(http.StatusOK, gin.H{"success": true, "categories": []types.Category{}})
		return
	}
	categories := c.library.Categories(ctx.Request.Context(), currentSession(ctx), kind)
	ctx.JSON(http.StatusOK, gin.H{"success": true, "categories": categories})
}

func (c *Config) refresh(ctx *gin.Context) {
	if err := c.library.Refresh(ctx.Request.Context(), currentSession(ctx)); err != nil {
		utils.ErrorLog("Refresh failed: %v", err)
		abortWithError(ctx, http.StatusInternalServerError, msgInternal)
		return
	}
	ctx.JSON(http.StatusOK, types.APIResponse{Success: true, Message: "Conteúdo atualizado"})
}

func (c *Config) play(ctx *gin.Context) {
	p, err := c.library.Resolve(ctx.Request.Context(), currentSession(ctx), ctx.Param("contentId"))
	if err != nil {
		status, msg := fetchStatus(err)
		if status == http.StatusInternalServerError {
			status, msg = http.StatusBadRequest, msgBadInput
		}
		abortWithError(ctx, status, msg)
		return
	}
	if err := p.Validate(); err != nil {
		utils.ErrorLog("Resolved an unplayable item for %s: %v", ctx.Param("contentId"), err)
		abortWithError(ctx, http.StatusInternalServerError, msgInternal)
		return
	}
	utils.DebugLog("Resolved %s to %s", p.ID(), utils.MaskURL(p.StreamURL()))
	ctx.JSON(http.StatusOK, gin.H{
		"success":   true,
		"playable":  p,
		"title":     p.Title(),
		"streamUrl": p.StreamURL(),
		"live":      p.Live(),
	})
}
