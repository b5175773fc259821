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
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lucasduport/xtream-player/pkg/library"
	"github.com/lucasduport/xtream-player/pkg/normalize"
	"github.com/lucasduport/xtream-player/pkg/session"
	"github.com/lucasduport/xtream-player/pkg/types"
	"github.com/lucasduport/xtream-player/pkg/utils"
	"github.com/lucasduport/xtream-player/pkg/validation"
	"github.com/lucasduport/xtream-player/pkg/xtream"
)

const sessionKey = "session"

// Messages returned to API clients.
const (
	msgBadInput        = "Dados de entrada inválidos"
	msgBadCredentials  = "Credenciais inválidas ou servidor não encontrado"
	msgUpstreamFailure = "Erro ao conectar com o servidor IPTV. Verifique as credenciais e tente novamente."
	msgSessionInvalid  = "Sessão inválida ou expirada"
	msgNotFound        = "Conteúdo não encontrado"
	msgInternal        = "Erro interno do servidor"
	msgLoggedOut       = "Logout realizado com sucesso"
)

// sessionAuth resolves :sessionId into a valid session or answers 401.
func (c *Config) sessionAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.Param("sessionId")
		s, err := c.sessions.Get(ctx.Request.Context(), id)
		if err != nil {
			if session.IsGone(err) {
				utils.DebugLog("Rejected request for session %s: %v", id, err)
				abortWithError(ctx, http.StatusUnauthorized, msgSessionInvalid)
				return
			}
			utils.ErrorLog("Session lookup for %s failed: %v", id, err)
			abortWithError(ctx, http.StatusInternalServerError, msgInternal)
			return
		}
		ctx.Set(sessionKey, s)
		ctx.Next()
	}
}

// currentSession returns the session set by sessionAuth.
func currentSession(ctx *gin.Context) *types.Session {
	return ctx.MustGet(sessionKey).(*types.Session)
}

func abortWithError(ctx *gin.Context, status int, msg string) {
	ctx.AbortWithStatusJSON(status, types.APIResponse{Success: false, Error: msg})
}

// authStatus maps an authentication failure to a status code and message.
func authStatus(err error) (int, string) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, msgBadInput
	case session.IsAuthKind(err, session.InvalidCredentials):
		return http.StatusUnauthorized, msgBadCredentials
	case session.IsAuthKind(err, session.Timeout):
		return http.StatusGatewayTimeout, msgUpstreamFailure
	case session.IsAuthKind(err, session.Network):
		return http.StatusBadGateway, msgUpstreamFailure
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// fetchStatus maps a library failure to a status code and message.
func fetchStatus(err error) (int, string) {
	var fe *library.FetchError
	if !errors.As(err, &fe) {
		if errors.Is(err, library.ErrNotFound) {
			return http.StatusNotFound, msgNotFound
		}
		return http.StatusInternalServerError, msgInternal
	}

	var ae *xtream.AdapterError
	switch {
	case errors.Is(err, normalize.ErrNoEpisodes):
		return http.StatusNotFound, fe.Message
	case errors.As(err, &ae) && ae.Timeout():
		return http.StatusGatewayTimeout, fe.Message
	default:
		return http.StatusBadGateway, fe.Message
	}
}

func (c *Config) authenticate(ctx *gin.Context) {
	var creds types.Credentials
	if err := ctx.ShouldBindJSON(&creds); err != nil {
		utils.DebugLog("Rejected login payload: %v", err)
		abortWithError(ctx, http.StatusBadRequest, msgBadInput)
		return
	}

	s, err := c.sessions.Authenticate(ctx.Request.Context(), creds)
	if err != nil {
		status, msg := authStatus(err)
		abortWithError(ctx, status, msg)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":    true,
		"sessionId":  s.ID,
		"userInfo":   s.UserInfo,
		"serverInfo": s.ServerInfo,
		"expiresAt":  s.ExpiresAt,
	})
}

func (c *Config) restore(ctx *gin.Context) {
	var p types.Persisted
	if err := ctx.ShouldBindJSON(&p); err != nil {
		abortWithError(ctx, http.StatusBadRequest, msgBadInput)
		return
	}

	s, err := c.sessions.Restore(ctx.Request.Context(), p)
	if err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			abortWithError(ctx, http.StatusBadRequest, msgBadInput)
			return
		}
		utils.ErrorLog("Restoring session failed: %v", err)
		abortWithError(ctx, http.StatusInternalServerError, msgInternal)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "sessionId": s.ID})
}

func (c *Config) getSession(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"success": true, "session": currentSession(ctx).Summary()})
}

func (c *Config) logout(ctx *gin.Context) {
	if err := c.sessions.Logout(ctx.Request.Context(), ctx.Param("sessionId")); err != nil {
		abortWithError(ctx, http.StatusInternalServerError, "Erro ao fazer logout")
		return
	}
	ctx.JSON(http.StatusOK, types.APIResponse{Success: true, Message: msgLoggedOut})
}
