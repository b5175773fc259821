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

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/lucasduport/xtream-player/pkg/cache"
	"github.com/lucasduport/xtream-player/pkg/config"
	"github.com/lucasduport/xtream-player/pkg/database"
	"github.com/lucasduport/xtream-player/pkg/library"
	"github.com/lucasduport/xtream-player/pkg/session"
	"github.com/lucasduport/xtream-player/pkg/utils"
	"github.com/lucasduport/xtream-player/pkg/xtream"
)

// core is the player wiring shared by the HTTP API and the terminal commands.
type core struct {
	sessions *session.Manager
	library  *library.Library
	db       *database.DBManager
}

func newCore(ctx context.Context, conf *config.PlayerConfig) (*core, error) {
	upstream := xtream.New(conf.Xtream(), nil)

	var (
		repo session.Repository
		c    cache.Cache
		db   *database.DBManager
	)
	switch conf.Storage {
	case config.StoragePostgres:
		dbConf := database.ConfigFromEnv()
		if conf.DatabaseDSN != "" {
			dbConf.DSN = conf.DatabaseDSN
		}
		var err error
		db, err = database.NewDBManager(ctx, dbConf)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		if !db.IsInitialized() {
			return nil, utils.ErrorWithLocation(errors.New("database schema was not initialized"))
		}
		repo, c = db, db.Cache()
		utils.InfoLog("Bootstrap: sessions and content cache stored in PostgreSQL")
	default:
		repo, c = session.NewMemoryRepository(), cache.NewMemory()
		utils.InfoLog("Bootstrap: sessions and content cache kept in memory")
	}

	sessions := session.NewManager(upstream, repo, c)
	return &core{
		sessions: sessions,
		library:  library.New(upstream, c, sessions),
		db:       db,
	}, nil
}

func (c *core) Close() {
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			utils.WarnLog("Closing database: %v", err)
		}
	}
}
