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

// Package database stores sessions and cached collections in PostgreSQL.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/lucasduport/xtream-player/pkg/utils"
)

var errNotInitialized = errors.New("database not initialized")

// Config locates the database. DSN wins over the individual fields.
type Config struct {
	DSN      string
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
}

// ConfigFromEnv reads DB_DSN, DB_HOST, DB_PORT, DB_NAME, DB_USER,
// DB_PASSWORD and DB_SSLMODE.
func ConfigFromEnv() Config {
	return Config{
		DSN:      utils.GetEnvOrDefault("DB_DSN", ""),
		Host:     utils.GetEnvOrDefault("DB_HOST", "localhost"),
		Port:     utils.GetEnvOrDefault("DB_PORT", "5432"),
		Name:     utils.GetEnvOrDefault("DB_NAME", "xtreamplayer"),
		User:     utils.GetEnvOrDefault("DB_USER", "postgres"),
		Password: utils.GetEnvOrDefault("DB_PASSWORD", ""),
		SSLMode:  utils.GetEnvOrDefault("DB_SSLMODE", "disable"),
	}
}

func (c Config) connString() string {
	if c.DSN != "" {
		return c.DSN
	}
	return fmt.Sprintf("host=%s port=%s dbname=%s user=%s password=%s sslmode=%s",
		c.Host, c.Port, c.Name, c.User, c.Password, c.SSLMode)
}

// DBManager handles database operations. It implements session.Repository;
// Cache exposes it as a cache.Cache.
type DBManager struct {
	db          *sql.DB
	initialized bool
}

// NewDBManager connects and creates the schema.
func NewDBManager(ctx context.Context, cfg Config) (*DBManager, error) {
	utils.InfoLog("Initializing PostgreSQL database connection")
	if cfg.DSN == "" {
		utils.DebugLog("Connecting to PostgreSQL: host=%s port=%s dbname=%s user=%s", cfg.Host, cfg.Port, cfg.Name, cfg.User)
	}

	db, err := sql.Open("postgres", cfg.connString())
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		utils.ErrorLog("Failed to connect to database: %v", err)
		return nil, fmt.Errorf("database connection test failed: %w", err)
	}
	utils.InfoLog("Database connection successful")

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	m := &DBManager{db: db}
	if err := m.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	m.initialized = true
	return m, nil
}

// IsInitialized returns whether the database is initialized
func (m *DBManager) IsInitialized() bool {
	return m != nil && m.initialized && m.db != nil
}

// Close closes the database connection
func (m *DBManager) Close() error {
	if m == nil || m.db == nil {
		return nil
	}
	utils.InfoLog("Closing database connection")
	return m.db.Close()
}
