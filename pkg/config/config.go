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

// Package config turns viper settings into a typed configuration.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/lucasduport/xtream-player/pkg/store"
	"github.com/lucasduport/xtream-player/pkg/utils"
	"github.com/lucasduport/xtream-player/pkg/xtream"
)

// Storage backends for sessions and cached collections.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// HostConfiguration is the listening address of the HTTP API.
type HostConfiguration struct {
	Hostname string
	Port     int
}

// Addr is the listen address for http.Server.
func (h HostConfiguration) Addr() string {
	return fmt.Sprintf("%s:%d", h.Hostname, h.Port)
}

// PlayerConfig holds the whole process configuration.
type PlayerConfig struct {
	HostConfig *HostConfiguration

	Storage     string
	DatabaseDSN string

	CredentialsFile string
	RememberTTL     time.Duration

	UserAgent       string
	AuthTimeout     time.Duration
	ListTimeout     time.Duration
	RateLimit       float64
	RateBurst       int
	BreakerFailures int
	BreakerCooldown time.Duration
	DumpDir         string

	CORSOrigins []string

	LogLevel     string
	LogFormat    string
	DebugLogging bool
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	def := xtream.DefaultConfig()
	v.SetDefault("hostname", "")
	v.SetDefault("port", 8080)
	v.SetDefault("storage", StorageMemory)
	v.SetDefault("database-dsn", "")
	v.SetDefault("credentials-file", DefaultCredentialsFile())
	v.SetDefault("remember-ttl", store.DefaultTTL)
	v.SetDefault("user-agent", utils.GetUserAgent())
	v.SetDefault("auth-timeout", def.AuthTimeout)
	v.SetDefault("list-timeout", def.ListTimeout)
	v.SetDefault("rate-limit", 0.0)
	v.SetDefault("rate-burst", def.RateBurst)
	v.SetDefault("breaker-failures", int(def.BreakerFailures))
	v.SetDefault("breaker-cooldown", def.BreakerCooldown)
	v.SetDefault("dump-dir", "")
	v.SetDefault("cors-origins", []string{})
	v.SetDefault("log-level", "info")
	v.SetDefault("log-format", "console")
	v.SetDefault("debug-logging", false)
}

// DefaultCredentialsFile is ~/.xtream-player/credentials.db, or "" when the
// home directory is unknown, which keeps remembered logins in memory.
func DefaultCredentialsFile() string {
	home, err := homedir.Dir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".xtream-player", "credentials.db")
}

// Load reads the configuration from v.
func Load(v *viper.Viper) (*PlayerConfig, error) {
	conf := &PlayerConfig{
		HostConfig: &HostConfiguration{
			Hostname: v.GetString("hostname"),
			Port:     v.GetInt("port"),
		},
		Storage:         strings.ToLower(v.GetString("storage")),
		DatabaseDSN:     v.GetString("database-dsn"),
		CredentialsFile: v.GetString("credentials-file"),
		RememberTTL:     v.GetDuration("remember-ttl"),
		UserAgent:       v.GetString("user-agent"),
		AuthTimeout:     v.GetDuration("auth-timeout"),
		ListTimeout:     v.GetDuration("list-timeout"),
		RateLimit:       v.GetFloat64("rate-limit"),
		RateBurst:       v.GetInt("rate-burst"),
		BreakerFailures: v.GetInt("breaker-failures"),
		BreakerCooldown: v.GetDuration("breaker-cooldown"),
		DumpDir:         v.GetString("dump-dir"),
		CORSOrigins:     v.GetStringSlice("cors-origins"),
		LogLevel:        v.GetString("log-level"),
		LogFormat:       v.GetString("log-format"),
		DebugLogging:    v.GetBool("debug-logging"),
	}

	if conf.Storage == "" {
		conf.Storage = StorageMemory
	}
	if conf.Storage != StorageMemory && conf.Storage != StoragePostgres {
		return nil, fmt.Errorf("unknown storage %q (want %s or %s)", conf.Storage, StorageMemory, StoragePostgres)
	}
	if conf.HostConfig.Port <= 0 || conf.HostConfig.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", conf.HostConfig.Port)
	}
	if conf.BreakerFailures < 0 {
		return nil, fmt.Errorf("invalid breaker-failures %d", conf.BreakerFailures)
	}
	return conf, nil
}

// Xtream returns the upstream adapter settings.
func (c *PlayerConfig) Xtream() xtream.Config {
	return xtream.Config{
		UserAgent:       c.UserAgent,
		AuthTimeout:     c.AuthTimeout,
		ListTimeout:     c.ListTimeout,
		RateLimit:       c.RateLimit,
		RateBurst:       c.RateBurst,
		BreakerFailures: uint32(c.BreakerFailures),
		BreakerCooldown: c.BreakerCooldown,
		DumpDir:         c.DumpDir,
	}
}

// Logging returns the logger settings.
func (c *PlayerConfig) Logging() utils.LogConfig {
	return utils.LogConfig{
		Level:  c.LogLevel,
		Format: c.LogFormat,
		Debug:  c.DebugLogging,
	}
}
