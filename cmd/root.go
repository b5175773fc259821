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
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lucasduport/xtream-player/pkg/config"
	"github.com/lucasduport/xtream-player/pkg/server"
	"github.com/lucasduport/xtream-player/pkg/store"
	"github.com/lucasduport/xtream-player/pkg/utils"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "xtream-player",
	Short: "Web IPTV player backend for Xtream Codes panels",
	Long: `xtream-player logs into Xtream Codes panels on behalf of a web player,
keeps one session per login and serves normalized channels, movies, series
and episodes over an HTTP API.

Without a subcommand the HTTP API is served. The login, whoami, logout and
browse subcommands use the same core from the terminal.`,
	SilenceUsage: true,

	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		core, err := newCore(ctx, conf)
		if err != nil {
			return err
		}
		defer core.Close()

		return server.NewServer(conf, core.sessions, core.library).Serve(ctx)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Config file flag
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default is $HOME/.xtream-player.yaml)")

	// Logging and storage flags, shared by every command
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "Log format (console or json)")
	rootCmd.PersistentFlags().Bool("debug-logging", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("storage", config.StorageMemory, "Session and cache storage (memory or postgres)")
	rootCmd.PersistentFlags().String("database-dsn", "", "PostgreSQL DSN (default built from DB_* variables)")
	rootCmd.PersistentFlags().String("credentials-file", config.DefaultCredentialsFile(), "File holding the remembered login")
	rootCmd.PersistentFlags().Duration("remember-ttl", store.DefaultTTL, "How long a remembered login stays usable")

	// Upstream flags
	rootCmd.PersistentFlags().String("user-agent", utils.GetUserAgent(), "User-Agent sent to panels")
	rootCmd.PersistentFlags().Duration("auth-timeout", 0, "Login probe timeout (default 10s)")
	rootCmd.PersistentFlags().Duration("list-timeout", 0, "Content list timeout (default 15s)")
	rootCmd.PersistentFlags().Float64("rate-limit", 0, "Upstream requests per second, 0 for unlimited")
	rootCmd.PersistentFlags().String("dump-dir", "", "Directory receiving panel bodies that fail to parse")

	// HTTP API flags
	rootCmd.Flags().String("hostname", "", "Listening address")
	rootCmd.Flags().Int("port", 8080, "Listening port")
	rootCmd.Flags().StringSlice("cors-origins", nil, "Allowed CORS origins (default any)")

	// Bind all flags to viper
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		utils.ErrorLog("Error binding persistent flags to viper: %v", err)
		os.Exit(1)
	}
	if err := viper.BindPFlags(rootCmd.Flags()); err != nil {
		utils.ErrorLog("Error binding flags to viper: %v", err)
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// Search config in home directory and current directory
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".xtream-player")
	}

	// Replace hyphens with underscores in environment variables
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		utils.InfoLog("Using config file: %s", viper.ConfigFileUsed())
	}
}

// loadConfig builds the typed configuration and applies its logging settings.
func loadConfig() (*config.PlayerConfig, error) {
	conf, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	utils.InitLogging(conf.Logging())
	return conf, nil
}
