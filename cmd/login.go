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
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/lucasduport/xtream-player/pkg/config"
	"github.com/lucasduport/xtream-player/pkg/session"
	"github.com/lucasduport/xtream-player/pkg/store"
	"github.com/lucasduport/xtream-player/pkg/types"
	"github.com/lucasduport/xtream-player/pkg/utils"
)

var errNotLoggedIn = errors.New("no remembered login, run 'xtream-player login --remember' first")

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log into a panel",
	Long: `Log into an Xtream Codes panel. With --remember the login is kept in the
credentials file for the browse, whoami and logout commands.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConfig()
		if err != nil {
			return err
		}
		creds := types.Credentials{}
		creds.Host, _ = cmd.Flags().GetString("host")
		creds.Username, _ = cmd.Flags().GetString("username")
		creds.Password, _ = cmd.Flags().GetString("password")
		remember, _ := cmd.Flags().GetBool("remember")

		ctx := cmd.Context()
		core, err := newCore(ctx, conf)
		if err != nil {
			return err
		}
		defer core.Close()

		client := session.NewClient(core.sessions)
		s, err := client.Authenticate(ctx, creds)
		if err != nil {
			return describeAuthError(err)
		}

		if remember {
			st, err := openStore(conf)
			if err != nil {
				return err
			}
			defer st.Close()
			err = st.Save(types.Persisted{
				SessionID:   s.ID,
				Credentials: s.Credentials(),
				UserInfo:    s.UserInfo,
				ServerInfo:  s.ServerInfo,
			})
			if err != nil {
				return utils.PrintErrorAndReturn(fmt.Errorf("remembering login: %w", err))
			}
		}

		printSummary(cmd.OutOrStdout(), s.Summary(), remember)
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the remembered login",
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStore(conf)
		if err != nil {
			return err
		}
		defer st.Close()

		p, ok := st.Load()
		if !ok {
			return errNotLoggedIn
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			p.Credentials.Password = utils.MaskString(p.Credentials.Password)
			return printJSON(cmd.OutOrStdout(), p)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "User:        %s\n", p.Credentials.Username)
		fmt.Fprintf(out, "Panel:       %s\n", p.Credentials.Host)
		fmt.Fprintf(out, "Session:     %s\n", p.SessionID)
		fmt.Fprintf(out, "Remembered:  until %s\n", p.ExpiresAt.Local().Format(time.RFC1123))
		if status, ok := p.UserInfo.Lookup("status"); ok {
			fmt.Fprintf(out, "Account:     %s\n", status)
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the remembered login",
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStore(conf)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Clear(); err != nil {
			return utils.PrintErrorAndReturn(fmt.Errorf("forgetting login: %w", err))
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		return nil
	},
}

func init() {
	loginCmd.Flags().String("host", "", "Panel URL, e.g. http://panel.example:8080")
	loginCmd.Flags().StringP("username", "u", "", "Panel username")
	loginCmd.Flags().StringP("password", "p", "", "Panel password")
	loginCmd.Flags().Bool("remember", false, "Remember the login in the credentials file")
	for _, f := range []string{"host", "username", "password"} {
		_ = loginCmd.MarkFlagRequired(f)
	}

	whoamiCmd.Flags().Bool("json", false, "Print JSON")

	rootCmd.AddCommand(loginCmd, whoamiCmd, logoutCmd)
}

func openStore(conf *config.PlayerConfig) (*store.CredentialStore, error) {
	st, err := store.Open(conf.CredentialsFile, conf.RememberTTL)
	if err != nil {
		return nil, utils.PrintErrorAndReturn(err)
	}
	return st, nil
}

// describeAuthError turns a login failure into a message for the terminal.
func describeAuthError(err error) error {
	switch {
	case session.IsAuthKind(err, session.InvalidCredentials):
		return fmt.Errorf("login refused: invalid credentials or panel not found (%v)", err)
	case session.IsAuthKind(err, session.Timeout):
		return fmt.Errorf("login failed: the panel did not answer in time")
	case session.IsAuthKind(err, session.Network):
		return fmt.Errorf("login failed: could not reach the panel (%v)", err)
	default:
		return err
	}
}

func printSummary(out io.Writer, s types.Summary, remembered bool) {
	fmt.Fprintf(out, "Logged in as %s on %s\n", s.Username, s.Host)
	if s.ExpiresAt != nil {
		fmt.Fprintf(out, "Account expires %s\n", s.ExpiresAt.Local().Format(time.RFC1123))
	}
	if remembered {
		fmt.Fprintln(out, "Login remembered")
	}
}

func printJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
