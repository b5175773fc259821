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
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lucasduport/xtream-player/pkg/library"
	"github.com/lucasduport/xtream-player/pkg/session"
	"github.com/lucasduport/xtream-player/pkg/types"
	"github.com/lucasduport/xtream-player/pkg/utils"
)

// browser is a restored terminal session.
type browser struct {
	core    *core
	session *types.Session
	json    bool
	out     io.Writer
}

// withBrowser restores the remembered login and runs fn with it. Each
// successful use extends the remembered login.
func withBrowser(cmd *cobra.Command, fn func(ctx context.Context, b *browser) error) error {
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

	ctx := cmd.Context()
	core, err := newCore(ctx, conf)
	if err != nil {
		return err
	}
	defer core.Close()

	client := session.NewClient(core.sessions)
	if _, err := client.Restore(ctx, *p); err != nil {
		return utils.PrintErrorAndReturn(fmt.Errorf("restoring login: %w", err))
	}
	s, ok := client.Current(ctx)
	if !ok {
		if err := st.Clear(); err != nil {
			utils.WarnLog("Could not clear remembered login: %v", err)
		}
		return fmt.Errorf("remembered login is %s, log in again", client.State())
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if err := fn(ctx, &browser{core: core, session: s, json: asJSON, out: cmd.OutOrStdout()}); err != nil {
		return describeFetchError(err)
	}
	if _, err := st.Refresh(); err != nil {
		utils.WarnLog("Could not extend remembered login: %v", err)
	}
	return nil
}

func describeFetchError(err error) error {
	var fe *library.FetchError
	if errors.As(err, &fe) {
		return fmt.Errorf("%s (%v)", fe.Message, fe.Err)
	}
	return err
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the content of the remembered login",
}

var browseChannelsCmd = &cobra.Command{
	Use:   "channels",
	Short: "List live channels",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		return withBrowser(cmd, func(ctx context.Context, b *browser) error {
			channels, err := b.core.library.Channels(ctx, b.session)
			if err != nil {
				return err
			}
			if category != "" {
				var kept []types.Channel
				for _, ch := range channels {
					if ch.CategoryID == category {
						kept = append(kept, ch)
					}
				}
				channels = kept
			}
			if b.json {
				return printJSON(b.out, channels)
			}
			return b.table([]string{"ID", "NAME", "CATEGORY"}, len(channels), func(i int) []string {
				return []string{channels[i].ID, channels[i].Name, channels[i].CategoryName}
			})
		})
	},
}

var browseMoviesCmd = &cobra.Command{
	Use:   "movies",
	Short: "List movies",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBrowser(cmd, func(ctx context.Context, b *browser) error {
			movies, err := b.core.library.Movies(ctx, b.session)
			if err != nil {
				return err
			}
			if b.json {
				return printJSON(b.out, movies)
			}
			return b.table([]string{"ID", "NAME", "CATEGORY", "RATING"}, len(movies), func(i int) []string {
				return []string{movies[i].ID, movies[i].Name, movies[i].CategoryName, movies[i].Rating}
			})
		})
	},
}

var browseSeriesCmd = &cobra.Command{
	Use:   "series",
	Short: "List series",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBrowser(cmd, func(ctx context.Context, b *browser) error {
			series, err := b.core.library.Series(ctx, b.session)
			if err != nil {
				return err
			}
			if b.json {
				return printJSON(b.out, series)
			}
			return b.table([]string{"ID", "NAME", "CATEGORY", "GENRE"}, len(series), func(i int) []string {
				return []string{series[i].ID, series[i].Name, series[i].CategoryName, series[i].Genre}
			})
		})
	},
}

var browseEpisodesCmd = &cobra.Command{
	Use:   "episodes <series-id>",
	Short: "List the episodes of a series",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBrowser(cmd, func(ctx context.Context, b *browser) error {
			seasons, info, err := b.core.library.Episodes(ctx, b.session, args[0])
			if err != nil {
				return err
			}
			if b.json {
				return printJSON(b.out, map[string]interface{}{"seasons": seasons, "seriesInfo": info})
			}
			if name, ok := info.Lookup("name"); ok {
				fmt.Fprintln(b.out, name)
			}
			var rows [][]string
			for _, season := range seasons {
				for _, e := range season.Episodes {
					rows = append(rows, []string{e.ID, season.Number, e.EpisodeNum, e.Title})
				}
			}
			return b.table([]string{"ID", "SEASON", "EPISODE", "TITLE"}, len(rows), func(i int) []string { return rows[i] })
		})
	},
}

var browseCategoriesCmd = &cobra.Command{
	Use:       "categories [live|movies|series]",
	Short:     "List the categories of one namespace",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"live", "movies", "series"},
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		kind, err := types.ParseCategoryKind(name)
		if err != nil {
			return err
		}
		return withBrowser(cmd, func(ctx context.Context, b *browser) error {
			categories := b.core.library.Categories(ctx, b.session, kind)
			if b.json {
				return printJSON(b.out, categories)
			}
			return b.table([]string{"ID", "NAME"}, len(categories), func(i int) []string {
				return []string{categories[i].ID, categories[i].Name}
			})
		})
	},
}

var browsePlayCmd = &cobra.Command{
	Use:   "play <content-id>",
	Short: "Print the stream URL of a channel, movie or episode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBrowser(cmd, func(ctx context.Context, b *browser) error {
			p, err := b.core.library.Resolve(ctx, b.session, args[0])
			if err != nil {
				return err
			}
			if b.json {
				return printJSON(b.out, p)
			}
			fmt.Fprintf(b.out, "%s\n%s\n", p.Title(), p.StreamURL())
			return nil
		})
	},
}

func init() {
	browseCmd.PersistentFlags().Bool("json", false, "Print JSON")
	browseChannelsCmd.Flags().String("category", "", "Only list channels of this category id")

	browseCmd.AddCommand(browseChannelsCmd, browseMoviesCmd, browseSeriesCmd, browseEpisodesCmd, browseCategoriesCmd, browsePlayCmd)
	rootCmd.AddCommand(browseCmd)
}

// table prints n rows under a header.
func (b *browser) table(header []string, n int, row func(i int) []string) error {
	w := tabwriter.NewWriter(b.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for i := 0; i < n; i++ {
		fmt.Fprintln(w, strings.Join(row(i), "\t"))
	}
	return w.Flush()
}
