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

package types

import "fmt"

// Playable is anything that can be handed to a playback engine. Exactly
// one of Channel, Movie or Episode is set, matching Kind.
type Playable struct {
	Kind    ContentKind `json:"kind"`
	Channel *Channel    `json:"channel,omitempty"`
	Movie   *Movie      `json:"movie,omitempty"`
	Episode *Episode    `json:"episode,omitempty"`
}

// PlayableChannel wraps a live channel.
func PlayableChannel(c Channel) Playable { return Playable{Kind: KindLive, Channel: &c} }

// PlayableMovie wraps a movie.
func PlayableMovie(m Movie) Playable { return Playable{Kind: KindMovie, Movie: &m} }

// PlayableEpisode wraps an episode.
func PlayableEpisode(e Episode) Playable { return Playable{Kind: KindEpisode, Episode: &e} }

// Validate checks that the variant matches its discriminant.
func (p Playable) Validate() error {
	set := 0
	for _, ok := range []bool{p.Channel != nil, p.Movie != nil, p.Episode != nil} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("playable must carry exactly one item, has %d", set)
	}
	switch p.Kind {
	case KindLive:
		if p.Channel != nil {
			return nil
		}
	case KindMovie:
		if p.Movie != nil {
			return nil
		}
	case KindEpisode:
		if p.Episode != nil {
			return nil
		}
	default:
		return fmt.Errorf("%q content is not playable", p.Kind)
	}
	return fmt.Errorf("playable kind %q does not match its payload", p.Kind)
}

// ID returns the content identifier.
func (p Playable) ID() string {
	switch p.Kind {
	case KindLive:
		return p.Channel.ID
	case KindMovie:
		return p.Movie.ID
	case KindEpisode:
		return p.Episode.ID
	}
	return ""
}

// Title is the display name shown by the player.
func (p Playable) Title() string {
	switch p.Kind {
	case KindLive:
		return p.Channel.Name
	case KindMovie:
		return p.Movie.Name
	case KindEpisode:
		return p.Episode.Title
	}
	return ""
}

// StreamURL is the URL handed to the playback engine.
func (p Playable) StreamURL() string {
	switch p.Kind {
	case KindLive:
		return p.Channel.StreamURL
	case KindMovie:
		return p.Movie.StreamURL
	case KindEpisode:
		return p.Episode.StreamURL
	}
	return ""
}

// Live reports whether the stream has no fixed duration.
func (p Playable) Live() bool { return p.Kind == KindLive }
