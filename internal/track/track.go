// Package track resolves what a user is currently playing and classifies
// the result.
package track

import (
	"strings"

	"github.com/lyrixbot/lyrix/internal/spotify"
)

// Kind identifies one of the closed set of resolution outcomes.
type Kind int

const (
	// KindNotLinked means no record exists for this user.
	KindNotLinked Kind = iota
	// KindAuthFailed means the refresh credential was rejected.
	KindAuthFailed
	// KindIdle means the provider reports no active playback.
	KindIdle
	// KindAdvertisement means playback is active but the slot is non-track.
	KindAdvertisement
	// KindPlaying means active playback with a resolvable song.
	KindPlaying
	// KindFailed means an unexpected provider fault; the cause is logged,
	// not surfaced.
	KindFailed
)

// Song is a provider-agnostic description of a track.
type Song struct {
	Track   string
	Artists []string // ordered as reported by the source
	Source  string   // e.g. "spotify", "local"
	URL     string   // canonical external URL, may be empty
}

// Displayable reports whether the song has enough fields to be shown,
// shared, or used for a lyrics lookup.
func (s Song) Displayable() bool {
	return s.Track != "" && len(s.Artists) > 0 && s.Artists[0] != ""
}

// ArtistLine returns the comma-joined artist names.
func (s Song) ArtistLine() string {
	return strings.Join(s.Artists, ", ")
}

// PrimaryArtist returns the first contributing artist, or "".
func (s Song) PrimaryArtist() string {
	if len(s.Artists) == 0 {
		return ""
	}
	return s.Artists[0]
}

// Outcome is the tagged result of a current-track query. Exactly one Kind
// holds; Song and Raw are set only for KindPlaying, Detail only for
// KindAuthFailed.
type Outcome struct {
	Kind   Kind
	Song   Song
	Raw    *spotify.NowPlaying
	Detail string
}

// NotLinked reports that no record exists for the user.
func NotLinked() Outcome { return Outcome{Kind: KindNotLinked} }

// AuthFailed reports a rejected credential exchange with its cause.
func AuthFailed(detail string) Outcome {
	return Outcome{Kind: KindAuthFailed, Detail: detail}
}

// Idle reports that nothing is playing.
func Idle() Outcome { return Outcome{Kind: KindIdle} }

// Advertisement reports a non-track content slot.
func Advertisement() Outcome { return Outcome{Kind: KindAdvertisement} }

// Playing reports active playback of song, keeping the raw payload for
// display extras.
func Playing(song Song, raw *spotify.NowPlaying) Outcome {
	return Outcome{Kind: KindPlaying, Song: song, Raw: raw}
}

// Failed reports an unexpected provider fault.
func Failed() Outcome { return Outcome{Kind: KindFailed} }
