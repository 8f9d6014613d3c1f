package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"slices"
	"strings"

	"github.com/lyrixbot/lyrix/internal/format"
	"github.com/lyrixbot/lyrix/internal/lyrics"
	"github.com/lyrixbot/lyrix/internal/store"
	"github.com/lyrixbot/lyrix/internal/track"
)

// LocalLyrics fetches lyrics for the song playing on the user's local
// desktop player, via their homeserver.
func (c *Commands) LocalLyrics(ctx context.Context, userID int64) []format.Payload {
	c.log.Info("local lyrics requested", "user", userID)

	song, payload, ok := c.localSong(ctx, userID)
	if !ok {
		return []format.Payload{payload}
	}

	intro := format.Payload{Text: fmt.Sprintf(
		"Getting lyrics for <b>%s</b> by <b>%s</b>",
		html.EscapeString(song.Track), html.EscapeString(song.ArtistLine()),
	)}

	text, err := c.lyrics.Lookup(ctx, song.Track, song.PrimaryArtist())
	if err != nil {
		if !errors.Is(err, lyrics.ErrNotFound) {
			c.log.Warn("local lyrics lookup failed", "track", song.Track, "err", err)
		}
		return []format.Payload{intro, {Text: format.MsgNoLyrics}}
	}

	return []format.Payload{intro, {Text: text}}
}

// LocalShare shares the song playing on the user's local desktop player.
func (c *Commands) LocalShare(ctx context.Context, userID int64, userName string) format.Payload {
	c.log.Info("local share requested", "user", userID)

	song, payload, ok := c.localSong(ctx, userID)
	if !ok {
		return payload
	}

	who := html.EscapeString(userName)
	if who == "" {
		who = "Someone"
	}
	return format.Payload{Text: fmt.Sprintf(
		"%s is now playing\n<b>%s</b>\nby <b>%s</b>",
		who, html.EscapeString(song.Track), html.EscapeString(song.ArtistLine()),
	)}
}

// localSong resolves the user's local player state. When ok is false the
// returned payload is the reply to send instead.
func (c *Commands) localSong(ctx context.Context, userID int64) (song track.Song, payload format.Payload, ok bool) {
	if c.local == nil {
		return song, format.Payload{Text: format.MsgFailed}, false
	}

	rec, err := c.store.Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return song, format.Payload{Text: msgNotLoggedIn}, false
	}
	if err != nil {
		return song, c.failure(err), false
	}

	song, err = c.local.CurrentLocalSong(ctx, rec)
	if err != nil {
		c.log.Warn("local song lookup failed", "user", userID, "err", err)
		return song, format.Payload{Text: format.MsgFailed}, false
	}

	if !song.Displayable() {
		return song, format.Payload{Text: "You are not playing any local song right now."}, false
	}

	return song, format.Payload{}, true
}

// General parses the "$lx"-prefixed free-text command and dispatches it.
// Unrecognized or unprefixed text yields no payloads.
func (c *Commands) General(ctx context.Context, userID int64, userName, text string) []format.Payload {
	text = strings.TrimSpace(text)
	if text != c.prefix && !strings.HasPrefix(text, c.prefix+" ") {
		return nil
	}

	args := strings.Fields(text)[1:]
	switch {
	case len(args) == 0:
		return c.Lyrics(ctx, userID, userName)
	case len(args) == 1 && args[0] == "share":
		if p := c.Share(ctx, userID, userName); p.Text != "" {
			return []format.Payload{p}
		}
		return nil
	case len(args) == 1 && args[0] == "ping":
		return []format.Payload{c.Ping()}
	case len(args) == 1 && args[0] == "local":
		return c.LocalLyrics(ctx, userID)
	case len(args) == 2 && slices.Contains(args, "local") && slices.Contains(args, "share"):
		return []format.Payload{c.LocalShare(ctx, userID, userName)}
	default:
		return nil
	}
}
