// Package bot implements the Lyrix command surface. Each command takes a
// chat user identity plus arguments and returns display payloads; the
// chat transport that delivers them is a collaborator, not part of this
// package.
package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/lyrixbot/lyrix/internal/auth"
	"github.com/lyrixbot/lyrix/internal/format"
	"github.com/lyrixbot/lyrix/internal/lastfm"
	"github.com/lyrixbot/lyrix/internal/logging"
	"github.com/lyrixbot/lyrix/internal/lyrics"
	"github.com/lyrixbot/lyrix/internal/store"
	"github.com/lyrixbot/lyrix/internal/track"
)

// Fixed command replies.
const (
	msgWelcome = `Welcome to lyrix bot 🎵

To link your Spotify account, use the /link command

Type /help for more information about other commands`

	msgAuthorized   = "✅ You are now authorized!"
	msgNotLoggedIn  = "You haven't logged in yet 👀"
	msgPlayOK       = "🚀 Ok oki. 😌👍"
	msgPlayFailed   = "Hmm. I wasn't able to play this song on your spotify client. " +
		"Is your spotify running and connected? Perhaps you should try registering once again 🤷"
	msgReplyToSong  = "Reply to a song with /playthis command, or /playthis followed by a spotify URL"
	msgBadStartArgs = "Login credentials seem to be wrong. Are you sure your username and password is correct?"
	msgCleared      = "🧹 Your Lyrix queue is empty now."
)

// DefaultPrefix is the chat prefix of the general command.
const DefaultPrefix = "$lx"

// TrackResolver answers current-track queries.
type TrackResolver interface {
	ResolveCurrent(ctx context.Context, userID int64) track.Outcome
}

// Playlists manages per-user queue playlists.
type Playlists interface {
	Ensure(ctx context.Context, userID int64) (string, error)
	Add(ctx context.Context, userID int64, trackURI string) error
	Clear(ctx context.Context, userID int64) error
	ShareURL(ctx context.Context, userID int64) (string, error)
}

// LyricsSource fetches lyric text for a title and primary artist.
type LyricsSource interface {
	Lookup(ctx context.Context, title, primaryArtist string) (string, error)
}

// Session is an authenticated provider session for playback actions.
type Session interface {
	StartPlayback(ctx context.Context, trackURI string) error
}

// SessionFunc resolves a user record into a playback session.
type SessionFunc func(ctx context.Context, rec *store.UserRecord) (Session, error)

// LocalPlayer reports what a user's local desktop player is playing.
type LocalPlayer interface {
	CurrentLocalSong(ctx context.Context, rec *store.UserRecord) (track.Song, error)
}

// TrackInfoSource fetches display extras (album art) for a track.
type TrackInfoSource interface {
	GetTrackInfo(ctx context.Context, artist, title string) (lastfm.TrackInfo, error)
}

// Commands is the canonical command surface, the merged behavior of the
// bot's handlers.
type Commands struct {
	store    store.Store
	tracks   TrackResolver
	playlist Playlists
	lyrics   LyricsSource
	sessions SessionFunc
	local    LocalPlayer     // may be nil
	info     TrackInfoSource // may be nil
	prefix   string
	log      *log.Logger
}

// New creates the command surface. local and info are optional.
func New(st store.Store, tracks TrackResolver, playlists Playlists, lyricsSrc LyricsSource, sessions SessionFunc, local LocalPlayer, info TrackInfoSource) *Commands {
	return &Commands{
		store:    st,
		tracks:   tracks,
		playlist: playlists,
		lyrics:   lyricsSrc,
		sessions: sessions,
		local:    local,
		info:     info,
		prefix:   DefaultPrefix,
		log:      logging.New("commands"),
	}
}

// Start handles /start. Without arguments it replies with the welcome
// demo; with a "username:homeserver:token" argument it registers the
// homeserver variant account.
func (c *Commands) Start(ctx context.Context, userID int64, args string) format.Payload {
	args = strings.TrimSpace(args)
	if args == "" {
		c.log.Info("start command without args", "user", userID)
		return format.Payload{Text: msgWelcome}
	}

	parts := strings.Split(args, ":")
	if len(parts) != 3 || parts[2] == "" {
		return format.Payload{Text: msgBadStartArgs}
	}

	rec, err := c.store.Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		rec = &store.UserRecord{UserID: userID}
	} else if err != nil {
		c.log.Error("store lookup failed", "user", userID, "err", err)
		return format.Payload{Text: format.MsgFailed}
	}
	rec.Username = parts[0]
	rec.Homeserver = parts[1]
	rec.HomeserverToken = parts[2]

	if err := c.store.Upsert(ctx, rec); err != nil {
		c.log.Error("registering user failed", "user", userID, "err", err)
		return format.Payload{Text: format.MsgFailed}
	}

	c.log.Info("user registered with lyrix", "user", userID)
	return format.Payload{Text: msgAuthorized}
}

// Lyrics handles the bare lyrics command: announce the current track,
// then fetch and send its lyrics.
func (c *Commands) Lyrics(ctx context.Context, userID int64, userName string) []format.Payload {
	c.log.Info("lyrics requested", "user", userID)

	outcome := c.tracks.ResolveCurrent(ctx, userID)
	intro := format.Format(outcome, format.Direct, userName)
	if outcome.Kind != track.KindPlaying || !outcome.Song.Displayable() {
		return []format.Payload{intro}
	}

	text, err := c.lyrics.Lookup(ctx, outcome.Song.Track, outcome.Song.PrimaryArtist())
	if err != nil {
		if !errors.Is(err, lyrics.ErrNotFound) {
			c.log.Warn("lyrics lookup failed",
				"track", outcome.Song.Track, "artist", outcome.Song.PrimaryArtist(), "err", err)
		}
		return []format.Payload{intro, {Text: format.MsgNoLyrics}}
	}

	return []format.Payload{intro, {Text: text}}
}

// Share handles the share command: a message for the chat with the play
// button and the embedded track tag. A playing track with no title or
// artist yields a silent payload, nothing worth sharing.
func (c *Commands) Share(ctx context.Context, userID int64, userName string) format.Payload {
	c.log.Info("share requested", "user", userID)
	outcome := c.tracks.ResolveCurrent(ctx, userID)
	if outcome.Kind == track.KindPlaying && !outcome.Song.Displayable() {
		return format.Payload{}
	}
	payload := format.Format(outcome, format.Share, userName)
	if info, ok := c.trackInfo(ctx, outcome); ok {
		payload.ThumbURL = info.AlbumArtURL
	}
	return payload
}

// Inline handles an inline query for the current track. The payload
// carries album art and the track's wiki summary when Last.fm knows them.
func (c *Commands) Inline(ctx context.Context, userID int64, userName string) format.Payload {
	outcome := c.tracks.ResolveCurrent(ctx, userID)
	if outcome.Kind == track.KindPlaying && !outcome.Song.Displayable() {
		return format.Payload{}
	}
	payload := format.Format(outcome, format.Inline, userName)
	if info, ok := c.trackInfo(ctx, outcome); ok {
		payload.ThumbURL = info.AlbumArtURL
		if info.WikiSummary != "" {
			payload.Text += "\n\n" + html.EscapeString(info.WikiSummary)
		}
	}
	return payload
}

// PlayThis recovers a track tag from a replied message, starts playback
// and queues the track.
func (c *Commands) PlayThis(ctx context.Context, userID int64, repliedText string) format.Payload {
	if strings.TrimSpace(repliedText) == "" {
		return format.Payload{Text: msgReplyToSong}
	}

	uri, ok := format.ExtractTrackURI(repliedText)
	if !ok || uri == "" {
		return format.Payload{Text: format.MsgNotASong}
	}

	rec, err := c.store.Get(ctx, userID)
	if err != nil {
		return c.failure(err)
	}

	session, err := c.sessions(ctx, rec)
	if err != nil {
		return c.failure(err)
	}

	if err := session.StartPlayback(ctx, uri); err != nil {
		c.log.Warn("playback failed", "user", userID, "uri", uri, "err", err)
		return format.Payload{Text: msgPlayFailed}
	}

	if err := c.playlist.Add(ctx, userID, uri); err != nil {
		c.log.Warn("queueing track failed", "user", userID, "uri", uri, "err", err)
	}

	return format.Payload{Text: msgPlayOK}
}

// ClearPlaylist empties the user's queue playlist.
func (c *Commands) ClearPlaylist(ctx context.Context, userID int64) format.Payload {
	if err := c.playlist.Clear(ctx, userID); err != nil {
		return c.failure(err)
	}
	return format.Payload{Text: msgCleared}
}

// SharePlaylist replies with the public URL of the user's queue playlist.
func (c *Commands) SharePlaylist(ctx context.Context, userID int64, userName string) format.Payload {
	url, err := c.playlist.ShareURL(ctx, userID)
	if err != nil {
		return c.failure(err)
	}

	who := html.EscapeString(userName)
	if who == "" {
		who = "Someone"
	}
	return format.Payload{
		Text:    fmt.Sprintf(`%s's Lyrix queue: <a href="%s">%s</a>`, who, html.EscapeString(url), html.EscapeString(url)),
		Buttons: []format.Button{{Label: "Open playlist", URL: url}},
	}
}

// WhoAmI replies with the stored profile of the user.
func (c *Commands) WhoAmI(ctx context.Context, userID int64) format.Payload {
	rec, err := c.store.Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return format.Payload{Text: msgNotLoggedIn}
	}
	if err != nil {
		return c.failure(err)
	}

	return format.Payload{Text: fmt.Sprintf(
		"<b>User:</b> %s\n<b>Homeserver:</b> %s\n<b>Chat Id:</b> %d",
		html.EscapeString(rec.Username), html.EscapeString(rec.Homeserver), rec.UserID,
	)}
}

// MyID replies with the user's numeric chat id.
func (c *Commands) MyID(userID int64) format.Payload {
	return format.Payload{Text: fmt.Sprintf("%d", userID)}
}

// Ping answers with a liveness reply.
func (c *Commands) Ping() format.Payload {
	return format.Payload{Text: "pong!"}
}

// trackInfo fetches display extras for a playing outcome. Extras are a
// nicety; lookup failures only downgrade the payload, never the reply.
func (c *Commands) trackInfo(ctx context.Context, o track.Outcome) (lastfm.TrackInfo, bool) {
	if c.info == nil || o.Kind != track.KindPlaying || !o.Song.Displayable() {
		return lastfm.TrackInfo{}, false
	}
	info, err := c.info.GetTrackInfo(ctx, o.Song.PrimaryArtist(), o.Song.Track)
	if err != nil {
		c.log.Debug("track info lookup failed",
			"track", o.Song.Track, "artist", o.Song.PrimaryArtist(), "err", err)
		return lastfm.TrackInfo{}, false
	}
	return info, true
}

// failure maps an operation error onto a user-facing payload.
func (c *Commands) failure(err error) format.Payload {
	if errors.Is(err, store.ErrNotFound) {
		return format.Payload{Text: format.MsgNotLinked}
	}
	var authErr *auth.Error
	if errors.As(err, &authErr) {
		return format.Format(track.AuthFailed(authErr.Detail), format.Direct, "")
	}
	c.log.Error("command failed", "err", err)
	return format.Payload{Text: format.MsgFailed}
}
