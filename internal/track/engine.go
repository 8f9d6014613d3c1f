package track

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"

	"github.com/lyrixbot/lyrix/internal/auth"
	"github.com/lyrixbot/lyrix/internal/logging"
	"github.com/lyrixbot/lyrix/internal/spotify"
	"github.com/lyrixbot/lyrix/internal/store"
)

// Player is the provider session surface the engine needs.
type Player interface {
	CurrentlyPlaying(ctx context.Context) (*spotify.NowPlaying, error)
}

// SessionFunc resolves a user record into an authenticated provider
// session. A rejected credential is reported as *auth.Error.
type SessionFunc func(ctx context.Context, rec *store.UserRecord) (Player, error)

// Engine answers "what is this user playing right now".
type Engine struct {
	store    store.Store
	sessions SessionFunc
	log      *log.Logger
}

// NewEngine creates an Engine over the given store and session resolver.
func NewEngine(st store.Store, sessions SessionFunc) *Engine {
	return &Engine{
		store:    st,
		sessions: sessions,
		log:      logging.New("track"),
	}
}

// ResolveCurrent looks up the user, resolves credentials, queries the
// provider and classifies the player state. Expected provider states
// (not linked, rejected credentials, idle, ad break) are ordinary
// outcomes; only genuinely unexpected faults become KindFailed, and those
// are logged here rather than surfaced.
func (e *Engine) ResolveCurrent(ctx context.Context, userID int64) Outcome {
	rec, err := e.store.Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return NotLinked()
	}
	if err != nil {
		e.log.Error("store lookup failed", "user", userID, "err", err)
		return Failed()
	}

	player, err := e.sessions(ctx, rec)
	if err != nil {
		var authErr *auth.Error
		if errors.As(err, &authErr) {
			return AuthFailed(authErr.Detail)
		}
		return AuthFailed(err.Error())
	}

	now, err := player.CurrentlyPlaying(ctx)
	if err != nil {
		e.log.Error("currently-playing query failed", "user", userID, "err", err)
		return Failed()
	}

	return Classify(now)
}

// Classify maps a raw player state onto the outcome set. A nil state or an
// explicit not-playing flag is Idle; a playing state with no item is the
// provider's ad-break signal.
func Classify(now *spotify.NowPlaying) Outcome {
	switch {
	case now == nil, !now.Playing:
		return Idle()
	case now.Item == nil:
		return Advertisement()
	default:
		song := Song{
			Track:   now.Item.Name,
			Artists: now.Item.Artists,
			Source:  "spotify",
			URL:     now.Item.ExternalURL,
		}
		return Playing(song, now)
	}
}
