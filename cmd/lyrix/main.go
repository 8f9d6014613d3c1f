// Command lyrix runs the Lyrix bot backend: the account-link server and
// the command endpoint the chat transport talks to.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/lyrixbot/lyrix/internal/auth"
	"github.com/lyrixbot/lyrix/internal/bot"
	"github.com/lyrixbot/lyrix/internal/config"
	"github.com/lyrixbot/lyrix/internal/homeserver"
	"github.com/lyrixbot/lyrix/internal/lastfm"
	"github.com/lyrixbot/lyrix/internal/logging"
	"github.com/lyrixbot/lyrix/internal/lyrics"
	"github.com/lyrixbot/lyrix/internal/playlist"
	"github.com/lyrixbot/lyrix/internal/spotify"
	"github.com/lyrixbot/lyrix/internal/store"
	"github.com/lyrixbot/lyrix/internal/track"
	"github.com/lyrixbot/lyrix/internal/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logging.New("lyrix")

	st, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	resolver := auth.NewResolver(cfg.SpotifyID, cfg.SpotifySecret, cfg.RedirectURL)

	sessions := func(ctx context.Context, rec *store.UserRecord) (*spotify.Client, error) {
		return resolver.Session(ctx, rec)
	}

	engine := track.NewEngine(st, func(ctx context.Context, rec *store.UserRecord) (track.Player, error) {
		return sessions(ctx, rec)
	})
	playlists := playlist.NewManager(st, func(ctx context.Context, rec *store.UserRecord) (playlist.Provider, error) {
		return sessions(ctx, rec)
	})

	var trackInfo bot.TrackInfoSource
	if cfg.LastFMAPIKey != "" {
		trackInfo = lastfm.NewClient(&lastfm.Config{APIKey: cfg.LastFMAPIKey})
		log.Info("Last.fm track info enabled")
	}

	commands := bot.New(st, engine, playlists,
		lyrics.NewClient(cfg.LyricsURL),
		func(ctx context.Context, rec *store.UserRecord) (bot.Session, error) {
			return sessions(ctx, rec)
		},
		homeserver.NewClient(),
		trackInfo,
	)

	server := web.NewServer(cfg.Addr, resolver, st, commands)
	return server.Run()
}

// openStore selects the PostgreSQL backend when DATABASE_URL is set and
// falls back to the JSON file store otherwise.
func openStore(cfg *config.Config) (store.Store, func(), error) {
	if cfg.DatabaseURL != "" {
		pg, err := store.OpenPG(context.Background(), cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("opening postgres store: %w", err)
		}
		return pg, pg.Close, nil
	}

	fs, err := store.OpenFile(cfg.StorePath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening file store: %w", err)
	}
	return fs, func() {}, nil
}
