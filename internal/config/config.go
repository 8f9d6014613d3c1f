// Package config loads Lyrix configuration from environment variables.
package config

import (
	"errors"
	"os"
)

// ErrMissingSpotifyCredentials is returned when SPOTIFY_ID or SPOTIFY_SECRET is not set.
var ErrMissingSpotifyCredentials = errors.New("missing SPOTIFY_ID or SPOTIFY_SECRET environment variable")

// Defaults used when the corresponding variable is unset.
const (
	DefaultAddr       = "127.0.0.1:8080"
	DefaultStorePath  = "spotify.json"
	DefaultLyricsURL  = "https://api.lyrics.ovh/v1"
	defaultRedirectTo = "http://127.0.0.1:8080/callback"
)

// Config holds all runtime configuration for the bot.
type Config struct {
	// Spotify application credentials.
	SpotifyID     string
	SpotifySecret string
	RedirectURL   string

	// Addr is the listen address of the link/command HTTP server.
	Addr string

	// StorePath is the JSON user store location. Ignored when DatabaseURL is set.
	StorePath string

	// DatabaseURL selects the PostgreSQL store backend when non-empty.
	DatabaseURL string

	// LastFMAPIKey enables album art / track info lookups when non-empty.
	LastFMAPIKey string

	// LyricsURL is the base URL of the lyrics API.
	LyricsURL string
}

// Load reads configuration from the environment.
// Returns ErrMissingSpotifyCredentials if the Spotify app credentials are absent.
func Load() (*Config, error) {
	cfg := &Config{
		SpotifyID:     os.Getenv("SPOTIFY_ID"),
		SpotifySecret: os.Getenv("SPOTIFY_SECRET"),
		RedirectURL:   envOr("LYRIX_REDIRECT_URL", defaultRedirectTo),
		Addr:          envOr("LYRIX_ADDR", DefaultAddr),
		StorePath:     envOr("LYRIX_STORE_PATH", DefaultStorePath),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		LastFMAPIKey:  os.Getenv("LASTFM_API_KEY"),
		LyricsURL:     envOr("LYRICS_API_URL", DefaultLyricsURL),
	}

	if cfg.SpotifyID == "" || cfg.SpotifySecret == "" {
		return nil, ErrMissingSpotifyCredentials
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
