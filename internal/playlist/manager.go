// Package playlist manages the per-user Lyrix queue playlist on the
// streaming provider.
package playlist

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/lyrixbot/lyrix/internal/logging"
	"github.com/lyrixbot/lyrix/internal/spotify"
	"github.com/lyrixbot/lyrix/internal/store"
)

const (
	// Name is the fixed label of the queue playlist.
	Name        = "Lyrix Queue"
	description = "Songs queued through the Lyrix bot"
)

// Provider is the provider session surface the manager needs.
type Provider interface {
	CreatePlaylist(ctx context.Context, name, description string) (string, error)
	AddToPlaylist(ctx context.Context, playlistID string, trackURIs ...string) error
	ReplacePlaylist(ctx context.Context, playlistID string, trackURIs ...string) error
}

// SessionFunc resolves a user record into an authenticated provider
// session. A rejected credential is reported as *auth.Error.
type SessionFunc func(ctx context.Context, rec *store.UserRecord) (Provider, error)

// Manager lazily creates and operates on each user's queue playlist.
type Manager struct {
	store    store.Store
	sessions SessionFunc
	log      *log.Logger
}

// NewManager creates a Manager over the given store and session resolver.
func NewManager(st store.Store, sessions SessionFunc) *Manager {
	return &Manager{
		store:    st,
		sessions: sessions,
		log:      logging.New("playlist"),
	}
}

// Ensure returns the user's queue playlist id, creating the playlist on
// the provider and persisting the id on first use. Idempotent from the
// caller's perspective. Two concurrent first uses may both create a
// playlist; the second persisted id wins and the loser is simply never
// referenced again.
func (m *Manager) Ensure(ctx context.Context, userID int64) (string, error) {
	rec, session, err := m.resolve(ctx, userID)
	if err != nil {
		return "", err
	}
	return m.ensure(ctx, rec, session)
}

// Add appends one track to the user's queue playlist.
func (m *Manager) Add(ctx context.Context, userID int64, trackURI string) error {
	rec, session, err := m.resolve(ctx, userID)
	if err != nil {
		return err
	}

	id, err := m.ensure(ctx, rec, session)
	if err != nil {
		return err
	}

	if err := session.AddToPlaylist(ctx, id, trackURI); err != nil {
		return fmt.Errorf("queueing track: %w", err)
	}
	return nil
}

// Clear replaces the queue playlist contents with an empty list.
func (m *Manager) Clear(ctx context.Context, userID int64) error {
	rec, session, err := m.resolve(ctx, userID)
	if err != nil {
		return err
	}

	id, err := m.ensure(ctx, rec, session)
	if err != nil {
		return err
	}

	if err := session.ReplacePlaylist(ctx, id); err != nil {
		return fmt.Errorf("clearing playlist: %w", err)
	}
	return nil
}

// ShareURL returns the canonical public-web URL of the queue playlist.
// The playlist is private; the URL alone does not grant access.
func (m *Manager) ShareURL(ctx context.Context, userID int64) (string, error) {
	rec, session, err := m.resolve(ctx, userID)
	if err != nil {
		return "", err
	}

	id, err := m.ensure(ctx, rec, session)
	if err != nil {
		return "", err
	}

	return spotify.PlaylistURL(id), nil
}

// resolve fetches the user record and opens a provider session for it.
// store.ErrNotFound and *auth.Error pass through for callers to classify.
func (m *Manager) resolve(ctx context.Context, userID int64) (*store.UserRecord, Provider, error) {
	rec, err := m.store.Get(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	session, err := m.sessions(ctx, rec)
	if err != nil {
		return nil, nil, err
	}
	return rec, session, nil
}

// ensure reuses the persisted playlist id or creates the playlist now.
func (m *Manager) ensure(ctx context.Context, rec *store.UserRecord, session Provider) (string, error) {
	if rec.PlaylistID != "" {
		return rec.PlaylistID, nil
	}

	id, err := session.CreatePlaylist(ctx, Name, description)
	if err != nil {
		return "", fmt.Errorf("creating queue playlist: %w", err)
	}

	rec.SetPlaylistID(id)
	if err := m.store.Upsert(ctx, rec); err != nil {
		return "", fmt.Errorf("persisting playlist id: %w", err)
	}

	m.log.Info("created queue playlist", "user", rec.UserID, "playlist", id)
	return id, nil
}
