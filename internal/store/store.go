// Package store persists the association between a chat user and their
// Spotify credentials.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no record exists for a user id.
var ErrNotFound = errors.New("user not found")

// UserRecord is the persisted per-user association. Exactly one record
// exists per chat user id; upserts replace the record in place.
type UserRecord struct {
	UserID       int64  `json:"telegram_user_id"`
	RefreshToken string `json:"spotify_refresh_token"`
	PlaylistID   string `json:"playlist_id,omitempty"`

	// Optional profile fields for the homeserver backend variant.
	Username        string `json:"username,omitempty"`
	Homeserver      string `json:"homeserver,omitempty"`
	HomeserverToken string `json:"homeserver_token,omitempty"`
}

// SetPlaylistID records the lazily created queue playlist. The id is
// assigned once and never reset.
func (r *UserRecord) SetPlaylistID(id string) {
	if r.PlaylistID == "" {
		r.PlaylistID = id
	}
}

// Store is the user record store. Implementations must allow reads and
// upserts for different user ids to interleave safely.
type Store interface {
	// Get returns the record for a user id, or ErrNotFound.
	Get(ctx context.Context, userID int64) (*UserRecord, error)

	// Upsert creates or replaces the record for its user id.
	Upsert(ctx context.Context, rec *UserRecord) error

	// All returns every record in the store.
	All(ctx context.Context) ([]UserRecord, error)
}
