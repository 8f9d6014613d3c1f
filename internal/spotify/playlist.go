package spotify

import (
	"context"
	"fmt"
	"strings"

	"github.com/zmb3/spotify/v2"
)

// CreatePlaylist creates a private, non-collaborative playlist for the
// current user and returns its ID.
func (c *Client) CreatePlaylist(ctx context.Context, name, description string) (string, error) {
	userID, err := c.UserID(ctx)
	if err != nil {
		return "", err
	}

	playlist, err := c.api.CreatePlaylistForUser(ctx, userID, name, description, false, false)
	if err != nil {
		return "", fmt.Errorf("creating playlist: %w", err)
	}

	return playlist.ID.String(), nil
}

// AddToPlaylist appends tracks to a playlist.
func (c *Client) AddToPlaylist(ctx context.Context, playlistID string, trackURIs ...string) error {
	if len(trackURIs) == 0 {
		return nil
	}

	_, err := c.api.AddTracksToPlaylist(ctx, spotify.ID(playlistID), trackIDs(trackURIs)...)
	if err != nil {
		return fmt.Errorf("adding tracks to playlist: %w", err)
	}
	return nil
}

// ReplacePlaylist replaces the full contents of a playlist. Called with no
// tracks it empties the playlist.
func (c *Client) ReplacePlaylist(ctx context.Context, playlistID string, trackURIs ...string) error {
	err := c.api.ReplacePlaylistTracks(ctx, spotify.ID(playlistID), trackIDs(trackURIs)...)
	if err != nil {
		return fmt.Errorf("replacing playlist tracks: %w", err)
	}
	return nil
}

// PlaylistURL returns the canonical public-web URL for a playlist. The URL
// alone does not grant access to a private playlist.
func PlaylistURL(playlistID string) string {
	return "https://open.spotify.com/playlist/" + playlistID
}

// trackIDs converts spotify:track: URIs to bare IDs; bare IDs pass through.
func trackIDs(uris []string) []spotify.ID {
	ids := make([]spotify.ID, len(uris))
	for i, uri := range uris {
		id := uri
		if j := strings.LastIndex(uri, ":"); j >= 0 {
			id = uri[j+1:]
		}
		ids[i] = spotify.ID(id)
	}
	return ids
}
