// Package spotify provides a wrapper around the Spotify Web API.
package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
)

// Client wraps the Spotify API client with the operations the bot needs.
// A Client is bound to one authenticated user session.
type Client struct {
	api *spotify.Client
}

// New creates a new Spotify client wrapper.
// The underlying client should already be authenticated.
func New(api *spotify.Client) *Client {
	return &Client{api: api}
}

// UserID returns the current user's Spotify ID.
func (c *Client) UserID(ctx context.Context) (string, error) {
	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		return "", fmt.Errorf("getting current user: %w", err)
	}
	return user.ID, nil
}

// CurrentlyPlaying queries the player state of the authenticated user.
// A nil item with Playing=true is the provider's signal for a non-track
// content slot (ad break).
func (c *Client) CurrentlyPlaying(ctx context.Context) (*NowPlaying, error) {
	playing, err := c.api.PlayerCurrentlyPlaying(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting currently playing track: %w", err)
	}
	if playing == nil {
		return nil, nil
	}

	np := &NowPlaying{Playing: playing.Playing}
	if playing.Item != nil {
		item := &Item{
			Name:        playing.Item.Name,
			URI:         string(playing.Item.URI),
			ExternalURL: playing.Item.ExternalURLs["spotify"],
		}
		for _, a := range playing.Item.Artists {
			item.Artists = append(item.Artists, a.Name)
		}
		if imgs := playing.Item.Album.Images; len(imgs) > 0 {
			item.AlbumArtURL = imgs[0].URL
		}
		np.Item = item
	}
	return np, nil
}

// StartPlayback starts playing the given track URI on the user's active
// device.
func (c *Client) StartPlayback(ctx context.Context, trackURI string) error {
	opts := &spotify.PlayOptions{
		URIs: []spotify.URI{spotify.URI(trackURI)},
	}
	if err := c.api.PlayOpt(ctx, opts); err != nil {
		return fmt.Errorf("starting playback: %w", err)
	}
	return nil
}
