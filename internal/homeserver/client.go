// Package homeserver talks to a user's Lyrix homeserver, the alternate
// backend that exposes the local desktop player.
package homeserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lyrixbot/lyrix/internal/store"
	"github.com/lyrixbot/lyrix/internal/track"
)

const userAgent = "lyrix-bot/1.0"

// ErrNoHomeserver is returned when the user record has no homeserver
// configured.
var ErrNoHomeserver = errors.New("no homeserver on record")

// Client is a Lyrix homeserver API client.
type Client struct {
	httpClient *http.Client
	scheme     string
}

// NewClient creates a homeserver client.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		scheme: "https",
	}
}

// songResponse is the homeserver's current-song shape.
type songResponse struct {
	Artist string `json:"artist"`
	Track  string `json:"track"`
}

// CurrentLocalSong asks the user's homeserver what their local player is
// playing. The returned song may be empty; callers check Displayable.
func (c *Client) CurrentLocalSong(ctx context.Context, rec *store.UserRecord) (track.Song, error) {
	if rec.Homeserver == "" {
		return track.Song{}, ErrNoHomeserver
	}

	reqURL := fmt.Sprintf("%s://%s/user/player/local/current_song", c.scheme, rec.Homeserver)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return track.Song{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")
	if rec.HomeserverToken != "" {
		req.Header.Set("Authorization", "Bearer "+rec.HomeserverToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return track.Song{}, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return track.Song{}, fmt.Errorf("homeserver returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return track.Song{}, fmt.Errorf("reading response body: %w", err)
	}

	var sr songResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return track.Song{}, fmt.Errorf("parsing current song response: %w", err)
	}

	song := track.Song{
		Track:  sr.Track,
		Source: "local",
	}
	if sr.Artist != "" {
		song.Artists = []string{sr.Artist}
	}
	return song, nil
}
