// Package lyrics fetches lyric text for a song from a lyrics API.
package lyrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const userAgent = "lyrix-bot/1.0"

// ErrNotFound is returned when the provider has no lyrics for the song.
var ErrNotFound = errors.New("lyrics not found")

// Client is a lyrics API client. Lookups are cached in memory for the
// lifetime of the process.
type Client struct {
	httpClient *http.Client
	baseURL    string

	// key = "{artist}\n{title}"
	cache   map[string]string
	cacheMu sync.RWMutex
}

// NewClient creates a lyrics client for the given API base URL, e.g.
// https://api.lyrics.ovh/v1.
func NewClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		cache:   make(map[string]string),
	}
}

// lookupResponse is the provider's JSON shape. A missing-lyrics result
// carries an error string instead of lyrics.
type lookupResponse struct {
	Lyrics string `json:"lyrics"`
	Error  string `json:"error"`
}

// Lookup fetches lyrics for a song title and its primary artist.
// Returns ErrNotFound when the provider has nothing; transport faults are
// wrapped and returned as-is.
func (c *Client) Lookup(ctx context.Context, title, primaryArtist string) (string, error) {
	artist := CleanArtist(primaryArtist)
	if title == "" || artist == "" {
		return "", ErrNotFound
	}

	cacheKey := artist + "\n" + title
	c.cacheMu.RLock()
	if cached, ok := c.cache[cacheKey]; ok {
		c.cacheMu.RUnlock()
		return cached, nil
	}
	c.cacheMu.RUnlock()

	reqURL := fmt.Sprintf("%s/%s/%s",
		c.baseURL, url.PathEscape(artist), url.PathEscape(title))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("lyrics API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}

	var result lookupResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("parsing lyrics response: %w", err)
	}

	if result.Lyrics == "" {
		return "", ErrNotFound
	}

	c.cacheMu.Lock()
	c.cache[cacheKey] = result.Lyrics
	c.cacheMu.Unlock()

	return result.Lyrics, nil
}

// CleanArtist normalizes a provider artist name for lyric lookups: takes
// the first name of a comma-joined list and strips player suffixes.
func CleanArtist(artist string) string {
	if i := strings.Index(artist, ","); i >= 0 {
		artist = artist[:i]
	}
	artist = strings.ReplaceAll(artist, "- Music", "")
	artist = strings.ReplaceAll(artist, "BTS (防弹少年团)", "BTS")
	return strings.TrimSpace(artist)
}
