package homeserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lyrixbot/lyrix/internal/store"
)

func testClient(server *httptest.Server) *Client {
	return &Client{
		httpClient: server.Client(),
		scheme:     "http",
	}
}

func hostOf(t *testing.T, server *httptest.Server) string {
	t.Helper()
	return strings.TrimPrefix(server.URL, "http://")
}

func TestCurrentLocalSong(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user/player/local/current_song" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok123" {
			t.Errorf("Authorization = %q, want Bearer tok123", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"artist": "X", "track": "Blue"}`))
	}))
	defer server.Close()

	client := testClient(server)
	rec := &store.UserRecord{UserID: 7, Homeserver: hostOf(t, server), HomeserverToken: "tok123"}

	song, err := client.CurrentLocalSong(context.Background(), rec)
	if err != nil {
		t.Fatalf("CurrentLocalSong() error = %v", err)
	}
	if song.Track != "Blue" || song.PrimaryArtist() != "X" || song.Source != "local" {
		t.Errorf("song = %+v", song)
	}
	if !song.Displayable() {
		t.Error("song should be displayable")
	}
}

func TestCurrentLocalSong_NothingPlaying(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"artist": "", "track": ""}`))
	}))
	defer server.Close()

	client := testClient(server)
	rec := &store.UserRecord{UserID: 7, Homeserver: hostOf(t, server)}

	song, err := client.CurrentLocalSong(context.Background(), rec)
	if err != nil {
		t.Fatalf("CurrentLocalSong() error = %v", err)
	}
	if song.Displayable() {
		t.Errorf("song = %+v, want not displayable", song)
	}
}

func TestCurrentLocalSong_NoHomeserver(t *testing.T) {
	client := NewClient()

	_, err := client.CurrentLocalSong(context.Background(), &store.UserRecord{UserID: 7})
	if !errors.Is(err, ErrNoHomeserver) {
		t.Errorf("error = %v, want ErrNoHomeserver", err)
	}
}

func TestCurrentLocalSong_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := testClient(server)
	rec := &store.UserRecord{UserID: 7, Homeserver: hostOf(t, server)}

	if _, err := client.CurrentLocalSong(context.Background(), rec); err == nil {
		t.Error("expected error for 500 response")
	}
}
