package lyrics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name       string
		title      string
		artist     string
		status     int
		response   any
		wantLyrics string
		wantErr    error
	}{
		{
			name:       "lyrics found",
			title:      "Blue",
			artist:     "X",
			status:     http.StatusOK,
			response:   lookupResponse{Lyrics: "la la la"},
			wantLyrics: "la la la",
		},
		{
			name:    "provider 404",
			title:   "Unknown",
			artist:  "Nobody",
			status:  http.StatusNotFound,
			wantErr: ErrNotFound,
		},
		{
			name:     "empty lyrics body",
			title:    "Blue",
			artist:   "X",
			status:   http.StatusOK,
			response: lookupResponse{Lyrics: ""},
			wantErr:  ErrNotFound,
		},
		{
			name:    "empty title never queried",
			title:   "",
			artist:  "X",
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				if tt.response != nil {
					_ = json.NewEncoder(w).Encode(tt.response)
				}
			}))
			defer srv.Close()

			c := NewClient(srv.URL)
			got, err := c.Lookup(context.Background(), tt.title, tt.artist)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Lookup() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Lookup() error = %v", err)
			}
			if got != tt.wantLyrics {
				t.Errorf("Lookup() = %q, want %q", got, tt.wantLyrics)
			}
		})
	}
}

func TestLookup_CachesResult(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_ = json.NewEncoder(w).Encode(lookupResponse{Lyrics: "la la la"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := c.Lookup(ctx, "Blue", "X"); err != nil {
			t.Fatalf("Lookup() error = %v", err)
		}
	}

	if calls.Load() != 1 {
		t.Errorf("provider called %d times, want 1 (cached)", calls.Load())
	}
}

func TestLookup_UsesPrimaryArtist(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(lookupResponse{Lyrics: "la"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.Lookup(context.Background(), "Blue", "X, Y"); err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}

	if gotPath != "/X/Blue" {
		t.Errorf("request path = %q, want %q", gotPath, "/X/Blue")
	}
}

func TestCleanArtist(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"X", "X"},
		{"X, Y", "X"},
		{"Daft Punk - Music", "Daft Punk"},
		{"BTS (防弹少年团)", "BTS"},
		{"  spaced  ", "spaced"},
	}

	for _, tt := range tests {
		if got := CleanArtist(tt.in); got != tt.want {
			t.Errorf("CleanArtist(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
