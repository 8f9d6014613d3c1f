package track

import (
	"context"
	"errors"
	"testing"

	"github.com/lyrixbot/lyrix/internal/auth"
	"github.com/lyrixbot/lyrix/internal/spotify"
	"github.com/lyrixbot/lyrix/internal/store"
)

type fakeStore struct {
	recs map[int64]*store.UserRecord
	err  error
}

func (f *fakeStore) Get(_ context.Context, userID int64) (*store.UserRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	rec, ok := f.recs[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return rec, nil
}

func (f *fakeStore) Upsert(_ context.Context, rec *store.UserRecord) error {
	f.recs[rec.UserID] = rec
	return nil
}

func (f *fakeStore) All(_ context.Context) ([]store.UserRecord, error) {
	return nil, nil
}

type fakePlayer struct {
	now *spotify.NowPlaying
	err error
}

func (f *fakePlayer) CurrentlyPlaying(_ context.Context) (*spotify.NowPlaying, error) {
	return f.now, f.err
}

func sessionsFor(p Player, err error) SessionFunc {
	return func(_ context.Context, _ *store.UserRecord) (Player, error) {
		return p, err
	}
}

func TestEngine_ResolveCurrent(t *testing.T) {
	linked := map[int64]*store.UserRecord{
		7: {UserID: 7, RefreshToken: "rt-7"},
	}

	tests := []struct {
		name       string
		userID     int64
		sessions   SessionFunc
		wantKind   Kind
		wantDetail string
	}{
		{
			name:     "unknown user is not linked",
			userID:   42,
			sessions: sessionsFor(&fakePlayer{}, nil),
			wantKind: KindNotLinked,
		},
		{
			name:       "rejected refresh credential",
			userID:     7,
			sessions:   sessionsFor(nil, &auth.Error{Detail: "invalid_grant: refresh token revoked"}),
			wantKind:   KindAuthFailed,
			wantDetail: "invalid_grant: refresh token revoked",
		},
		{
			name:     "nil player state is idle",
			userID:   7,
			sessions: sessionsFor(&fakePlayer{now: nil}, nil),
			wantKind: KindIdle,
		},
		{
			name:     "paused playback is idle",
			userID:   7,
			sessions: sessionsFor(&fakePlayer{now: &spotify.NowPlaying{Playing: false}}, nil),
			wantKind: KindIdle,
		},
		{
			name:   "playing without item is an ad break",
			userID: 7,
			sessions: sessionsFor(&fakePlayer{
				now: &spotify.NowPlaying{Playing: true},
			}, nil),
			wantKind: KindAdvertisement,
		},
		{
			name:     "provider fault is a generic failure",
			userID:   7,
			sessions: sessionsFor(&fakePlayer{err: errors.New("connection reset")}, nil),
			wantKind: KindFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(&fakeStore{recs: linked}, tt.sessions)

			got := engine.ResolveCurrent(context.Background(), tt.userID)

			if got.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", got.Kind, tt.wantKind)
			}
			if tt.wantKind == KindAuthFailed {
				if got.Detail == "" {
					t.Error("AuthFailed outcome has empty detail")
				}
				if got.Detail != tt.wantDetail {
					t.Errorf("Detail = %q, want %q", got.Detail, tt.wantDetail)
				}
			}
		})
	}
}

func TestEngine_ResolveCurrent_Playing(t *testing.T) {
	now := &spotify.NowPlaying{
		Playing: true,
		Item: &spotify.Item{
			Name:        "Blue",
			Artists:     []string{"X", "Y"},
			URI:         "spotify:track:abc123",
			ExternalURL: "https://open.spotify.com/track/abc123",
		},
	}
	engine := NewEngine(
		&fakeStore{recs: map[int64]*store.UserRecord{7: {UserID: 7, RefreshToken: "rt"}}},
		sessionsFor(&fakePlayer{now: now}, nil),
	)

	got := engine.ResolveCurrent(context.Background(), 7)

	if got.Kind != KindPlaying {
		t.Fatalf("Kind = %v, want KindPlaying", got.Kind)
	}
	if got.Song.Track != "Blue" {
		t.Errorf("Track = %q, want %q", got.Song.Track, "Blue")
	}
	if len(got.Song.Artists) != 2 || got.Song.Artists[0] != "X" || got.Song.Artists[1] != "Y" {
		t.Errorf("Artists = %v, want [X Y]", got.Song.Artists)
	}
	if got.Song.PrimaryArtist() != "X" {
		t.Errorf("PrimaryArtist() = %q, want %q", got.Song.PrimaryArtist(), "X")
	}
	if got.Raw != now {
		t.Error("Raw payload not retained on Playing outcome")
	}
}

func TestSong_Displayable(t *testing.T) {
	tests := []struct {
		name string
		song Song
		want bool
	}{
		{"full song", Song{Track: "Blue", Artists: []string{"X"}}, true},
		{"missing track", Song{Artists: []string{"X"}}, false},
		{"missing artists", Song{Track: "Blue"}, false},
		{"empty artist name", Song{Track: "Blue", Artists: []string{""}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.song.Displayable(); got != tt.want {
				t.Errorf("Displayable() = %v, want %v", got, tt.want)
			}
		})
	}
}
