package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/oauth2"

	"github.com/lyrixbot/lyrix/internal/bot"
	"github.com/lyrixbot/lyrix/internal/format"
	"github.com/lyrixbot/lyrix/internal/store"
	"github.com/lyrixbot/lyrix/internal/track"
)

type memStore struct {
	recs map[int64]*store.UserRecord
}

func (m *memStore) Get(_ context.Context, userID int64) (*store.UserRecord, error) {
	rec, ok := m.recs[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *memStore) Upsert(_ context.Context, rec *store.UserRecord) error {
	cp := *rec
	m.recs[rec.UserID] = &cp
	return nil
}

func (m *memStore) All(_ context.Context) ([]store.UserRecord, error) { return nil, nil }

type fakeLinkResolver struct {
	token *oauth2.Token
}

func (f *fakeLinkResolver) AuthURL(state string) string {
	return "https://accounts.spotify.test/authorize?state=" + state
}

func (f *fakeLinkResolver) Exchange(_ context.Context, _ string, _ *http.Request) (*oauth2.Token, error) {
	return f.token, nil
}

type idleResolver struct{}

func (idleResolver) ResolveCurrent(_ context.Context, _ int64) track.Outcome {
	return track.Idle()
}

type fixedResolver struct {
	outcome track.Outcome
}

func (f fixedResolver) ResolveCurrent(_ context.Context, _ int64) track.Outcome {
	return f.outcome
}

type noopPlaylists struct{}

func (noopPlaylists) Ensure(_ context.Context, _ int64) (string, error)   { return "pl-1", nil }
func (noopPlaylists) Add(_ context.Context, _ int64, _ string) error      { return nil }
func (noopPlaylists) Clear(_ context.Context, _ int64) error              { return nil }
func (noopPlaylists) ShareURL(_ context.Context, _ int64) (string, error) { return "u", nil }

type noopLyrics struct{}

func (noopLyrics) Lookup(_ context.Context, _, _ string) (string, error) { return "la", nil }

func testHandlers(st store.Store, resolver LinkResolver) *Handlers {
	return handlersWithTracks(st, resolver, idleResolver{})
}

func handlersWithTracks(st store.Store, resolver LinkResolver, tracks bot.TrackResolver) *Handlers {
	commands := bot.New(st, tracks, noopPlaylists{}, noopLyrics{},
		func(_ context.Context, _ *store.UserRecord) (bot.Session, error) {
			return nil, nil
		}, nil, nil)
	return NewHandlers(resolver, st, commands)
}

func TestLink_RedirectsWithState(t *testing.T) {
	h := testHandlers(&memStore{recs: map[int64]*store.UserRecord{}}, &fakeLinkResolver{})

	req := httptest.NewRequest(http.MethodGet, "/auth/link?user_id=42", nil)
	w := httptest.NewRecorder()
	h.Link(w, req)

	if w.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusTemporaryRedirect)
	}
	loc := w.Header().Get("Location")
	if !strings.Contains(loc, "state=") {
		t.Errorf("redirect location %q carries no state", loc)
	}
}

func TestLink_RejectsMissingUserID(t *testing.T) {
	h := testHandlers(&memStore{recs: map[int64]*store.UserRecord{}}, &fakeLinkResolver{})

	req := httptest.NewRequest(http.MethodGet, "/auth/link", nil)
	w := httptest.NewRecorder()
	h.Link(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestCallback_PersistsRefreshToken(t *testing.T) {
	st := &memStore{recs: map[int64]*store.UserRecord{}}
	h := testHandlers(st, &fakeLinkResolver{token: &oauth2.Token{
		AccessToken:  "at",
		RefreshToken: "rt-new",
	}})

	state := h.links.Begin(42)

	req := httptest.NewRequest(http.MethodGet, "/callback?state="+state+"&code=abc", nil)
	w := httptest.NewRecorder()
	h.Callback(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	rec := st.recs[42]
	if rec == nil || rec.RefreshToken != "rt-new" {
		t.Errorf("stored record = %+v, want refresh token rt-new", rec)
	}
}

func TestCallback_UnknownState(t *testing.T) {
	h := testHandlers(&memStore{recs: map[int64]*store.UserRecord{}}, &fakeLinkResolver{})

	req := httptest.NewRequest(http.MethodGet, "/callback?state=bogus", nil)
	w := httptest.NewRecorder()
	h.Callback(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestCallback_StateIsSingleUse(t *testing.T) {
	st := &memStore{recs: map[int64]*store.UserRecord{}}
	h := testHandlers(st, &fakeLinkResolver{token: &oauth2.Token{RefreshToken: "rt"}})

	state := h.links.Begin(42)

	for i, wantCode := range []int{http.StatusOK, http.StatusBadRequest} {
		req := httptest.NewRequest(http.MethodGet, "/callback?state="+state, nil)
		w := httptest.NewRecorder()
		h.Callback(w, req)
		if w.Code != wantCode {
			t.Errorf("attempt %d: status = %d, want %d", i+1, w.Code, wantCode)
		}
	}
}

func TestCommand_DropsSilentPayloads(t *testing.T) {
	h := handlersWithTracks(&memStore{recs: map[int64]*store.UserRecord{}},
		&fakeLinkResolver{}, fixedResolver{outcome: track.Playing(track.Song{}, nil)})

	body := `{"user_id": 7, "user_name": "Alice", "command": "share"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/commands", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Command(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp commandResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Payloads) != 0 {
		t.Errorf("payloads = %+v, want none for a song with no title", resp.Payloads)
	}
}

func TestCommand(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
		wantText string
	}{
		{
			name:     "ping",
			body:     `{"user_id": 7, "command": "ping"}`,
			wantCode: http.StatusOK,
			wantText: "pong!",
		},
		{
			name:     "share while idle",
			body:     `{"user_id": 7, "user_name": "Alice", "command": "share"}`,
			wantCode: http.StatusOK,
			wantText: format.MsgIdle,
		},
		{
			name:     "unknown command",
			body:     `{"user_id": 7, "command": "dance"}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "missing user id",
			body:     `{"command": "ping"}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "malformed body",
			body:     `{`,
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := testHandlers(&memStore{recs: map[int64]*store.UserRecord{}}, &fakeLinkResolver{})

			req := httptest.NewRequest(http.MethodPost, "/v1/commands", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			h.Command(w, req)

			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantCode)
			}
			if tt.wantText == "" {
				return
			}

			var resp commandResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decoding response: %v", err)
			}
			if len(resp.Payloads) == 0 || resp.Payloads[0].Text != tt.wantText {
				t.Errorf("payloads = %+v, want first text %q", resp.Payloads, tt.wantText)
			}
		})
	}
}
