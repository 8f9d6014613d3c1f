package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/lyrixbot/lyrix/internal/bot"
	"github.com/lyrixbot/lyrix/internal/format"
	"github.com/lyrixbot/lyrix/internal/logging"
	"github.com/lyrixbot/lyrix/internal/store"
)

// LinkResolver is the OAuth surface the link flow needs.
type LinkResolver interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, state string, req *http.Request) (*oauth2.Token, error)
}

// Handlers contains the HTTP handlers.
type Handlers struct {
	resolver LinkResolver
	store    store.Store
	commands *bot.Commands
	links    *linkStates
	log      *log.Logger
}

// NewHandlers creates a Handlers instance.
func NewHandlers(resolver LinkResolver, st store.Store, commands *bot.Commands) *Handlers {
	return &Handlers{
		resolver: resolver,
		store:    st,
		commands: commands,
		links:    newLinkStates(),
		log:      logging.New("web"),
	}
}

// Health answers liveness probes (GET /healthz).
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// Link starts the Spotify consent flow for a chat user
// (GET /auth/link?user_id=N).
func (h *Handlers) Link(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil {
		http.Error(w, "missing or invalid user_id", http.StatusBadRequest)
		return
	}

	state := h.links.Begin(userID)
	http.Redirect(w, r, h.resolver.AuthURL(state), http.StatusTemporaryRedirect)
}

// Callback handles the OAuth callback from Spotify (GET /callback) and
// persists the refresh credential on the user record.
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	userID, ok := h.links.Claim(state)
	if !ok {
		http.Error(w, "Unknown or expired link attempt", http.StatusBadRequest)
		return
	}

	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		http.Error(w, fmt.Sprintf("Spotify auth error: %s", errMsg), http.StatusBadRequest)
		return
	}

	token, err := h.resolver.Exchange(r.Context(), state, r)
	if err != nil {
		h.log.Error("code exchange failed", "user", userID, "err", err)
		http.Error(w, "Failed to get token", http.StatusInternalServerError)
		return
	}
	if token.RefreshToken == "" {
		http.Error(w, "Provider returned no refresh token", http.StatusBadGateway)
		return
	}

	rec, err := h.store.Get(r.Context(), userID)
	if errors.Is(err, store.ErrNotFound) {
		rec = &store.UserRecord{UserID: userID}
	} else if err != nil {
		h.log.Error("store lookup failed", "user", userID, "err", err)
		http.Error(w, "Storage failure", http.StatusInternalServerError)
		return
	}
	rec.RefreshToken = token.RefreshToken

	if err := h.store.Upsert(r.Context(), rec); err != nil {
		h.log.Error("persisting credentials failed", "user", userID, "err", err)
		http.Error(w, "Storage failure", http.StatusInternalServerError)
		return
	}

	h.log.Info("account linked", "user", userID)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, `<!DOCTYPE html>
<html>
<head><title>Lyrix</title></head>
<body>
<h1>✅ Spotify account linked!</h1>
<p>You can close this window and head back to the chat.</p>
</body>
</html>`)
}

// commandRequest is what the chat transport posts for each inbound
// command or inline query.
type commandRequest struct {
	UserID      int64  `json:"user_id"`
	UserName    string `json:"user_name"`
	Command     string `json:"command"`
	Args        string `json:"args"`
	RepliedText string `json:"replied_text"`
}

// commandResponse carries the payloads to deliver back to the chat.
type commandResponse struct {
	Payloads []format.Payload `json:"payloads"`
}

// Command dispatches a chat command (POST /v1/commands).
func (h *Handlers) Command(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == 0 {
		http.Error(w, "missing user_id", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	var payloads []format.Payload

	switch req.Command {
	case "start":
		payloads = []format.Payload{h.commands.Start(ctx, req.UserID, req.Args)}
	case "lyrics":
		payloads = h.commands.Lyrics(ctx, req.UserID, req.UserName)
	case "share":
		payloads = []format.Payload{h.commands.Share(ctx, req.UserID, req.UserName)}
	case "inline":
		payloads = []format.Payload{h.commands.Inline(ctx, req.UserID, req.UserName)}
	case "playthis":
		payloads = []format.Payload{h.commands.PlayThis(ctx, req.UserID, req.RepliedText)}
	case "clear_playlist":
		payloads = []format.Payload{h.commands.ClearPlaylist(ctx, req.UserID)}
	case "share_playlist":
		payloads = []format.Payload{h.commands.SharePlaylist(ctx, req.UserID, req.UserName)}
	case "whoami":
		payloads = []format.Payload{h.commands.WhoAmI(ctx, req.UserID)}
	case "myid":
		payloads = []format.Payload{h.commands.MyID(req.UserID)}
	case "ping":
		payloads = []format.Payload{h.commands.Ping()}
	case "local_lyrics":
		payloads = h.commands.LocalLyrics(ctx, req.UserID)
	case "local_share":
		payloads = []format.Payload{h.commands.LocalShare(ctx, req.UserID, req.UserName)}
	case "general":
		payloads = h.commands.General(ctx, req.UserID, req.UserName, req.Args)
	default:
		http.Error(w, "unknown command", http.StatusBadRequest)
		return
	}

	// A payload without text is a deliberate silent reply; nothing to
	// deliver.
	sendable := make([]format.Payload, 0, len(payloads))
	for _, p := range payloads {
		if p.Text != "" {
			sendable = append(sendable, p)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(commandResponse{Payloads: sendable}); err != nil {
		h.log.Error("encoding response failed", "err", err)
	}
}
