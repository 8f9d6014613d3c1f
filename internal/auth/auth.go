// Package auth exchanges stored refresh credentials for authenticated
// Spotify sessions.
package auth

import (
	"context"
	"fmt"
	"net/http"

	zspotify "github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/lyrixbot/lyrix/internal/spotify"
	"github.com/lyrixbot/lyrix/internal/store"
)

// Scopes requested when a user links their account.
var Scopes = []string{
	spotifyauth.ScopeUserReadEmail,
	spotifyauth.ScopeUserReadCurrentlyPlaying,
	spotifyauth.ScopeUserModifyPlaybackState,
	spotifyauth.ScopePlaylistModifyPublic,
	spotifyauth.ScopePlaylistModifyPrivate,
}

// Error reports a rejected credential exchange. Detail carries the
// provider's cause and is shown to the end user.
type Error struct {
	Detail string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("spotify authentication failed: %s", e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Resolver turns a user record's refresh credential into an authenticated
// provider session. Tokens are resolved per call and never cached here.
type Resolver struct {
	auth *spotifyauth.Authenticator
	conf *oauth2.Config
}

// NewResolver creates a Resolver for the given Spotify application.
func NewResolver(clientID, clientSecret, redirectURL string) *Resolver {
	return &Resolver{
		auth: spotifyauth.New(
			spotifyauth.WithClientID(clientID),
			spotifyauth.WithClientSecret(clientSecret),
			spotifyauth.WithRedirectURL(redirectURL),
			spotifyauth.WithScopes(Scopes...),
		),
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:  spotifyauth.AuthURL,
				TokenURL: spotifyauth.TokenURL,
			},
		},
	}
}

// Session exchanges the record's refresh credential for a bearer token and
// returns a session bound to it. The refresh round-trip happens eagerly so
// a revoked credential fails here, as *Error, rather than on the first API
// call.
func (r *Resolver) Session(ctx context.Context, rec *store.UserRecord) (*spotify.Client, error) {
	seed := &oauth2.Token{RefreshToken: rec.RefreshToken}

	token, err := r.conf.TokenSource(ctx, seed).Token()
	if err != nil {
		return nil, &Error{Detail: err.Error(), Err: err}
	}

	api := zspotify.New(r.auth.Client(ctx, token), zspotify.WithRetry(true))
	return spotify.New(api), nil
}

// AuthURL returns the provider consent URL for the given state token.
func (r *Resolver) AuthURL(state string) string {
	return r.auth.AuthURL(state)
}

// Exchange trades an authorization-code callback for a token. The token's
// refresh credential is what gets persisted on the user record.
func (r *Resolver) Exchange(ctx context.Context, state string, req *http.Request) (*oauth2.Token, error) {
	token, err := r.auth.Token(ctx, state, req)
	if err != nil {
		return nil, fmt.Errorf("exchanging code for token: %w", err)
	}
	return token, nil
}
