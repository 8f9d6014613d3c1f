package web

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const linkTTL = 10 * time.Minute

// linkSession is a pending account-link attempt: the OAuth state token
// mapped back to the chat user who started it.
type linkSession struct {
	userID    int64
	createdAt time.Time
}

// linkStates tracks pending link attempts in memory.
type linkStates struct {
	mu     sync.Mutex
	states map[string]linkSession
}

func newLinkStates() *linkStates {
	return &linkStates{states: make(map[string]linkSession)}
}

// Begin registers a new link attempt and returns its state token.
func (l *linkStates) Begin(userID int64) string {
	state := uuid.New().String()

	l.mu.Lock()
	l.states[state] = linkSession{userID: userID, createdAt: time.Now()}
	l.mu.Unlock()

	return state
}

// Claim resolves and removes a state token. ok is false for unknown or
// expired tokens.
func (l *linkStates) Claim(state string) (userID int64, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	session, found := l.states[state]
	if !found {
		return 0, false
	}
	delete(l.states, state)

	if time.Since(session.createdAt) > linkTTL {
		return 0, false
	}
	return session.userID, true
}
