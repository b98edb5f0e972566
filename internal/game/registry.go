package game

import (
	"sync"
	"time"
)

// Kind names a session variant. At most one live session per kind exists in a
// chat at any time.
type Kind string

const (
	KindDuel   Kind = "duel"
	KindGuess  Kind = "guess"
	KindBattle Kind = "battle"
)

// Session is the registry's view of a live game. Expired must not block: it
// is called with the registry lock held, so implementations read immutable or
// atomic state only. Close cancels the session's timers and is idempotent;
// the registry always calls it after releasing its own lock.
type Session interface {
	Kind() Kind
	Expired(now time.Time) bool
	Close()
	Summary() string
}

type sessionKey struct {
	chatID int64
	kind   Kind
}

// Registry owns the per-chat map of live sessions and enforces the
// one-session-per-kind rule. Lock order: a session mutex may be taken before
// the registry mutex (engines resolving a round drop the entry), never the
// other way around.
type Registry struct {
	mu       sync.Mutex
	sessions map[sessionKey]Session
	clock    Clock
}

func NewRegistry(clock Clock) *Registry {
	return &Registry{
		sessions: make(map[sessionKey]Session),
		clock:    clock,
	}
}

// Create installs the session built by factory, refusing if a live
// non-expired session of that kind already exists for the chat.
func (r *Registry) Create(chatID int64, kind Kind, factory func() Session) (Session, error) {
	k := sessionKey{chatID, kind}

	r.mu.Lock()
	old, had := r.sessions[k]
	if had && !old.Expired(r.clock.Now()) {
		r.mu.Unlock()
		return nil, ErrSessionExists
	}
	s := factory()
	r.sessions[k] = s
	r.mu.Unlock()

	if had {
		old.Close()
	} else {
		sessionsActive.WithLabelValues(string(kind)).Inc()
	}
	return s, nil
}

// Get returns the live session for (chat, kind). An expired pending session
// is torn down and reported as missing.
func (r *Registry) Get(chatID int64, kind Kind) Session {
	k := sessionKey{chatID, kind}

	r.mu.Lock()
	s, ok := r.sessions[k]
	if !ok {
		r.mu.Unlock()
		return nil
	}
	if s.Expired(r.clock.Now()) {
		delete(r.sessions, k)
		r.mu.Unlock()
		s.Close()
		sessionsActive.WithLabelValues(string(kind)).Dec()
		return nil
	}
	r.mu.Unlock()
	return s
}

// Remove tears down the session for (chat, kind) if present.
func (r *Registry) Remove(chatID int64, kind Kind) {
	k := sessionKey{chatID, kind}

	r.mu.Lock()
	s, ok := r.sessions[k]
	if ok {
		delete(r.sessions, k)
	}
	r.mu.Unlock()

	if ok {
		s.Close()
		sessionsActive.WithLabelValues(string(kind)).Dec()
	}
}

// drop deletes the entry only if it still maps to s. Engines call it while
// holding the session's own mutex, after closing the session themselves.
func (r *Registry) drop(chatID int64, kind Kind, s Session) {
	k := sessionKey{chatID, kind}

	r.mu.Lock()
	cur, ok := r.sessions[k]
	if ok && cur == s {
		delete(r.sessions, k)
	} else {
		ok = false
	}
	r.mu.Unlock()

	if ok {
		sessionsActive.WithLabelValues(string(kind)).Dec()
	}
}

// Find returns the first session of the given kind matching pred. pred runs
// with the registry lock held and must only touch immutable or atomic state.
func (r *Registry) Find(kind Kind, pred func(chatID int64, s Session) bool) (int64, Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k, s := range r.sessions {
		if k.kind == kind && pred(k.chatID, s) {
			return k.chatID, s
		}
	}
	return 0, nil
}

// Snapshot returns the live sessions for a chat.
func (r *Registry) Snapshot(chatID int64) []Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Session
	for k, s := range r.sessions {
		if k.chatID == chatID {
			out = append(out, s)
		}
	}
	return out
}
