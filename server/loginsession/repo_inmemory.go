package loginsession

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/varix-web/internal/errors"
	"github.com/jrsteele09/varix-web/sessions"
)

type entry struct {
	session   *sessions.Session
	expiresAt time.Time
}

// InMemoryRepo is a thread-safe in-memory session store. Sessions idle for
// longer than the TTL are dropped when next read.
type InMemoryRepo struct {
	mu       sync.RWMutex
	sessions map[string]entry
	ttl      time.Duration
	now      func() time.Time
}

func NewInMemoryRepo() *InMemoryRepo {
	return NewInMemoryRepoWithTTL(DefaultTTL)
}

func NewInMemoryRepoWithTTL(ttl time.Duration) *InMemoryRepo {
	return &InMemoryRepo{
		sessions: make(map[string]entry),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (r *InMemoryRepo) Upsert(ctx context.Context, key string, session *sessions.Session) error {
	if key == "" {
		return apperrors.Wrapf(apperrors.ErrInvalidInput, "session key is required")
	}
	if session == nil {
		return apperrors.Wrapf(apperrors.ErrInvalidInput, "session is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[hashKey(key)] = entry{session: copySession(session), expiresAt: r.now().Add(r.ttl)}
	return nil
}

func (r *InMemoryRepo) Get(ctx context.Context, key string) (*sessions.Session, error) {
	if key == "" {
		return nil, apperrors.ErrSessionNotFound
	}
	h := hashKey(key)

	r.mu.RLock()
	e, ok := r.sessions[h]
	r.mu.RUnlock()

	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	if r.now().After(e.expiresAt) {
		r.mu.Lock()
		delete(r.sessions, h)
		r.mu.Unlock()
		return nil, apperrors.ErrSessionNotFound
	}
	return copySession(e.session), nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (r *InMemoryRepo) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, hashKey(key))
	return nil
}

// Len is the number of sessions held, expired or not.
func (r *InMemoryRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
