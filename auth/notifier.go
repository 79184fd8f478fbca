package auth

import (
	"context"
	"sync"

	"github.com/jrsteele09/varix-web/sessions"
	"github.com/rs/zerolog/log"
)

// Notifier feeds backend auth-state changes into a Store for as long as it
// is open. Close must be called to release the subscription.
type Notifier struct {
	ctx      context.Context
	backend  Backend
	store    *Store
	location func() Location

	sub  sessions.Subscription
	once sync.Once
}

// NewNotifier subscribes to backend. location reports where the browser is
// when each event arrives.
func NewNotifier(ctx context.Context, backend Backend, store *Store, location func() Location) *Notifier {
	n := &Notifier{
		ctx:      ctx,
		backend:  backend,
		store:    store,
		location: location,
	}
	n.sub = backend.OnAuthStateChange(n.handle)
	return n
}

func (n *Notifier) handle(change sessions.Change) {
	ev := Classify(change)
	if n.store.Dispatch(ev, n.location()) != EffectSignOut {
		return
	}

	log.Ctx(n.ctx).Info().Msg("Password recovery session discarded on reset page")
	if err := n.backend.SignOut(n.ctx); err != nil {
		log.Ctx(n.ctx).Err(err).Msg("Failed to sign out recovery session")
	}
}

// Close unsubscribes from the backend. It is safe to call more than once.
func (n *Notifier) Close() {
	n.once.Do(func() {
		if n.sub != nil {
			n.sub.Unsubscribe()
		}
	})
}
