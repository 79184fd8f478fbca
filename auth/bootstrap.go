package auth

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Bootstrap restores the initial session into store.
//
// On a recovery landing nothing is fetched and the visitor stays signed
// out, so the reset flow is the only thing acting on the link. Otherwise the
// session is read once; a failed read leaves the visitor signed out. Loading
// always ends, whichever path is taken.
func Bootstrap(ctx context.Context, backend Backend, store *Store, loc Location) {
	if loc.IsRecoveryLanding() {
		store.finishLoading()
		return
	}

	defer store.finishLoading()

	mark := store.mark()
	session, err := backend.GetSession(ctx)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("Failed to get session")
		store.restore(nil, mark)
		return
	}
	store.restore(session, mark)
}
