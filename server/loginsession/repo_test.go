package loginsession_test

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/varix-web/internal/errors"
	"github.com/jrsteele09/varix-web/server/loginsession"
	"github.com/jrsteele09/varix-web/sessions"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestInMemoryRepo(t *testing.T) {
	ctx := context.Background()
	session := &sessions.Session{
		Token: &oauth2.Token{AccessToken: "a", RefreshToken: "r"},
		User:  sessions.User{ID: "u1", Email: "u1@example.com"},
	}

	t.Run("round trip", func(t *testing.T) {
		repo := loginsession.NewInMemoryRepo()
		require.NoError(t, repo.Upsert(ctx, "cookie", session))

		got, err := repo.Get(ctx, "cookie")
		require.NoError(t, err)
		require.Equal(t, session, got)
		require.NotSame(t, session, got)
	})

	t.Run("stored value is a copy", func(t *testing.T) {
		repo := loginsession.NewInMemoryRepo()
		require.NoError(t, repo.Upsert(ctx, "cookie", session))

		got, err := repo.Get(ctx, "cookie")
		require.NoError(t, err)
		got.Token.AccessToken = "changed"

		again, err := repo.Get(ctx, "cookie")
		require.NoError(t, err)
		require.Equal(t, "a", again.AccessToken())
	})

	t.Run("missing", func(t *testing.T) {
		repo := loginsession.NewInMemoryRepo()
		_, err := repo.Get(ctx, "nope")
		require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
		_, err = repo.Get(ctx, "")
		require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		repo := loginsession.NewInMemoryRepo()
		require.NoError(t, repo.Upsert(ctx, "cookie", session))
		require.NoError(t, repo.Delete(ctx, "cookie"))
		require.NoError(t, repo.Delete(ctx, "cookie"))
		require.Zero(t, repo.Len())
	})

	t.Run("expired sessions are dropped", func(t *testing.T) {
		repo := loginsession.NewInMemoryRepoWithTTL(-time.Second)
		require.NoError(t, repo.Upsert(ctx, "cookie", session))

		_, err := repo.Get(ctx, "cookie")
		require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
		require.Zero(t, repo.Len())
	})

	t.Run("invalid input", func(t *testing.T) {
		repo := loginsession.NewInMemoryRepo()
		require.ErrorIs(t, repo.Upsert(ctx, "", session), apperrors.ErrInvalidInput)
		require.ErrorIs(t, repo.Upsert(ctx, "cookie", nil), apperrors.ErrInvalidInput)
	})
}
