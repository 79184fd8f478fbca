package auth_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/jrsteele09/varix-web/auth"
	"github.com/jrsteele09/varix-web/auth/authfake"
	"github.com/jrsteele09/varix-web/users"
	"github.com/stretchr/testify/require"
)

func beginRecovery(t *testing.T, backend *authfake.FakeBackend, fragment string) (*auth.RecoveryFlow, auth.Location) {
	t.Helper()
	flow := auth.NewRecoveryFlow(backend)
	require.Equal(t, auth.RecoveryParsingTokens, flow.State())
	loc := flow.Begin(context.Background(), auth.Location{Path: auth.RecoveryPath, Fragment: fragment})
	return flow, loc
}

func TestRecoveryFlowBegin(t *testing.T) {
	t.Run("valid link awaits input", func(t *testing.T) {
		backend := authfake.NewFakeBackend().WithSession(authfake.NewSession("ambient", ""))

		flow, loc := beginRecovery(t, backend, "#access_token=AAA&refresh_token=BBB&type=recovery")

		require.Equal(t, auth.RecoveryAwaitingInput, flow.State())
		require.Equal(t, &auth.RecoveryTokens{AccessToken: "AAA", RefreshToken: "BBB"}, flow.Tokens())
		require.Empty(t, loc.Fragment)
		require.Equal(t, auth.RecoveryPath, loc.Path)
		require.Equal(t, 1, backend.CallCount(authfake.CallSignOut))
		require.Nil(t, backend.Session())
		require.Zero(t, backend.CallCount(authfake.CallSetSession))
	})

	t.Run("missing refresh token is a token error", func(t *testing.T) {
		backend := authfake.NewFakeBackend()

		flow, loc := beginRecovery(t, backend, "#access_token=AAA&type=recovery")

		require.Equal(t, auth.RecoveryTokenError, flow.State())
		require.Nil(t, flow.Tokens())
		require.Empty(t, loc.Fragment)
		require.Equal(t, auth.MsgExpiredLink, flow.Message())
		require.Equal(t, 1, backend.CallCount(authfake.CallSignOut))
		require.Zero(t, backend.CallCount(authfake.CallSetSession))

		require.Equal(t, auth.RecoveryTokenError, flow.Submit(context.Background(), "ValidPass1", "ValidPass1"))
		require.Zero(t, backend.CallCount(authfake.CallSetSession))
	})

	t.Run("wrong type is a token error", func(t *testing.T) {
		flow, _ := beginRecovery(t, authfake.NewFakeBackend(), "access_token=AAA&refresh_token=BBB&type=signup")
		require.Equal(t, auth.RecoveryTokenError, flow.State())
	})

	t.Run("empty fragment is a token error", func(t *testing.T) {
		flow, _ := beginRecovery(t, authfake.NewFakeBackend(), "")
		require.Equal(t, auth.RecoveryTokenError, flow.State())
	})

	t.Run("sign out failure does not stop the flow", func(t *testing.T) {
		backend := authfake.NewFakeBackend()
		backend.SignOutErr = errors.New("network down")

		flow, _ := beginRecovery(t, backend, "access_token=AAA&refresh_token=BBB&type=recovery")
		require.Equal(t, auth.RecoveryAwaitingInput, flow.State())
	})
}

func TestRecoveryFlowSubmit(t *testing.T) {
	tokens := auth.RecoveryTokens{AccessToken: "AAA", RefreshToken: "BBB"}

	t.Run("validation failures make no network call", func(t *testing.T) {
		tests := []struct {
			name     string
			password string
			confirm  string
			expected users.FieldErrors
		}{
			{"too short", "abc", "abc", users.FieldErrors{Password: users.ErrPasswordTooShort.Error()}},
			{"no uppercase", "alllowercase1", "alllowercase1", users.FieldErrors{Password: users.ErrPasswordNoUpper.Error()}},
			{"no lowercase", "ALLUPPER1", "ALLUPPER1", users.FieldErrors{Password: users.ErrPasswordNoLower.Error()}},
			{"mismatch", "ValidPass1", "ValidPass2", users.FieldErrors{Confirm: users.ErrPasswordsMismatch.Error()}},
			{"empty confirm", "ValidPass1", "", users.FieldErrors{}},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				backend := authfake.NewFakeBackend()
				flow := auth.ResumeRecoveryFlow(backend, tokens)

				state := flow.Submit(context.Background(), tc.password, tc.confirm)

				require.Equal(t, auth.RecoveryAwaitingInput, state)
				require.Equal(t, tc.expected, flow.FieldErrors())
				require.Empty(t, backend.Calls())
				require.NotNil(t, flow.Tokens())
			})
		}
	})

	t.Run("success signs out and schedules login", func(t *testing.T) {
		backend := authfake.NewFakeBackend()
		flow := auth.ResumeRecoveryFlow(backend, tokens, auth.WithRedirectDelay(time.Second))

		_, _, ok := flow.RedirectAfter()
		require.False(t, ok)

		state := flow.Submit(context.Background(), "ValidPass1", "ValidPass1")

		require.Equal(t, auth.RecoverySuccess, state)
		require.Nil(t, flow.Tokens())
		require.Equal(t, "ValidPass1", backend.LastPassword)
		require.Equal(t, []string{authfake.CallSetSession, authfake.CallUpdateUser, authfake.CallSignOut}, backend.Calls())
		require.Nil(t, backend.Session())
		require.Equal(t, auth.MsgPasswordUpdated, flow.Message())

		to, delay, ok := flow.RedirectAfter()
		require.True(t, ok)
		require.Equal(t, auth.LoginPath, to.Path)
		require.Equal(t, time.Second, delay)
	})

	t.Run("default redirect delay", func(t *testing.T) {
		flow := auth.ResumeRecoveryFlow(authfake.NewFakeBackend(), tokens)
		flow.Submit(context.Background(), "ValidPass1", "ValidPass1")
		_, delay, ok := flow.RedirectAfter()
		require.True(t, ok)
		require.Equal(t, auth.DefaultRedirectDelay, delay)
	})

	t.Run("expired link on submit", func(t *testing.T) {
		backend := authfake.NewFakeBackend()
		backend.SetSessionErr = errors.New("Invalid Refresh Token: Already Used")
		flow := auth.ResumeRecoveryFlow(backend, tokens)

		state := flow.Submit(context.Background(), "ValidPass1", "ValidPass1")

		require.Equal(t, auth.RecoveryAwaitingInput, state)
		require.Equal(t, auth.MsgExpiredLink, flow.Message())
		require.Zero(t, backend.CallCount(authfake.CallUpdateUser))
		require.NotNil(t, flow.Tokens())
		_, _, ok := flow.RedirectAfter()
		require.False(t, ok)
	})

	t.Run("network failure on submit", func(t *testing.T) {
		backend := authfake.NewFakeBackend()
		backend.SetSessionErr = &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
		flow := auth.ResumeRecoveryFlow(backend, tokens)

		flow.Submit(context.Background(), "ValidPass1", "ValidPass1")

		require.Equal(t, auth.MsgConnection, flow.Message())
		require.Zero(t, backend.CallCount(authfake.CallUpdateUser))
	})

	t.Run("update failure signs out and stays", func(t *testing.T) {
		backend := authfake.NewFakeBackend()
		backend.UpdateUserErr = errors.New("New password should be different from the old password.")
		flow := auth.ResumeRecoveryFlow(backend, tokens)

		state := flow.Submit(context.Background(), "ValidPass1", "ValidPass1")

		require.Equal(t, auth.RecoveryAwaitingInput, state)
		require.Equal(t, "Your new password must be different from your current password.", flow.Message())
		require.Equal(t, 1, backend.CallCount(authfake.CallSignOut))
		require.Nil(t, backend.Session())
		require.NotNil(t, flow.Tokens())
	})
}
