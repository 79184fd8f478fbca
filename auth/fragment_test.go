package auth_test

import (
	"testing"

	"github.com/jrsteele09/varix-web/auth"
	apperrors "github.com/jrsteele09/varix-web/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestParseFragment(t *testing.T) {
	t.Run("full recovery fragment", func(t *testing.T) {
		f, err := auth.ParseFragment("#access_token=AAA&refresh_token=BBB&type=recovery")
		require.NoError(t, err)
		require.Equal(t, "AAA", f.AccessToken)
		require.Equal(t, "BBB", f.RefreshToken)
		require.Equal(t, auth.FlowRecovery, f.Type)
		require.True(t, f.IsRecovery())
	})

	t.Run("leading hash is optional", func(t *testing.T) {
		f, err := auth.ParseFragment("access_token=AAA&refresh_token=BBB&type=signup&expires_in=3600")
		require.NoError(t, err)
		require.Equal(t, auth.FlowSignup, f.Type)
		require.False(t, f.IsRecovery())
	})

	t.Run("escaped values are decoded", func(t *testing.T) {
		f, err := auth.ParseFragment("#access_token=a%2Bb&refresh_token=c%3Dd")
		require.NoError(t, err)
		require.Equal(t, "a+b", f.AccessToken)
		require.Equal(t, "c=d", f.RefreshToken)
		require.Equal(t, auth.FlowType(""), f.Type)
	})

	t.Run("empty fragment", func(t *testing.T) {
		for _, in := range []string{"", "#", "  "} {
			_, err := auth.ParseFragment(in)
			require.ErrorIs(t, err, apperrors.ErrEmptyFragment, in)
		}
	})

	t.Run("missing refresh token keeps the type", func(t *testing.T) {
		f, err := auth.ParseFragment("#access_token=AAA&type=recovery")
		require.ErrorIs(t, err, apperrors.ErrMissingTokens)
		require.Equal(t, "AAA", f.AccessToken)
		require.True(t, f.IsRecovery())
		require.False(t, f.HasTokens())
	})

	t.Run("error redirect", func(t *testing.T) {
		f, err := auth.ParseFragment("#error=access_denied&error_code=otp_expired&error_description=Email+link+is+invalid+or+has+expired")
		require.ErrorIs(t, err, apperrors.ErrMissingTokens)
		require.Equal(t, "access_denied", f.Error)
		require.Equal(t, "otp_expired", f.ErrorCode)
		require.Equal(t, "Email link is invalid or has expired", f.ErrorDescription)
	})

	t.Run("malformed pair is skipped", func(t *testing.T) {
		f, err := auth.ParseFragment("#bad=%zz&access_token=AAA&refresh_token=BBB")
		require.NoError(t, err)
		require.True(t, f.HasTokens())
	})
}

func TestLocation(t *testing.T) {
	tests := []struct {
		name     string
		loc      auth.Location
		expected bool
	}{
		{"recovery landing", auth.Location{Path: auth.RecoveryPath, Fragment: "access_token=A&type=recovery"}, true},
		{"recovery page without marker", auth.Location{Path: auth.RecoveryPath, Fragment: "access_token=A&type=signup"}, false},
		{"recovery page without fragment", auth.Location{Path: auth.RecoveryPath}, false},
		{"marker on another path", auth.Location{Path: auth.CallbackPath, Fragment: "type=recovery"}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, tc.loc.IsRecoveryLanding())
		})
	}

	loc := auth.Location{Path: auth.RecoveryPath, Fragment: "#type=recovery"}
	require.Equal(t, "/reset-password#type=recovery", loc.String())
	require.Equal(t, "/reset-password", loc.WithoutFragment().String())
}
