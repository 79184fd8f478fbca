package users_test

import (
	"testing"

	"github.com/jrsteele09/varix-web/users"
	"github.com/stretchr/testify/require"
)

func TestValidatePasswordStrength(t *testing.T) {
	t.Run("too short", func(t *testing.T) {
		err := users.ValidatePasswordStrength("abc")
		require.ErrorIs(t, err, users.ErrPasswordTooShort)
		require.Equal(t, "Password must be at least 8 characters", err.Error())
	})

	t.Run("no uppercase", func(t *testing.T) {
		require.ErrorIs(t, users.ValidatePasswordStrength("alllowercase1"), users.ErrPasswordNoUpper)
	})

	t.Run("no lowercase", func(t *testing.T) {
		require.ErrorIs(t, users.ValidatePasswordStrength("ALLUPPER1"), users.ErrPasswordNoLower)
	})

	t.Run("no number", func(t *testing.T) {
		require.ErrorIs(t, users.ValidatePasswordStrength("NoNumbersHere"), users.ErrPasswordNoNumber)
	})

	t.Run("valid", func(t *testing.T) {
		require.NoError(t, users.ValidatePasswordStrength("ValidPass1"))
	})
}

func TestValidateResetForm(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		fe, ok := users.ValidateResetForm("ValidPass1", "ValidPass1")
		require.True(t, ok)
		require.True(t, fe.Empty())
	})

	t.Run("mismatch", func(t *testing.T) {
		fe, ok := users.ValidateResetForm("ValidPass1", "ValidPass2")
		require.False(t, ok)
		require.Empty(t, fe.Password)
		require.Equal(t, "Passwords do not match", fe.Confirm)
	})

	t.Run("weak and mismatch", func(t *testing.T) {
		fe, ok := users.ValidateResetForm("abc", "abd")
		require.False(t, ok)
		require.Equal(t, "Password must be at least 8 characters", fe.Password)
		require.Equal(t, "Passwords do not match", fe.Confirm)
	})

	t.Run("empty fields block without messages", func(t *testing.T) {
		fe, ok := users.ValidateResetForm("", "")
		require.False(t, ok)
		require.True(t, fe.Empty())
	})
}

func TestStrength(t *testing.T) {
	tests := []struct {
		password string
		score    int
		label    users.StrengthLabel
	}{
		{"abc", 0, users.StrengthWeak},
		{"abcdef", 1, users.StrengthWeak},
		{"abcdefg1", 3, users.StrengthMedium},
		{"Abcdefg1", 4, users.StrengthMedium},
		{"Abcdefgh1234", 5, users.StrengthStrong},
		{"Abcdefgh123!", 6, users.StrengthStrong},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			s := users.Strength(tt.password)
			require.Equal(t, tt.score, s.Score)
			require.Equal(t, tt.label, s.Label)
		})
	}

	require.Equal(t, 100, users.Strength("Abcdefgh123!").Percent())
}
