package auth_test

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/jrsteele09/varix-web/auth"
	"github.com/stretchr/testify/require"
)

func TestFormatError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil", nil, auth.MsgGeneric},
		{"bad credentials", errors.New("Invalid login credentials"), "Incorrect email or password."},
		{"unconfirmed", errors.New("Email not confirmed"), "Please confirm your email address before logging in."},
		{"registered", errors.New("User already registered"), "This email is already registered. Please log in instead."},
		{"expired jwt", errors.New("invalid JWT: unable to parse or verify signature, token has expired"), "This link has expired. Please request a new one."},
		{"otp", errors.New("otp_expired"), "This link has expired. Please request a new one."},
		{"same password", errors.New("New password should be different from the old password."), "Your new password must be different from your current password."},
		{"rate limited", errors.New("Email rate limit exceeded"), "Too many attempts. Please wait a moment and try again."},
		{"no session", errors.New("Auth session missing!"), "Your session has expired. Please log in again."},
		{"fetch", errors.New("TypeError: Failed to fetch"), auth.MsgConnection},
		{"wrapped", fmt.Errorf("login: %w", errors.New("Invalid login credentials")), "Incorrect email or password."},
		{"url error", &url.Error{Op: "Post", URL: "https://x.supabase.co", Err: errors.New("EOF")}, auth.MsgConnection},
		{"deadline", context.DeadlineExceeded, auth.MsgConnection},
		{"unknown", errors.New("Signups not allowed for this instance"), "Signups not allowed for this instance"},
		{"blank", errors.New(" "), auth.MsgGeneric},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, auth.FormatError(tc.err))
		})
	}
}
