package auth

import (
	"context"
	"net"
	"net/url"
	"strings"

	apperrors "github.com/jrsteele09/varix-web/internal/errors"
)

const (
	MsgConnection = "Unable to connect. Please check your internet connection and try again."
	MsgGeneric    = "An unexpected error occurred. Please try again."
)

var friendlyErrors = []struct {
	substrings []string
	message    string
}{
	{[]string{"invalid login credentials"}, "Incorrect email or password."},
	{[]string{"email not confirmed"}, "Please confirm your email address before logging in."},
	{[]string{"user already registered"}, "This email is already registered. Please log in instead."},
	{[]string{"token has expired", "invalid refresh token", "jwt expired", "otp_expired"}, "This link has expired. Please request a new one."},
	{[]string{"should be different from the old password"}, "Your new password must be different from your current password."},
	{[]string{"rate limit", "too many requests"}, "Too many attempts. Please wait a moment and try again."},
	{[]string{"auth session missing"}, "Your session has expired. Please log in again."},
	{[]string{"failed to fetch", "network"}, MsgConnection},
}

// FormatError turns a backend error into text that can be shown to a
// visitor. Unknown errors fall back to their own message.
func FormatError(err error) string {
	if err == nil {
		return MsgGeneric
	}

	msg := err.Error()
	lower := strings.ToLower(msg)
	for _, fe := range friendlyErrors {
		for _, s := range fe.substrings {
			if strings.Contains(lower, s) {
				return fe.message
			}
		}
	}

	if IsNetworkError(err) {
		return MsgConnection
	}

	if strings.TrimSpace(msg) != "" {
		return msg
	}
	return MsgGeneric
}

// IsNetworkError reports whether err came from the transport rather than
// from a response of the auth service.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if apperrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	if apperrors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return apperrors.As(err, &netErr)
}
