package auth

import (
	"context"

	"github.com/jrsteele09/varix-web/sessions"
)

// Backend is the part of the hosted auth service the session logic relies on.
//
// GetSession returns (nil, nil) when there is no session and an error only
// when the session could not be read. SignOut is idempotent.
type Backend interface {
	GetSession(ctx context.Context) (*sessions.Session, error)
	OnAuthStateChange(listener sessions.Listener) sessions.Subscription
	SetSession(ctx context.Context, accessToken, refreshToken string) (*sessions.Session, error)
	UpdateUser(ctx context.Context, attrs sessions.UserAttributes) (*sessions.User, error)
	SignOut(ctx context.Context) error
}
