package sessions

import (
	"context"
	"time"

	"github.com/jrsteele09/varix-web/internal/utils"
	"golang.org/x/oauth2"
)

// Identity is one sign-in method linked to a user (email, google, github).
type Identity struct {
	ID         string    `json:"id"`
	IdentityID string    `json:"identity_id,omitempty"`
	UserID     string    `json:"user_id"`
	Provider   string    `json:"provider"`
	CreatedAt  time.Time `json:"created_at"`
}

type User struct {
	ID               string         `json:"id"`
	Email            string         `json:"email,omitempty"`
	Role             string         `json:"role,omitempty"`
	EmailConfirmedAt *time.Time     `json:"email_confirmed_at,omitempty"`
	LastSignInAt     *time.Time     `json:"last_sign_in_at,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	Identities       []Identity     `json:"identities"`
	AppMetadata      map[string]any `json:"app_metadata,omitempty"`
	UserMetadata     map[string]any `json:"user_metadata,omitempty"`
}

// Confirmed reports whether the user has confirmed their email address.
func (u User) Confirmed() bool {
	return !utils.Value(u.EmailConfirmedAt).IsZero()
}

// AlreadyRegistered reports the sign-up response shape returned for an
// email that already belongs to a confirmed account: a user with an empty,
// but present, identity list.
func (u User) AlreadyRegistered() bool {
	return u.Identities != nil && len(u.Identities) == 0
}

// Session is the credential bundle issued by the auth service. The token
// carries access token, refresh token and expiry.
type Session struct {
	Token *oauth2.Token `json:"token"`
	User  User          `json:"user"`
}

func (s *Session) AccessToken() string {
	if s == nil || s.Token == nil {
		return ""
	}
	return s.Token.AccessToken
}

func (s *Session) RefreshToken() string {
	if s == nil || s.Token == nil {
		return ""
	}
	return s.Token.RefreshToken
}

func (s *Session) ExpiresAt() time.Time {
	if s == nil || s.Token == nil {
		return time.Time{}
	}
	return s.Token.Expiry
}

// NeedsRefresh is true once the access token is missing or within the
// oauth2 expiry margin.
func (s *Session) NeedsRefresh() bool {
	return s == nil || s.Token == nil || !s.Token.Valid()
}

// UserAttributes are the fields that may be changed on the signed-in user.
type UserAttributes struct {
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

// ChangeEvent names a change of auth state reported by the backend client.
type ChangeEvent string

const (
	EventInitialSession   ChangeEvent = "INITIAL_SESSION"
	EventSignedIn         ChangeEvent = "SIGNED_IN"
	EventSignedOut        ChangeEvent = "SIGNED_OUT"
	EventTokenRefreshed   ChangeEvent = "TOKEN_REFRESHED"
	EventUserUpdated      ChangeEvent = "USER_UPDATED"
	EventPasswordRecovery ChangeEvent = "PASSWORD_RECOVERY"
)

type Change struct {
	Event   ChangeEvent
	Session *Session
}

type Listener func(Change)

type Subscription interface {
	Unsubscribe()
}

// Repo stores at most one session per browser key.
type Repo interface {
	Upsert(ctx context.Context, key string, session *Session) error
	// Get returns errors.ErrSessionNotFound when nothing is stored.
	Get(ctx context.Context, key string) (*Session, error)
	Delete(ctx context.Context, key string) error
}
