package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/jrsteele09/varix-web/sessions"
	"golang.org/x/oauth2"
)

const authPath = "/auth/v1"

// OAuth providers offered on the login page.
var Providers = []string{"google", "github"}

type tokenResponse struct {
	AccessToken  string         `json:"access_token"`
	TokenType    string         `json:"token_type"`
	ExpiresIn    int64          `json:"expires_in"`
	ExpiresAt    int64          `json:"expires_at"`
	RefreshToken string         `json:"refresh_token"`
	User         *sessions.User `json:"user"`
}

func (t *tokenResponse) session(now time.Time) *sessions.Session {
	token := &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
	}
	switch {
	case t.ExpiresAt > 0:
		token.Expiry = time.Unix(t.ExpiresAt, 0)
	case t.ExpiresIn > 0:
		token.Expiry = now.Add(time.Duration(t.ExpiresIn) * time.Second)
	}

	s := &sessions.Session{Token: token}
	if t.User != nil {
		s.User = *t.User
	}
	return s
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) grant(ctx context.Context, grantType string, body any) (*sessions.Session, error) {
	var resp tokenResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   authPath + "/token",
		query:  url.Values{"grant_type": {grantType}},
		json:   body,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.session(c.now()), nil
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*sessions.Session, error) {
	return c.grant(ctx, "password", credentials{Email: email, Password: password})
}

func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*sessions.Session, error) {
	return c.grant(ctx, "refresh_token", map[string]string{"refresh_token": refreshToken})
}

// SignUpResult holds the user and, when email confirmation is off, a
// session.
type SignUpResult struct {
	User    *sessions.User
	Session *sessions.Session
}

func (c *Client) SignUp(ctx context.Context, email, password, redirectTo string) (*SignUpResult, error) {
	q := url.Values{}
	if redirectTo != "" {
		q.Set("redirect_to", redirectTo)
	}

	var raw json.RawMessage
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   authPath + "/signup",
		query:  q,
		json:   credentials{Email: email, Password: password},
	}, &raw)
	if err != nil {
		return nil, err
	}

	var tr tokenResponse
	if err := json.Unmarshal(raw, &tr); err == nil && tr.AccessToken != "" {
		s := tr.session(c.now())
		return &SignUpResult{User: &s.User, Session: s}, nil
	}

	var user sessions.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, err
	}
	return &SignUpResult{User: &user}, nil
}

func (c *Client) GetUser(ctx context.Context, accessToken string) (*sessions.User, error) {
	var user sessions.User
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   authPath + "/user",
		bearer: accessToken,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UpdateUser(ctx context.Context, accessToken string, attrs sessions.UserAttributes) (*sessions.User, error) {
	var user sessions.User
	err := c.do(ctx, request{
		method: http.MethodPut,
		path:   authPath + "/user",
		bearer: accessToken,
		json:   attrs,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout revokes the session the access token belongs to.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   authPath + "/logout",
		query:  url.Values{"scope": {"local"}},
		bearer: accessToken,
	}, nil)
}

func (c *Client) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	q := url.Values{}
	if redirectTo != "" {
		q.Set("redirect_to", redirectTo)
	}
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   authPath + "/recover",
		query:  q,
		json:   map[string]string{"email": email},
	}, nil)
}

// OAuthURL is where the browser goes to sign in with provider. The auth
// service sends it back to redirectTo with tokens in the fragment.
func (c *Client) OAuthURL(provider, redirectTo string) string {
	cfg := oauth2.Config{
		Endpoint: oauth2.Endpoint{AuthURL: c.url(authPath+"/authorize", nil)},
	}
	return cfg.AuthCodeURL("",
		oauth2.SetAuthURLParam("provider", provider),
		oauth2.SetAuthURLParam("redirect_to", redirectTo),
	)
}

func IsProvider(name string) bool {
	for _, p := range Providers {
		if p == name {
			return true
		}
	}
	return false
}
