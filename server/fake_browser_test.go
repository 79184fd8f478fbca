package server_test

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/jrsteele09/varix-web/auth"
	apperrors "github.com/jrsteele09/varix-web/internal/errors"
	"github.com/jrsteele09/varix-web/server"
	"github.com/jrsteele09/varix-web/sessions"
	"github.com/jrsteele09/varix-web/supabase"
	"golang.org/x/oauth2"
)

var _ server.BrowserClient = (*fakeBrowser)(nil)

// fakeProject stands in for the hosted auth service. Sessions live in the
// store the server hands to each browser, as with the real client.
type fakeProject struct {
	lock sync.Mutex

	passwords map[string]string

	SignUpResult  *supabase.SignUpResult
	SetSessionErr error
	UpdateUserErr error

	resetEmails  []string
	resetTargets []string
	newPasswords []string
}

func newFakeProject() *fakeProject {
	return &fakeProject{passwords: make(map[string]string)}
}

func (p *fakeProject) AddUser(email, password string) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.passwords[email] = password
}

func (p *fakeProject) NewPasswords() []string {
	p.lock.Lock()
	defer p.lock.Unlock()
	return append([]string(nil), p.newPasswords...)
}

func (p *fakeProject) ResetTargets() []string {
	p.lock.Lock()
	defer p.lock.Unlock()
	return append([]string(nil), p.resetTargets...)
}

func (p *fakeProject) Browsers() server.BrowserFactory {
	return func(store sessions.Repo, key string) server.BrowserClient {
		return &fakeBrowser{project: p, store: store, key: key}
	}
}

func newTestSession(userID, email, access string) *sessions.Session {
	return &sessions.Session{
		Token: &oauth2.Token{
			AccessToken:  access,
			RefreshToken: "refresh-" + access,
			TokenType:    "bearer",
			Expiry:       time.Now().Add(time.Hour),
		},
		User: sessions.User{ID: userID, Email: email, Identities: []sessions.Identity{{Provider: "email"}}},
	}
}

type listener struct {
	id int
	fn sessions.Listener
}

type fakeBrowser struct {
	project *fakeProject
	store   sessions.Repo
	key     string

	lock      sync.Mutex
	listeners []listener
	nextID    int
}

func (b *fakeBrowser) emit(event sessions.ChangeEvent, s *sessions.Session) {
	b.lock.Lock()
	fns := make([]sessions.Listener, 0, len(b.listeners))
	for _, l := range b.listeners {
		fns = append(fns, l.fn)
	}
	b.lock.Unlock()
	for _, fn := range fns {
		fn(sessions.Change{Event: event, Session: s})
	}
}

func (b *fakeBrowser) save(ctx context.Context, event sessions.ChangeEvent, s *sessions.Session) error {
	if err := b.store.Upsert(ctx, b.key, s); err != nil {
		return err
	}
	b.emit(event, s)
	return nil
}

func (b *fakeBrowser) GetSession(ctx context.Context) (*sessions.Session, error) {
	s, err := b.store.Get(ctx, b.key)
	if apperrors.Is(err, apperrors.ErrSessionNotFound) {
		return nil, nil
	}
	return s, err
}

func (b *fakeBrowser) OnAuthStateChange(fn sessions.Listener) sessions.Subscription {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.nextID++
	b.listeners = append(b.listeners, listener{id: b.nextID, fn: fn})
	return &fakeSubscription{browser: b, id: b.nextID}
}

func (b *fakeBrowser) SetSession(ctx context.Context, accessToken, refreshToken string) (*sessions.Session, error) {
	if b.project.SetSessionErr != nil {
		return nil, b.project.SetSessionErr
	}
	s := newTestSession("user-"+accessToken, accessToken+"@example.com", accessToken)
	if err := b.save(ctx, sessions.EventSignedIn, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (b *fakeBrowser) UpdateUser(ctx context.Context, attrs sessions.UserAttributes) (*sessions.User, error) {
	s, err := b.GetSession(ctx)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, apperrors.ErrSessionMissing
	}
	if b.project.UpdateUserErr != nil {
		return nil, b.project.UpdateUserErr
	}
	b.project.lock.Lock()
	b.project.newPasswords = append(b.project.newPasswords, attrs.Password)
	b.project.lock.Unlock()

	b.emit(sessions.EventUserUpdated, s)
	u := s.User
	return &u, nil
}

func (b *fakeBrowser) SignOut(ctx context.Context) error {
	if err := b.store.Delete(ctx, b.key); err != nil && !apperrors.Is(err, apperrors.ErrSessionNotFound) {
		return err
	}
	b.emit(sessions.EventSignedOut, nil)
	return nil
}

func (b *fakeBrowser) SignInWithPassword(ctx context.Context, email, password string) (*sessions.Session, error) {
	b.project.lock.Lock()
	want, ok := b.project.passwords[email]
	b.project.lock.Unlock()
	if !ok || want != password {
		return nil, &supabase.APIError{Status: http.StatusBadRequest, Code: "invalid_credentials", Message: "Invalid login credentials"}
	}

	s := newTestSession("user-"+email, email, "access-"+email)
	if err := b.save(ctx, sessions.EventSignedIn, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (b *fakeBrowser) SignUp(ctx context.Context, email, password, redirectTo string) (*supabase.SignUpResult, error) {
	res := b.project.SignUpResult
	if res == nil {
		return nil, &supabase.APIError{Status: http.StatusTooManyRequests, Message: "Email rate limit exceeded"}
	}
	if res.Session != nil {
		if err := b.save(ctx, sessions.EventSignedIn, res.Session); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (b *fakeBrowser) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	b.project.lock.Lock()
	defer b.project.lock.Unlock()
	b.project.resetEmails = append(b.project.resetEmails, email)
	b.project.resetTargets = append(b.project.resetTargets, redirectTo)
	return nil
}

func (b *fakeBrowser) OAuthURL(provider, redirectTo string) string {
	q := url.Values{}
	q.Set("provider", provider)
	q.Set("redirect_to", redirectTo)
	return "https://project.example.com/auth/v1/authorize?" + q.Encode()
}

func (b *fakeBrowser) DetectSessionInURL(ctx context.Context, loc auth.Location) error {
	return nil
}

type fakeSubscription struct {
	browser *fakeBrowser
	id      int
}

func (s *fakeSubscription) Unsubscribe() {
	s.browser.lock.Lock()
	defer s.browser.lock.Unlock()
	kept := s.browser.listeners[:0]
	for _, l := range s.browser.listeners {
		if l.id != s.id {
			kept = append(kept, l)
		}
	}
	s.browser.listeners = kept
}
