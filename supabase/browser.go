package supabase

import (
	"context"
	"sync"

	"github.com/jrsteele09/varix-web/auth"
	apperrors "github.com/jrsteele09/varix-web/internal/errors"
	"github.com/jrsteele09/varix-web/sessions"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

var _ auth.Backend = (*Browser)(nil)

// Browser is the auth client of one browser. Its session is kept in store
// under key, and listeners hear about every change made through it.
type Browser struct {
	client *Client
	store  sessions.Repo
	key    string

	lock      sync.Mutex
	listeners []registered
	nextID    int
}

type registered struct {
	id int
	fn sessions.Listener
}

func (c *Client) ForBrowser(store sessions.Repo, key string) *Browser {
	return &Browser{
		client:    c,
		store:     store,
		key:       key,
	}
}

func (b *Browser) OnAuthStateChange(listener sessions.Listener) sessions.Subscription {
	b.lock.Lock()
	defer b.lock.Unlock()
	id := b.nextID
	b.nextID++
	b.listeners = append(b.listeners, registered{id: id, fn: listener})
	return &subscription{browser: b, id: id}
}

type subscription struct {
	browser *Browser
	id      int
}

func (s *subscription) Unsubscribe() {
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

func (b *Browser) emit(event sessions.ChangeEvent, s *sessions.Session) {
	b.lock.Lock()
	listeners := make([]sessions.Listener, 0, len(b.listeners))
	for _, l := range b.listeners {
		listeners = append(listeners, l.fn)
	}
	b.lock.Unlock()

	for _, fn := range listeners {
		fn(sessions.Change{Event: event, Session: s})
	}
}

// GetSession returns the stored session, refreshing it first when the
// access token is about to expire.
func (b *Browser) GetSession(ctx context.Context) (*sessions.Session, error) {
	s, err := b.store.Get(ctx, b.key)
	if apperrors.Is(err, apperrors.ErrSessionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !s.NeedsRefresh() {
		return s, nil
	}

	if s.RefreshToken() == "" {
		b.clear(ctx)
		b.emit(sessions.EventSignedOut, nil)
		return nil, nil
	}

	refreshed, err := b.client.RefreshSession(ctx, s.RefreshToken())
	if err != nil {
		var apiErr *APIError
		if apperrors.As(err, &apiErr) {
			b.clear(ctx)
			b.emit(sessions.EventSignedOut, nil)
		}
		return nil, err
	}
	if refreshed.User.ID == "" {
		refreshed.User = s.User
	}

	if err := b.store.Upsert(ctx, b.key, refreshed); err != nil {
		return nil, err
	}
	b.emit(sessions.EventTokenRefreshed, refreshed)
	return refreshed, nil
}

// SetSession establishes a session from a token pair received out of band.
// Nothing is stored unless the auth service accepts the tokens.
func (b *Browser) SetSession(ctx context.Context, accessToken, refreshToken string) (*sessions.Session, error) {
	s, err := b.establish(ctx, accessToken, refreshToken)
	if err != nil {
		return nil, err
	}
	if err := b.store.Upsert(ctx, b.key, s); err != nil {
		return nil, err
	}
	b.emit(sessions.EventSignedIn, s)
	return s, nil
}

func (b *Browser) establish(ctx context.Context, accessToken, refreshToken string) (*sessions.Session, error) {
	if accessToken == "" || refreshToken == "" {
		return nil, apperrors.ErrMissingTokens
	}

	claims, err := b.client.verifier.Verify(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	if claims.Expired(b.client.now()) {
		return b.client.RefreshSession(ctx, refreshToken)
	}

	user, err := b.client.GetUser(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return &sessions.Session{
		Token: &oauth2.Token{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			TokenType:    "bearer",
			Expiry:       claims.Expiry(),
		},
		User: *user,
	}, nil
}

func (b *Browser) UpdateUser(ctx context.Context, attrs sessions.UserAttributes) (*sessions.User, error) {
	s, err := b.GetSession(ctx)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, apperrors.ErrSessionMissing
	}

	user, err := b.client.UpdateUser(ctx, s.AccessToken(), attrs)
	if err != nil {
		return nil, err
	}
	s.User = *user
	if err := b.store.Upsert(ctx, b.key, s); err != nil {
		return nil, err
	}
	b.emit(sessions.EventUserUpdated, s)
	return user, nil
}

// SignOut revokes the session on a best-effort basis and always forgets it
// locally.
func (b *Browser) SignOut(ctx context.Context) error {
	s, err := b.store.Get(ctx, b.key)
	if err != nil && !apperrors.Is(err, apperrors.ErrSessionNotFound) {
		return err
	}
	if s != nil && s.AccessToken() != "" {
		if err := b.client.Logout(ctx, s.AccessToken()); err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("Sign out was not confirmed by the auth service")
		}
	}

	if err := b.store.Delete(ctx, b.key); err != nil && !apperrors.Is(err, apperrors.ErrSessionNotFound) {
		return err
	}
	b.emit(sessions.EventSignedOut, nil)
	return nil
}

func (b *Browser) clear(ctx context.Context) {
	if err := b.store.Delete(ctx, b.key); err != nil && !apperrors.Is(err, apperrors.ErrSessionNotFound) {
		log.Ctx(ctx).Err(err).Msg("Failed to clear stored session")
	}
}

func (b *Browser) SignInWithPassword(ctx context.Context, email, password string) (*sessions.Session, error) {
	s, err := b.client.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := b.store.Upsert(ctx, b.key, s); err != nil {
		return nil, err
	}
	b.emit(sessions.EventSignedIn, s)
	return s, nil
}

func (b *Browser) SignUp(ctx context.Context, email, password, redirectTo string) (*SignUpResult, error) {
	res, err := b.client.SignUp(ctx, email, password, redirectTo)
	if err != nil {
		return nil, err
	}
	if res.Session != nil {
		if err := b.store.Upsert(ctx, b.key, res.Session); err != nil {
			return nil, err
		}
		b.emit(sessions.EventSignedIn, res.Session)
	}
	return res, nil
}

func (b *Browser) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	return b.client.ResetPasswordForEmail(ctx, email, redirectTo)
}

func (b *Browser) OAuthURL(provider, redirectTo string) string {
	return b.client.OAuthURL(provider, redirectTo)
}

// DetectSessionInURL signs in from tokens in the redirect fragment at loc,
// the way a browser client with automatic detection would. It does nothing
// unless the client was built WithDetectSessionInURL(true).
func (b *Browser) DetectSessionInURL(ctx context.Context, loc auth.Location) error {
	if !b.client.detectSessionInURL {
		return nil
	}
	frag, err := auth.ParseFragment(loc.Fragment)
	if err != nil {
		return nil
	}

	s, err := b.establish(ctx, frag.AccessToken, frag.RefreshToken)
	if err != nil {
		return err
	}
	if err := b.store.Upsert(ctx, b.key, s); err != nil {
		return err
	}

	event := sessions.EventSignedIn
	if frag.IsRecovery() {
		event = sessions.EventPasswordRecovery
	}
	b.emit(event, s)
	return nil
}
