package authfake

import (
	"context"
	"sync"

	"github.com/jrsteele09/varix-web/auth"
	apperrors "github.com/jrsteele09/varix-web/internal/errors"
	"github.com/jrsteele09/varix-web/sessions"
	"golang.org/x/oauth2"
)

var _ auth.Backend = (*FakeBackend)(nil)

// Call names recorded by FakeBackend.
const (
	CallGetSession = "GetSession"
	CallSetSession = "SetSession"
	CallUpdateUser = "UpdateUser"
	CallSignOut    = "SignOut"
)

// FakeBackend is an in-memory auth.Backend. Errors set on it are returned by
// the matching call; nothing else about the call changes.
type FakeBackend struct {
	lock      sync.Mutex
	session   *sessions.Session
	listeners map[int]sessions.Listener
	nextID    int
	calls     []string

	GetSessionErr error
	SetSessionErr error
	UpdateUserErr error
	SignOutErr    error

	// OnGetSession runs inside GetSession before it returns, so tests can
	// interleave notifications with the initial fetch.
	OnGetSession func()

	LastPassword string
}

func NewFakeBackend() *FakeBackend {
	return &FakeBackend{listeners: make(map[int]sessions.Listener)}
}

// NewSession builds a session for tests.
func NewSession(userID, email string) *sessions.Session {
	return &sessions.Session{
		Token: &oauth2.Token{AccessToken: "access-" + userID, RefreshToken: "refresh-" + userID, TokenType: "bearer"},
		User:  sessions.User{ID: userID, Email: email},
	}
}

// WithSession stores s as the current session without emitting anything.
func (f *FakeBackend) WithSession(s *sessions.Session) *FakeBackend {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.session = s
	return f
}

func (f *FakeBackend) Session() *sessions.Session {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.session
}

func (f *FakeBackend) Calls() []string {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *FakeBackend) CallCount(name string) int {
	f.lock.Lock()
	defer f.lock.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *FakeBackend) ListenerCount() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return len(f.listeners)
}

func (f *FakeBackend) record(name string) {
	f.lock.Lock()
	f.calls = append(f.calls, name)
	f.lock.Unlock()
}

// Emit delivers a change to every listener, as the real client would.
func (f *FakeBackend) Emit(event sessions.ChangeEvent, s *sessions.Session) {
	f.lock.Lock()
	listeners := make([]sessions.Listener, 0, len(f.listeners))
	for _, l := range f.listeners {
		listeners = append(listeners, l)
	}
	f.lock.Unlock()

	for _, l := range listeners {
		l(sessions.Change{Event: event, Session: s})
	}
}

func (f *FakeBackend) GetSession(ctx context.Context) (*sessions.Session, error) {
	f.record(CallGetSession)
	if f.OnGetSession != nil {
		f.OnGetSession()
	}
	if f.GetSessionErr != nil {
		return nil, f.GetSessionErr
	}
	return f.Session(), nil
}

func (f *FakeBackend) OnAuthStateChange(listener sessions.Listener) sessions.Subscription {
	f.lock.Lock()
	defer f.lock.Unlock()
	id := f.nextID
	f.nextID++
	f.listeners[id] = listener
	return &subscription{backend: f, id: id}
}

func (f *FakeBackend) SetSession(ctx context.Context, accessToken, refreshToken string) (*sessions.Session, error) {
	f.record(CallSetSession)
	if f.SetSessionErr != nil {
		return nil, f.SetSessionErr
	}
	s := &sessions.Session{
		Token: &oauth2.Token{AccessToken: accessToken, RefreshToken: refreshToken, TokenType: "bearer"},
		User:  sessions.User{ID: "user-" + accessToken},
	}
	f.WithSession(s)
	f.Emit(sessions.EventSignedIn, s)
	return s, nil
}

func (f *FakeBackend) UpdateUser(ctx context.Context, attrs sessions.UserAttributes) (*sessions.User, error) {
	f.record(CallUpdateUser)
	if f.UpdateUserErr != nil {
		return nil, f.UpdateUserErr
	}
	s := f.Session()
	if s == nil {
		return nil, apperrors.ErrSessionMissing
	}
	f.lock.Lock()
	f.LastPassword = attrs.Password
	f.lock.Unlock()
	f.Emit(sessions.EventUserUpdated, s)
	u := s.User
	return &u, nil
}

func (f *FakeBackend) SignOut(ctx context.Context) error {
	f.record(CallSignOut)
	f.WithSession(nil)
	f.Emit(sessions.EventSignedOut, nil)
	return f.SignOutErr
}

type subscription struct {
	backend *FakeBackend
	id      int
}

func (s *subscription) Unsubscribe() {
	s.backend.lock.Lock()
	defer s.backend.lock.Unlock()
	delete(s.backend.listeners, s.id)
}
