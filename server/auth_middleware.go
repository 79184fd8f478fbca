package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/varix-web/auth"
	"github.com/rs/zerolog/log"
)

type contextKey string

const contextKeyAuth contextKey = "auth"

// requestAuth is the auth context of one browser for one request.
type requestAuth struct {
	backend  BrowserClient
	store    *auth.Store
	location auth.Location
}

func (a *requestAuth) state() auth.State {
	return a.store.State()
}

func authFromContext(ctx context.Context) *requestAuth {
	a, _ := ctx.Value(contextKeyAuth).(*requestAuth)
	return a
}

// WithAuth builds the browser's auth context: its client, a store, and a
// notifier that lives until the request is done. The session is restored
// before the handler runs.
func (s *Server) WithAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		key := s.sessionKey(w, r)
		loc := auth.Location{Path: r.URL.Path, Fragment: postedFragment(r)}

		a := &requestAuth{
			backend:  s.browsers(s.sessions, key),
			store:    auth.NewStore(),
			location: loc,
		}
		notifier := auth.NewNotifier(ctx, a.backend, a.store, func() auth.Location { return a.location })
		defer notifier.Close()

		if s.config.GetDetectSessionInURL() && loc.Fragment != "" {
			if err := a.backend.DetectSessionInURL(ctx, loc); err != nil {
				log.Ctx(ctx).Warn().Err(err).Msg("Session detection from URL failed")
			}
		}

		auth.Bootstrap(ctx, a.backend, a.store, loc)

		next(w, r.WithContext(context.WithValue(ctx, contextKeyAuth, a)))
	}
}

// RequireAuth sends visitors without a session to the login page.
func (s *Server) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a := authFromContext(r.Context())
		if a == nil {
			s.renderError(w, r, http.StatusInternalServerError)
			return
		}

		decision := auth.GuardProtected(a.state(), r.URL.Path)
		switch {
		case decision.Loading:
			s.renderLoading(w, r)
		case decision.Redirect != "":
			redirectSuccess(w, r, decision.Redirect)
		default:
			next(w, r)
		}
	}
}

// RequireSignedOut keeps signed-in visitors off the login and sign-up
// pages.
func (s *Server) RequireSignedOut(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a := authFromContext(r.Context())
		if a == nil {
			s.renderError(w, r, http.StatusInternalServerError)
			return
		}

		decision := auth.GuardAuthOnly(a.state(), r.URL.Query().Get("from"))
		switch {
		case decision.Loading:
			s.renderLoading(w, r)
		case decision.Redirect != "":
			redirectSuccess(w, r, decision.Redirect)
		default:
			next(w, r)
		}
	}
}

// postedFragment returns the fragment a shell page posted back, if any.
// Multipart bodies are left for their handlers.
func postedFragment(r *http.Request) string {
	if r.Method != http.MethodPost {
		return ""
	}
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		return ""
	}
	if err := r.ParseForm(); err != nil {
		return ""
	}
	return strings.TrimPrefix(r.PostForm.Get(fragmentField), "#")
}
