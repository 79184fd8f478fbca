package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jrsteele09/varix-web/auth"
	"github.com/jrsteele09/varix-web/supabase"
	"github.com/rs/zerolog/hlog"
)

const msgCredentialsRequired = "Please enter your email and password."

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	PageData
	Email     string // Preserve email on error
	From      string
	Error     string
	Providers []string
}

func (s *Server) LoginPageHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("login.html")
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, tmpl, http.StatusOK, LoginPageData{
			PageData:  s.pageData(r),
			From:      auth.SafeRedirectPath(r.URL.Query().Get("from"), ""),
			Providers: supabase.Providers,
		})
	}
}

// LoginSubmissionHandler signs in with email and password and continues to
// the page the visitor first asked for.
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("login.html")
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		a := authFromContext(r.Context())

		email := strings.TrimSpace(r.PostForm.Get("email"))
		password := r.PostForm.Get("password")
		from := auth.SafeRedirectPath(r.PostForm.Get("from"), "")

		data := LoginPageData{
			PageData:  s.pageData(r),
			Email:     email,
			From:      from,
			Providers: supabase.Providers,
		}

		if email == "" || password == "" {
			data.Error = msgCredentialsRequired
			s.render(w, r, tmpl, http.StatusUnprocessableEntity, data)
			return
		}

		if _, err := a.backend.SignInWithPassword(r.Context(), email, password); err != nil {
			hlog.FromRequest(r).Warn().Err(err).Msg("Login failed")
			s.metrics.AuthFlow("login", "failed")
			data.Error = auth.FormatError(err)
			s.render(w, r, tmpl, http.StatusUnauthorized, data)
			return
		}

		s.metrics.AuthFlow("login", "success")
		redirectSuccess(w, r, auth.SafeRedirectPath(from, auth.AppPath))
	}
}

// OAuthStartHandler sends the browser to the provider's sign-in page. The
// provider returns it to the callback page with tokens in the fragment.
func (s *Server) OAuthStartHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provider := chi.URLParam(r, "provider")
		if !supabase.IsProvider(provider) {
			s.NotFoundHandler()(w, r)
			return
		}
		a := authFromContext(r.Context())
		target := a.backend.OAuthURL(provider, s.authRedirectURL(r, auth.CallbackPath))
		http.Redirect(w, r, target, http.StatusFound)
	}
}

// LogoutHandler signs out and goes home. Signing out twice is harmless.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a := authFromContext(r.Context())
		if err := a.backend.SignOut(r.Context()); err != nil {
			hlog.FromRequest(r).Err(err).Msg("Sign out failed")
		}
		redirectSuccess(w, r, RouteHome)
	}
}
