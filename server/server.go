package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jrsteele09/varix-web/auth"
	"github.com/jrsteele09/varix-web/drawings"
	"github.com/jrsteele09/varix-web/internal/config"
	apperrors "github.com/jrsteele09/varix-web/internal/errors"
	"github.com/jrsteele09/varix-web/internal/metrics"
	"github.com/jrsteele09/varix-web/server/recoveryflow"
	"github.com/jrsteele09/varix-web/sessions"
	"github.com/jrsteele09/varix-web/supabase"
	"github.com/rs/zerolog/log"
)

// BrowserClient is the auth client of a single browser, as driven by the
// page handlers.
type BrowserClient interface {
	auth.Backend
	SignInWithPassword(ctx context.Context, email, password string) (*sessions.Session, error)
	SignUp(ctx context.Context, email, password, redirectTo string) (*supabase.SignUpResult, error)
	ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error
	OAuthURL(provider, redirectTo string) string
	DetectSessionInURL(ctx context.Context, loc auth.Location) error
}

var _ BrowserClient = (*supabase.Browser)(nil)

// BrowserFactory returns the client for the browser whose session lives in
// store under key.
type BrowserFactory func(store sessions.Repo, key string) BrowserClient

func SupabaseBrowsers(c *supabase.Client) BrowserFactory {
	return func(store sessions.Repo, key string) BrowserClient {
		return c.ForBrowser(store, key)
	}
}

// Deps are the collaborators the server is built from.
type Deps struct {
	Browsers BrowserFactory
	Sessions sessions.Repo
	Recovery recoveryflow.Repo
	Drawings *drawings.Service
	Metrics  *metrics.Metrics
}

type Server struct {
	env    string // Environment (e.g., "DEV", "PROD")
	router *chi.Mux
	routes []string
	config config.Config

	browsers BrowserFactory
	sessions sessions.Repo
	recovery recoveryflow.Repo
	drawings *drawings.Service
	metrics  *metrics.Metrics
}

func New(cfg config.Config, deps Deps) (*Server, error) {
	switch {
	case deps.Browsers == nil:
		return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "[Server New] no browser client factory")
	case deps.Sessions == nil:
		return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "[Server New] no session repo")
	case deps.Recovery == nil:
		return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "[Server New] no recovery flow repo")
	case deps.Drawings == nil:
		return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "[Server New] no drawings service")
	}

	s := &Server{
		env:      cfg.GetEnv(),
		router:   chi.NewRouter(),
		config:   cfg,
		browsers: deps.Browsers,
		sessions: deps.Sessions,
		recovery: deps.Recovery,
		drawings: deps.Drawings,
		metrics:  deps.Metrics,
	}

	s.router.Use(s.StandardMiddleware()...)
	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// RegisterRouteHandler registers handler for a "METHOD /path" pattern.
func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	method, path, ok := strings.Cut(pattern, " ")
	if !ok {
		s.router.Handle(pattern, handler)
		return
	}
	s.router.Method(method, path, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.RegisterRouteHandler(pattern, http.HandlerFunc(handler))
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		method, path, ok := strings.Cut(route, " ")
		if !ok {
			logRoute("", route)
			continue
		}
		logRoute(method, path)
	}
}

func logRoute(method, path string) {
	log.Info().Msg(fmt.Sprintf("[%-19s] %s", colourMethod(method), path))
}

func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}

// requestOrigin is scheme://host of the request, used when no public site
// URL is configured.
func requestOrigin(r *http.Request) string {
	return getScheme(r) + "://" + r.Host
}

func (s *Server) authRedirectURL(r *http.Request, path string) string {
	return config.AuthRedirectURL(s.config, requestOrigin(r), path)
}
