package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jrsteele09/varix-web/internal/config"
	apperrors "github.com/jrsteele09/varix-web/internal/errors"
	"github.com/rs/zerolog/log"
)

// ConfigErrorPageData describes why the site cannot start.
type ConfigErrorPageData struct {
	AppName string
	Title   string
	Missing []string
	Invalid bool
}

func configErrorData(cfg config.Config, err error) ConfigErrorPageData {
	data := ConfigErrorPageData{AppName: cfg.GetAppName()}
	if apperrors.Is(err, apperrors.ErrMissingEnvVars) {
		data.Title = "Missing Environment Variables"
		data.Missing = config.MissingEnvVars(cfg)
		return data
	}
	data.Title = "Invalid Supabase Configuration"
	data.Invalid = true
	return data
}

// NewConfigErrorHandler serves the blocking configuration notice on every
// path. Only the stylesheet is reachable besides it.
func NewConfigErrorHandler(cfg config.Config, cfgErr error) http.Handler {
	log.Error().Err(cfgErr).Msg("Configuration error, serving the configuration notice only")

	tmpl, err := ParsePartial("config_error.html")
	if err != nil {
		panic("Failed to parse config error template: " + err.Error())
	}
	data := configErrorData(cfg, cfgErr)

	s := &Server{env: cfg.GetEnv(), config: cfg, router: chi.NewRouter()}
	s.router.Use(s.StandardMiddleware()...)
	s.RegisterRouteFunc("GET "+RouteStaticCSS, ChainMiddleware(s.serveFileHandler("css"), s.StaticMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteHealthz, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, data.Title, http.StatusServiceUnavailable)
	})

	notice := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusServiceUnavailable)
		if err := tmpl.Execute(w, data); err != nil {
			log.Ctx(r.Context()).Err(err).Msg("Failed to render config error page")
		}
	}
	s.router.NotFound(notice)
	s.router.MethodNotAllowed(notice)
	s.logRoutes()
	return s
}
