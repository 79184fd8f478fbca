package server

import (
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"
)

func (s *Server) initRoutes() {
	page := func(h http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
		return ChainMiddleware(h, s.HTMLMiddleWare(append([]func(http.HandlerFunc) http.HandlerFunc{s.WithAuth}, mw...)...)...)
	}

	// MARKETING
	s.RegisterRouteFunc("GET "+RouteHome, page(s.MarketingPageHandler("index.html")))
	s.RegisterRouteFunc("GET "+RoutePricing, page(s.MarketingPageHandler("pricing.html")))
	s.RegisterRouteFunc("GET "+RouteAbout, page(s.MarketingPageHandler("about.html")))
	s.RegisterRouteFunc("GET "+RoutePrivacy, page(s.MarketingPageHandler("privacy.html")))
	s.RegisterRouteFunc("GET "+RouteTerms, page(s.MarketingPageHandler("terms.html")))
	s.RegisterRouteFunc("GET "+RouteContact, page(s.ContactGetHandler()))
	s.RegisterRouteFunc("POST "+RouteContact, page(s.ContactPostHandler()))

	// LOGIN & SIGNUP
	s.RegisterRouteFunc("GET "+RouteLogin, page(s.LoginPageHandler(), s.RequireSignedOut))
	s.RegisterRouteFunc("POST "+RouteLogin, page(s.LoginSubmissionHandler(), s.RequireSignedOut))
	s.RegisterRouteFunc("GET "+RouteSignup, page(s.SignupGetHandler(), s.RequireSignedOut))
	s.RegisterRouteFunc("POST "+RouteSignup, page(s.SignupPostHandler(), s.RequireSignedOut))
	s.RegisterRouteFunc("GET "+RouteOAuthStart, page(s.OAuthStartHandler()))
	s.RegisterRouteFunc("POST "+RouteLogout, page(s.LogoutHandler()))

	// CALLBACK
	s.RegisterRouteFunc("GET "+RouteCallback, page(s.CallbackShellHandler()))
	s.RegisterRouteFunc("POST "+RouteCallback, page(s.CallbackHandler()))

	// PASSWORD RESET
	s.RegisterRouteFunc("GET "+RouteForgotPassword, page(s.ForgotPasswordGetHandler()))
	s.RegisterRouteFunc("POST "+RouteForgotPassword, page(s.ForgotPasswordPostHandler()))
	s.RegisterRouteFunc("GET "+RouteResetPassword, page(s.ResetPasswordGetHandler()))
	s.RegisterRouteFunc("POST "+RouteResetPassword, page(s.ResetPasswordPostHandler()))

	// DASHBOARD
	s.RegisterRouteFunc("GET "+RouteApp, page(s.DashboardHandler(), s.RequireAuth))
	s.RegisterRouteFunc("GET "+RouteFileView, page(s.FileViewHandler(), s.RequireAuth))
	s.RegisterRouteFunc("POST "+RouteFileDelete, page(s.FileDeleteHandler(), s.RequireAuth))
	s.RegisterRouteFunc("GET "+RouteUpload, page(s.UploadGetHandler(), s.RequireAuth))
	s.RegisterRouteFunc("POST "+RouteUpload, page(s.UploadPostHandler(), s.RequireAuth))

	// API routes
	s.RegisterRouteFunc("POST "+RouteAPIValidatePassword, ChainMiddleware(s.ValidatePasswordHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("OPTIONS "+RouteAPIValidatePassword, ChainMiddleware(s.ValidatePasswordHandler(), s.APIMiddleware()...))

	// Operations
	s.RegisterRouteHandler("GET "+RouteMetrics, s.metrics.Handler())
	s.RegisterRouteFunc("GET "+RouteHealthz, s.HealthzHandler())

	s.RegisterRouteFunc("GET "+RouteStaticCSS, ChainMiddleware(s.serveFileHandler("css"), s.StaticMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteStaticJS, ChainMiddleware(s.serveFileHandler("js"), s.StaticMiddleware()...))

	s.router.NotFound(page(s.NotFoundHandler()))
	s.router.MethodNotAllowed(page(s.NotFoundHandler()))
}

func (s *Server) serveFileHandler(dir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file := chi.URLParam(r, "file")
		if file == "" || file != path.Base(file) {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
		if err := StreamFile(w, r, dir+"/"+file); err != nil {
			hlog.FromRequest(r).Warn().Err(err).Str("file", file).Msg("Static file not served")
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
		}
	}
}
