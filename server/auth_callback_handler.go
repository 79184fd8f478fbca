package server

import (
	"net/http"

	"github.com/jrsteele09/varix-web/auth"
)

// ShellPageData backs the pages that post the URL fragment back to the
// server before anything else happens.
type ShellPageData struct {
	PageData
	Heading string
	Action  string
	Error   string
}

// CallbackShellHandler serves the page OAuth and email confirmation links
// land on. Its script scrubs the fragment from the address bar and posts it
// back.
func (s *Server) CallbackShellHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("callback.html")
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, tmpl, http.StatusOK, ShellPageData{
			PageData: s.pageData(r),
			Heading:  "Completing sign in...",
			Action:   auth.CallbackPath,
		})
	}
}

// CallbackHandler completes sign-in from the posted fragment.
func (s *Server) CallbackHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("callback.html")
	return func(w http.ResponseWriter, r *http.Request) {
		a := authFromContext(r.Context())

		result := auth.HandleCallback(r.Context(), a.backend, a.location)
		s.metrics.AuthFlow("callback", result.Outcome.String())

		if result.Terminal() {
			s.render(w, r, tmpl, http.StatusOK, ShellPageData{
				PageData: s.pageData(r),
				Heading:  "Authentication Error",
				Error:    result.Message,
			})
			return
		}
		redirectLocation(w, r, result.Redirect)
	}
}
