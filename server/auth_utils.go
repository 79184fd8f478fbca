package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/varix-web/auth"
)

const (
	// sessionCookieName identifies the browser to the session store
	sessionCookieName = "varix_session"
	// recoveryCookieName points at the held tokens of a password reset
	recoveryCookieName = "varix_recovery"
	// fragmentField is the form field the shell pages post the URL fragment in
	fragmentField = "fragment"
)

// sessionKey returns the browser's session cookie, issuing one on first
// visit. The value is random and carries no session data itself.
func (s *Server) sessionKey(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	key := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    key,
		Path:     "/",
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.config.GetMaxSessionAge() / time.Second),
	})
	// Later reads in this request see the same key.
	r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: key})
	return key
}

func (s *Server) setRecoveryCookie(w http.ResponseWriter, r *http.Request, flowID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     recoveryCookieName,
		Value:    flowID,
		Path:     auth.RecoveryPath,
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(s.config.GetRecoveryFlowTTL() / time.Second),
	})
}

func (s *Server) clearRecoveryCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     recoveryCookieName,
		Value:    "",
		Path:     auth.RecoveryPath,
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
}

func recoveryFlowID(r *http.Request) string {
	c, err := r.Cookie(recoveryCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// redirectSuccess is an htmx-aware 303.
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectLocation follows an auth decision. A location with a fragment is
// written verbatim so the browser carries the fragment to the next page.
func redirectLocation(w http.ResponseWriter, r *http.Request, loc auth.Location) {
	if loc.Fragment == "" {
		redirectSuccess(w, r, loc.Path)
		return
	}
	w.Header().Set("Location", loc.String())
	w.WriteHeader(http.StatusSeeOther)
}
