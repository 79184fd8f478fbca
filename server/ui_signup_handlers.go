package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/varix-web/auth"
	"github.com/jrsteele09/varix-web/users"
	"github.com/rs/zerolog/hlog"
)

const (
	msgAlreadyRegistered = "This email is already registered. Please log in instead."
	msgConfirmEmail      = "Check your email to confirm your account before logging in."
)

type SignupPageData struct {
	PageData
	Email  string
	Error  string
	Status string
}

func (s *Server) SignupGetHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("signup.html")
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, tmpl, http.StatusOK, SignupPageData{PageData: s.pageData(r)})
	}
}

// SignupPostHandler registers a new account. Depending on the project's
// settings the account is signed in straight away or must be confirmed by
// email first.
func (s *Server) SignupPostHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("signup.html")
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		a := authFromContext(r.Context())

		email := strings.TrimSpace(r.PostForm.Get("email"))
		password := r.PostForm.Get("password")
		data := SignupPageData{PageData: s.pageData(r), Email: email}

		if email == "" || password == "" {
			data.Error = msgCredentialsRequired
			s.render(w, r, tmpl, http.StatusUnprocessableEntity, data)
			return
		}

		res, err := a.backend.SignUp(r.Context(), email, password, s.authRedirectURL(r, auth.CallbackPath))
		switch {
		case err != nil:
			hlog.FromRequest(r).Warn().Err(err).Msg("Sign up failed")
			s.metrics.AuthFlow("signup", "failed")
			data.Error = auth.FormatError(err)
			s.render(w, r, tmpl, http.StatusUnprocessableEntity, data)
		case res.User != nil && res.User.AlreadyRegistered():
			s.metrics.AuthFlow("signup", "already_registered")
			data.Error = msgAlreadyRegistered
			s.render(w, r, tmpl, http.StatusConflict, data)
		case res.Session == nil:
			s.metrics.AuthFlow("signup", "confirmation_sent")
			data.Status = msgConfirmEmail
			s.render(w, r, tmpl, http.StatusOK, data)
		default:
			s.metrics.AuthFlow("signup", "success")
			redirectSuccess(w, r, auth.AppPath)
		}
	}
}

type passwordFeedback struct {
	Error    string
	Strength users.PasswordStrength
}

// ValidatePasswordHandler returns the htmx fragment under a new-password
// field: the first unmet rule, or the strength meter once all are met.
func (s *Server) ValidatePasswordHandler() http.HandlerFunc {
	tmpl, err := ParsePartial("password_feedback.html")
	if err != nil {
		panic("Failed to parse password feedback template: " + err.Error())
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		password := r.PostForm.Get("password")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if password == "" {
			w.WriteHeader(http.StatusOK)
			return
		}

		data := passwordFeedback{Strength: users.Strength(password)}
		if err := users.ValidatePasswordStrength(password); err != nil {
			data.Error = err.Error()
			w.Header().Set("HX-Trigger", "passwordInvalid")
		} else {
			w.Header().Set("HX-Trigger", "passwordValid")
		}

		if err := tmpl.Execute(w, data); err != nil {
			hlog.FromRequest(r).Err(err).Msg("Failed to render password feedback")
		}
	}
}
