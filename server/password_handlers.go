package server

import (
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/varix-web/auth"
	apperrors "github.com/jrsteele09/varix-web/internal/errors"
	"github.com/jrsteele09/varix-web/server/loginsession"
	"github.com/jrsteele09/varix-web/server/recoveryflow"
	"github.com/jrsteele09/varix-web/users"
	"github.com/rs/zerolog/hlog"
)

const msgEmailRequired = "Please enter your email address."

type ForgotPasswordPageData struct {
	PageData
	Email string
	Error string
	Sent  bool
}

func (s *Server) ForgotPasswordGetHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("forgot_password.html")
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, tmpl, http.StatusOK, ForgotPasswordPageData{PageData: s.pageData(r)})
	}
}

// ForgotPasswordPostHandler asks for a reset email. The link in it opens
// the reset page.
func (s *Server) ForgotPasswordPostHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("forgot_password.html")
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		a := authFromContext(r.Context())

		data := ForgotPasswordPageData{
			PageData: s.pageData(r),
			Email:    strings.TrimSpace(r.PostForm.Get("email")),
		}
		if data.Email == "" {
			data.Error = msgEmailRequired
			s.render(w, r, tmpl, http.StatusUnprocessableEntity, data)
			return
		}

		if err := a.backend.ResetPasswordForEmail(r.Context(), data.Email, s.authRedirectURL(r, auth.RecoveryPath)); err != nil {
			hlog.FromRequest(r).Warn().Err(err).Msg("Password reset failed")
			data.Error = auth.FormatError(err)
			s.render(w, r, tmpl, http.StatusOK, data)
			return
		}

		data.Sent = true
		s.render(w, r, tmpl, http.StatusOK, data)
	}
}

// ResetPageData backs every state of the set-new-password page.
type ResetPageData struct {
	PageData
	State         string
	Message       string
	FieldErrors   users.FieldErrors
	RedirectTo    string
	RedirectAfter time.Duration
}

func (s *Server) resetPageData(r *http.Request, flow *auth.RecoveryFlow) ResetPageData {
	data := ResetPageData{
		PageData:    s.pageData(r),
		State:       flow.State().String(),
		Message:     flow.Message(),
		FieldErrors: flow.FieldErrors(),
	}
	if loc, delay, ok := flow.RedirectAfter(); ok {
		data.RedirectTo = loc.Path
		data.RedirectAfter = delay
	}
	return data
}

func (s *Server) recoveryOptions() []auth.RecoveryOption {
	return []auth.RecoveryOption{auth.WithRedirectDelay(s.config.GetRecoveryRedirectDelay())}
}

// resumeFlow picks up the reset the browser started earlier. It runs on a
// throwaway session store so the recovery session never reaches the
// browser's own store.
func (s *Server) resumeFlow(r *http.Request) (string, *auth.RecoveryFlow, error) {
	flowID := recoveryFlowID(r)
	if flowID == "" {
		return "", nil, apperrors.ErrNotFound
	}
	held, err := s.recovery.Get(flowID)
	if err != nil {
		return flowID, nil, err
	}
	backend := s.browsers(loginsession.NewInMemoryRepo(), flowID)
	return flowID, auth.ResumeRecoveryFlow(backend, held.Tokens, s.recoveryOptions()...), nil
}

// ResetPasswordGetHandler shows the form for a reset in progress, or the
// shell that posts the link's fragment back.
func (s *Server) ResetPasswordGetHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("reset_password.html")
	return func(w http.ResponseWriter, r *http.Request) {
		if _, flow, err := s.resumeFlow(r); err == nil {
			s.render(w, r, tmpl, http.StatusOK, s.resetPageData(r, flow))
			return
		}
		s.render(w, r, tmpl, http.StatusOK, ResetPageData{
			PageData: s.pageData(r),
			State:    auth.RecoveryParsingTokens.String(),
		})
	}
}

// ResetPasswordPostHandler takes either the posted link fragment or the
// new password.
func (s *Server) ResetPasswordPostHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("reset_password.html")
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		if r.PostForm.Has(fragmentField) {
			s.beginReset(w, r, tmpl)
			return
		}
		s.submitReset(w, r, tmpl)
	}
}

func (s *Server) beginReset(w http.ResponseWriter, r *http.Request, tmpl *template.Template) {
	a := authFromContext(r.Context())

	flow := auth.NewRecoveryFlow(a.backend, s.recoveryOptions()...)
	flow.Begin(r.Context(), a.location)

	if flowID := recoveryFlowID(r); flowID != "" {
		_ = s.recovery.Delete(flowID)
	}

	tokens := flow.Tokens()
	if flow.State() != auth.RecoveryAwaitingInput || tokens == nil {
		s.metrics.AuthFlow("recovery", "invalid_link")
		s.clearRecoveryCookie(w, r)
		s.render(w, r, tmpl, http.StatusOK, s.resetPageData(r, flow))
		return
	}

	flowID := uuid.NewString()
	if err := s.recovery.Upsert(flowID, &recoveryflow.Flow{Tokens: *tokens}); err != nil {
		hlog.FromRequest(r).Err(err).Msg("Failed to hold recovery tokens")
		s.renderError(w, r, http.StatusInternalServerError)
		return
	}
	s.setRecoveryCookie(w, r, flowID)
	redirectSuccess(w, r, auth.RecoveryPath)
}

func (s *Server) submitReset(w http.ResponseWriter, r *http.Request, tmpl *template.Template) {
	flowID, flow, err := s.resumeFlow(r)
	if err != nil {
		s.clearRecoveryCookie(w, r)
		s.render(w, r, tmpl, http.StatusOK, ResetPageData{
			PageData: s.pageData(r),
			State:    auth.RecoveryTokenError.String(),
			Message:  auth.MsgExpiredLink,
		})
		return
	}

	state := flow.Submit(r.Context(), r.PostForm.Get("password"), r.PostForm.Get("confirm_password"))
	if state == auth.RecoverySuccess {
		s.metrics.AuthFlow("recovery", "success")
		if err := s.recovery.Delete(flowID); err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
			hlog.FromRequest(r).Err(err).Msg("Failed to drop recovery flow")
		}
		s.clearRecoveryCookie(w, r)
	} else if flow.Message() != "" {
		s.metrics.AuthFlow("recovery", "failed")
	}

	status := http.StatusOK
	if !flow.FieldErrors().Empty() {
		status = http.StatusUnprocessableEntity
	}
	s.render(w, r, tmpl, status, s.resetPageData(r, flow))
}
