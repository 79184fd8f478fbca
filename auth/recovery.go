package auth

import (
	"context"
	"time"

	apperrors "github.com/jrsteele09/varix-web/internal/errors"
	"github.com/jrsteele09/varix-web/sessions"
	"github.com/jrsteele09/varix-web/users"
	"github.com/rs/zerolog/log"
)

const (
	MsgExpiredLink     = "This password reset link is invalid or has expired. Please request a new one."
	MsgPasswordUpdated = "Your password has been updated. Please log in with your new password."
)

const DefaultRedirectDelay = 3 * time.Second

type RecoveryState int

const (
	RecoveryParsingTokens RecoveryState = iota
	RecoveryTokenError
	RecoveryAwaitingInput
	RecoverySubmitting
	RecoverySuccess
)

func (s RecoveryState) String() string {
	switch s {
	case RecoveryParsingTokens:
		return "ParsingTokens"
	case RecoveryTokenError:
		return "TokenError"
	case RecoveryAwaitingInput:
		return "AwaitingInput"
	case RecoverySubmitting:
		return "Submitting"
	case RecoverySuccess:
		return "Success"
	default:
		return "Unknown"
	}
}

// RecoveryTokens is the token pair from a password reset link. It is only
// ever used to set a new password.
type RecoveryTokens struct {
	AccessToken  string
	RefreshToken string
}

type RecoveryOption func(*RecoveryFlow)

func WithRedirectDelay(d time.Duration) RecoveryOption {
	return func(f *RecoveryFlow) {
		f.redirectDelay = d
	}
}

// RecoveryFlow drives the set-new-password screen. Tokens from the link are
// consumed exactly once, and no session survives the flow whatever the
// outcome.
type RecoveryFlow struct {
	backend       Backend
	state         RecoveryState
	tokens        *RecoveryTokens
	fieldErrors   users.FieldErrors
	message       string
	redirectDelay time.Duration
}

func NewRecoveryFlow(backend Backend, opts ...RecoveryOption) *RecoveryFlow {
	f := &RecoveryFlow{
		backend:       backend,
		state:         RecoveryParsingTokens,
		redirectDelay: DefaultRedirectDelay,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ResumeRecoveryFlow continues a flow whose tokens were parsed on an earlier
// request.
func ResumeRecoveryFlow(backend Backend, tokens RecoveryTokens, opts ...RecoveryOption) *RecoveryFlow {
	f := NewRecoveryFlow(backend, opts...)
	f.tokens = &tokens
	f.state = RecoveryAwaitingInput
	return f
}

func (f *RecoveryFlow) State() RecoveryState {
	return f.state
}

// Tokens returns a copy of the held tokens, or nil once they are discarded.
func (f *RecoveryFlow) Tokens() *RecoveryTokens {
	if f.tokens == nil {
		return nil
	}
	t := *f.tokens
	return &t
}

func (f *RecoveryFlow) FieldErrors() users.FieldErrors {
	return f.fieldErrors
}

// Message is the flow-level error or, on success, the confirmation text.
func (f *RecoveryFlow) Message() string {
	return f.message
}

// RedirectAfter returns the page to go to once the flow has succeeded and
// how long to wait first.
func (f *RecoveryFlow) RedirectAfter() (Location, time.Duration, bool) {
	if f.state != RecoverySuccess {
		return Location{}, 0, false
	}
	return Location{Path: LoginPath}, f.redirectDelay, true
}

// Begin parses the recovery link at loc and returns the location with its
// fragment scrubbed. Any session already present is signed out whether or
// not the link is usable.
func (f *RecoveryFlow) Begin(ctx context.Context, loc Location) Location {
	defer f.signOut(ctx, "Failed to clear existing session on reset page")

	frag, err := ParseFragment(loc.Fragment)
	switch {
	case err != nil:
		log.Ctx(ctx).Info().Err(err).Msg("Recovery link rejected")
		f.state = RecoveryTokenError
		f.message = MsgExpiredLink
	case !frag.IsRecovery():
		log.Ctx(ctx).Info().Str("type", string(frag.Type)).Msg("Recovery link has the wrong type")
		f.state = RecoveryTokenError
		f.message = MsgExpiredLink
	default:
		f.tokens = &RecoveryTokens{AccessToken: frag.AccessToken, RefreshToken: frag.RefreshToken}
		f.state = RecoveryAwaitingInput
		f.message = ""
	}

	return loc.WithoutFragment()
}

// Submit validates the new password and, if it passes, spends the held
// tokens on it.
func (f *RecoveryFlow) Submit(ctx context.Context, password, confirm string) RecoveryState {
	if f.state != RecoveryAwaitingInput || f.tokens == nil {
		return f.state
	}

	fe, ok := users.ValidateResetForm(password, confirm)
	f.fieldErrors = fe
	if !ok {
		return f.state
	}

	f.state = RecoverySubmitting
	f.message = ""

	if _, err := f.backend.SetSession(ctx, f.tokens.AccessToken, f.tokens.RefreshToken); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("Recovery session could not be established")
		f.message = MsgExpiredLink
		if IsNetworkError(err) {
			f.message = FormatError(err)
		}
		f.state = RecoveryAwaitingInput
		return f.state
	}

	if _, err := f.backend.UpdateUser(ctx, sessions.UserAttributes{Password: password}); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("Password update failed")
		f.message = FormatError(err)
		f.signOut(ctx, "Failed to clear recovery session after update failure")
		f.state = RecoveryAwaitingInput
		return f.state
	}

	f.signOut(ctx, "Failed to clear recovery session after password update")
	f.tokens = nil
	f.fieldErrors = users.FieldErrors{}
	f.message = MsgPasswordUpdated
	f.state = RecoverySuccess
	return f.state
}

func (f *RecoveryFlow) signOut(ctx context.Context, msg string) {
	if err := f.backend.SignOut(ctx); err != nil && !apperrors.Is(err, apperrors.ErrSessionMissing) {
		log.Ctx(ctx).Err(err).Msg(msg)
	}
}
