package auth

import (
	"context"
	"fmt"

	apperrors "github.com/jrsteele09/varix-web/internal/errors"
	"github.com/jrsteele09/varix-web/sessions"
	"github.com/rs/zerolog/log"
)

const (
	MsgInvalidLink      = "Invalid authentication link. Please try again."
	MsgAuthFailed       = "Authentication failed. Please try again."
	MsgUnexpected       = "An unexpected error occurred. Please try again."
	MsgRequestCancelled = "The request was cancelled."
)

type CallbackOutcome int

const (
	// CallbackRedirectLogin: no fragment, send the visitor to login.
	CallbackRedirectLogin CallbackOutcome = iota
	// CallbackRedirectRecovery: a recovery link landed on the callback path.
	CallbackRedirectRecovery
	CallbackAuthenticated
	CallbackInvalidLink
	CallbackFailed
	CallbackUnexpected
	CallbackCancelled
)

func (o CallbackOutcome) String() string {
	switch o {
	case CallbackRedirectLogin:
		return "redirect_login"
	case CallbackRedirectRecovery:
		return "redirect_recovery"
	case CallbackAuthenticated:
		return "authenticated"
	case CallbackInvalidLink:
		return "invalid_link"
	case CallbackFailed:
		return "failed"
	case CallbackUnexpected:
		return "unexpected"
	case CallbackCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// CallbackResult tells the caller where the browser goes next. When Replace
// is set the current history entry is replaced rather than pushed.
type CallbackResult struct {
	Outcome  CallbackOutcome
	Redirect Location
	Replace  bool
	Message  string
	Session  *sessions.Session
}

// Terminal reports whether the result is an error state shown in place.
func (r CallbackResult) Terminal() bool {
	return r.Message != ""
}

// HandleCallback completes an OAuth or email-confirmation redirect whose
// tokens arrived in loc.Fragment. Recovery links are never handled here:
// they are sent on to the recovery page with the fragment intact.
func HandleCallback(ctx context.Context, backend Backend, loc Location) (result CallbackResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Ctx(ctx).Error().Interface("panic", r).Msg("Auth callback error")
			result = CallbackResult{Outcome: CallbackUnexpected, Message: MsgUnexpected}
		}
	}()

	frag, err := ParseFragment(loc.Fragment)
	if apperrors.Is(err, apperrors.ErrEmptyFragment) {
		return CallbackResult{
			Outcome:  CallbackRedirectLogin,
			Redirect: Location{Path: LoginPath},
			Replace:  true,
		}
	}

	if frag.IsRecovery() {
		return CallbackResult{
			Outcome:  CallbackRedirectRecovery,
			Redirect: Location{Path: RecoveryPath, Fragment: loc.Fragment},
			Replace:  true,
		}
	}

	if err != nil {
		if frag.ErrorDescription != "" {
			log.Ctx(ctx).Warn().Str("error_code", frag.ErrorCode).Str("error", frag.ErrorDescription).Msg("Auth redirect carried an error")
		}
		return CallbackResult{Outcome: CallbackInvalidLink, Message: MsgInvalidLink}
	}

	if err := ctx.Err(); err != nil {
		return CallbackResult{Outcome: CallbackCancelled, Message: MsgRequestCancelled}
	}

	session, err := backend.SetSession(ctx, frag.AccessToken, frag.RefreshToken)
	if err != nil {
		log.Ctx(ctx).Err(err).Msg("Failed to set session")
		return CallbackResult{Outcome: CallbackFailed, Message: MsgAuthFailed}
	}
	if session == nil {
		panic(fmt.Sprintf("SetSession returned no session and no error for flow %q", frag.Type))
	}

	return CallbackResult{
		Outcome:  CallbackAuthenticated,
		Redirect: Location{Path: AppPath},
		Replace:  true,
		Session:  session,
	}
}
