package auth

import (
	"net/url"
	"strings"

	apperrors "github.com/jrsteele09/varix-web/internal/errors"
)

// FlowType is the value of the "type" marker in an auth redirect fragment.
type FlowType string

const (
	FlowSignup      FlowType = "signup"
	FlowOAuth       FlowType = "oauth"
	FlowRecovery    FlowType = "recovery"
	FlowMagicLink   FlowType = "magiclink"
	FlowInvite      FlowType = "invite"
	FlowEmailChange FlowType = "email_change"
)

// Fragment is the parsed form of "#access_token=..&refresh_token=..&type=..".
type Fragment struct {
	AccessToken  string
	RefreshToken string
	Type         FlowType

	// Set when the auth service redirected with an error instead of tokens.
	Error            string
	ErrorCode        string
	ErrorDescription string
}

func (f Fragment) HasTokens() bool {
	return f.AccessToken != "" && f.RefreshToken != ""
}

func (f Fragment) IsRecovery() bool {
	return f.Type == FlowRecovery
}

// ParseFragment parses a URL fragment, with or without the leading '#'.
//
// An empty fragment yields ErrEmptyFragment. A fragment without both tokens
// yields ErrMissingTokens together with whatever fields were present, so that
// callers can still route on the type marker.
func ParseFragment(fragment string) (Fragment, error) {
	fragment = strings.TrimPrefix(strings.TrimSpace(fragment), "#")
	if fragment == "" {
		return Fragment{}, apperrors.ErrEmptyFragment
	}

	// Malformed escapes are skipped pair by pair, the way browsers parse
	// URLSearchParams; the well-formed pairs are still returned.
	values, _ := url.ParseQuery(fragment)

	f := Fragment{
		AccessToken:      values.Get("access_token"),
		RefreshToken:     values.Get("refresh_token"),
		Type:             FlowType(values.Get("type")),
		Error:            values.Get("error"),
		ErrorCode:        values.Get("error_code"),
		ErrorDescription: values.Get("error_description"),
	}

	if !f.HasTokens() {
		return f, apperrors.ErrMissingTokens
	}
	return f, nil
}
