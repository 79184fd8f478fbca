package auth

import (
	"net/url"
	"strings"
)

// GuardDecision is what a route guard wants done with a request. Exactly
// one of the fields is set.
type GuardDecision struct {
	Loading  bool
	Redirect string
	Allow    bool
}

// GuardProtected admits only authenticated visitors. Others are sent to
// login with the requested path remembered in "from".
func GuardProtected(state State, requestedPath string) GuardDecision {
	if state.Loading {
		return GuardDecision{Loading: true}
	}
	if !state.Authenticated() {
		q := url.Values{}
		q.Set("from", requestedPath)
		return GuardDecision{Redirect: LoginPath + "?" + q.Encode()}
	}
	return GuardDecision{Allow: true}
}

// GuardAuthOnly keeps signed-in visitors off the login and sign-up pages.
func GuardAuthOnly(state State, from string) GuardDecision {
	if state.Loading {
		return GuardDecision{Loading: true}
	}
	if state.Authenticated() {
		return GuardDecision{Redirect: SafeRedirectPath(from, AppPath)}
	}
	return GuardDecision{Allow: true}
}

// SafeRedirectPath returns from when it is a path on this site, otherwise
// fallback. Protocol-relative and absolute URLs are rejected.
func SafeRedirectPath(from, fallback string) string {
	if from == "" || !strings.HasPrefix(from, "/") {
		return fallback
	}
	if strings.HasPrefix(from, "//") || strings.HasPrefix(from, "/\\") {
		return fallback
	}
	u, err := url.Parse(from)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return from
}
