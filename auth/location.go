package auth

import "strings"

// Paths the auth flows navigate between.
const (
	RecoveryPath       = "/reset-password"
	CallbackPath       = "/auth/callback"
	LoginPath          = "/login"
	AppPath            = "/app"
	ForgotPasswordPath = "/forgot-password"
)

const recoveryMarker = "type=recovery"

// Location is the browser location an auth decision is made against. The
// fragment is only known when the page posted it to the server.
type Location struct {
	Path     string
	Fragment string
}

// IsRecoveryLanding reports whether the browser landed on the password reset
// page with a recovery link.
func (l Location) IsRecoveryLanding() bool {
	return l.Path == RecoveryPath && strings.Contains(l.Fragment, recoveryMarker)
}

func (l Location) WithoutFragment() Location {
	return Location{Path: l.Path}
}

func (l Location) String() string {
	if l.Fragment == "" {
		return l.Path
	}
	return l.Path + "#" + strings.TrimPrefix(l.Fragment, "#")
}
