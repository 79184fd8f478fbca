// Package loginsession keeps each browser's auth session on the server,
// keyed by the browser's session cookie.
package loginsession

import (
	"encoding/hex"
	"time"

	"github.com/jrsteele09/varix-web/sessions"
	"golang.org/x/crypto/blake2b"
)

var (
	_ sessions.Repo = (*InMemoryRepo)(nil)
	_ sessions.Repo = (*RedisRepo)(nil)
)

// DefaultTTL bounds how long an idle session is kept.
const DefaultTTL = 30 * 24 * time.Hour

// hashKey stores only a digest of the cookie value, so a leaked store does
// not hand out usable cookies.
func hashKey(key string) string {
	sum := blake2b.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

func copySession(s *sessions.Session) *sessions.Session {
	if s == nil {
		return nil
	}
	out := *s
	if s.Token != nil {
		token := *s.Token
		out.Token = &token
	}
	return &out
}
