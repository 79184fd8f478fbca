// Package recoveryflow holds password-reset tokens between the request that
// parsed them and the one that spends them. Tokens only ever live in this
// process's memory.
package recoveryflow

import (
	"time"

	"github.com/jrsteele09/varix-web/auth"
)

// DefaultTTL is how long a parsed reset link stays usable.
const DefaultTTL = 15 * time.Minute

type Flow struct {
	Tokens    auth.RecoveryTokens
	CreatedAt time.Time
}

type Repo interface {
	Upsert(flowID string, flow *Flow) error
	Get(flowID string) (*Flow, error)
	Delete(flowID string) error
}
