package config

import "time"

const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

type SecurityConfig interface {
	GetSessionStore() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetMaxSessionAge() time.Duration
	GetRecoveryFlowTTL() time.Duration
	GetRecoveryRedirectDelay() time.Duration
}

type Security struct {
	SessionStore          string        `env:"SESSION_STORE" env-default:"memory" env-description:"memory or redis"`
	RedisAddr             string        `env:"REDIS_ADDR" env-default:"localhost:6379" env-description:"Redis address for the redis session store"`
	RedisPassword         string        `env:"REDIS_PASSWORD" env-description:"Redis password"`
	RedisDB               int           `env:"REDIS_DB" env-default:"0" env-description:"Redis database"`
	MaxSessionAge         time.Duration `env:"SESSION_MAX_AGE" env-default:"720h" env-description:"Lifetime of the browser session cookie"`
	RecoveryFlowTTL       time.Duration `env:"RECOVERY_FLOW_TTL" env-default:"15m" env-description:"How long parsed recovery tokens are held"`
	RecoveryRedirectDelay time.Duration `env:"RECOVERY_REDIRECT_DELAY" env-default:"3s" env-description:"Delay before a completed reset redirects to login"`
}

var _ SecurityConfig = Security{}

func (s Security) GetSessionStore() string {
	if s.SessionStore == SessionStoreRedis {
		return SessionStoreRedis
	}
	return SessionStoreMemory
}

func (s Security) GetRedisAddr() string     { return s.RedisAddr }
func (s Security) GetRedisPassword() string { return s.RedisPassword }
func (s Security) GetRedisDB() int          { return s.RedisDB }

func (s Security) GetMaxSessionAge() time.Duration {
	if s.MaxSessionAge <= 0 {
		return 30 * 24 * time.Hour
	}
	return s.MaxSessionAge
}

func (s Security) GetRecoveryFlowTTL() time.Duration {
	if s.RecoveryFlowTTL <= 0 {
		return 15 * time.Minute
	}
	return s.RecoveryFlowTTL
}

func (s Security) GetRecoveryRedirectDelay() time.Duration {
	if s.RecoveryRedirectDelay < 0 {
		return 0
	}
	return s.RecoveryRedirectDelay
}
