package config

import (
	"strings"

	apperrors "github.com/jrsteele09/varix-web/internal/errors"
)

const (
	supabaseURLVar     = "SUPABASE_URL"
	supabaseAnonKeyVar = "SUPABASE_ANON_KEY"
)

type SupabaseConfig interface {
	GetSupabaseURL() string
	GetSupabaseAnonKey() string
	GetSupabaseJWTSecret() string
	GetSupabaseJWKSURL() string
	GetDetectSessionInURL() bool
}

type Supabase struct {
	URL                string `env:"SUPABASE_URL" env-description:"Project URL (required)"`
	AnonKey            string `env:"SUPABASE_ANON_KEY" env-description:"Anon or publishable key (required)"`
	JWTSecret          string `env:"SUPABASE_JWT_SECRET" env-description:"HS256 secret used to verify access tokens locally"`
	JWKSURL            string `env:"SUPABASE_JWKS_URL" env-description:"JWKS endpoint used when no JWT secret is set"`
	DetectSessionInURL bool   `env:"SUPABASE_DETECT_SESSION_IN_URL" env-default:"false" env-description:"Establish sessions from URL fragments automatically"`
}

var _ SupabaseConfig = Supabase{}

func (s Supabase) GetSupabaseURL() string {
	return strings.TrimSuffix(strings.TrimSpace(s.URL), "/")
}

func (s Supabase) GetSupabaseAnonKey() string {
	return strings.TrimSpace(s.AnonKey)
}

func (s Supabase) GetSupabaseJWTSecret() string {
	return s.JWTSecret
}

func (s Supabase) GetSupabaseJWKSURL() string {
	if s.JWKSURL != "" {
		return s.JWKSURL
	}
	if s.GetSupabaseURL() == "" {
		return ""
	}
	return s.GetSupabaseURL() + "/auth/v1/.well-known/jwks.json"
}

func (s Supabase) GetDetectSessionInURL() bool {
	return s.DetectSessionInURL
}

// MissingEnvVars lists the required variables that are not set.
func MissingEnvVars(c SupabaseConfig) []string {
	var missing []string
	if c.GetSupabaseURL() == "" {
		missing = append(missing, supabaseURLVar)
	}
	if c.GetSupabaseAnonKey() == "" {
		missing = append(missing, supabaseAnonKeyVar)
	}
	return missing
}

// IsValidAnonKey accepts legacy JWT anon keys and the newer publishable keys.
func IsValidAnonKey(key string) bool {
	if strings.HasPrefix(key, "sb_publishable_") {
		return len(key) > len("sb_publishable_")
	}
	parts := strings.Split(key, ".")
	if len(parts) != 3 || !strings.HasPrefix(parts[0], "eyJ") {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
	}
	return true
}

// Validate reports configuration errors that must stop the site from serving
// anything but the configuration notice.
func Validate(c SupabaseConfig) error {
	if missing := MissingEnvVars(c); len(missing) > 0 {
		return apperrors.Wrapf(apperrors.ErrMissingEnvVars, "%s", strings.Join(missing, ", "))
	}
	if !IsValidAnonKey(c.GetSupabaseAnonKey()) {
		return apperrors.ErrInvalidAnonKey
	}
	return nil
}
