package config

import (
	"fmt"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	apperrors "github.com/jrsteele09/varix-web/internal/errors"
)

const serviceRoleKeyVar = "SUPABASE_SERVICE_ROLE_KEY"

// AdminConfig is what the admin CLI needs. The service role key bypasses
// row-level security and is never read by the web server.
type AdminConfig interface {
	GetSupabaseURL() string
	GetServiceRoleKey() string
}

type Admin struct {
	URL            string `env:"SUPABASE_URL" env-description:"Project URL (required)"`
	ServiceRoleKey string `env:"SUPABASE_SERVICE_ROLE_KEY" env-description:"Service role key (required, admin CLI only)"`
}

var _ AdminConfig = Admin{}

func (a Admin) GetSupabaseURL() string {
	return strings.TrimSuffix(strings.TrimSpace(a.URL), "/")
}

func (a Admin) GetServiceRoleKey() string {
	return strings.TrimSpace(a.ServiceRoleKey)
}

func LoadAdmin() (AdminConfig, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, err
	}
	var cfg Admin
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config.LoadAdmin: %w", err)
	}
	return cfg, nil
}

// ValidateAdmin checks that both admin variables are set and that the key
// looks like a service role JWT.
func ValidateAdmin(c AdminConfig) error {
	var missing []string
	if c.GetSupabaseURL() == "" {
		missing = append(missing, supabaseURLVar)
	}
	if c.GetServiceRoleKey() == "" {
		missing = append(missing, serviceRoleKeyVar)
	}
	if len(missing) > 0 {
		return apperrors.Wrapf(apperrors.ErrMissingEnvVars, "%s", strings.Join(missing, ", "))
	}
	if !strings.HasPrefix(c.GetServiceRoleKey(), "eyJ") {
		return apperrors.ErrInvalidServiceRoleKey
	}
	return nil
}
