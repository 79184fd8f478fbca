package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	SupabaseConfig
	StorageConfig
	DatabaseConfig
	CorsConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetSiteURL() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Supabase
	Storage
	Database
	Cors
	Security
}

// envFiles are read in order; a value set by an earlier file is not
// overwritten by a later one, and real environment variables win over both.
var envFiles = []string{".env.local", ".env"}

// Load reads .env.local and .env (when present) into the process
// environment and then populates the configuration from it.
func Load() (Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, err
	}

	var cfg mainConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return cfg, nil
}

func loadEnvFiles() error {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("config.Load %s: %w", f, err)
		}
	}
	return nil
}

// New loads the configuration and panics if the environment cannot be parsed.
func New() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Usage describes every environment variable the server reads.
func Usage() string {
	var cfg mainConfig
	usage, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return err.Error()
	}
	return usage
}
