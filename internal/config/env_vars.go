package config

import (
	"fmt"
	"strings"
)

type EnvVars struct {
	Port     string `env:"PORT" env-default:"8080" env-description:"HTTP listen port"`
	AppName  string `env:"APP_NAME" env-default:"Varix" env-description:"Name shown in the banner and page titles"`
	Env      string `env:"ENV" env-default:"DEV" env-description:"Environment name (DEV enables console logging and route listing)"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info" env-description:"zerolog level"`
	SiteURL  string `env:"PUBLIC_SITE_URL" env-description:"Base URL used to build auth redirect targets; defaults to the request origin"`
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := e.Port
	if port == "" {
		port = "8080"
	}
	if port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	if e.Env == "" {
		return "DEV"
	}
	return e.Env
}

func (e EnvVars) GetLogLevel() string {
	return e.LogLevel
}

// GetSiteURL returns PUBLIC_SITE_URL without a trailing slash, or "" when unset.
func (e EnvVars) GetSiteURL() string {
	return strings.TrimSuffix(strings.TrimSpace(e.SiteURL), "/")
}
