package config

import "strings"

// SiteURL returns the configured public site URL, falling back to the origin
// of the current request (scheme://host) when none is configured.
func SiteURL(c EnvConfig, requestOrigin string) string {
	if site := c.GetSiteURL(); site != "" {
		return site
	}
	return strings.TrimSuffix(requestOrigin, "/")
}

// AuthRedirectURL builds an absolute redirect target for auth emails and
// OAuth providers.
func AuthRedirectURL(c EnvConfig, requestOrigin, path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return SiteURL(c, requestOrigin) + path
}
