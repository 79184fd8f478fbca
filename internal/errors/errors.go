package errors

import (
	"errors"
	"fmt"
)

// Common error types for the site and its dashboard
var (
	// Configuration errors
	ErrMissingEnvVars        = errors.New("missing environment variables")
	ErrInvalidAnonKey        = errors.New("invalid anon key")
	ErrInvalidServiceRoleKey = errors.New("invalid service_role key format")

	// Token errors
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionMissing  = errors.New("auth session missing")

	// Fragment errors
	ErrEmptyFragment = errors.New("empty fragment")
	ErrMissingTokens = errors.New("access_token and refresh_token are required")

	// File errors
	ErrInvalidFileType = errors.New("invalid file type")
	ErrFileTooLarge    = errors.New("file too large")
	ErrAlreadyExists   = errors.New("the resource already exists")

	// General errors
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// New returns an error that formats as the given text
func New(text string) error {
	return errors.New(text)
}
