package users

import (
	"errors"
	"unicode"
	"unicode/utf8"
)

const MinPasswordLength = 8

// Password policy messages, shown next to the field that failed.
var (
	ErrPasswordTooShort  = errors.New("Password must be at least 8 characters")
	ErrPasswordNoUpper   = errors.New("Password must contain an uppercase letter")
	ErrPasswordNoLower   = errors.New("Password must contain a lowercase letter")
	ErrPasswordNoNumber  = errors.New("Password must contain a number")
	ErrPasswordsMismatch = errors.New("Passwords do not match")
)

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return ErrPasswordNoUpper
	}
	if !hasLower {
		return ErrPasswordNoLower
	}
	if !hasNumber {
		return ErrPasswordNoNumber
	}

	return nil
}

// FieldErrors holds per-field messages for the set-new-password form.
type FieldErrors struct {
	Password string
	Confirm  string
}

func (f FieldErrors) Empty() bool {
	return f.Password == "" && f.Confirm == ""
}

// ValidateResetForm validates a new password and its confirmation. An empty
// field produces no message but still fails validation.
func ValidateResetForm(password, confirm string) (FieldErrors, bool) {
	var fe FieldErrors
	valid := true

	if password == "" {
		valid = false
	} else if err := ValidatePasswordStrength(password); err != nil {
		fe.Password = err.Error()
		valid = false
	}

	if confirm == "" {
		valid = false
	} else if confirm != password {
		fe.Confirm = ErrPasswordsMismatch.Error()
		valid = false
	}

	return fe, valid
}
