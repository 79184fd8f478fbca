package users

import "unicode/utf8"

type StrengthLabel string

const (
	StrengthWeak   StrengthLabel = "Weak"
	StrengthMedium StrengthLabel = "Medium"
	StrengthStrong StrengthLabel = "Strong"
)

const MaxStrengthScore = 6

type PasswordStrength struct {
	Score int
	Label StrengthLabel
}

// Percent is the width of the strength meter.
func (p PasswordStrength) Percent() int {
	return p.Score * 100 / MaxStrengthScore
}

// Strength scores a password for the strength meter. It is advisory only;
// ValidatePasswordStrength decides what is accepted.
func Strength(password string) PasswordStrength {
	score := 0
	n := utf8.RuneCountInString(password)
	if n >= 6 {
		score++
	}
	if n >= 8 {
		score++
	}
	if n >= 12 {
		score++
	}

	var lower, upper, digit, symbol bool
	for _, c := range password {
		switch {
		case c >= 'a' && c <= 'z':
			lower = true
		case c >= 'A' && c <= 'Z':
			upper = true
		case c >= '0' && c <= '9':
			digit = true
		default:
			symbol = true
		}
	}
	if lower && upper {
		score++
	}
	if digit {
		score++
	}
	if symbol {
		score++
	}

	switch {
	case score <= 2:
		return PasswordStrength{Score: score, Label: StrengthWeak}
	case score <= 4:
		return PasswordStrength{Score: score, Label: StrengthMedium}
	default:
		return PasswordStrength{Score: score, Label: StrengthStrong}
	}
}
