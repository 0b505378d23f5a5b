package validate

import (
	"errors"
	"unicode"
	"unicode/utf8"
)

const (
	PasswordMinLen = 8
	PasswordMaxLen = 16
)

var (
	ErrPasswordLength  = errors.New("password must be 8-16 characters long")
	ErrPasswordLower   = errors.New("password must contain a lowercase letter")
	ErrPasswordUpper   = errors.New("password must contain an uppercase letter")
	ErrPasswordDigit   = errors.New("password must contain a digit")
	ErrPasswordSpecial = errors.New("password must contain a special character")
)

// Check password strength: 8-16 characters with at least one lowercase letter,
// uppercase letter, digit and special character (anything but a letter or digit)
func Password(password string) error {
	n := utf8.RuneCountInString(password)
	if n < PasswordMinLen || n > PasswordMaxLen {
		return ErrPasswordLength
	}

	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case !unicode.IsLetter(r):
			special = true
		}
	}

	switch {
	case !lower:
		return ErrPasswordLower
	case !upper:
		return ErrPasswordUpper
	case !digit:
		return ErrPasswordDigit
	case !special:
		return ErrPasswordSpecial
	default:
		return nil
	}
}
