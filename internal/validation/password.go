package validation

import (
	"errors"
)

const (
	MinPasswordLength = 6
	// bcrypt ignores input past 72 bytes and the 6-char salt is appended before hashing
	MaxPasswordLength = 72 - 6
)

var (
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	ErrPasswordTooLong  = errors.New("password must not exceed 66 characters")
)

// ValidatePassword enforces the length limits accepted by sign-up and password reset
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}

	return nil
}
