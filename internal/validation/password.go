package validation

import (
	"errors"
)

var (
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	ErrPasswordTooLong  = errors.New("password must not exceed 72 characters")
)

// ValidatePassword enforces the registration length rules
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return ErrPasswordTooShort
	}

	// bcrypt silently truncates anything past 72 bytes
	if len(password) > 72 {
		return ErrPasswordTooLong
	}

	return nil
}
