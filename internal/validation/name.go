package validation

import (
	"errors"
	"strings"
)

var ErrNameTooLong = errors.New("name is too long (max 255 characters)")

// ValidateFileName checks an already trimmed, non-empty file name
func ValidateFileName(name string) error {
	if len(name) > 255 {
		return ErrNameTooLong
	}
	if strings.ContainsRune(name, 0) {
		return errors.New("name contains invalid characters")
	}
	return nil
}
