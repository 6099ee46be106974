// Package worker holds the queue handlers run by cmd/worker.
package worker

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrMissingUserID = errors.New("Missing userId")
	ErrMissingFileID = errors.New("Missing fileId")
	ErrInvalidUserID = errors.New("Invalid userId")
	ErrInvalidFileID = errors.New("Invalid fileId")
	ErrFileNotFound  = errors.New("File not found")
	ErrUserNotFound  = errors.New("User not found")
)

func checkID(id string, missing, malformed error) error {
	if id == "" {
		return missing
	}
	if _, err := uuid.Parse(id); err != nil {
		return malformed
	}
	return nil
}
