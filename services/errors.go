package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Error kinds returned by the service layer. Handlers and CLI commands map
// these to HTTP statuses and exit messages with errors.Is; the wrapped detail
// text travels with the error.
var (
	ErrValidation  = errors.New("validation failed")
	ErrStorage     = errors.New("storage operation failed")
	ErrPersistence = errors.New("database operation failed")
	ErrNotFound    = errors.New("not found")
)

func validationError(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, a...))
}

func storageError(err error) error {
	return fmt.Errorf("%w: %v", ErrStorage, err)
}

func persistenceError(err error) error {
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}

func notFoundError(entity string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, entity)
	}
	return persistenceError(err)
}

// FormatErrorForUser converts technical errors to user-friendly messages
// This should only be called at the handler or CLI boundary
func FormatErrorForUser(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrValidation):
		// Validation messages are written for humans already
		return strings.TrimPrefix(err.Error(), ErrValidation.Error()+": ")
	case errors.Is(err, ErrNotFound):
		return strings.TrimPrefix(err.Error(), ErrNotFound.Error()+": ") + " not found"
	case errors.Is(err, ErrStorage):
		return "file storage failed - please try again"
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "unique constraint"):
		return "this entry already exists"
	case strings.Contains(errStr, "record not found"):
		return "record not found"
	case strings.Contains(errStr, "connection"):
		return "database connection failed"
	case strings.Contains(errStr, "timeout"):
		return "operation timed out"
	default:
		return "an unexpected error occurred"
	}
}
