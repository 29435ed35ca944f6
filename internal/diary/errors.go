package diary

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrEntryNotFound    = errors.New("entry not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrInvalidBackup    = errors.New("invalid backup")
	ErrDiaryUnavailable = errors.New("diary unavailable")
)

// ValidationError reports rejected user input. The store is left unchanged.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
