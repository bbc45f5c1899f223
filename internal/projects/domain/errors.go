package domain

import "errors"

var (
	ErrNotFound       = errors.New("project not found")
	ErrSubdomainTaken = errors.New("subdomain already exists")
	ErrHostnameTaken  = errors.New("custom hostname already exists")
)

// ValidationError marks user-correctable input problems on project creation.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func NewValidationError(reason string) error {
	return &ValidationError{Reason: reason}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConflict reports whether err is a uniqueness conflict on either
// routing key.
func IsConflict(err error) bool {
	return errors.Is(err, ErrSubdomainTaken) || errors.Is(err, ErrHostnameTaken)
}
