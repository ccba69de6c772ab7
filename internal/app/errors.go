package app

import "errors"

// ValidationError is bad or missing caller input. Message is safe to show to the user.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	ErrInvalidInput     error = &ValidationError{Message: "Username, email and password are required."}
	ErrPasswordMismatch error = &ValidationError{Field: "confirm_password", Message: "Passwords do not match."}
	ErrUsernameExists   error = &ValidationError{Field: "username", Message: "Username already exists."}
	ErrEmailExists      error = &ValidationError{Field: "email", Message: "Email already registered."}

	ErrTitleRequired   error = &ValidationError{Field: "title", Message: "title is required"}
	ErrInvalidStatus   error = &ValidationError{Field: "status", Message: "invalid status"}
	ErrInvalidDueDate  error = &ValidationError{Field: "due_date", Message: "invalid due_date format"}
	ErrInvalidPriority error = &ValidationError{Field: "priority", Message: "priority must be an integer"}
	ErrInvalidPayload  error = &ValidationError{Message: "invalid request payload"}
)

var (
	ErrInvalidCredential = errors.New("invalid username or password")
	ErrTaskNotFound      = errors.New("task not found")
)

// IsValidation reports whether err carries a ValidationError and returns it.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
