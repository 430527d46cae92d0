package quote

import "errors"

var (
	ErrNotFound          = errors.New("quote not found")
	ErrForbidden         = errors.New("not a participant of this quote")
	ErrInvalidTransition = errors.New("invalid quote state transition")
	ErrValidation        = errors.New("validation error")
)
