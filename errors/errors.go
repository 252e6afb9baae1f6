package errors

import "fmt"

var (
	// Pipeline taxonomy. Forbidden and NotFound are reported to the
	// originating session only and never mutate state.
	ErrNotFound  = fmt.Errorf("conversation not found")
	ErrForbidden = fmt.Errorf("not a participant of this conversation")
	ErrStorage   = fmt.Errorf("storage failure")
	ErrProvider  = fmt.Errorf("provider failure")

	ErrEmptyContent = fmt.Errorf("message content is empty")

	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity rules")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")

	ErrWorkerPanic = fmt.Errorf("worker panic")
)
