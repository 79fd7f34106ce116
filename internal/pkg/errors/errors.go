package errors

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalid      = errors.New("invalid")
	ErrConflict     = errors.New("conflict")
	ErrTooMany      = errors.New("too many requests")
	ErrInternal     = errors.New("internal")
	// ErrInputRejected marks caller input refused before any processing.
	ErrInputRejected = errors.New("input rejected")
	// ErrUpstream marks failures of the database, blob store or completion service.
	ErrUpstream = errors.New("upstream unavailable")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

func IsUpstream(err error) bool {
	return errors.Is(err, ErrUpstream)
}

// InputError is an ErrInputRejected carrying a message safe to show users.
type InputError struct {
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

func (e *InputError) Unwrap() error {
	return ErrInputRejected
}

func Reject(message string) error {
	return &InputError{Message: message}
}
