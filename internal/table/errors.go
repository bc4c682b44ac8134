package table

import (
	"errors"
	"fmt"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrNotEditing     = errors.New("no row is being edited")
	ErrGateClosed     = errors.New("delete confirmation is not open")
	ErrStaleResponse  = errors.New("response superseded by a newer request")
)

// ValidationError is a client-side rejection. It never reaches the network.
type ValidationError struct {
	Label   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(label, format string, args ...any) *ValidationError {
	return &ValidationError{Label: label, Message: fmt.Sprintf(format, args...)}
}

// RemoteError is a rejection reported by the backend. Message is shown to
// the user verbatim when present.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote returned status %d", e.Status)
	}
	return fmt.Sprintf("remote returned status %d: %s", e.Status, e.Message)
}

// IsValidation reports whether err is a client-side validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
