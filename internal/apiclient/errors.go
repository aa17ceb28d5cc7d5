package apiclient

import (
	"errors"
	"fmt"
)

// GenericFailure is shown when the server gives no usable message.
const GenericFailure = "Une erreur est survenue. Veuillez réessayer."

// RejectedError means the call completed but the server refused it: an
// HTTP error status or an envelope with success other than true.
type RejectedError struct {
	Status  int
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api rejected request (status %d)", e.Status)
	}
	return fmt.Sprintf("api rejected request (status %d): %s", e.Status, e.Message)
}

// TransportError means the request never produced a usable response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// UserMessage turns any client error into the text shown to the end user:
// the server message when there is one, the generic fallback otherwise.
func UserMessage(err error) string {
	var rej *RejectedError
	if errors.As(err, &rej) && rej.Message != "" {
		return rej.Message
	}
	return GenericFailure
}
