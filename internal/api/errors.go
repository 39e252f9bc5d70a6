package api

import (
	"fmt"
	"net/http"

	perrors "github.com/worksdev/portal/internal/errors"
)

const (
	// HeaderErrorMessage carries a user-facing error description.
	HeaderErrorMessage = "Works-Error-Message"
	// HeaderEmailSent is present when the API emailed the user about the failure.
	HeaderEmailSent = "Works-Email-Sent"

	// DefaultErrorMessage is used when HeaderErrorMessage is absent.
	DefaultErrorMessage = "Respuesta inesperada"
)

// BadResponseError is a non-2xx answer from the API.
type BadResponseError struct {
	Status    int
	Message   string
	EmailSent bool
	Method    string
	Path      string
}

func newBadResponseError(resp *http.Response) *BadResponseError {
	msg := resp.Header.Get(HeaderErrorMessage)
	if msg == "" {
		msg = DefaultErrorMessage
	}
	_, emailSent := resp.Header[http.CanonicalHeaderKey(HeaderEmailSent)]

	e := &BadResponseError{
		Status:    resp.StatusCode,
		Message:   msg,
		EmailSent: emailSent,
	}
	if resp.Request != nil {
		e.Method = resp.Request.Method
		e.Path = resp.Request.URL.Path
	}
	return e
}

func (e *BadResponseError) Error() string {
	if e.Method == "" {
		return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("%s (HTTP %d from %s %s)", e.Message, e.Status, e.Method, e.Path)
}

// Is matches ErrRemoteRejected, and ErrSessionExpired for 401 answers.
func (e *BadResponseError) Is(target error) bool {
	switch target {
	case perrors.ErrRemoteRejected:
		return true
	case perrors.ErrSessionExpired:
		return e.Status == http.StatusUnauthorized
	default:
		return false
	}
}
