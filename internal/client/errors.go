package client

import (
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
)

var (
	// ErrDocumentNotFound is returned by DocumentClient.Get for a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrMalformedResult marks inference output that could not be decoded.
	ErrMalformedResult = errors.New("malformed inference result")
)

// Error is any failure of a hosted collaborator: transport error, non-2xx
// status, or an unusable response body. Callers show a generic message and let
// the user retry; nothing here retries on its own.
type Error struct {
	Service    string
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s %s: status %d: %s", e.Service, e.Op, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s %s: %s", e.Service, e.Op, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// IsCollaboratorError reports whether err came from a collaborator client.
func IsCollaboratorError(err error) bool {
	var ce *Error
	return errors.As(err, &ce)
}

// callError builds an *Error from a resty call outcome. It returns nil when the
// call succeeded with a 2xx status.
func callError(service, op string, resp *resty.Response, err error, message func() string) error {
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode()
		}
		return &Error{Service: service, Op: op, StatusCode: status, Err: err}
	}
	if resp.IsError() {
		msg := ""
		if message != nil {
			msg = message()
		}
		if msg == "" {
			msg = resp.Status()
		}
		return &Error{Service: service, Op: op, StatusCode: resp.StatusCode(), Message: msg}
	}
	return nil
}
