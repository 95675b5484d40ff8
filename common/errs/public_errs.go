package errs

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/errors/withstack"
)

// PublicError is an error that, when caught by error handler, should return a user-friendly error response to the user.
// Responses vary between each protocol (http, grpc, etc.).
type PublicError struct {
	err     error
	message string
	status  int // status is optional, http status code, default is 400
}

func (p PublicError) Error() string {
	return p.err.Error()
}

func (p PublicError) Message() string {
	return p.message
}

// Status returns the http status code of the error. Defaults to 400 Bad Request.
func (p PublicError) Status() int {
	if p.status == 0 {
		return http.StatusBadRequest
	}
	return p.status
}

func (p PublicError) Unwrap() error {
	return p.err
}

func NewPublicError(message string) error {
	return withstack.WithStackDepth(&PublicError{err: errors.New(message), message: message}, 1)
}

// NewPublicErrorWithStatus returns a public error that is rendered with the given http status code.
func NewPublicErrorWithStatus(message string, status int) error {
	return withstack.WithStackDepth(&PublicError{err: errors.New(message), message: message, status: status}, 1)
}

// WithPublicStatus marks err as public with the given message and http status code.
// The original error is kept for errors.Is and errors.As.
func WithPublicStatus(err error, message string, status int) error {
	if err == nil {
		return nil
	}
	return withstack.WithStackDepth(&PublicError{err: err, message: message, status: status}, 1)
}

func WithPublicMessage(err error, prefix string) error {
	if err == nil {
		return nil
	}
	var message string
	if prefix != "" {
		message = fmt.Sprintf("%s: %s", prefix, err.Error())
	} else {
		message = err.Error()
	}
	return withstack.WithStackDepth(&PublicError{err: err, message: message}, 1)
}
