package errors

import (
	stderr "errors"
	"fmt"
)

// AppError is the base application error: an id for logs, a human-readable
// message and an optional cause chain.
type AppError struct {
	Id      string `json:"id"`
	Message string `json:"message"`
	cause   error
}

type Option func(*AppError)

func WithCause(err error) Option {
	return func(e *AppError) { e.cause = err }
}

func WithId(id string) Option {
	return func(e *AppError) { e.Id = id }
}

func New(message string, opts ...Option) *AppError {
	e := &AppError{Id: "app.error", Message: message}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func Internal(message string, opts ...Option) *AppError {
	return New(message, append([]Option{WithId("app.internal")}, opts...)...)
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.cause }

// Stdlib passthroughs so callers import a single errors package.
func Is(err, target error) bool     { return stderr.Is(err, target) }
func As(err error, target any) bool { return stderr.As(err, target) }
func Join(errs ...error) error      { return stderr.Join(errs...) }
func Unwrap(err error) error        { return stderr.Unwrap(err) }
