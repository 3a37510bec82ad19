// Package apperrors defines the business error taxonomy. Services raise these
// at the point of detection; the HTTP boundary translates them into structured
// error responses.
package apperrors

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindBadRequest Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
)

// Error carries a short title and a human-readable detail alongside its kind.
type Error struct {
	Kind   Kind
	Title  string
	Detail string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Title + ": " + e.Detail
	}
	return e.Title
}

// StatusCode maps the error kind onto its HTTP status category.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func BadRequest(title, detail string) *Error {
	return &Error{Kind: KindBadRequest, Title: title, Detail: detail}
}

func Unauthorized(title, detail string) *Error {
	return &Error{Kind: KindUnauthorized, Title: title, Detail: detail}
}

func Forbidden(title, detail string) *Error {
	return &Error{Kind: KindForbidden, Title: title, Detail: detail}
}

func NotFound(title, detail string) *Error {
	return &Error{Kind: KindNotFound, Title: title, Detail: detail}
}

// As unwraps err into an *Error if it is one.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}
