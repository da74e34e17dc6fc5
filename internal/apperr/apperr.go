// Package apperr holds the error kinds shared by all fitassist components.
// Every error returned by a store or service wraps exactly one kind, so
// callers branch with errors.Is(err, apperr.ErrNotFound) and friends.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidInput - malformed or out-of-range argument (non-positive height, negative progress).
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidRange - date ordering violation.
	ErrInvalidRange = errors.New("invalid range")
	// ErrNotFound - referenced entity absent.
	ErrNotFound = errors.New("not found")
	// ErrStore - underlying store operation failed.
	ErrStore = errors.New("store error")
	// ErrCollaborator - AI assistant or document renderer failed.
	ErrCollaborator = errors.New("collaborator error")
)

type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Msg, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s", e.Kind, e.Err)
	default:
		return e.Kind.Error()
	}
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// New builds a kind-wrapping sentinel, e.g. a package level ErrXNotFound.
func New(kind error, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

func InvalidInput(format string, args ...any) error {
	return &Error{Kind: ErrInvalidInput, Msg: fmt.Sprintf(format, args...)}
}

func InvalidRange(format string, args ...any) error {
	return &Error{Kind: ErrInvalidRange, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Msg: fmt.Sprintf(format, args...)}
}

// Store wraps a failed store operation; a nil err stays nil.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: ErrStore, Msg: op, Err: err}
}

// Collaborator wraps a failed external collaborator call; a nil err stays nil.
func Collaborator(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: ErrCollaborator, Msg: op, Err: err}
}

// HTTPStatus maps an error kind to the response status used by the handlers.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidRange):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrCollaborator):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
