package service

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/lalith-99/tasklane/internal/repository"
)

// Kind classifies a failure by how the client should see it.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindForbidden
	KindQuotaExceeded
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindQuotaExceeded:
		return "quota_exceeded"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is returned by every service method for failures the caller caused.
// Message is safe to show to clients. Err, when set, is the underlying
// cause and is only ever logged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func validationError(msg string) *Error { return newError(KindValidation, msg) }
func authError(msg string) *Error       { return newError(KindAuth, msg) }
func forbiddenError(msg string) *Error  { return newError(KindForbidden, msg) }
func notFoundError(msg string) *Error   { return newError(KindNotFound, msg) }

// KindOf returns the kind of err, or KindInternal if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// StatusCode maps err to the HTTP status the api layer responds with.
func StatusCode(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden, KindQuotaExceeded:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the text sent to clients. Internal errors never expose
// their cause.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "Internal server error"
}

// mapRepoError converts the repository sentinels into typed errors. conflict
// is the message used for unique violations; anything unrecognized is
// returned unchanged and ends up as an internal error.
func mapRepoError(err error, conflict string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrQuotaExceeded):
		return &Error{Kind: KindQuotaExceeded, Message: "plan limit reached", Err: err}
	case errors.Is(err, repository.ErrPlanNotFound):
		return &Error{Kind: KindNotFound, Message: "Tenant or plan not found", Err: err}
	case errors.Is(err, repository.ErrConflict):
		return &Error{Kind: KindConflict, Message: conflict, Err: err}
	case errors.Is(err, repository.ErrNotFound):
		return &Error{Kind: KindNotFound, Message: "not found", Err: err}
	}
	return err
}
