package service

import "errors"

var (
	ErrValidation   = errors.New("validation")   // 400
	ErrUnauthorized = errors.New("unauthorized") // 401
	ErrForbidden    = errors.New("forbidden")    // 403
	ErrNotFound     = errors.New("not found")    // 404
	ErrConflict     = errors.New("conflict")     // 400, duplicate state
)

// Error carries a user-facing message on top of one of the sentinel kinds, so
// handlers can match the kind with errors.Is and still return the message as-is.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }
func (e *Error) Unwrap() error { return e.kind }

func Invalid(msg string) error      { return &Error{kind: ErrValidation, msg: msg} }
func Unauthorized(msg string) error { return &Error{kind: ErrUnauthorized, msg: msg} }
func Forbidden(msg string) error    { return &Error{kind: ErrForbidden, msg: msg} }
func NotFound(msg string) error     { return &Error{kind: ErrNotFound, msg: msg} }
func Conflict(msg string) error     { return &Error{kind: ErrConflict, msg: msg} }
