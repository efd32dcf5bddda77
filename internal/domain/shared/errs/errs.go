// Package errs defines the error kinds shared by every domain package.
// Domain sentinels are built with the constructors below so callers can
// classify any failure with errors.Is(err, errs.ErrConflict) and friends.
package errs

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrAuthorization     = errors.New("not authorized")
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("invalid state transition")
)

// Error carries a message under one of the kinds above.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Kind }

func NotFound(msg string) error          { return &Error{Kind: ErrNotFound, Msg: msg} }
func Authorization(msg string) error     { return &Error{Kind: ErrAuthorization, Msg: msg} }
func Validation(msg string) error        { return &Error{Kind: ErrValidation, Msg: msg} }
func Conflict(msg string) error          { return &Error{Kind: ErrConflict, Msg: msg} }
func InvalidTransition(msg string) error { return &Error{Kind: ErrInvalidTransition, Msg: msg} }

// KindOf returns the kind of err, or nil when err is not classified.
func KindOf(err error) error {
	for _, kind := range []error{ErrNotFound, ErrAuthorization, ErrValidation, ErrConflict, ErrInvalidTransition} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
