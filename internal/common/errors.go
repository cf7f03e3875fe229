// Package common defines shared constants and sentinel errors used across
// server and client layers of gophauth. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound        = errors.New("not found")
	ErrDuplicateIdentity = errors.New("username or email already exists")

	// Service-level errors.
	ErrorInternal         = errors.New("internal error")
	ErrMissingField       = errors.New("missing field")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserGone is returned when a valid token refers to a user that no
	// longer exists.
	ErrUserGone = fmt.Errorf("%w: user gone", ErrorNotFound)

	// Token errors. Every kind matches ErrInvalidToken.
	ErrInvalidToken      = errors.New("invalid token")
	ErrTokenMalformed    = fmt.Errorf("%w: malformed", ErrInvalidToken)
	ErrTokenBadSignature = fmt.Errorf("%w: bad signature", ErrInvalidToken)
	ErrTokenExpired      = fmt.Errorf("%w: expired", ErrInvalidToken)
)

// FieldError reports a required field that is absent or blank.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return e.Field + " is required"
}

// Unwrap makes FieldError match ErrMissingField.
func (e *FieldError) Unwrap() error {
	return ErrMissingField
}
