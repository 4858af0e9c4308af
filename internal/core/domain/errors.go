package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy. Every operational error wraps one of these so the HTTP
// layer can map it onto a status and code with errors.Is.
var (
	ErrUnauthenticated   = errors.New("authentication required")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("resource not found")
	ErrConflict          = errors.New("conflict")
	ErrInvalidState      = errors.New("invalid state for this operation")
	ErrValidation        = errors.New("invalid input")
	ErrEngineUnavailable = errors.New("comparison engine unavailable")
)

// Auth errors
var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)
	ErrUserInactive       = fmt.Errorf("%w: user account is inactive", ErrForbidden)
	ErrTokenExpired       = fmt.Errorf("%w: token expired", ErrUnauthenticated)
	ErrTokenInvalid       = fmt.Errorf("%w: token invalid", ErrUnauthenticated)
	ErrTokenRevoked       = fmt.Errorf("%w: token revoked", ErrUnauthenticated)
)

// Registry and ledger errors
var (
	ErrArtifactNotFound = fmt.Errorf("%w: artifact", ErrNotFound)
	ErrArtifactOnLoan   = fmt.Errorf("%w: artifact has an open loan", ErrConflict)
	ErrArtifactNoTaken  = fmt.Errorf("%w: artifact number already registered", ErrConflict)
	ErrBorrowNotFound   = fmt.Errorf("%w: borrow record", ErrNotFound)
	ErrBorrowOpenExists = fmt.Errorf("%w: artifact already has an open loan", ErrConflict)
	ErrBorrowNotOpen    = fmt.Errorf("%w: borrow record is not open", ErrInvalidState)
	ErrAlreadyReturned  = fmt.Errorf("%w: borrow record already returned", ErrInvalidState)
	ErrReturnNotFound   = fmt.Errorf("%w: return record", ErrNotFound)
)

// User errors
var (
	ErrUserNotFound      = fmt.Errorf("%w: user", ErrNotFound)
	ErrUserAlreadyExists = fmt.Errorf("%w: username already taken", ErrConflict)
	ErrSelfDeletion      = fmt.Errorf("%w: cannot delete own account", ErrValidation)
)

// Validationf builds a field-level validation error
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
