package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy of the access layer. Transport failures never cross this
// boundary raw: the store and repositories convert everything into one of
// these before authentication or trial logic sees it.
var (
	// ErrNotFound is a credential or lookup miss. Callers must render a
	// generic invalid-credentials message and never distinguish a missing
	// username from a wrong password.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidCredentials is what the service layer surfaces for any
	// failed login, regardless of cause.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrDuplicateUsername is a registration conflict, surfaced distinctly
	// from write failures.
	ErrDuplicateUsername = errors.New("username already exists")

	// ErrWriteFailed wraps any failed append or overwrite. Writes have no
	// fallback path and no partial effect.
	ErrWriteFailed = errors.New("store write failed")
)

// TrialExpiredError blocks session establishment after a successful
// credential match. It is not an authentication failure: callers render the
// overdue day count instead of a generic error.
type TrialExpiredError struct {
	DaysOverdue int
}

func (e *TrialExpiredError) Error() string {
	return fmt.Sprintf("trial expired %d days ago", e.DaysOverdue)
}
