package gigerrors

import "errors"

// Repository-level errors
var (
	ErrUserNotFound = errors.New("user not found")
	ErrGigNotFound  = errors.New("gig not found")
	ErrBidNotFound  = errors.New("bid not found")
	ErrEmailTaken   = errors.New("email already in use")

	// ErrGigNotOpen is returned when a conditional update on a gig matched no open row.
	ErrGigNotOpen = errors.New("gig is not open")
	// ErrBidNotPending is returned when a conditional update on a bid matched no pending row.
	ErrBidNotPending = errors.New("bid is not pending")
)

// business logic errors
var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidState       = errors.New("invalid state")
)

// IsNotFound reports whether err is one of the entity-not-found errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrGigNotFound) || errors.Is(err, ErrBidNotFound)
}
