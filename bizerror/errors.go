package bizerror

import "errors"

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidPassword = errors.New("invalid password")

	// permission resolution
	ErrUnrecognizedClaim = errors.New("unrecognized external claim")
	ErrUnknownIdentity   = errors.New("unknown identity")

	// approval routing
	ErrUnknownStatusCode      = errors.New("unknown status code")
	ErrIllegalTransition      = errors.New("illegal status transition")
	ErrNotAuthorized          = errors.New("not authorized to approve")
	ErrRequestNotFound        = errors.New("replenishment request not found")
	ErrConcurrentModification = errors.New("request modified concurrently")
	ErrUnsupportedMethod      = errors.New("unsupported request method")
)
