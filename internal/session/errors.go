package session

import (
	"errors"

	"github.com/memberhub/memberhub/internal/portalapi"
)

var (
	// ErrInvalidOrExpiredCredential marks a persisted token that failed
	// local decode, was past expiry, or could not be verified upstream.
	ErrInvalidOrExpiredCredential = errors.New("invalid or expired credential")

	// ErrLoginInFlight is returned when a second login is attempted
	// while one is still outstanding.
	ErrLoginInFlight = errors.New("another login is already in progress")

	// ErrSuperseded is returned when an operation's result was discarded
	// because a logout (or a newer login) happened while it was in flight.
	ErrSuperseded = errors.New("session operation superseded")
)

// DisplayMessage maps a lifecycle failure to user-displayable text: the
// server-provided message when one exists, otherwise a generic
// classification. Never exposes internals.
func DisplayMessage(err error) string {
	var rejected *portalapi.ServerRejectedError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &rejected) && rejected.Message != "":
		return rejected.Message
	case errors.Is(err, portalapi.ErrNetworkUnreachable):
		return "cannot reach the server, please check your connection"
	case errors.Is(err, portalapi.ErrMalformedResponse):
		return "the server returned an unexpected response"
	case errors.Is(err, ErrInvalidOrExpiredCredential):
		return "your session has expired, please log in again"
	case errors.Is(err, ErrLoginInFlight):
		return "a login attempt is already in progress"
	default:
		return "an unexpected error occurred, please try again"
	}
}
