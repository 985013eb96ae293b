package portalapi

import (
	"errors"
	"fmt"
)

// ErrNetworkUnreachable wraps transport-level failures: DNS, refused
// connections, timeouts. The server never saw the request.
var ErrNetworkUnreachable = errors.New("network unreachable")

// ErrMalformedResponse marks a response the server produced but this
// client could not make sense of (bad JSON, missing required fields).
var ErrMalformedResponse = errors.New("malformed server response")

// ServerRejectedError carries a non-2xx status and the server-provided
// error message, when one was present in the body.
type ServerRejectedError struct {
	Status  int
	Message string
}

func (e *ServerRejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server rejected request (status %d)", e.Status)
	}
	return fmt.Sprintf("server rejected request (status %d): %s", e.Status, e.Message)
}
