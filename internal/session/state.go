// Package session owns the client-side authentication lifecycle: the
// persisted credential, the derived identity, and the state machine that
// takes the application from unknown to anonymous or authenticated.
//
// The Store is a dumb state holder; all transitions go through the
// Controller. View code reads the Store (or subscribes to it) and never
// touches durable storage directly.
package session

import "time"

// Phase is the lifecycle state of the session.
type Phase int

const (
	// PhaseUnknown is the initial state, before startup validation has
	// completed. The UI must not render identity-dependent views yet.
	PhaseUnknown Phase = iota
	// PhaseAnonymous means no valid identity is present.
	PhaseAnonymous
	// PhaseAuthenticated means a validated identity is present.
	PhaseAuthenticated
)

func (p Phase) String() string {
	switch p {
	case PhaseAnonymous:
		return "anonymous"
	case PhaseAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Identity is the merged view of decoded-token claims and the fetched
// profile record: "who is logged in". The claims are authoritative for
// Subject, Role and the timestamps; the profile record is the freshest
// source for display fields.
type Identity struct {
	Subject     string
	Role        string
	UserName    string
	Email       string
	DateOfBirth string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// IsAdmin reports whether the identity carries the admin role claim.
func (i Identity) IsAdmin() bool {
	return i.Role == "admin"
}

// Snapshot is one observable state of the session: the phase plus the
// identity when authenticated.
type Snapshot struct {
	Phase    Phase
	Identity *Identity
}
