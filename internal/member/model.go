package member

import "errors"

// ErrNotFound is returned when no member row matches the requested ID.
var ErrNotFound = errors.New("member not found")

// Record is a member profile as it travels on the wire. The JSON keys
// (ID, UserName, emailID, DoB) are part of the public API contract and
// predate this service; do not rename them.
type Record struct {
	ID       int    `json:"ID"`
	UserName string `json:"UserName"`
	EmailID  string `json:"emailID"`
	DoB      string `json:"DoB"`
}

// Patch carries a partial update for a member record. Nil fields are
// left untouched.
type Patch struct {
	UserName *string `json:"UserName,omitempty"`
	EmailID  *string `json:"emailID,omitempty"`
	DoB      *string `json:"DoB,omitempty"`
}

// Empty reports whether the patch would change nothing.
func (p Patch) Empty() bool {
	return p.UserName == nil && p.EmailID == nil && p.DoB == nil
}
