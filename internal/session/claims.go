package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Credential is the locally decoded view of the bearer token: subject,
// role and the issued-at/expiry pair.
type Credential struct {
	Subject   string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// DecodeCredential decodes the token without verifying its signature.
// Signature verification is the server's job on every request; the
// client only needs the embedded claims. Expiry is NOT checked here —
// the Controller checks it against its own clock.
func DecodeCredential(raw string) (Credential, error) {
	var claims tokenClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, &claims); err != nil {
		return Credential{}, fmt.Errorf("decode token: %w", err)
	}
	if claims.Subject == "" {
		return Credential{}, fmt.Errorf("token missing sub claim")
	}
	if claims.ExpiresAt == nil {
		return Credential{}, fmt.Errorf("token missing exp claim")
	}

	cred := Credential{
		Subject:   claims.Subject,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		cred.IssuedAt = claims.IssuedAt.Time
	}
	return cred, nil
}
