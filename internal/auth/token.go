package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the session token payload: subject (member ID) and role,
// plus the registered iat/exp pair.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 session token for the given credential row.
func (s *Service) IssueToken(login Login) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		Role: login.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(login.MemberID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken validates signature and expiry and returns the claims.
func (s *Service) VerifyToken(raw string) (Claims, error) {
	return VerifyToken(raw, s.cfg.JWTSecret)
}

// VerifyToken validates a session token against the signing secret.
func VerifyToken(raw, secret string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return Claims{}, fmt.Errorf("verify token: %w", err)
	}
	if claims.Subject == "" {
		return Claims{}, errors.New("token missing subject")
	}
	return claims, nil
}

// MemberID parses the numeric subject claim.
func (c Claims) MemberID() (int, error) {
	return strconv.Atoi(c.Subject)
}
