package auth

import (
	"context"
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/memberhub/memberhub/internal/config"
)

// ErrInvalidCredentials is returned for unknown members and password
// mismatches alike, so callers cannot tell the two apart.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service authenticates members and issues session tokens.
type Service struct {
	cfg  config.Config
	repo Repository
}

// NewService creates an auth service.
func NewService(cfg config.Config, repo Repository) *Service {
	return &Service{cfg: cfg, repo: repo}
}

// Authenticate verifies a member's password and returns the credential row.
func (s *Service) Authenticate(ctx context.Context, memberID int, password string) (Login, error) {
	login, err := s.repo.FindByMemberID(ctx, memberID)
	if err != nil {
		return Login{}, ErrInvalidCredentials
	}
	if !verifyPassword(login.PasswordHash, password) {
		return Login{}, ErrInvalidCredentials
	}
	return login, nil
}

// CreateLogin hashes the password with bcrypt and stores a credential row.
func (s *Service) CreateLogin(ctx context.Context, memberID int, password, role string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.Create(ctx, Login{MemberID: memberID, PasswordHash: string(hash), Role: role})
}

// verifyPassword checks the provided password against the stored hash.
// Bcrypt is the current scheme; 32-char hex rows are legacy MD5 hashes
// imported from the old club database and still verify until rotated.
func verifyPassword(stored, provided string) bool {
	if strings.HasPrefix(stored, "$2") && len(stored) == 60 {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(provided)) == nil
	}
	if len(stored) == 32 {
		if _, err := hex.DecodeString(stored); err == nil {
			sum := md5.Sum([]byte(provided))
			candidate := hex.EncodeToString(sum[:])
			return subtle.ConstantTimeCompare([]byte(candidate), []byte(strings.ToLower(stored))) == 1
		}
	}
	return false
}
