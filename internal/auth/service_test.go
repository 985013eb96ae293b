package auth

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/memberhub/memberhub/internal/config"
)

func testConfig() config.Config {
	return config.Config{JWTSecret: "test-secret", TokenTTL: time.Hour}
}

func seedLogin(t *testing.T, repo Repository, memberID int, password, role string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if err := repo.Create(context.Background(), Login{MemberID: memberID, PasswordHash: string(hash), Role: role}); err != nil {
		t.Fatalf("seed login: %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(testConfig(), repo)
	seedLogin(t, repo, 42, "hunter2", "member")

	login, err := svc.Authenticate(context.Background(), 42, "hunter2")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if login.MemberID != 42 || login.Role != "member" {
		t.Fatalf("unexpected login: %+v", login)
	}
}

func TestAuthenticateWrongPassword(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(testConfig(), repo)
	seedLogin(t, repo, 42, "hunter2", "member")

	if _, err := svc.Authenticate(context.Background(), 42, "nope"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticateUnknownMember(t *testing.T) {
	svc := NewService(testConfig(), NewMemoryRepository())

	if _, err := svc.Authenticate(context.Background(), 99, "pw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticateLegacyMD5Hash(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(testConfig(), repo)
	sum := md5.Sum([]byte("oldpassword"))
	if err := repo.Create(context.Background(), Login{MemberID: 7, PasswordHash: hex.EncodeToString(sum[:]), Role: "member"}); err != nil {
		t.Fatalf("seed legacy login: %v", err)
	}

	if _, err := svc.Authenticate(context.Background(), 7, "oldpassword"); err != nil {
		t.Fatalf("legacy hash must still verify: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), 7, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestCreateLoginHashesPassword(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(testConfig(), repo)

	if err := svc.CreateLogin(context.Background(), 5, "changeme123", "member"); err != nil {
		t.Fatalf("create login: %v", err)
	}
	login, err := repo.FindByMemberID(context.Background(), 5)
	if err != nil {
		t.Fatalf("find login: %v", err)
	}
	if login.PasswordHash == "changeme123" {
		t.Fatal("password stored in plain text")
	}
	if _, err := svc.Authenticate(context.Background(), 5, "changeme123"); err != nil {
		t.Fatalf("authenticate with default password: %v", err)
	}
}

func TestIssueAndVerifyToken(t *testing.T) {
	svc := NewService(testConfig(), NewMemoryRepository())

	token, err := svc.IssueToken(Login{MemberID: 42, Role: "admin"})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	claims, err := svc.VerifyToken(token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if claims.Subject != "42" || claims.Role != "admin" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	memberID, err := claims.MemberID()
	if err != nil || memberID != 42 {
		t.Fatalf("expected member 42, got %d (%v)", memberID, err)
	}
	ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	if ttl != time.Hour {
		t.Fatalf("expected 1h ttl, got %s", ttl)
	}
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	svc := NewService(testConfig(), NewMemoryRepository())
	token, err := svc.IssueToken(Login{MemberID: 42, Role: "member"})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	if _, err := VerifyToken(token, "other-secret"); err == nil {
		t.Fatal("expected verification failure with wrong secret")
	}
}

func TestVerifyTokenExpired(t *testing.T) {
	cfg := testConfig()
	cfg.TokenTTL = -time.Minute
	svc := NewService(cfg, NewMemoryRepository())
	token, err := svc.IssueToken(Login{MemberID: 42, Role: "member"})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	if _, err := svc.VerifyToken(token); err == nil {
		t.Fatal("expected verification failure for expired token")
	}
}
