package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrNoCredential is returned by Vault.Load when the slot is empty.
var ErrNoCredential = errors.New("no persisted credential")

// Vault is durable storage for the session credential: a single named
// slot holding the raw token string. Presence or absence is the only
// schema.
type Vault interface {
	Load() (string, error)
	Save(token string) error
	// Clear removes the slot. Clearing an empty vault is not an error.
	Clear() error
}

// FileVault stores the token in a file under the user's config
// directory, readable only by the owner.
type FileVault struct {
	path string
}

// DefaultVaultPath returns the conventional token location, e.g.
// ~/.config/memberhub/session_token.
func DefaultVaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "memberhub", "session_token"), nil
}

// NewFileVault creates a file-backed vault at the given path.
func NewFileVault(path string) *FileVault {
	return &FileVault{path: path}
}

// Load reads the stored token. A missing or empty file means no credential.
func (v *FileVault) Load() (string, error) {
	raw, err := os.ReadFile(v.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoCredential
		}
		return "", fmt.Errorf("read credential: %w", err)
	}
	token := strings.TrimSpace(string(raw))
	if token == "" {
		return "", ErrNoCredential
	}
	return token, nil
}

// Save overwrites the slot with the given token.
func (v *FileVault) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(v.path), 0o700); err != nil {
		return fmt.Errorf("create vault dir: %w", err)
	}
	if err := os.WriteFile(v.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("write credential: %w", err)
	}
	return nil
}

// Clear removes the slot. Idempotent.
func (v *FileVault) Clear() error {
	if err := os.Remove(v.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove credential: %w", err)
	}
	return nil
}

// MemoryVault is an in-memory Vault for tests.
type MemoryVault struct {
	mu    sync.Mutex
	token string
	set   bool
}

// NewMemoryVault creates an empty in-memory vault.
func NewMemoryVault() *MemoryVault {
	return &MemoryVault{}
}

func (v *MemoryVault) Load() (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.set {
		return "", ErrNoCredential
	}
	return v.token, nil
}

func (v *MemoryVault) Save(token string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.token = token
	v.set = true
	return nil
}

func (v *MemoryVault) Clear() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.token = ""
	v.set = false
	return nil
}
