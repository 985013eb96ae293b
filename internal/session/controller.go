package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/memberhub/memberhub/internal/member"
)

// API is the slice of the backend the lifecycle needs: credential
// exchange and the authenticated profile fetch. The bearer header on
// FetchProfile is added by the transport, not here.
type API interface {
	ExchangeCredentials(ctx context.Context, user, password string) (string, error)
	FetchProfile(ctx context.Context) (member.Record, error)
}

// Controller orchestrates the session state machine. It is the only
// component allowed to call the auth/profile API and to mutate the Store.
//
// Network calls are suspend points: other triggers (a second login click,
// a logout) may interleave while one is outstanding. The controller
// serializes them with an in-flight guard and an epoch counter; a result
// arriving for a stale epoch is discarded.
type Controller struct {
	api    API
	store  *Store
	now    func() time.Time
	logger *slog.Logger

	mu            sync.Mutex
	epoch         uint64
	loginInFlight bool
}

// Option customizes a Controller.
type Option func(*Controller)

// WithClock injects the time source used for the local expiry check.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// NewController creates a Controller bound to the given API and Store.
func NewController(api API, store *Store, opts ...Option) *Controller {
	c := &Controller{
		api:    api,
		store:  store,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Startup validates any persisted credential and settles the session in
// anonymous or authenticated. Failures are recovered locally and never
// surfaced; the caller observes the outcome through the Store.
func (c *Controller) Startup(ctx context.Context) {
	c.revalidate(ctx)
}

// Revalidate re-runs startup validation. Downstream callers invoke it
// when an authenticated request comes back with a 401-class response.
func (c *Controller) Revalidate(ctx context.Context) {
	c.revalidate(ctx)
}

func (c *Controller) revalidate(ctx context.Context) {
	epoch := c.currentEpoch()

	token, err := c.store.PersistedCredential()
	if err != nil {
		// Absent (or unreadable) credential: nothing to validate, no
		// network call.
		c.commit(epoch, Snapshot{Phase: PhaseAnonymous})
		return
	}

	identity, err := c.deriveIdentity(ctx, token)
	if err != nil {
		c.logger.Info("session validation failed", "error", err)
		c.invalidate(epoch)
		return
	}

	c.commit(epoch, Snapshot{Phase: PhaseAuthenticated, Identity: &identity})
}

// Login exchanges the credentials for a token, persists it, derives the
// identity and settles the session. On any failure the session is left
// anonymous and the error is propagated; DisplayMessage turns it into
// user-facing text.
func (c *Controller) Login(ctx context.Context, user, password string) (Identity, error) {
	c.mu.Lock()
	if c.loginInFlight {
		c.mu.Unlock()
		return Identity{}, ErrLoginInFlight
	}
	c.loginInFlight = true
	// Starting a login supersedes any validation still in flight.
	c.epoch++
	epoch := c.epoch
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.loginInFlight = false
		c.mu.Unlock()
	}()

	// Pre-clear so a stale identity can never flash while the exchange runs.
	if err := c.store.ClearCredential(); err != nil {
		c.logger.Warn("clear credential before login", "error", err)
	}
	c.commit(epoch, Snapshot{Phase: PhaseAnonymous})

	token, err := c.api.ExchangeCredentials(ctx, user, password)
	if err != nil {
		return Identity{}, fmt.Errorf("exchange credentials: %w", err)
	}
	if c.stale(epoch) {
		// A logout was issued while the exchange was in flight; do not
		// persist the token it returned.
		return Identity{}, ErrSuperseded
	}

	if err := c.store.PersistCredential(token); err != nil {
		c.invalidate(epoch)
		return Identity{}, fmt.Errorf("persist credential: %w", err)
	}

	identity, err := c.deriveIdentity(ctx, token)
	if err != nil {
		c.invalidate(epoch)
		return Identity{}, fmt.Errorf("derive identity: %w", err)
	}

	if !c.commit(epoch, Snapshot{Phase: PhaseAuthenticated, Identity: &identity}) {
		// Logout raced the profile fetch: drop the token we persisted.
		if err := c.store.ClearCredential(); err != nil {
			c.logger.Warn("clear superseded credential", "error", err)
		}
		return Identity{}, ErrSuperseded
	}

	c.logger.Info("login succeeded", "subject", identity.Subject, "role", identity.Role)
	return identity, nil
}

// Logout unconditionally clears the credential and settles the session
// anonymous. It never fails: storage errors are logged and swallowed.
// Any in-flight login or validation is superseded and its result
// discarded when it resolves.
func (c *Controller) Logout() {
	c.mu.Lock()
	c.epoch++
	epoch := c.epoch
	c.mu.Unlock()

	if err := c.store.ClearCredential(); err != nil {
		c.logger.Warn("clear credential on logout", "error", err)
	}
	c.commit(epoch, Snapshot{Phase: PhaseAnonymous})
}

// deriveIdentity runs the shared validation pipeline: local decode,
// local expiry check, then the authoritative profile fetch. Profile
// fields win for display; claims stay authoritative for subject, role
// and the timestamps.
func (c *Controller) deriveIdentity(ctx context.Context, token string) (Identity, error) {
	cred, err := DecodeCredential(token)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidOrExpiredCredential, err)
	}
	if !cred.ExpiresAt.After(c.now()) {
		// Expired: short-circuit without a network call.
		return Identity{}, ErrInvalidOrExpiredCredential
	}

	profile, err := c.api.FetchProfile(ctx)
	if err != nil {
		return Identity{}, err
	}

	return Identity{
		Subject:     cred.Subject,
		Role:        cred.Role,
		UserName:    profile.UserName,
		Email:       profile.EmailID,
		DateOfBirth: profile.DoB,
		IssuedAt:    cred.IssuedAt,
		ExpiresAt:   cred.ExpiresAt,
	}, nil
}

// invalidate is the single failure-recovery path for a bad, expired or
// unverifiable credential: clear storage, settle anonymous.
func (c *Controller) invalidate(epoch uint64) {
	if err := c.store.ClearCredential(); err != nil {
		c.logger.Warn("clear invalid credential", "error", err)
	}
	c.commit(epoch, Snapshot{Phase: PhaseAnonymous})
}

func (c *Controller) currentEpoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

func (c *Controller) stale(epoch uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return epoch != c.epoch
}

// commit applies the snapshot unless the epoch moved on, in which case
// the result is discarded. Reports whether the state was applied.
func (c *Controller) commit(epoch uint64, snap Snapshot) bool {
	c.mu.Lock()
	if epoch != c.epoch {
		c.mu.Unlock()
		return false
	}
	c.mu.Unlock()
	c.store.SetState(snap)
	return true
}
