package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/tradefleet/core"
	"github.com/hupe1980/tradefleet/logging"
)

// InMemoryRegistry is a volatile SessionRegistry implementation storing live
// sessions in a process local map. It is safe for concurrent access: lookups
// may run concurrently while mutations and trade-scoped sections are
// serialized per account through a lock table keyed by account id.
type InMemoryRegistry struct {
	transport core.Transport
	logger    logging.Logger

	mu       sync.RWMutex
	accounts map[string]*accountEntry
}

// accountEntry pairs one account's session slot with its exclusion primitive.
// The sem channel (capacity 1) is the account's lock; holding a token means
// holding exclusive access to the session.
type accountEntry struct {
	sem     chan struct{}
	session *core.BotSession
}

// Options configures the InMemoryRegistry.
type Options struct {
	// Logger receives registry lifecycle events. Defaults to NoOpLogger.
	Logger logging.Logger
}

// NewInMemoryRegistry constructs an empty in-memory session registry backed by
// the given transport.
func NewInMemoryRegistry(transport core.Transport, optFns ...func(o *Options)) *InMemoryRegistry {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &InMemoryRegistry{
		transport: transport,
		logger:    opts.Logger,
		accounts:  make(map[string]*accountEntry),
	}
}

// entry returns the lock-table entry for accountID, creating it lazily.
func (r *InMemoryRegistry) entry(accountID string) *accountEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.accounts[accountID]
	if !ok {
		e = &accountEntry{sem: make(chan struct{}, 1)}
		r.accounts[accountID] = e
	}
	return e
}

// acquire takes the account's exclusive token, aborting if ctx is cancelled
// while waiting.
func (e *accountEntry) acquire(ctx context.Context) error {
	select {
	case e.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *accountEntry) release() { <-e.sem }

// Login establishes a session via the transport. On transport-reported
// authentication failure no session is inserted and any partially opened
// handle is closed. On success the new session replaces a prior one for the
// same account, but only after the prior handle is confirmed closed; the swap
// itself is atomic with respect to concurrent Get calls.
func (r *InMemoryRegistry) Login(ctx context.Context, cred core.Credentials) error {
	if cred.AccountID == "" {
		return &core.AuthError{AccountID: cred.AccountID, Err: fmt.Errorf("account id is required")}
	}

	e := r.entry(cred.AccountID)
	if err := e.acquire(ctx); err != nil {
		return err
	}
	defer e.release()

	handle, err := r.transport.OpenSession(ctx, cred.GuardToken, cred.OAuthToken)
	if err != nil {
		if handle != nil {
			_ = handle.Close()
		}
		r.logger.Warn("login failed", "account_id", cred.AccountID)
		return &core.AuthError{AccountID: cred.AccountID, Err: err}
	}

	sess := &core.BotSession{
		AccountID:      cred.AccountID,
		Handle:         handle,
		SharedSecret:   cred.SharedSecret,
		IdentitySecret: cred.IdentitySecret,
	}

	r.mu.Lock()
	prior := e.session
	if prior != nil {
		// Close-before-replace: readers must never observe two live sessions
		// for one account. Close errors on the stale handle are not fatal.
		if cerr := prior.Handle.Close(); cerr != nil {
			r.logger.Warn("failed to close prior session", "account_id", cred.AccountID, "error", cerr)
		}
	}
	e.session = sess
	r.mu.Unlock()

	r.logger.Info("session established", "account_id", cred.AccountID)
	return nil
}

// Logoff closes and removes the account's session. Logging off an account
// without a session is a no-op.
func (r *InMemoryRegistry) Logoff(ctx context.Context, accountID string) error {
	e := r.entry(accountID)
	if err := e.acquire(ctx); err != nil {
		return err
	}
	defer e.release()

	r.mu.Lock()
	sess := e.session
	e.session = nil
	r.mu.Unlock()

	if sess == nil {
		return nil
	}
	if err := sess.Handle.Close(); err != nil {
		return fmt.Errorf("close session for %s: %w", accountID, err)
	}
	r.logger.Info("session closed", "account_id", accountID)
	return nil
}

// Get returns the live session for accountID or core.ErrSessionNotFound.
func (r *InMemoryRegistry) Get(accountID string) (*core.BotSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.accounts[accountID]
	if !ok || e.session == nil {
		return nil, core.ErrSessionNotFound
	}
	return e.session, nil
}

// WithAccount runs fn while holding the account's exclusive token. The session
// is re-read after acquisition so fn always observes the current one; a
// concurrent Logoff observed as a nil session yields core.ErrSessionNotFound.
func (r *InMemoryRegistry) WithAccount(ctx context.Context, accountID string, fn func(*core.BotSession) error) error {
	e := r.entry(accountID)
	if err := e.acquire(ctx); err != nil {
		return err
	}
	defer e.release()

	r.mu.RLock()
	sess := e.session
	r.mu.RUnlock()

	if sess == nil {
		return core.ErrSessionNotFound
	}
	return fn(sess)
}
