package core

import "context"

// Credentials carries everything needed to authenticate one account. Secret
// material is used only for confirmation-code derivation and must never be
// logged or transmitted except as derived codes.
type Credentials struct {
	AccountID      string
	GuardToken     string
	OAuthToken     string
	SharedSecret   string
	IdentitySecret string
}

// BotSession is one live authenticated account. At most one BotSession exists
// per account id at any time; the registry owning the session guarantees that
// a replacement is installed only after the prior handle is closed.
type BotSession struct {
	AccountID      string
	Handle         SessionHandle
	SharedSecret   string
	IdentitySecret string
}

// String implements fmt.Stringer without exposing secret material.
func (s *BotSession) String() string {
	return "BotSession(" + s.AccountID + ")"
}

// SessionRegistry owns the mapping from account identity to live session and
// serializes stateful operations per account.
type SessionRegistry interface {
	// Login establishes a session for the given credentials, replacing any
	// prior session for the same account only after it is closed. On
	// authentication failure no session is inserted and any partially opened
	// transport resource is released.
	Login(ctx context.Context, cred Credentials) error

	// Logoff closes and removes the account's session. It is not an error to
	// log off an account without a session.
	Logoff(ctx context.Context, accountID string) error

	// Get returns the live session for accountID or ErrSessionNotFound.
	// Callers must treat a miss as a fatal precondition, not retryable.
	Get(accountID string) (*BotSession, error)

	// WithAccount runs fn while holding exclusive access to the account's
	// session. No two invocations for the same account overlap; invocations
	// for distinct accounts are independent. Waiting for the exclusive section
	// is aborted if ctx is cancelled.
	WithAccount(ctx context.Context, accountID string, fn func(*BotSession) error) error
}
