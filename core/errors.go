package core

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound is returned when no live session exists for an account.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInventoryEmpty is returned when an inventory fetch succeeds but yields
	// zero items; the trade never reaches dispatch.
	ErrInventoryEmpty = errors.New("inventory empty")
)

// AuthError reports a failed login or session establishment. It is never
// retried automatically.
type AuthError struct {
	AccountID string
	Err       error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed for account %s: %v", e.AccountID, e.Err)
}

// Unwrap returns the underlying transport error.
func (e *AuthError) Unwrap() error { return e.Err }

// InventoryFetchError reports a transport failure while reading an inventory.
type InventoryFetchError struct {
	OwnerID string
	Err     error
}

// Error implements the error interface.
func (e *InventoryFetchError) Error() string {
	return fmt.Sprintf("inventory fetch failed for %s: %v", e.OwnerID, e.Err)
}

// Unwrap returns the underlying transport error.
func (e *InventoryFetchError) Unwrap() error { return e.Err }

// ItemNotFoundError reports the first requested item name that has no exact
// match in the fetched inventory. No partial offer is ever sent.
type ItemNotFoundError struct {
	Name string
}

// Error implements the error interface.
func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("item not found in inventory: %q", e.Name)
}

// SendRejectedError reports a remote rejection of an offer dispatch. The
// transport cannot distinguish trade bans from too-new relationships, so the
// cause is surfaced verbatim and never retried automatically.
type SendRejectedError struct {
	Err error
}

// Error implements the error interface.
func (e *SendRejectedError) Error() string {
	return fmt.Sprintf("offer dispatch rejected: %v", e.Err)
}

// Unwrap returns the underlying transport error.
func (e *SendRejectedError) Unwrap() error { return e.Err }

// ConfirmationError reports a failed confirmation exchange. The offer remains
// pending on the remote network and requires operator follow-up.
type ConfirmationError struct {
	OfferID string
	Err     error
}

// Error implements the error interface.
func (e *ConfirmationError) Error() string {
	if e.OfferID == "" {
		return fmt.Sprintf("confirmation failed: %v", e.Err)
	}
	return fmt.Sprintf("confirmation failed for offer %s: %v", e.OfferID, e.Err)
}

// Unwrap returns the underlying transport error.
func (e *ConfirmationError) Unwrap() error { return e.Err }
