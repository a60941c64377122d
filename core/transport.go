package core

import "context"

// SessionHandle is an exclusively owned, opaque handle to one authenticated
// connection on the remote trading network. It is invalidated by Close and
// must not be used afterwards.
type SessionHandle interface {
	// AccountID returns the identity the handle was opened for.
	AccountID() string
	// Close releases the underlying connection. Close is idempotent.
	Close() error
}

// OfferBuilder assembles one trade offer against an open session. Builders are
// single-use: after Send returns, the builder must be discarded.
type OfferBuilder interface {
	// AddItems places items on the given side of the offer.
	AddItems(side OfferSide, items []InventoryItem)
	// SetMessage attaches an annotation/nonce to the offer.
	SetMessage(text string)
	// Send dispatches the offer. On success the returned state is StateSent or
	// StatePendingConfirmation and offerID is the identifier assigned by the
	// remote network.
	Send(ctx context.Context) (state OfferState, offerID string, err error)
}

// Confirmation is one pending confirmation entry as reported by the remote
// network. The fields are opaque to this core beyond identity matching.
type Confirmation struct {
	ID    string
	Nonce string
}

// Transport is the external collaborator providing authenticated connectivity
// to the remote trading network. Implementations own the handshake, raw HTTP
// transport and wire serialization; this core only consumes the contract
// below. All methods must be safe for concurrent use across distinct handles;
// this core never issues concurrent calls against the same handle.
type Transport interface {
	// OpenSession establishes an authenticated session for one account.
	OpenSession(ctx context.Context, guardToken, oAuthToken string) (SessionHandle, error)

	// GetInventory reads the inventory of ownerID as visible to the session.
	GetInventory(ctx context.Context, h SessionHandle, ownerID string, appID uint32, contextID string) ([]InventoryItem, error)

	// CreateOffer starts building an offer addressed by tradeURL.
	CreateOffer(h SessionHandle, tradeURL string) OfferBuilder

	// ApprovePendingConfirmations accepts every pending confirmation for the
	// session's account in one exchange.
	ApprovePendingConfirmations(ctx context.Context, h SessionHandle, timestamp int64, listCode, acceptCode string) error

	// ListConfirmations enumerates the account's pending confirmations.
	ListConfirmations(ctx context.Context, h SessionHandle, timestamp int64, listCode string) ([]Confirmation, error)

	// LookupConfirmationOfferID resolves the trade offer a confirmation entry
	// belongs to.
	LookupConfirmationOfferID(ctx context.Context, h SessionHandle, c Confirmation, timestamp int64, detailsCode string) (string, error)

	// RespondConfirmation accepts or cancels a single confirmation entry.
	RespondConfirmation(ctx context.Context, h SessionHandle, c Confirmation, timestamp int64, listCode, acceptCode string, accept bool) error
}

// PublicReader provides the unauthenticated read endpoints of the remote
// network used by the price aggregator.
type PublicReader interface {
	// GetPublicInventorySnapshot fetches the public inventory of ownerID. A nil
	// snapshot with a nil error means the inventory is absent.
	GetPublicInventorySnapshot(ctx context.Context, ownerID string, appID uint32) (*InventorySnapshot, error)

	// GetLowestPrice returns the lowest listed price for a market hash name as
	// the raw price string reported by the market endpoint (e.g. "$1.23").
	GetLowestPrice(ctx context.Context, appID uint32, marketHashName string, currency int) (string, error)
}
