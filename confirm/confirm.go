// Package confirm implements the time-windowed confirmation protocol: deriving
// short-lived authorization codes from an account's identity secret and
// driving the approve-pending-confirmations exchange against the transport.
//
// Codes are valid only within a narrow window around true time, so every
// remote call derives its codes from a timestamp captured immediately before
// the call; codes are never cached or reused across calls.
package confirm

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/tradefleet/core"
	"github.com/hupe1980/tradefleet/logging"
)

// Tag discriminates the purpose a confirmation code is derived for. The
// values are fixed by the remote network's protocol.
type Tag string

const (
	// TagList authorizes listing pending confirmations.
	TagList Tag = "conf"
	// TagDetails authorizes reading one confirmation's details.
	TagDetails Tag = "details"
	// TagAccept authorizes accepting a confirmation.
	TagAccept Tag = "allow"
	// TagCancel authorizes cancelling a confirmation.
	TagCancel Tag = "cancel"
)

// ErrNoMatchingConfirmation is returned by FinalizeOffer when none of the
// account's pending confirmations resolves to the requested offer.
var ErrNoMatchingConfirmation = errors.New("no pending confirmation matches offer")

// DeriveCode computes the authorization code for one (secret, timestamp, tag)
// triple: HMAC-SHA1 over the big-endian unix timestamp followed by the tag
// bytes, keyed with the base64-decoded identity secret, encoded as base64.
// The derivation is deterministic; freshness comes from the timestamp alone.
func DeriveCode(identitySecret string, timestamp int64, tag Tag) (string, error) {
	key, err := base64.StdEncoding.DecodeString(identitySecret)
	if err != nil {
		return "", fmt.Errorf("decode identity secret: %w", err)
	}

	msg := make([]byte, 8+len(tag))
	binary.BigEndian.PutUint64(msg[:8], uint64(timestamp))
	copy(msg[8:], tag)

	mac := hmac.New(sha1.New, key)
	mac.Write(msg)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

// Options configures the Protocol.
type Options struct {
	// Now supplies the current time for code derivation. Defaults to time.Now.
	Now func() time.Time
	// Logger receives confirmation events. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Protocol drives confirmation exchanges for one transport. It is stateless
// apart from its clock and safe for concurrent use across accounts; callers
// provide per-account serialization.
type Protocol struct {
	transport core.Transport
	now       func() time.Time
	logger    logging.Logger
}

// NewProtocol creates a Protocol bound to the given transport.
func NewProtocol(transport core.Transport, optFns ...func(o *Options)) *Protocol {
	opts := Options{Now: time.Now, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Protocol{transport: transport, now: opts.Now, logger: opts.Logger}
}

// FinalizeAll approves every pending confirmation for the session's account in
// one exchange. This is the simple path and is correct only under the
// documented constraint that an account has at most one offer pending
// confirmation at a time; see FinalizeOffer for the per-offer path.
func (p *Protocol) FinalizeAll(ctx context.Context, h core.SessionHandle, identitySecret string) error {
	t := p.now().Unix()
	listCode, err := DeriveCode(identitySecret, t, TagList)
	if err != nil {
		return &core.ConfirmationError{Err: err}
	}
	acceptCode, err := DeriveCode(identitySecret, t, TagAccept)
	if err != nil {
		return &core.ConfirmationError{Err: err}
	}

	if err := p.transport.ApprovePendingConfirmations(ctx, h, t, listCode, acceptCode); err != nil {
		return &core.ConfirmationError{Err: err}
	}
	p.logger.Info("approved pending confirmations", "account_id", h.AccountID())
	return nil
}

// FinalizeOffer confirms exactly the offer identified by offerID: it lists the
// account's pending confirmations, resolves each entry's offer id with a
// details-tag code and responds only to the matching entry. Entries whose
// details lookup fails are skipped; if no entry matches, the error wraps
// ErrNoMatchingConfirmation.
func (p *Protocol) FinalizeOffer(ctx context.Context, h core.SessionHandle, identitySecret, offerID string) error {
	t := p.now().Unix()
	listCode, err := DeriveCode(identitySecret, t, TagList)
	if err != nil {
		return &core.ConfirmationError{OfferID: offerID, Err: err}
	}

	confirmations, err := p.transport.ListConfirmations(ctx, h, t, listCode)
	if err != nil {
		return &core.ConfirmationError{OfferID: offerID, Err: err}
	}

	for _, c := range confirmations {
		dt := p.now().Unix()
		detailsCode, err := DeriveCode(identitySecret, dt, TagDetails)
		if err != nil {
			return &core.ConfirmationError{OfferID: offerID, Err: err}
		}
		id, err := p.transport.LookupConfirmationOfferID(ctx, h, c, dt, detailsCode)
		if err != nil {
			p.logger.Warn("confirmation details lookup failed", "account_id", h.AccountID(), "confirmation_id", c.ID)
			continue
		}
		if id != offerID {
			continue
		}

		rt := p.now().Unix()
		respListCode, err := DeriveCode(identitySecret, rt, TagList)
		if err != nil {
			return &core.ConfirmationError{OfferID: offerID, Err: err}
		}
		respAcceptCode, err := DeriveCode(identitySecret, rt, TagAccept)
		if err != nil {
			return &core.ConfirmationError{OfferID: offerID, Err: err}
		}
		if err := p.transport.RespondConfirmation(ctx, h, c, rt, respListCode, respAcceptCode, true); err != nil {
			return &core.ConfirmationError{OfferID: offerID, Err: err}
		}
		p.logger.Info("confirmed offer", "account_id", h.AccountID(), "offer_id", offerID)
		return nil
	}

	return &core.ConfirmationError{OfferID: offerID, Err: ErrNoMatchingConfirmation}
}
