// Package trade drives one trade request end-to-end for one account: inventory
// fetch, exact-name item resolution, offer construction and dispatch, and
// routing of pending offers into the confirmation protocol. Both trade
// directions share a single algorithm parameterized by a small direction plan
// (whose inventory is read, which side the items occupy).
package trade

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/tradefleet/confirm"
	"github.com/hupe1980/tradefleet/core"
	"github.com/hupe1980/tradefleet/logging"
)

// ConfirmMode selects how pending offers are finalized.
type ConfirmMode int

const (
	// ConfirmAll approves the account's entire pending queue in one exchange.
	// Safe only under the documented constraint that an account never has more
	// than one offer pending confirmation at a time; the per-account exclusive
	// section guarantees this as long as all offers originate from this
	// process.
	ConfirmAll ConfirmMode = iota
	// ConfirmByOffer lists pending confirmations and responds only to the one
	// matching the offer just created. Use this when offers for the account
	// may also be created outside this process.
	ConfirmByOffer
)

// defaultContextID is the inventory context the remote network uses for
// tradable community items.
const defaultContextID = "2"

// SendTradeRequest describes one trade attempt.
type SendTradeRequest struct {
	AccountID      string
	Direction      core.Direction
	CounterpartyID string // required for UserToBot
	TradeURL       string
	AppID          uint32
	ItemNames      []string
	Message        string
}

// OfferStateFunc observes offer state transitions, e.g. for operator logging.
// It is called synchronously and must not block.
type OfferStateFunc func(offer *core.TradeOffer, from, to core.OfferState)

// Options configures the Orchestrator.
type Options struct {
	// ConfirmMode selects bulk or per-offer finalization. Defaults to ConfirmAll.
	ConfirmMode ConfirmMode
	// ContextID overrides the inventory context id. Defaults to "2".
	ContextID string
	// Logger receives trade lifecycle events. Defaults to NoOpLogger.
	Logger logging.Logger
	// OfferStateFunc observes state transitions. Optional.
	OfferStateFunc OfferStateFunc
}

// Orchestrator coordinates trade attempts against a session registry and its
// transport. It holds no cross-request state and is safe for concurrent use;
// per-account ordering comes from the registry's exclusive sections.
type Orchestrator struct {
	registry     core.SessionRegistry
	transport    core.Transport
	protocol     *confirm.Protocol
	confirmMode  ConfirmMode
	contextID    string
	logger       logging.Logger
	offerStateFn OfferStateFunc
}

// NewOrchestrator creates an Orchestrator. The transport must be the same
// instance the registry opens sessions against.
func NewOrchestrator(registry core.SessionRegistry, transport core.Transport, protocol *confirm.Protocol, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{ConfirmMode: ConfirmAll, ContextID: defaultContextID, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Orchestrator{
		registry:     registry,
		transport:    transport,
		protocol:     protocol,
		confirmMode:  opts.ConfirmMode,
		contextID:    opts.ContextID,
		logger:       opts.Logger,
		offerStateFn: opts.offerStateFn(),
	}
}

// offerStateFn returns the configured observer or a no-op.
func (o *Options) offerStateFn() OfferStateFunc {
	if o.OfferStateFunc == nil {
		return func(*core.TradeOffer, core.OfferState, core.OfferState) {}
	}
	return o.OfferStateFunc
}

// directionPlan captures what differs between the two trade directions: whose
// inventory is fetched and which side of the offer the resolved items occupy.
type directionPlan struct {
	inventoryOwner func(req SendTradeRequest, accountID string) string
	side           core.OfferSide
}

var directionPlans = map[core.Direction]directionPlan{
	core.BotToUser: {
		inventoryOwner: func(_ SendTradeRequest, accountID string) string { return accountID },
		side:           core.SideBot,
	},
	core.UserToBot: {
		inventoryOwner: func(req SendTradeRequest, _ string) string { return req.CounterpartyID },
		side:           core.SideCounterparty,
	},
}

// SendTrade runs one trade attempt to a terminal state. It returns the offer
// id assigned by the remote network; for pending offers the confirmation
// exchange is attempted exactly once before returning, and a confirmation
// failure is returned alongside the offer id so the operator can follow up.
//
// The account's session is held exclusively for the whole attempt and released
// on every exit path. Cancellation is honored up to dispatch; once the offer
// is sent the attempt runs to a terminal state.
func (o *Orchestrator) SendTrade(ctx context.Context, req SendTradeRequest) (string, error) {
	if err := validateRequest(req); err != nil {
		return "", err
	}

	var offerID string
	err := o.registry.WithAccount(ctx, req.AccountID, func(sess *core.BotSession) error {
		id, err := o.runTrade(ctx, sess, req)
		offerID = id
		return err
	})
	return offerID, err
}

func validateRequest(req SendTradeRequest) error {
	if req.AccountID == "" {
		return fmt.Errorf("account id is required")
	}
	if len(req.ItemNames) == 0 {
		return fmt.Errorf("at least one item name is required")
	}
	if req.TradeURL == "" {
		return fmt.Errorf("trade url is required")
	}
	if req.Direction == core.UserToBot && req.CounterpartyID == "" {
		return fmt.Errorf("counterparty id is required for user_to_bot trades")
	}
	if _, ok := directionPlans[req.Direction]; !ok {
		return fmt.Errorf("unknown trade direction: %d", req.Direction)
	}
	return nil
}

// runTrade executes the shared directional algorithm while the account's
// exclusive section is held.
func (o *Orchestrator) runTrade(ctx context.Context, sess *core.BotSession, req SendTradeRequest) (string, error) {
	plan := directionPlans[req.Direction]
	logger := o.logger

	offer := &core.TradeOffer{
		AttemptID:          uuid.NewString(),
		Direction:          req.Direction,
		State:              core.StateBuilding,
		RequestedItemNames: req.ItemNames,
		Message:            req.Message,
	}

	owner := plan.inventoryOwner(req, sess.AccountID)
	items, err := o.transport.GetInventory(ctx, sess.Handle, owner, req.AppID, o.contextID)
	if err != nil {
		o.transition(offer, core.StateFailed)
		return "", &core.InventoryFetchError{OwnerID: owner, Err: err}
	}
	if len(items) == 0 {
		o.transition(offer, core.StateFailed)
		return "", core.ErrInventoryEmpty
	}

	resolved, err := resolveItems(req.ItemNames, items)
	if err != nil {
		o.transition(offer, core.StateFailed)
		return "", err
	}
	offer.ResolvedItems = resolved

	// Last cancellation point: after dispatch the attempt runs to a terminal
	// state regardless of ctx.
	if err := ctx.Err(); err != nil {
		return "", err
	}

	builder := o.transport.CreateOffer(sess.Handle, req.TradeURL)
	builder.AddItems(plan.side, resolved)
	builder.SetMessage(req.Message)

	start := time.Now()
	state, offerID, err := builder.Send(ctx)
	if err != nil {
		o.transition(offer, core.StateFailed)
		logger.Error("offer dispatch rejected", "account_id", sess.AccountID, "attempt_id", offer.AttemptID, "error", err)
		return "", &core.SendRejectedError{Err: err}
	}
	offer.OfferID = offerID
	logger.Info("offer dispatched", "account_id", sess.AccountID, "offer_id", offerID, "state", state.String(), "duration", time.Since(start))

	switch state {
	case core.StateSent:
		o.transition(offer, core.StateSent)
		return offerID, nil
	case core.StatePendingConfirmation:
		o.transition(offer, core.StatePendingConfirmation)
		if err := o.finalize(ctx, sess, offer); err != nil {
			o.transition(offer, core.StateFailed)
			return offerID, err
		}
		o.transition(offer, core.StateFinalized)
		return offerID, nil
	default:
		o.transition(offer, core.StateFailed)
		return offerID, &core.SendRejectedError{Err: fmt.Errorf("transport reported unexpected delivery state %q", state)}
	}
}

// finalize runs the confirmation protocol once for a pending offer.
func (o *Orchestrator) finalize(ctx context.Context, sess *core.BotSession, offer *core.TradeOffer) error {
	if o.confirmMode == ConfirmByOffer {
		return o.protocol.FinalizeOffer(ctx, sess.Handle, sess.IdentitySecret, offer.OfferID)
	}
	return o.protocol.FinalizeAll(ctx, sess.Handle, sess.IdentitySecret)
}

func (o *Orchestrator) transition(offer *core.TradeOffer, to core.OfferState) {
	from := offer.State
	offer.State = to
	o.offerStateFn(offer, from, to)
}

// resolveItems matches every requested name against the inventory by exact
// name, preserving input order. The first unmatched name aborts resolution;
// a partial offer is never built. Duplicate names consume distinct assets.
func resolveItems(names []string, inventory []core.InventoryItem) ([]core.InventoryItem, error) {
	used := make([]bool, len(inventory))
	resolved := make([]core.InventoryItem, 0, len(names))

	for _, name := range names {
		found := false
		for i, item := range inventory {
			if used[i] || item.Name != name {
				continue
			}
			used[i] = true
			resolved = append(resolved, item)
			found = true
			break
		}
		if !found {
			return nil, &core.ItemNotFoundError{Name: name}
		}
	}
	return resolved, nil
}
