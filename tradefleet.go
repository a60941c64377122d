// Package tradefleet provides a high-level façade over the session registry,
// trade orchestrator and price aggregator, enabling operation of a fleet of
// automated trading accounts against a remote item-trading network. Most
// applications interact with this package by:
//  1. Creating a Fleet via New() with a Session Transport implementation
//     (optionally overriding the default in-memory registry and public reader)
//  2. Logging accounts in (Login)
//  3. Sending trades (SendTrade) and pricing inventories (PriceAccountInventory)
//
// The façade delegates the trade-offer lifecycle to trade.Orchestrator and the
// confirmation protocol to confirm.Protocol while keeping setup ergonomics
// concise. All defaults are safe for local development and testing; production
// deployments typically supply a structured logger and a tuned public reader.
package tradefleet

import (
	"context"

	"github.com/hupe1980/tradefleet/confirm"
	"github.com/hupe1980/tradefleet/core"
	"github.com/hupe1980/tradefleet/logging"
	"github.com/hupe1980/tradefleet/pricing"
	"github.com/hupe1980/tradefleet/registry"
	"github.com/hupe1980/tradefleet/trade"
	"github.com/hupe1980/tradefleet/webapi"
)

// Options configures the Fleet instance.
type Options struct {
	// Registry overrides the default in-memory session registry.
	Registry core.SessionRegistry

	// PublicReader overrides the default community HTTP client used by the
	// price aggregator.
	PublicReader core.PublicReader

	// ConfirmMode selects bulk or per-offer confirmation finalization.
	// Defaults to trade.ConfirmAll, which requires that an account never has
	// more than one offer pending confirmation at a time.
	ConfirmMode trade.ConfirmMode

	// OfferStateFunc observes offer state transitions. Optional.
	OfferStateFunc trade.OfferStateFunc

	// PriceMarkup is the fractional markup applied to quotes. Defaults to 0.10.
	PriceMarkup float64

	// Currency is the market currency code for price lookups. Defaults to 1.
	Currency int

	// MaxPriceConcurrency bounds in-flight price lookups. Defaults to 8.
	MaxPriceConcurrency int

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Fleet is the high-level façade aggregating the registry, orchestrator and
// price aggregator.
type Fleet struct {
	opts         Options
	registry     core.SessionRegistry
	orchestrator *trade.Orchestrator
	aggregator   *pricing.Aggregator
}

// New creates a new Fleet around the given Session Transport. Any unset
// service is initialized with its default implementation.
func New(transport core.Transport, optFns ...func(o *Options)) *Fleet {
	opts := Options{
		ConfirmMode:         trade.ConfirmAll,
		PriceMarkup:         0.10,
		Currency:            1,
		MaxPriceConcurrency: 8,
		Logger:              logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Registry == nil {
		opts.Registry = registry.NewInMemoryRegistry(transport, func(o *registry.Options) {
			o.Logger = opts.Logger
		})
	}
	if opts.PublicReader == nil {
		opts.PublicReader = webapi.NewClient()
	}

	protocol := confirm.NewProtocol(transport, func(o *confirm.Options) {
		o.Logger = opts.Logger
	})

	orchestrator := trade.NewOrchestrator(opts.Registry, transport, protocol, func(o *trade.Options) {
		o.ConfirmMode = opts.ConfirmMode
		o.Logger = opts.Logger
		o.OfferStateFunc = opts.OfferStateFunc
	})

	aggregator := pricing.NewAggregator(opts.PublicReader, func(o *pricing.Options) {
		o.Markup = opts.PriceMarkup
		o.Currency = opts.Currency
		o.MaxConcurrent = opts.MaxPriceConcurrency
		o.Logger = opts.Logger
	})

	return &Fleet{
		opts:         opts,
		registry:     opts.Registry,
		orchestrator: orchestrator,
		aggregator:   aggregator,
	}
}

// Login establishes a session for the given credentials.
func (f *Fleet) Login(ctx context.Context, cred core.Credentials) error {
	return f.registry.Login(ctx, cred)
}

// Logoff closes and removes the account's session.
func (f *Fleet) Logoff(ctx context.Context, accountID string) error {
	return f.registry.Logoff(ctx, accountID)
}

// SendTrade runs one trade attempt to a terminal state and returns the offer
// id assigned by the remote network.
func (f *Fleet) SendTrade(ctx context.Context, req trade.SendTradeRequest) (string, error) {
	return f.orchestrator.SendTrade(ctx, req)
}

// PriceAccountInventory prices the public inventory of accountID for appID.
func (f *Fleet) PriceAccountInventory(ctx context.Context, accountID string, appID uint32) ([]core.PricedItem, error) {
	return f.aggregator.PriceAccountInventory(ctx, accountID, appID)
}

// Registry exposes the underlying session registry for advanced callers.
func (f *Fleet) Registry() core.SessionRegistry { return f.registry }
