// Package pricing enriches public inventory snapshots with market quotes. Per
// item lookups run concurrently but the aggregation is an explicit join: the
// operation returns only after every lookup it issued has settled, and items
// whose quote failed (rate limits included) are dropped from the batch rather
// than failing it.
package pricing

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/tradefleet/core"
	"github.com/hupe1980/tradefleet/logging"
)

// Options configures the Aggregator.
type Options struct {
	// Markup is the fractional markup applied to each lowest price. Defaults
	// to 0.10.
	Markup float64
	// Currency is the market currency code passed to price lookups. Defaults
	// to 1.
	Currency int
	// MaxConcurrent bounds in-flight price lookups. Defaults to 8.
	MaxConcurrent int
	// Logger receives per-lookup events. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Aggregator fetches a public inventory snapshot and prices its tradable,
// marketable items. It holds no cross-request state and is safe for
// concurrent use.
type Aggregator struct {
	reader        core.PublicReader
	markup        float64
	currency      int
	maxConcurrent int
	logger        logging.Logger
}

// NewAggregator creates an Aggregator over the given public reader.
func NewAggregator(reader core.PublicReader, optFns ...func(o *Options)) *Aggregator {
	opts := Options{Markup: 0.10, Currency: 1, MaxConcurrent: 8, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxConcurrent < 1 {
		opts.MaxConcurrent = 1
	}

	return &Aggregator{
		reader:        reader,
		markup:        opts.Markup,
		currency:      opts.Currency,
		maxConcurrent: opts.MaxConcurrent,
		logger:        opts.Logger,
	}
}

// PriceAccountInventory prices the public inventory of accountID for appID.
// An absent snapshot yields an empty result, not an error. Lookups run
// concurrently; the call blocks until all of them have settled and returns
// the successfully priced items in inventory order.
func (a *Aggregator) PriceAccountInventory(ctx context.Context, accountID string, appID uint32) ([]core.PricedItem, error) {
	snapshot, err := a.reader.GetPublicInventorySnapshot(ctx, accountID, appID)
	if err != nil {
		return nil, &core.InventoryFetchError{OwnerID: accountID, Err: err}
	}
	if snapshot == nil {
		return nil, nil
	}

	candidates := make([]core.InventoryItem, 0, len(snapshot.Items))
	for _, item := range snapshot.Items {
		if item.Tradable && item.Marketable {
			candidates = append(candidates, item)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	// One slot per candidate; the WaitGroup is the join barrier. A lookup that
	// fails leaves its slot nil and the item is dropped after the join.
	results := make([]*core.PricedItem, len(candidates))
	sem := make(chan struct{}, a.maxConcurrent)
	var wg sync.WaitGroup

	for i, item := range candidates {
		wg.Add(1)
		go func(i int, item core.InventoryItem) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			start := time.Now()
			raw, err := a.reader.GetLowestPrice(ctx, appID, item.MarketHashName, a.currency)
			if err != nil {
				a.logger.Debug("price lookup dropped", "market_hash_name", item.MarketHashName, "duration", time.Since(start), "error", err)
				return
			}
			price, err := ParsePrice(raw)
			if err != nil {
				a.logger.Debug("price parse dropped", "market_hash_name", item.MarketHashName, "raw", raw, "error", err)
				return
			}

			results[i] = &core.PricedItem{
				Name:    item.Name,
				IconURL: item.IconURL,
				Price:   price * (1 + a.markup),
			}
		}(i, item)
	}

	wg.Wait()

	priced := make([]core.PricedItem, 0, len(candidates))
	for _, r := range results {
		if r != nil {
			priced = append(priced, *r)
		}
	}
	return priced, nil
}

// ParsePrice extracts a numeric amount from a raw market price string such as
// "$1.23" or "1,23€". Thousands separators are not supported; the remote
// market endpoint does not emit them for lowest prices.
func ParsePrice(raw string) (float64, error) {
	start := strings.IndexAny(raw, "0123456789")
	if start < 0 {
		return 0, fmt.Errorf("no numeric amount in price %q", raw)
	}
	end := start
	for end < len(raw) {
		c := raw[end]
		if (c < '0' || c > '9') && c != '.' && c != ',' {
			break
		}
		end++
	}
	num := strings.ReplaceAll(raw[start:end], ",", ".")

	price, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", raw, err)
	}
	return price, nil
}
