package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/tradefleet/core"
)

// FakeHandle is a minimal core.SessionHandle recording whether it was closed.
type FakeHandle struct {
	Account string

	mu     sync.Mutex
	closed bool
}

// AccountID implements core.SessionHandle.
func (h *FakeHandle) AccountID() string { return h.Account }

// Close implements core.SessionHandle.
func (h *FakeHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}

// Closed reports whether Close was called.
func (h *FakeHandle) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// CallWindow records the wall-clock interval of one transport call, used to
// assert that calls for the same account never interleave.
type CallWindow struct {
	Name  string
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two windows intersect in time.
func (w CallWindow) Overlaps(other CallWindow) bool {
	return w.Start.Before(other.End) && other.Start.Before(w.End)
}

// FakeTransport is a scriptable core.Transport. Each behavior has a function
// field; unset fields fall back to benign defaults. Every call is recorded as
// a CallWindow around the scripted function's execution.
type FakeTransport struct {
	mu      sync.Mutex
	windows []CallWindow

	OpenSessionFn   func(ctx context.Context, guardToken, oAuthToken string) (core.SessionHandle, error)
	GetInventoryFn  func(ctx context.Context, h core.SessionHandle, ownerID string, appID uint32, contextID string) ([]core.InventoryItem, error)
	CreateOfferFn   func(h core.SessionHandle, tradeURL string) core.OfferBuilder
	ApproveFn       func(ctx context.Context, h core.SessionHandle, timestamp int64, listCode, acceptCode string) error
	ListFn          func(ctx context.Context, h core.SessionHandle, timestamp int64, listCode string) ([]core.Confirmation, error)
	LookupOfferIDFn func(ctx context.Context, h core.SessionHandle, c core.Confirmation, timestamp int64, detailsCode string) (string, error)
	RespondFn       func(ctx context.Context, h core.SessionHandle, c core.Confirmation, timestamp int64, listCode, acceptCode string, accept bool) error
}

var _ core.Transport = (*FakeTransport)(nil)

// NewFakeTransport creates a FakeTransport with benign defaults.
func NewFakeTransport() *FakeTransport { return &FakeTransport{} }

// Windows returns a copy of the recorded call windows.
func (t *FakeTransport) Windows() []CallWindow {
	t.mu.Lock()
	defer t.mu.Unlock()
	windows := make([]CallWindow, len(t.windows))
	copy(windows, t.windows)
	return windows
}

func (t *FakeTransport) record(name string, start, end time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.windows = append(t.windows, CallWindow{Name: name, Start: start, End: end})
}

// OpenSession implements core.Transport.
func (t *FakeTransport) OpenSession(ctx context.Context, guardToken, oAuthToken string) (core.SessionHandle, error) {
	start := time.Now()
	defer func() { t.record("OpenSession", start, time.Now()) }()
	if t.OpenSessionFn != nil {
		return t.OpenSessionFn(ctx, guardToken, oAuthToken)
	}
	return &FakeHandle{Account: "fake-account"}, nil
}

// GetInventory implements core.Transport.
func (t *FakeTransport) GetInventory(ctx context.Context, h core.SessionHandle, ownerID string, appID uint32, contextID string) ([]core.InventoryItem, error) {
	start := time.Now()
	defer func() { t.record("GetInventory", start, time.Now()) }()
	if t.GetInventoryFn != nil {
		return t.GetInventoryFn(ctx, h, ownerID, appID, contextID)
	}
	return nil, nil
}

// CreateOffer implements core.Transport.
func (t *FakeTransport) CreateOffer(h core.SessionHandle, tradeURL string) core.OfferBuilder {
	if t.CreateOfferFn != nil {
		return t.CreateOfferFn(h, tradeURL)
	}
	return &FakeOfferBuilder{}
}

// ApprovePendingConfirmations implements core.Transport.
func (t *FakeTransport) ApprovePendingConfirmations(ctx context.Context, h core.SessionHandle, timestamp int64, listCode, acceptCode string) error {
	start := time.Now()
	defer func() { t.record("ApprovePendingConfirmations", start, time.Now()) }()
	if t.ApproveFn != nil {
		return t.ApproveFn(ctx, h, timestamp, listCode, acceptCode)
	}
	return nil
}

// ListConfirmations implements core.Transport.
func (t *FakeTransport) ListConfirmations(ctx context.Context, h core.SessionHandle, timestamp int64, listCode string) ([]core.Confirmation, error) {
	start := time.Now()
	defer func() { t.record("ListConfirmations", start, time.Now()) }()
	if t.ListFn != nil {
		return t.ListFn(ctx, h, timestamp, listCode)
	}
	return nil, nil
}

// LookupConfirmationOfferID implements core.Transport.
func (t *FakeTransport) LookupConfirmationOfferID(ctx context.Context, h core.SessionHandle, c core.Confirmation, timestamp int64, detailsCode string) (string, error) {
	start := time.Now()
	defer func() { t.record("LookupConfirmationOfferID", start, time.Now()) }()
	if t.LookupOfferIDFn != nil {
		return t.LookupOfferIDFn(ctx, h, c, timestamp, detailsCode)
	}
	return "", fmt.Errorf("no lookup scripted")
}

// RespondConfirmation implements core.Transport.
func (t *FakeTransport) RespondConfirmation(ctx context.Context, h core.SessionHandle, c core.Confirmation, timestamp int64, listCode, acceptCode string, accept bool) error {
	start := time.Now()
	defer func() { t.record("RespondConfirmation", start, time.Now()) }()
	if t.RespondFn != nil {
		return t.RespondFn(ctx, h, c, timestamp, listCode, acceptCode, accept)
	}
	return nil
}

// FakeOfferBuilder is a scriptable core.OfferBuilder capturing what was added.
type FakeOfferBuilder struct {
	mu      sync.Mutex
	Sides   []core.OfferSide
	Items   [][]core.InventoryItem
	Message string

	// SendFn scripts the dispatch outcome. Defaults to StateSent with a fixed id.
	SendFn func(ctx context.Context) (core.OfferState, string, error)
	// SendWindow is populated with the dispatch call interval.
	SendWindow CallWindow
}

// AddItems implements core.OfferBuilder.
func (b *FakeOfferBuilder) AddItems(side core.OfferSide, items []core.InventoryItem) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Sides = append(b.Sides, side)
	b.Items = append(b.Items, items)
}

// SetMessage implements core.OfferBuilder.
func (b *FakeOfferBuilder) SetMessage(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Message = text
}

// Send implements core.OfferBuilder.
func (b *FakeOfferBuilder) Send(ctx context.Context) (core.OfferState, string, error) {
	start := time.Now()
	defer func() {
		b.mu.Lock()
		b.SendWindow = CallWindow{Name: "Send", Start: start, End: time.Now()}
		b.mu.Unlock()
	}()
	if b.SendFn != nil {
		return b.SendFn(ctx)
	}
	return core.StateSent, "offer-1", nil
}

// AddedItems returns the flattened items added to the builder.
func (b *FakeOfferBuilder) AddedItems() []core.InventoryItem {
	b.mu.Lock()
	defer b.mu.Unlock()
	var all []core.InventoryItem
	for _, batch := range b.Items {
		all = append(all, batch...)
	}
	return all
}

// FakePublicReader is a scriptable core.PublicReader.
type FakePublicReader struct {
	SnapshotFn    func(ctx context.Context, ownerID string, appID uint32) (*core.InventorySnapshot, error)
	LowestPriceFn func(ctx context.Context, appID uint32, marketHashName string, currency int) (string, error)
}

var _ core.PublicReader = (*FakePublicReader)(nil)

// GetPublicInventorySnapshot implements core.PublicReader.
func (r *FakePublicReader) GetPublicInventorySnapshot(ctx context.Context, ownerID string, appID uint32) (*core.InventorySnapshot, error) {
	if r.SnapshotFn != nil {
		return r.SnapshotFn(ctx, ownerID, appID)
	}
	return nil, nil
}

// GetLowestPrice implements core.PublicReader.
func (r *FakePublicReader) GetLowestPrice(ctx context.Context, appID uint32, marketHashName string, currency int) (string, error) {
	if r.LowestPriceFn != nil {
		return r.LowestPriceFn(ctx, appID, marketHashName, currency)
	}
	return "$1.00", nil
}

// Item builds a tradable, marketable inventory item with the given name.
func Item(name string) core.InventoryItem {
	return core.InventoryItem{
		AssetID:        "asset-" + name,
		ClassID:        "class-" + name,
		InstanceID:     "0",
		Name:           name,
		MarketHashName: name,
		IconURL:        "icon/" + name,
		Tradable:       true,
		Marketable:     true,
	}
}
