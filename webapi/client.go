// Package webapi implements core.PublicReader against the remote network's
// unauthenticated community endpoints: the public inventory snapshot and the
// market price overview.
package webapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hupe1980/tradefleet/core"
)

const (
	defaultBaseURL   = "https://steamcommunity.com"
	defaultContextID = "2"
	defaultPageSize  = 5000
)

// Options configures the Client.
type Options struct {
	// BaseURL overrides the community endpoint root, e.g. for tests.
	BaseURL string
	// HTTPClient overrides the underlying http.Client.
	HTTPClient *http.Client
}

// Client is a stdlib HTTP implementation of core.PublicReader. It is safe for
// concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client with sane defaults.
func NewClient(optFns ...func(o *Options)) *Client {
	opts := Options{
		BaseURL:    defaultBaseURL,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Client{baseURL: opts.BaseURL, httpClient: opts.HTTPClient}
}

// inventoryResponse mirrors the wire shape of the public inventory endpoint:
// assets reference descriptions by class/instance id, and boolean-ish fields
// arrive as 0/1 integers.
type inventoryResponse struct {
	Assets []struct {
		AssetID    string `json:"assetid"`
		ClassID    string `json:"classid"`
		InstanceID string `json:"instanceid"`
	} `json:"assets"`
	Descriptions []struct {
		ClassID        string `json:"classid"`
		InstanceID     string `json:"instanceid"`
		Name           string `json:"name"`
		MarketHashName string `json:"market_hash_name"`
		IconURL        string `json:"icon_url"`
		Tradable       int    `json:"tradable"`
		Marketable     int    `json:"marketable"`
	} `json:"descriptions"`
	TotalInventoryCount int `json:"total_inventory_count"`
	Success             int `json:"success"`
}

type priceOverviewResponse struct {
	Success     bool   `json:"success"`
	LowestPrice string `json:"lowest_price"`
	Volume      string `json:"volume"`
	MedianPrice string `json:"median_price"`
}

// GetPublicInventorySnapshot implements core.PublicReader. An absent or
// private inventory (404 or a literal null body) yields a nil snapshot with a
// nil error.
func (c *Client) GetPublicInventorySnapshot(ctx context.Context, ownerID string, appID uint32) (*core.InventorySnapshot, error) {
	endpoint := fmt.Sprintf("%s/inventory/%s/%d/%s?l=english&count=%d",
		c.baseURL, url.PathEscape(ownerID), appID, defaultContextID, defaultPageSize)

	body, status, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("inventory endpoint returned status %d", status)
	}
	if string(body) == "null" {
		return nil, nil
	}

	var resp inventoryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode inventory response: %w", err)
	}
	if resp.Success != 1 {
		return nil, nil
	}

	// Descriptions are keyed by class+instance; join assets against them so
	// every concrete asset carries its display metadata.
	type classKey struct{ class, instance string }
	descs := make(map[classKey]int, len(resp.Descriptions))
	for i, d := range resp.Descriptions {
		descs[classKey{d.ClassID, d.InstanceID}] = i
	}

	snapshot := &core.InventorySnapshot{TotalCount: resp.TotalInventoryCount}
	for _, a := range resp.Assets {
		i, ok := descs[classKey{a.ClassID, a.InstanceID}]
		if !ok {
			continue
		}
		d := resp.Descriptions[i]
		snapshot.Items = append(snapshot.Items, core.InventoryItem{
			AssetID:        a.AssetID,
			ClassID:        a.ClassID,
			InstanceID:     a.InstanceID,
			Name:           d.Name,
			MarketHashName: d.MarketHashName,
			IconURL:        d.IconURL,
			Tradable:       d.Tradable == 1,
			Marketable:     d.Marketable == 1,
		})
	}
	return snapshot, nil
}

// GetLowestPrice implements core.PublicReader.
func (c *Client) GetLowestPrice(ctx context.Context, appID uint32, marketHashName string, currency int) (string, error) {
	q := url.Values{}
	q.Set("appid", strconv.FormatUint(uint64(appID), 10))
	q.Set("market_hash_name", marketHashName)
	q.Set("currency", strconv.Itoa(currency))
	endpoint := fmt.Sprintf("%s/market/priceoverview/?%s", c.baseURL, q.Encode())

	body, status, err := c.get(ctx, endpoint)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("price endpoint returned status %d", status)
	}

	var resp priceOverviewResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode price response: %w", err)
	}
	if !resp.Success || resp.LowestPrice == "" {
		return "", fmt.Errorf("no listing for %q", marketHashName)
	}
	return resp.LowestPrice, nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request %s: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read response body: %w", err)
	}
	return body, resp.StatusCode, nil
}
