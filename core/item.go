package core

// InventoryItem is one concrete asset in an account's inventory, flattened
// from the remote network's asset/description split.
type InventoryItem struct {
	AssetID        string `json:"asset_id"`
	ClassID        string `json:"class_id"`
	InstanceID     string `json:"instance_id"`
	Name           string `json:"name"`
	MarketHashName string `json:"market_hash_name"`
	IconURL        string `json:"icon_url"`
	Tradable       bool   `json:"tradable"`
	Marketable     bool   `json:"marketable"`
}

// InventorySnapshot is a public, unauthenticated read of an account's
// inventory. A nil snapshot means the inventory is absent or private, which is
// not an error.
type InventorySnapshot struct {
	Items      []InventoryItem `json:"items"`
	TotalCount int             `json:"total_count"`
}

// PricedItem is one inventory item enriched with a market quote. Price is the
// lowest listed price including the configured markup.
type PricedItem struct {
	Name    string  `json:"name"`
	IconURL string  `json:"icon_url"`
	Price   float64 `json:"price"`
}
