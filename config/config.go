// Package config handles reading the fleet configuration file. Credentials
// and secrets are supplied by the operator here and nowhere else; this core
// never persists them.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/tradefleet/core"
)

// AccountConfig holds the credentials for one bot account.
type AccountConfig struct {
	AccountID      string `yaml:"account_id"`
	GuardToken     string `yaml:"guard_token"`
	OAuthToken     string `yaml:"oauth_token"`
	SharedSecret   string `yaml:"shared_secret"`
	IdentitySecret string `yaml:"identity_secret"`
}

// Credentials converts the account entry to core.Credentials.
func (a AccountConfig) Credentials() core.Credentials {
	return core.Credentials{
		AccountID:      a.AccountID,
		GuardToken:     a.GuardToken,
		OAuthToken:     a.OAuthToken,
		SharedSecret:   a.SharedSecret,
		IdentitySecret: a.IdentitySecret,
	}
}

// PricingConfig controls the price aggregator.
type PricingConfig struct {
	Markup        float64 `yaml:"markup"`         // fractional, e.g. 0.10
	Currency      int     `yaml:"currency"`       // market currency code
	MaxConcurrent int     `yaml:"max_concurrent"` // in-flight lookups
}

// Config is the top-level structure of the fleet configuration file.
type Config struct {
	Accounts         []AccountConfig `yaml:"accounts"`
	CommunityBaseURL string          `yaml:"community_base_url"`
	Pricing          PricingConfig   `yaml:"pricing"`
}

// Load reads and validates a fleet configuration file. Missing pricing fields
// fall back to the aggregator defaults (10% markup, currency 1, 8 lookups).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Pricing.Markup == 0 {
		c.Pricing.Markup = 0.10
	}
	if c.Pricing.Currency == 0 {
		c.Pricing.Currency = 1
	}
	if c.Pricing.MaxConcurrent == 0 {
		c.Pricing.MaxConcurrent = 8
	}
}

func (c *Config) validate() error {
	seen := make(map[string]bool, len(c.Accounts))
	for i, a := range c.Accounts {
		if a.AccountID == "" {
			return fmt.Errorf("accounts[%d]: account_id is required", i)
		}
		if seen[a.AccountID] {
			return fmt.Errorf("accounts[%d]: duplicate account_id %q", i, a.AccountID)
		}
		seen[a.AccountID] = true
		if a.IdentitySecret == "" {
			return fmt.Errorf("accounts[%d]: identity_secret is required", i)
		}
	}
	if c.Pricing.Markup < 0 {
		return fmt.Errorf("pricing.markup must not be negative")
	}
	return nil
}

// Account returns the entry for accountID or an error naming the id.
func (c *Config) Account(accountID string) (AccountConfig, error) {
	for _, a := range c.Accounts {
		if a.AccountID == accountID {
			return a, nil
		}
	}
	return AccountConfig{}, fmt.Errorf("account %q not present in config", accountID)
}
