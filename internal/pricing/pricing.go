// Package pricing computes the authoritative price breakdown for a cart
// snapshot. The server is the only pricing authority: client-supplied totals
// are never trusted, and the engine is re-run at order creation time.
package pricing

import (
	"context"
	"errors"
	"strings"
)

// Engine produces a price quote for a set of lines and a destination.
// Implementations must be pure: deterministic for the same inputs, no hidden
// state, no persistence.
type Engine interface {
	Quote(ctx context.Context, lines []QuoteLine, dest Destination) (*Quote, error)
}

// QuoteLine is one cart line priced with the live unit price. The caller
// resolves prices from the catalog; the engine never reads stored cart prices.
type QuoteLine struct {
	Qty       int32
	UnitPrice int64 // minor currency units (paise)
}

// Destination is the shipping destination used for rate lookup. City and
// country are free text; the engine normalizes them.
type Destination struct {
	City    string
	Country string
}

// Quote is the ephemeral price breakdown. It is always recomputed from a cart
// snapshot and live prices, never persisted on its own.
type Quote struct {
	ItemsPrice    int64
	ShippingPrice int64
	TaxPrice      int64
	TotalPrice    int64
}

// Config drives the flat-rate engine. The shipping table and thresholds are
// deployment configuration, not business logic baked into the algorithm.
type Config struct {
	// TaxRate is the flat tax percentage applied to the items subtotal,
	// e.g. 0.18 for 18%. No jurisdiction logic.
	TaxRate float64

	// FreeShippingThreshold: items subtotals strictly above this ship free.
	// Zero disables free shipping.
	FreeShippingThreshold int64

	// CityRates maps normalized city names to flat shipping rates.
	CityRates map[string]int64

	// CountryRates maps normalized country names to flat shipping rates,
	// consulted when the city has no entry.
	CountryRates map[string]int64

	// DefaultRate applies when neither city nor country matches.
	DefaultRate int64
}

// Validate checks that required configuration is present and sane.
func (c *Config) Validate() error {
	if c.TaxRate < 0 || c.TaxRate >= 1 {
		return errors.New("pricing: tax rate must be in [0, 1)")
	}
	if c.FreeShippingThreshold < 0 {
		return errors.New("pricing: free shipping threshold must not be negative")
	}
	if c.DefaultRate < 0 {
		return errors.New("pricing: default shipping rate must not be negative")
	}
	return nil
}

// Normalize lower-cases and trims a rate-table key.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
