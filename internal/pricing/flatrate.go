package pricing

import (
	"context"
	"math"
)

// FlatRateEngine prices orders with a flat-rate shipping table and a flat
// percentage tax. The quote is itemsPrice + shippingPrice + taxPrice.
type FlatRateEngine struct {
	cfg Config
}

// NewFlatRateEngine creates a flat-rate pricing engine from configuration.
func NewFlatRateEngine(cfg Config) (*FlatRateEngine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &FlatRateEngine{cfg: cfg}, nil
}

// Quote computes the price breakdown for the given lines and destination.
func (e *FlatRateEngine) Quote(ctx context.Context, lines []QuoteLine, dest Destination) (*Quote, error) {
	var items int64
	for _, line := range lines {
		items += int64(line.Qty) * line.UnitPrice
	}

	shipping := e.shippingRate(items, dest)
	tax := int64(math.Round(float64(items) * e.cfg.TaxRate))

	return &Quote{
		ItemsPrice:    items,
		ShippingPrice: shipping,
		TaxPrice:      tax,
		TotalPrice:    items + shipping + tax,
	}, nil
}

// shippingRate resolves the flat rate: free above the threshold, else city
// rate, else country rate, else the default.
func (e *FlatRateEngine) shippingRate(itemsPrice int64, dest Destination) int64 {
	if e.cfg.FreeShippingThreshold > 0 && itemsPrice > e.cfg.FreeShippingThreshold {
		return 0
	}
	if rate, ok := e.cfg.CityRates[Normalize(dest.City)]; ok {
		return rate
	}
	if rate, ok := e.cfg.CountryRates[Normalize(dest.Country)]; ok {
		return rate
	}
	return e.cfg.DefaultRate
}
