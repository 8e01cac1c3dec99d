package service

import (
	"context"
	"fmt"

	"github.com/bazaarlabs/bazaar/internal/domain"
	"github.com/bazaarlabs/bazaar/internal/payment"
	"github.com/bazaarlabs/bazaar/internal/pricing"
	"github.com/google/uuid"
)

// CheckoutService quotes a cart against live prices and reserves the quoted
// amount with the payment provider. The quote returned here is advisory:
// order creation recomputes everything and rejects drift.
type CheckoutService interface {
	// Quote prices the buyer's current cart for a destination.
	Quote(ctx context.Context, buyerID uuid.UUID, address domain.ShippingAddress) (*CheckoutQuote, error)

	// CreatePaymentIntent quotes the cart and creates a provider-side
	// intent for the total. The client completes payment against the
	// returned intent, then calls order creation with the confirmation.
	CreatePaymentIntent(ctx context.Context, buyerID uuid.UUID, address domain.ShippingAddress) (*CheckoutIntent, error)
}

// CheckoutQuote is a priced snapshot of the cart at quote time.
type CheckoutQuote struct {
	Items         []CartItem
	ItemsPrice    int64
	ShippingPrice int64
	TaxPrice      int64
	TotalPrice    int64
}

// CheckoutIntent pairs a quote with the provider intent created for it.
type CheckoutIntent struct {
	Quote  CheckoutQuote
	Intent payment.Intent
}

type checkoutService struct {
	carts    CartService
	pricer   pricing.Engine
	provider payment.Provider
	currency string
}

// NewCheckoutService creates a new CheckoutService instance.
func NewCheckoutService(carts CartService, pricer pricing.Engine, provider payment.Provider, currency string) CheckoutService {
	return &checkoutService{
		carts:    carts,
		pricer:   pricer,
		provider: provider,
		currency: currency,
	}
}

func (s *checkoutService) Quote(ctx context.Context, buyerID uuid.UUID, address domain.ShippingAddress) (*CheckoutQuote, error) {
	summary, err := s.carts.GetCart(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if len(summary.Items) == 0 {
		return nil, ErrCartEmpty
	}

	lines := make([]pricing.QuoteLine, 0, len(summary.Items))
	for _, item := range summary.Items {
		lines = append(lines, pricing.QuoteLine{
			Qty:       item.Qty,
			UnitPrice: item.UnitPrice,
		})
	}

	quote, err := s.pricer.Quote(ctx, lines, pricing.Destination{
		City:    address.City,
		Country: address.Country,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to quote cart: %w", err)
	}

	return &CheckoutQuote{
		Items:         summary.Items,
		ItemsPrice:    quote.ItemsPrice,
		ShippingPrice: quote.ShippingPrice,
		TaxPrice:      quote.TaxPrice,
		TotalPrice:    quote.TotalPrice,
	}, nil
}

func (s *checkoutService) CreatePaymentIntent(ctx context.Context, buyerID uuid.UUID, address domain.ShippingAddress) (*CheckoutIntent, error) {
	quote, err := s.Quote(ctx, buyerID, address)
	if err != nil {
		return nil, err
	}

	intent, err := s.provider.CreateIntent(ctx, payment.CreateIntentParams{
		Amount:   quote.TotalPrice,
		Currency: s.currency,
		Receipt:  "rcpt_" + uuid.NewString(),
		Notes: map[string]string{
			"buyer_id": buyerID.String(),
		},
	})
	if err != nil {
		return nil, err
	}

	return &CheckoutIntent{Quote: *quote, Intent: *intent}, nil
}
