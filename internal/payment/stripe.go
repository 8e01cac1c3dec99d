package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

// StripeConfig contains configuration for the Stripe provider.
type StripeConfig struct {
	// SecretKey is the Stripe secret key (sk_test_... or sk_live_...).
	SecretKey string
}

// Validate checks that required configuration is present.
func (c *StripeConfig) Validate() error {
	if c.SecretKey == "" {
		return ErrMissingCredentials
	}
	return nil
}

// IsTestMode returns true if using test mode API keys.
func (c *StripeConfig) IsTestMode() bool {
	return len(c.SecretKey) > 7 && c.SecretKey[:8] == "sk_test_"
}

// StripeProvider implements Provider using Stripe Payment Intents. Unlike
// Razorpay there is no detached signature to check: verification retrieves
// the intent from Stripe and confirms it succeeded for the expected id.
type StripeProvider struct {
	sc *client.API
}

// NewStripeProvider creates a new Stripe payment provider.
func NewStripeProvider(cfg StripeConfig) (*StripeProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sc := &client.API{}
	sc.Init(cfg.SecretKey, nil)
	return &StripeProvider{sc: sc}, nil
}

// CreateIntent creates a Stripe payment intent.
func (p *StripeProvider) CreateIntent(ctx context.Context, params CreateIntentParams) (*Intent, error) {
	piParams := &stripe.PaymentIntentParams{
		Params: stripe.Params{
			Context:  ctx,
			Metadata: params.Notes,
		},
		Amount:   stripe.Int64(params.Amount),
		Currency: stripe.String(params.Currency),
	}
	if params.Receipt != "" {
		piParams.Description = stripe.String(params.Receipt)
	}

	pi, err := p.sc.PaymentIntents.New(piParams)
	if err != nil {
		return nil, stripeFailure("create intent", err)
	}

	return &Intent{
		ProviderOrderID: pi.ID,
		Amount:          pi.Amount,
		Currency:        string(pi.Currency),
		Status:          string(pi.Status),
	}, nil
}

// GetIntent retrieves an existing Stripe payment intent.
func (p *StripeProvider) GetIntent(ctx context.Context, providerOrderID string) (*Intent, error) {
	pi, err := p.sc.PaymentIntents.Get(providerOrderID, &stripe.PaymentIntentParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		return nil, stripeFailure("get intent", err)
	}

	return &Intent{
		ProviderOrderID: pi.ID,
		Amount:          pi.Amount,
		Currency:        string(pi.Currency),
		Status:          string(pi.Status),
	}, nil
}

// VerifyConfirmation retrieves the claimed intent and confirms it succeeded.
// The claim is only trusted if Stripe says the intent with that exact id has
// status "succeeded".
func (p *StripeProvider) VerifyConfirmation(ctx context.Context, conf Confirmation) (bool, error) {
	if conf.ProviderOrderID == "" {
		return false, nil
	}

	pi, err := p.sc.PaymentIntents.Get(conf.ProviderOrderID, &stripe.PaymentIntentParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == 404 {
			return false, nil
		}
		return false, stripeFailure("verify confirmation", err)
	}

	return pi.Status == stripe.PaymentIntentStatusSucceeded, nil
}

// stripeFailure maps Stripe SDK errors onto the package error taxonomy.
// Connection-level and server-side failures are retryable gateway errors;
// everything else surfaces as-is.
func stripeFailure(op string, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.HTTPStatusCode >= 500 || stripeErr.Type == stripe.ErrorTypeAPI {
			return unavailable(op, err)
		}
		return fmt.Errorf("stripe: %s: %w", op, err)
	}
	return unavailable(op, err)
}
