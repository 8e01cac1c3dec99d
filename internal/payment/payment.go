// Package payment abstracts the external payment provider behind a narrow
// interface: create a provider-side intent for an amount, and later verify a
// client-supplied confirmation before trusting it. A client's "I paid" claim
// is never accepted without verification.
package payment

import (
	"context"
)

// Provider defines the interface for payment processing.
// Implementations exist for Razorpay, Stripe, and an in-memory mock.
type Provider interface {
	// CreateIntent creates a provider-side payment intent for the given
	// amount. Returns ErrGatewayUnavailable (wrapped) on network or provider
	// failure; the caller retries with backoff, the provider does not.
	CreateIntent(ctx context.Context, params CreateIntentParams) (*Intent, error)

	// GetIntent retrieves an existing intent by its provider order id.
	// Used at order creation to compare the amount actually authorized
	// against the server-side recomputed total.
	GetIntent(ctx context.Context, providerOrderID string) (*Intent, error)

	// VerifyConfirmation verifies that a claimed payment actually succeeded
	// and belongs to the expected intent, cryptographically or via the
	// provider API. Returns (false, nil) for a well-formed but invalid
	// claim, and a non-nil error only for provider/transport failures.
	VerifyConfirmation(ctx context.Context, conf Confirmation) (bool, error)
}

// CreateIntentParams contains parameters for creating a payment intent.
type CreateIntentParams struct {
	// Amount in minor currency units (paise for INR).
	Amount int64

	// Currency code (ISO 4217, lower case), e.g. "inr".
	Currency string

	// Receipt is a merchant-side reference shown in the provider dashboard.
	Receipt string

	// Notes are provider-side metadata for filtering and reporting.
	Notes map[string]string
}

// Intent is a provider-side reservation for a specific amount.
type Intent struct {
	ProviderOrderID string
	Amount          int64
	Currency        string
	Status          string
}

// Confirmation is the client-supplied claim that a payment succeeded.
type Confirmation struct {
	ProviderPaymentID string
	ProviderOrderID   string

	// Signature is the provider's signature over payment and order ids
	// (Razorpay). Providers that verify via API lookup ignore it.
	Signature string
}
