package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const razorpayBaseURL = "https://api.razorpay.com/v1"

// RazorpayConfig contains configuration for the Razorpay provider.
type RazorpayConfig struct {
	// KeyID is the API key id (rzp_test_... or rzp_live_...).
	KeyID string

	// KeySecret signs confirmation signatures and authenticates API calls.
	KeySecret string

	// Timeout bounds every provider API call. Defaults to 10s.
	Timeout time.Duration

	// BaseURL overrides the API endpoint, for tests.
	BaseURL string
}

// Validate checks that required configuration is present.
func (c *RazorpayConfig) Validate() error {
	if c.KeyID == "" || c.KeySecret == "" {
		return ErrMissingCredentials
	}
	return nil
}

// IsTestMode returns true if using test mode API keys.
func (c *RazorpayConfig) IsTestMode() bool {
	return len(c.KeyID) > 8 && c.KeyID[:9] == "rzp_test_"
}

// RazorpayProvider implements Provider using the Razorpay Orders API.
// Confirmations are verified cryptographically: Razorpay signs
// "order_id|payment_id" with the key secret, and that signature is checked
// server-side before any payment claim is trusted.
type RazorpayProvider struct {
	cfg    RazorpayConfig
	client *http.Client
}

// NewRazorpayProvider creates a new Razorpay payment provider.
func NewRazorpayProvider(cfg RazorpayConfig) (*RazorpayProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = razorpayBaseURL
	}
	return &RazorpayProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// razorpayOrder is the wire shape of a Razorpay order.
type razorpayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

// CreateIntent creates a Razorpay order for the given amount.
func (p *RazorpayProvider) CreateIntent(ctx context.Context, params CreateIntentParams) (*Intent, error) {
	body, err := json.Marshal(map[string]any{
		"amount":   params.Amount,
		"currency": params.Currency,
		"receipt":  params.Receipt,
		"notes":    params.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(p.cfg.KeyID, p.cfg.KeySecret)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, unavailable("create order", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, unavailable("create order", fmt.Errorf("provider returned %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("razorpay order create failed with status %d", resp.StatusCode)
	}

	var order razorpayOrder
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, unavailable("create order", fmt.Errorf("malformed provider response: %w", err))
	}

	return &Intent{
		ProviderOrderID: order.ID,
		Amount:          order.Amount,
		Currency:        order.Currency,
		Status:          order.Status,
	}, nil
}

// GetIntent retrieves an existing Razorpay order.
func (p *RazorpayProvider) GetIntent(ctx context.Context, providerOrderID string) (*Intent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.BaseURL+"/orders/"+providerOrderID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build order request: %w", err)
	}
	req.SetBasicAuth(p.cfg.KeyID, p.cfg.KeySecret)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, unavailable("get order", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrIntentNotFound
	case resp.StatusCode >= 500:
		return nil, unavailable("get order", fmt.Errorf("provider returned %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("razorpay order fetch failed with status %d", resp.StatusCode)
	}

	var order razorpayOrder
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, unavailable("get order", fmt.Errorf("malformed provider response: %w", err))
	}

	return &Intent{
		ProviderOrderID: order.ID,
		Amount:          order.Amount,
		Currency:        order.Currency,
		Status:          order.Status,
	}, nil
}

// VerifyConfirmation checks the HMAC-SHA256 signature Razorpay computes over
// "order_id|payment_id" with the key secret. No network call is needed; the
// signature cannot be forged without the secret.
func (p *RazorpayProvider) VerifyConfirmation(ctx context.Context, conf Confirmation) (bool, error) {
	if conf.ProviderPaymentID == "" || conf.ProviderOrderID == "" || conf.Signature == "" {
		return false, nil
	}

	mac := hmac.New(sha256.New, []byte(p.cfg.KeySecret))
	mac.Write([]byte(conf.ProviderOrderID + "|" + conf.ProviderPaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(conf.Signature)), nil
}
