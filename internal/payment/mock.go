package payment

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MockProvider is an in-memory payment provider for tests and local
// development. Every confirmation whose order id is known verifies as true
// unless overridden.
type MockProvider struct {
	// CreateIntentFunc allows customizing intent creation behavior.
	CreateIntentFunc func(ctx context.Context, params CreateIntentParams) (*Intent, error)

	// GetIntentFunc allows customizing intent retrieval behavior.
	GetIntentFunc func(ctx context.Context, providerOrderID string) (*Intent, error)

	// VerifyConfirmationFunc allows customizing verification behavior.
	VerifyConfirmationFunc func(ctx context.Context, conf Confirmation) (bool, error)

	mu sync.Mutex

	// Intents stores created intents for retrieval.
	Intents map[string]*Intent

	// CallLog tracks method calls for test assertions.
	CallLog []string
}

// NewMockProvider creates a new mock payment provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Intents: make(map[string]*Intent),
	}
}

// CreateIntent creates a mock intent with a generated provider order id.
func (m *MockProvider) CreateIntent(ctx context.Context, params CreateIntentParams) (*Intent, error) {
	m.log(fmt.Sprintf("CreateIntent(%d, %s)", params.Amount, params.Currency))

	if m.CreateIntentFunc != nil {
		return m.CreateIntentFunc(ctx, params)
	}

	intent := &Intent{
		ProviderOrderID: "order_mock_" + uuid.NewString(),
		Amount:          params.Amount,
		Currency:        params.Currency,
		Status:          "created",
	}

	m.mu.Lock()
	m.Intents[intent.ProviderOrderID] = intent
	m.mu.Unlock()

	return intent, nil
}

// GetIntent retrieves a stored mock intent.
func (m *MockProvider) GetIntent(ctx context.Context, providerOrderID string) (*Intent, error) {
	m.log(fmt.Sprintf("GetIntent(%s)", providerOrderID))

	if m.GetIntentFunc != nil {
		return m.GetIntentFunc(ctx, providerOrderID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	intent, ok := m.Intents[providerOrderID]
	if !ok {
		return nil, ErrIntentNotFound
	}
	return intent, nil
}

// VerifyConfirmation verifies against stored intents.
func (m *MockProvider) VerifyConfirmation(ctx context.Context, conf Confirmation) (bool, error) {
	m.log(fmt.Sprintf("VerifyConfirmation(%s, %s)", conf.ProviderPaymentID, conf.ProviderOrderID))

	if m.VerifyConfirmationFunc != nil {
		return m.VerifyConfirmationFunc(ctx, conf)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Intents[conf.ProviderOrderID]
	return ok && conf.ProviderPaymentID != "", nil
}

func (m *MockProvider) log(entry string) {
	m.mu.Lock()
	m.CallLog = append(m.CallLog, entry)
	m.mu.Unlock()
}
