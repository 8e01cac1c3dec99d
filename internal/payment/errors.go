package payment

import (
	"errors"
	"fmt"
)

var (
	// ErrGatewayUnavailable is returned when the provider cannot be reached
	// or answers with a server-side failure. Transient; callers retry with
	// backoff rather than the provider retrying internally.
	ErrGatewayUnavailable = errors.New("payment: gateway unavailable")

	// ErrIntentNotFound is returned when the provider has no record of the
	// requested intent.
	ErrIntentNotFound = errors.New("payment: intent not found")

	// ErrMissingCredentials is returned when provider credentials are absent.
	ErrMissingCredentials = errors.New("payment: provider credentials are required")
)

// GatewayError wraps a provider transport failure with request context while
// still matching ErrGatewayUnavailable via errors.Is.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment: %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return ErrGatewayUnavailable
}

// unavailable wraps err as a gateway-unavailable failure for the operation.
func unavailable(op string, err error) error {
	return &GatewayError{Op: op, Err: err}
}
