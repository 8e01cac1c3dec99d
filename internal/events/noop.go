package events

import "context"

// NoopPublisher discards all events. Used when NATS is disabled and in tests.
type NoopPublisher struct{}

// NewNoopPublisher creates a publisher that discards everything.
func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

// Publish discards the event.
func (*NoopPublisher) Publish(ctx context.Context, subject string, event any) error {
	return nil
}

// Close is a no-op.
func (*NoopPublisher) Close() {}
