package suggest

import "context"

// Provider defines the interface for the external resource-suggestion
// service. This interface enables testability by allowing mock
// implementations.
type Provider interface {
	Suggestions(ctx context.Context, topic string, limit int) ([]Suggestion, error)
}

// Ensure Client implements the interface
var _ Provider = (*Client)(nil)
