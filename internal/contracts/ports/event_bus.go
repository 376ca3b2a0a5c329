package ports

import "context"

// EventBus defines the contract for publishing contract lifecycle events.
type EventBus interface {
	PublishContractSigned(ctx context.Context, contractID string) error
	PublishContractCancelled(ctx context.Context, contractID string) error
}
