package ports

import "context"

// EventBus defines the contract for publishing order lifecycle events.
type EventBus interface {
	PublishOrderCreated(ctx context.Context, orderID string) error
	PublishOrderCompleted(ctx context.Context, orderID string) error
	PublishOrderCancelled(ctx context.Context, orderID string) error
	PublishOrderPrinted(ctx context.Context, orderID string, batch int64) error
}
