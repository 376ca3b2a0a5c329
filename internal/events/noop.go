package events

import (
	"context"
	"log/slog"
)

// NoopOrderBus logs order events without sending them anywhere. Useful for
// local dev before a broker is wired.
type NoopOrderBus struct{}

// NewNoopOrderBus returns a new no-op order event publisher.
func NewNoopOrderBus() *NoopOrderBus {
	return &NoopOrderBus{}
}

func (n *NoopOrderBus) PublishOrderCreated(_ context.Context, orderID string) error {
	slog.Debug("event::order_created", "order_id", orderID)
	return nil
}

func (n *NoopOrderBus) PublishOrderCompleted(_ context.Context, orderID string) error {
	slog.Debug("event::order_completed", "order_id", orderID)
	return nil
}

func (n *NoopOrderBus) PublishOrderCancelled(_ context.Context, orderID string) error {
	slog.Debug("event::order_cancelled", "order_id", orderID)
	return nil
}

func (n *NoopOrderBus) PublishOrderPrinted(_ context.Context, orderID string, batch int64) error {
	slog.Debug("event::order_printed", "order_id", orderID, "batch", batch)
	return nil
}

// NoopContractBus logs contract events without sending them anywhere.
type NoopContractBus struct{}

// NewNoopContractBus returns a new no-op contract event publisher.
func NewNoopContractBus() *NoopContractBus {
	return &NoopContractBus{}
}

func (n *NoopContractBus) PublishContractSigned(_ context.Context, contractID string) error {
	slog.Debug("event::contract_signed", "contract_id", contractID)
	return nil
}

func (n *NoopContractBus) PublishContractCancelled(_ context.Context, contractID string) error {
	slog.Debug("event::contract_cancelled", "contract_id", contractID)
	return nil
}
