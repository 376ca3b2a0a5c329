package ports

import "context"

// StoredResponse is the response payload replayed when a create request
// reuses an Idempotency-Key.
type StoredResponse struct {
	StatusCode int
	Body       []byte
	OrderID    string
}

// IdempotencyStore ensures order creation can be retried safely.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (*StoredResponse, error)
	Save(ctx context.Context, key string, response StoredResponse) error
}
