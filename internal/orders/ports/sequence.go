package ports

import "context"

// NumberSequence hands out monotonically increasing numbers. Order sequence
// numbers and print batch numbers each get their own instance; generation is
// a persistence concern, not a domain one.
type NumberSequence interface {
	Next(ctx context.Context) (int64, error)
}
