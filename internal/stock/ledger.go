package stock

import "context"

// Ledger is the authoritative count of sellable units per product and the only
// component allowed to mutate it.
//
// Reserve atomically checks that the product has at least quantity units
// available and decrements by quantity; no caller observes a partial
// decrement. Attempts against the same product serialize, attempts against
// different products do not block each other.
//
// Release restores the reserved quantity. It is idempotent: releasing an
// unknown or already-released token is a no-op, which makes the compensating
// path of a failed checkout safe to retry.
type Ledger interface {
	Reserve(ctx context.Context, productID string, quantity int) (token string, err error)
	Release(ctx context.Context, token string) error
}
