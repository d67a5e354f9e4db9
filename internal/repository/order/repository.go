package order

import (
	"context"
	"time"

	"storefront-backend/internal/domain"
)

// Repository persists order aggregates. Create writes the order and its items
// in one transaction; MarkPaid and MarkDelivered are state-guarded single-row
// updates, so no caller can observe a partial write and a lost race surfaces
// as the matching transition error instead of a second mutation.
type Repository interface {
	Create(ctx context.Context, order domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByOwner(ctx context.Context, userID string) ([]domain.Order, error)
	MarkPaid(ctx context.Context, id string, result domain.PaymentResult, paidAt time.Time) (*domain.Order, error)
	MarkDelivered(ctx context.Context, id string, deliveredAt time.Time) (*domain.Order, error)
}
