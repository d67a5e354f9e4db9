package product

import (
	"context"

	"storefront-backend/internal/domain"
)

// Repository is the read-only catalog surface the checkout pipeline consumes
// at snapshot time. Stock mutation goes through the stock ledger, never here.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
}
