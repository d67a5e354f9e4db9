package cart

import (
	"context"

	"storefront-backend/internal/domain"
)

type CreateCartInput struct {
	UserID   string
	Currency string
}

type Repository interface {
	Create(ctx context.Context, in CreateCartInput) (*domain.Cart, error)
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	GetActiveByOwner(ctx context.Context, userID string) (*domain.Cart, error)
	AddLine(ctx context.Context, cartID string, product domain.Product, quantity int) error
	ChangeLineQuantity(ctx context.Context, cartID, lineID string, quantity int) error
	SetState(ctx context.Context, cartID, state string) error
}
