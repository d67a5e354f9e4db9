package cart

import (
	"context"
	"errors"
	"strings"

	"storefront-backend/internal/domain"
	cartrepo "storefront-backend/internal/repository/cart"
)

type Service struct {
	repo        cartRepo
	productRepo productRepo
}

type cartRepo interface {
	Create(ctx context.Context, in cartrepo.CreateCartInput) (*domain.Cart, error)
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	GetActiveByOwner(ctx context.Context, userID string) (*domain.Cart, error)
	AddLine(ctx context.Context, cartID string, product domain.Product, quantity int) error
	ChangeLineQuantity(ctx context.Context, cartID, lineID string, quantity int) error
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

func New(repo cartrepo.Repository, productRepo productRepo) *Service {
	return &Service{repo: repo, productRepo: productRepo}
}

type CreateInput struct {
	Currency string `json:"currency"`
}

type UpdateInput struct {
	Actions []UpdateAction `json:"actions"`
}

type UpdateAction struct {
	Action    string `json:"action"`
	ProductID string `json:"productId,omitempty"`
	LineID    string `json:"lineId,omitempty"`
	Quantity  int    `json:"quantity,omitempty"`
}

func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*domain.Cart, error) {
	if strings.TrimSpace(in.Currency) == "" {
		return nil, errors.New("currency required")
	}
	return s.repo.Create(ctx, cartrepo.CreateCartInput{
		UserID:   userID,
		Currency: in.Currency,
	})
}

func (s *Service) Get(ctx context.Context, userID, id string) (*domain.Cart, error) {
	cart, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cart.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return cart, nil
}

func (s *Service) GetActive(ctx context.Context, userID string) (*domain.Cart, error) {
	return s.repo.GetActiveByOwner(ctx, userID)
}

func (s *Service) Update(ctx context.Context, userID, cartID string, in UpdateInput) (*domain.Cart, error) {
	if len(in.Actions) == 0 {
		return nil, errors.New("actions required")
	}
	cart, err := s.repo.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if cart.UserID != userID {
		return nil, domain.ErrNotFound
	}
	if cart.State != domain.CartStateActive {
		return nil, errors.New("cart is not active")
	}

	for _, action := range in.Actions {
		switch strings.ToLower(strings.TrimSpace(action.Action)) {
		case "addlineitem":
			productID := strings.TrimSpace(action.ProductID)
			if productID == "" {
				return nil, errors.New("productId required")
			}
			if action.Quantity <= 0 {
				return nil, errors.New("quantity must be positive")
			}
			product, err := s.productRepo.GetByID(ctx, productID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return nil, errors.New("product not found")
				}
				return nil, err
			}
			if err := s.repo.AddLine(ctx, cartID, *product, action.Quantity); err != nil {
				return nil, err
			}
		case "changelineitemquantity":
			lineID := strings.TrimSpace(action.LineID)
			if lineID == "" {
				return nil, errors.New("lineId required")
			}
			if action.Quantity < 0 {
				return nil, errors.New("quantity must not be negative")
			}
			if err := s.repo.ChangeLineQuantity(ctx, cartID, lineID, action.Quantity); err != nil {
				return nil, err
			}
		default:
			return nil, errors.New("unsupported action")
		}
	}

	return s.repo.GetByID(ctx, cartID)
}
