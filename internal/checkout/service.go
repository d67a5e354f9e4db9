package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"storefront-backend/internal/domain"
	"storefront-backend/internal/events"
	"storefront-backend/internal/metrics"
	"storefront-backend/internal/pricing"
	"storefront-backend/internal/stock"
)

// Service converts a mutable cart into an immutable, priced order. Stock is
// reserved before anything is priced or persisted; every later failure runs
// the compensating release so no reservation is left orphaned.
type Service struct {
	carts   cartRepo
	catalog catalogRepo
	ledger  stock.Ledger
	orders  orderRepo
	policy  pricing.Policy
	events  *events.Publisher
	metrics *metrics.Metrics
	logger  *log.Logger
	now     func() time.Time
}

type cartRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	SetState(ctx context.Context, cartID, state string) error
}

type catalogRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type orderRepo interface {
	Create(ctx context.Context, order domain.Order) (*domain.Order, error)
}

func New(carts cartRepo, catalog catalogRepo, ledger stock.Ledger, orders orderRepo, policy pricing.Policy, pub *events.Publisher, m *metrics.Metrics, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		carts:   carts,
		catalog: catalog,
		ledger:  ledger,
		orders:  orders,
		policy:  policy,
		events:  pub,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

type Input struct {
	CartID          string               `json:"cartId"`
	ShippingAddress domain.Address       `json:"shippingAddress"`
	PaymentMethod   domain.PaymentMethod `json:"paymentMethod"`
}

// Checkout validates, snapshots, reserves, prices, and persists. Reservations
// happen in ascending product-id order so two checkouts sharing products can
// never deadlock by acquiring them in opposite orders.
func (s *Service) Checkout(ctx context.Context, userID string, in Input) (*domain.Order, error) {
	started := s.now()

	if !in.PaymentMethod.Valid() {
		s.metrics.ObserveCheckout("invalid", s.now().Sub(started))
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidPaymentMethod, in.PaymentMethod)
	}
	if err := in.ShippingAddress.Validate(); err != nil {
		s.metrics.ObserveCheckout("invalid", s.now().Sub(started))
		return nil, err
	}

	snap, currency, err := s.snapshot(ctx, userID, in.CartID)
	if err != nil {
		s.metrics.ObserveCheckout("invalid", s.now().Sub(started))
		return nil, err
	}

	tokens, err := s.reserve(ctx, snap)
	if err != nil {
		s.metrics.ObserveCheckout("insufficient_stock", s.now().Sub(started))
		return nil, err
	}

	amounts := pricing.Price(*snap, s.policy)

	order := domain.Order{
		UserID:          userID,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		ItemsCents:      amounts.ItemsCents,
		TaxCents:        amounts.TaxCents,
		ShippingCents:   amounts.ShippingCents,
		TotalCents:      amounts.TotalCents,
		Currency:        currency,
	}
	for _, it := range snap.Items {
		order.Items = append(order.Items, domain.OrderItem{
			ProductID:      it.ProductID,
			Name:           it.Name,
			Image:          it.Image,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
		})
	}

	created, err := s.orders.Create(ctx, order)
	if err != nil {
		s.releaseAll(ctx, tokens)
		s.metrics.ObserveCheckout("persist_failed", s.now().Sub(started))
		return nil, fmt.Errorf("persist order: %w", err)
	}

	if err := s.carts.SetState(ctx, in.CartID, domain.CartStateOrdered); err != nil {
		s.logger.Printf("mark cart %s ordered: %v", in.CartID, err)
	}
	if err := s.events.OrderPlaced(ctx, *created); err != nil {
		s.logger.Printf("publish order placed %s: %v", created.ID, err)
	}

	s.metrics.ObserveCheckout("ok", s.now().Sub(started))
	return created, nil
}

// Preview prices the current cart without touching stock.
func (s *Service) Preview(ctx context.Context, userID, cartID string) (pricing.Amounts, error) {
	snap, _, err := s.snapshot(ctx, userID, cartID)
	if err != nil {
		return pricing.Amounts{}, err
	}
	return pricing.Price(*snap, s.policy), nil
}

// snapshot loads the cart and captures product name, image and current unit
// price per line, merging duplicate lines of the same product.
func (s *Service) snapshot(ctx context.Context, userID, cartID string) (*domain.CartSnapshot, string, error) {
	cart, err := s.carts.GetByID(ctx, cartID)
	if err != nil {
		return nil, "", err
	}
	if cart.UserID != userID || cart.State != domain.CartStateActive {
		return nil, "", domain.ErrNotFound
	}
	if len(cart.Lines) == 0 {
		return nil, "", domain.ErrEmptyCart
	}

	snap := &domain.CartSnapshot{UserID: userID, TakenAt: s.now().UTC()}
	index := make(map[string]int)
	for _, line := range cart.Lines {
		if line.Quantity <= 0 {
			return nil, "", fmt.Errorf("cart line %s: quantity must be positive", line.ID)
		}
		if i, ok := index[line.ProductID]; ok {
			snap.Items[i].Quantity += line.Quantity
			continue
		}
		product, err := s.catalog.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, "", fmt.Errorf("lookup product %s: %w", line.ProductID, err)
		}
		index[line.ProductID] = len(snap.Items)
		snap.Items = append(snap.Items, domain.SnapshotItem{
			ProductID:      product.ID,
			Name:           product.Name,
			Image:          product.Image,
			Quantity:       line.Quantity,
			UnitPriceCents: product.PriceCents,
		})
	}
	return snap, cart.Currency, nil
}

// reserve takes stock for every distinct product, ascending by product id.
// On any failure all tokens acquired so far are released.
func (s *Service) reserve(ctx context.Context, snap *domain.CartSnapshot) ([]string, error) {
	items := make([]domain.SnapshotItem, len(snap.Items))
	copy(items, snap.Items)
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

	var tokens []string
	for _, it := range items {
		if err := ctx.Err(); err != nil {
			s.releaseAll(ctx, tokens)
			return nil, err
		}
		token, err := s.ledger.Reserve(ctx, it.ProductID, it.Quantity)
		if err != nil {
			s.releaseAll(ctx, tokens)
			s.metrics.CountReservation("failed")
			if errors.Is(err, domain.ErrInsufficientStock) || errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("%w (product %s)", domain.ErrInsufficientStock, it.ProductID)
			}
			return nil, err
		}
		s.metrics.CountReservation("ok")
		tokens = append(tokens, token)
	}
	return tokens, nil
}

// releaseAll runs the compensating release. It ignores the caller's
// cancellation so a timed-out checkout still returns its stock.
func (s *Service) releaseAll(ctx context.Context, tokens []string) {
	ctx = context.WithoutCancel(ctx)
	for _, token := range tokens {
		if err := s.ledger.Release(ctx, token); err != nil {
			s.logger.Printf("release reservation %s: %v", token, err)
		}
		s.metrics.CountReservation("released")
	}
}
