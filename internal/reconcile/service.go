package reconcile

import (
	"context"
	"log"
	"time"

	"storefront-backend/internal/domain"
	"storefront-backend/internal/events"
	"storefront-backend/internal/metrics"
)

// Service applies external payment and delivery events to existing orders.
// The only legal progression is Created -> Paid -> Delivered; nothing ever
// moves backward. Each transition either mutates exactly once or fails with a
// named error, so callers can retry safely and tell a duplicate gateway
// callback apart from a stale order reference.
type Service struct {
	orders  orderRepo
	events  *events.Publisher
	metrics *metrics.Metrics
	logger  *log.Logger
	now     func() time.Time
}

type orderRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	MarkPaid(ctx context.Context, id string, result domain.PaymentResult, paidAt time.Time) (*domain.Order, error)
	MarkDelivered(ctx context.Context, id string, deliveredAt time.Time) (*domain.Order, error)
}

func New(orders orderRepo, pub *events.Publisher, m *metrics.Metrics, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{orders: orders, events: pub, metrics: m, logger: logger, now: time.Now}
}

// MarkPaid transitions Created -> Paid. A second call reports ErrAlreadyPaid;
// the order keeps the result of the first call only.
func (s *Service) MarkPaid(ctx context.Context, orderID string, result domain.PaymentResult) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		s.metrics.CountReconciliation("pay", "not_found")
		return nil, err
	}
	if order.IsPaid {
		s.metrics.CountReconciliation("pay", "duplicate")
		return nil, domain.ErrAlreadyPaid
	}

	paidAt := s.now().UTC()
	if result.SettledAt != nil {
		paidAt = result.SettledAt.UTC()
	}

	updated, err := s.orders.MarkPaid(ctx, orderID, result, paidAt)
	if err != nil {
		s.metrics.CountReconciliation("pay", "rejected")
		return nil, err
	}

	if err := s.events.OrderPaid(ctx, *updated); err != nil {
		s.logger.Printf("publish order paid %s: %v", updated.ID, err)
	}
	s.metrics.CountReconciliation("pay", "ok")
	return updated, nil
}

// MarkDelivered transitions Paid -> Delivered. Orders that were never paid
// are refused with ErrNotYetPaid.
func (s *Service) MarkDelivered(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		s.metrics.CountReconciliation("deliver", "not_found")
		return nil, err
	}
	if order.IsDelivered {
		s.metrics.CountReconciliation("deliver", "duplicate")
		return nil, domain.ErrAlreadyDelivered
	}
	if !order.IsPaid {
		s.metrics.CountReconciliation("deliver", "rejected")
		return nil, domain.ErrNotYetPaid
	}

	updated, err := s.orders.MarkDelivered(ctx, orderID, s.now().UTC())
	if err != nil {
		s.metrics.CountReconciliation("deliver", "rejected")
		return nil, err
	}
	s.metrics.CountReconciliation("deliver", "ok")
	return updated, nil
}
