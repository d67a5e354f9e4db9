package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront-backend/internal/domain"
)

// memOrderRepo mimics the conditional-update guards of the Postgres
// repository over an in-memory map.
type memOrderRepo struct {
	orders map[string]*domain.Order
}

func newMemOrderRepo(orders ...*domain.Order) *memOrderRepo {
	repo := &memOrderRepo{orders: make(map[string]*domain.Order)}
	for _, o := range orders {
		repo.orders[o.ID] = o
	}
	return repo
}

func (r *memOrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *o
	return &copied, nil
}

func (r *memOrderRepo) MarkPaid(_ context.Context, id string, result domain.PaymentResult, paidAt time.Time) (*domain.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if o.IsPaid {
		return nil, domain.ErrAlreadyPaid
	}
	o.IsPaid = true
	o.PaidAt = &paidAt
	o.PaymentResult = &result
	copied := *o
	return &copied, nil
}

func (r *memOrderRepo) MarkDelivered(_ context.Context, id string, deliveredAt time.Time) (*domain.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if !o.IsPaid {
		return nil, domain.ErrNotYetPaid
	}
	if o.IsDelivered {
		return nil, domain.ErrAlreadyDelivered
	}
	o.IsDelivered = true
	o.DeliveredAt = &deliveredAt
	copied := *o
	return &copied, nil
}

func createdOrder(id string) *domain.Order {
	return &domain.Order{ID: id, UserID: "u1", TotalCents: 1000}
}

func TestMarkPaidHappyPath(t *testing.T) {
	repo := newMemOrderRepo(createdOrder("o1"))
	svc := New(repo, nil, nil, nil)

	settled := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	order, err := svc.MarkPaid(context.Background(), "o1", domain.PaymentResult{
		TransactionID: "tx-1",
		Status:        "succeeded",
		SettledAt:     &settled,
	})
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if !order.IsPaid {
		t.Fatal("expected isPaid true")
	}
	if order.PaidAt == nil || !order.PaidAt.Equal(settled) {
		t.Fatalf("expected paidAt %v, got %v", settled, order.PaidAt)
	}
	if order.PaymentResult == nil || order.PaymentResult.TransactionID != "tx-1" {
		t.Fatalf("expected stored payment result, got %+v", order.PaymentResult)
	}
}

func TestMarkPaidIsAppliedAtMostOnce(t *testing.T) {
	repo := newMemOrderRepo(createdOrder("o1"))
	svc := New(repo, nil, nil, nil)

	first, err := svc.MarkPaid(context.Background(), "o1", domain.PaymentResult{TransactionID: "tx-1"})
	if err != nil {
		t.Fatalf("first mark paid: %v", err)
	}

	_, err = svc.MarkPaid(context.Background(), "o1", domain.PaymentResult{TransactionID: "tx-2"})
	if !errors.Is(err, domain.ErrAlreadyPaid) {
		t.Fatalf("expected ErrAlreadyPaid, got %v", err)
	}

	after, err := repo.GetByID(context.Background(), "o1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if after.PaymentResult.TransactionID != "tx-1" {
		t.Fatalf("duplicate must not overwrite the first result, got %q", after.PaymentResult.TransactionID)
	}
	if !after.PaidAt.Equal(*first.PaidAt) {
		t.Fatalf("paidAt changed on duplicate: %v vs %v", after.PaidAt, first.PaidAt)
	}
}

func TestMarkPaidUnknownOrder(t *testing.T) {
	svc := New(newMemOrderRepo(), nil, nil, nil)
	_, err := svc.MarkPaid(context.Background(), "missing", domain.PaymentResult{})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMarkDeliveredRequiresPayment(t *testing.T) {
	repo := newMemOrderRepo(createdOrder("o1"))
	svc := New(repo, nil, nil, nil)

	_, err := svc.MarkDelivered(context.Background(), "o1")
	if !errors.Is(err, domain.ErrNotYetPaid) {
		t.Fatalf("expected ErrNotYetPaid, got %v", err)
	}

	after, _ := repo.GetByID(context.Background(), "o1")
	if after.IsDelivered || after.DeliveredAt != nil {
		t.Fatalf("refused delivery must not mutate: %+v", after)
	}
}

func TestMarkDeliveredHappyPathAndDuplicate(t *testing.T) {
	repo := newMemOrderRepo(createdOrder("o1"))
	svc := New(repo, nil, nil, nil)

	if _, err := svc.MarkPaid(context.Background(), "o1", domain.PaymentResult{TransactionID: "tx-1"}); err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	order, err := svc.MarkDelivered(context.Background(), "o1")
	if err != nil {
		t.Fatalf("mark delivered: %v", err)
	}
	if !order.IsDelivered || order.DeliveredAt == nil {
		t.Fatalf("expected delivered order, got %+v", order)
	}
	if !order.IsPaid {
		t.Fatal("delivered order must remain paid")
	}

	if _, err := svc.MarkDelivered(context.Background(), "o1"); !errors.Is(err, domain.ErrAlreadyDelivered) {
		t.Fatalf("expected ErrAlreadyDelivered, got %v", err)
	}
}

func TestMarkDeliveredUnknownOrder(t *testing.T) {
	svc := New(newMemOrderRepo(), nil, nil, nil)
	if _, err := svc.MarkDelivered(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// Simulates losing the check-then-act race: the pre-read sees an unpaid
// order, the guarded update then fails because another caller won.
type racingRepo struct {
	*memOrderRepo
	flipped bool
}

func (r *racingRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	o, err := r.memOrderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !r.flipped {
		r.flipped = true
		// Another caller pays the order right after our read.
		r.orders[id].IsPaid = true
		now := time.Now()
		r.orders[id].PaidAt = &now
		r.orders[id].PaymentResult = &domain.PaymentResult{TransactionID: "winner"}
	}
	return o, nil
}

func TestMarkPaidLostRaceReportsAlreadyPaid(t *testing.T) {
	repo := &racingRepo{memOrderRepo: newMemOrderRepo(createdOrder("o1"))}
	svc := New(repo, nil, nil, nil)

	_, err := svc.MarkPaid(context.Background(), "o1", domain.PaymentResult{TransactionID: "loser"})
	if !errors.Is(err, domain.ErrAlreadyPaid) {
		t.Fatalf("expected ErrAlreadyPaid from guarded update, got %v", err)
	}
	after, _ := repo.memOrderRepo.GetByID(context.Background(), "o1")
	if after.PaymentResult.TransactionID != "winner" {
		t.Fatalf("winner's result must stand, got %q", after.PaymentResult.TransactionID)
	}
}
