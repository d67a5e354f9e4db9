package stock

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"storefront-backend/internal/domain"
)

// MemoryLedger keeps stock counts in memory. Each product carries its own
// mutex so contention on one product never blocks reservations on another.
type MemoryLedger struct {
	mu       sync.RWMutex
	products map[string]*productStock

	resMu        sync.Mutex
	reservations map[string]reservation
}

type productStock struct {
	mu        sync.Mutex
	available int
}

type reservation struct {
	productID string
	quantity  int
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		products:     make(map[string]*productStock),
		reservations: make(map[string]reservation),
	}
}

// SetStock sets the available count for a product, creating it if needed.
func (l *MemoryLedger) SetStock(productID string, quantity int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if p, ok := l.products[productID]; ok {
		p.mu.Lock()
		p.available = quantity
		p.mu.Unlock()
		return
	}
	l.products[productID] = &productStock{available: quantity}
}

// Available returns the current sellable count for a product.
func (l *MemoryLedger) Available(productID string) int {
	l.mu.RLock()
	p, ok := l.products[productID]
	l.mu.RUnlock()
	if !ok {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.available
}

func (l *MemoryLedger) Reserve(_ context.Context, productID string, quantity int) (string, error) {
	if quantity <= 0 {
		return "", fmt.Errorf("quantity must be positive, got %d", quantity)
	}

	l.mu.RLock()
	p, ok := l.products[productID]
	l.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("product %s: %w", productID, domain.ErrNotFound)
	}

	p.mu.Lock()
	if p.available < quantity {
		p.mu.Unlock()
		return "", fmt.Errorf("product %s: %w", productID, domain.ErrInsufficientStock)
	}
	p.available -= quantity
	p.mu.Unlock()

	token := uuid.NewString()
	l.resMu.Lock()
	l.reservations[token] = reservation{productID: productID, quantity: quantity}
	l.resMu.Unlock()
	return token, nil
}

func (l *MemoryLedger) Release(_ context.Context, token string) error {
	l.resMu.Lock()
	res, ok := l.reservations[token]
	if ok {
		delete(l.reservations, token)
	}
	l.resMu.Unlock()
	if !ok {
		return nil
	}

	l.mu.RLock()
	p := l.products[res.productID]
	l.mu.RUnlock()
	if p == nil {
		return nil
	}
	p.mu.Lock()
	p.available += res.quantity
	p.mu.Unlock()
	return nil
}
