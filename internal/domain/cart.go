package domain

import "time"

type Cart struct {
	ID         string     `json:"id"`
	UserID     string     `json:"userId"`
	Currency   string     `json:"currency"`
	TotalCents int64      `json:"totalCents"`
	State      string     `json:"state"`
	CreatedAt  time.Time  `json:"createdAt"`
	Lines      []CartLine `json:"lines,omitempty"`
}

type CartLine struct {
	ID             string    `json:"id"`
	CartID         string    `json:"cartId"`
	ProductID      string    `json:"productId"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	TotalCents     int64     `json:"totalCents"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Cart states. A cart moves to ordered after a successful checkout and is
// never read by the pipeline again.
const (
	CartStateActive  = "active"
	CartStateOrdered = "ordered"
)
