package domain

import "time"

type Product struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Image      string    `json:"image,omitempty"`
	PriceCents int64     `json:"priceCents"`
	Currency   string    `json:"currency"`
	Stock      int       `json:"stock"`
	CreatedAt  time.Time `json:"createdAt"`
}
