package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type productSeed struct {
	Name       string
	Image      string
	PriceCents int64
	Currency   string
	Stock      int
}

// Apply inserts basic catalog data for manual testing. Idempotent: products
// are matched by name and updated in place.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	products := []productSeed{
		{
			Name:       "Airpods Wireless Bluetooth Headphones",
			Image:      "/images/airpods.jpg",
			PriceCents: 8999,
			Currency:   "USD",
			Stock:      10,
		},
		{
			Name:       "iPhone 13 Pro 256GB",
			Image:      "/images/phone.jpg",
			PriceCents: 59999,
			Currency:   "USD",
			Stock:      7,
		},
		{
			Name:       "Logitech G-Series Gaming Mouse",
			Image:      "/images/mouse.jpg",
			PriceCents: 4999,
			Currency:   "USD",
			Stock:      25,
		},
		{
			Name:       "Amazon Echo Dot 3rd Generation",
			Image:      "/images/alexa.jpg",
			PriceCents: 2999,
			Currency:   "USD",
			Stock:      0,
		},
	}

	for _, p := range products {
		if err := upsertProduct(ctx, pool, p); err != nil {
			return fmt.Errorf("upsert product %q: %w", p.Name, err)
		}
	}

	return nil
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, p productSeed) error {
	var id string
	err := pool.QueryRow(ctx, `SELECT id::text FROM products WHERE name = $1`, p.Name).Scan(&id)
	if err == nil {
		_, err = pool.Exec(ctx, `
UPDATE products
SET image = $2, price_cents = $3, currency = $4, stock = $5
WHERE id = $1
`, id, p.Image, p.PriceCents, p.Currency, p.Stock)
		return err
	}

	_, err = pool.Exec(ctx, `
INSERT INTO products (name, image, price_cents, currency, stock)
VALUES ($1, $2, $3, $4, $5)
`, p.Name, p.Image, p.PriceCents, p.Currency, p.Stock)
	return err
}
