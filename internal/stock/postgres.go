package stock

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront-backend/internal/domain"
)

// PostgresLedger backs the stock count with the products table. The
// conditional decrement is a single statement, so concurrent reservations of
// one product serialize on its row while other products proceed untouched.
type PostgresLedger struct {
	pool *pgxpool.Pool
}

func NewPostgresLedger(pool *pgxpool.Pool) *PostgresLedger {
	return &PostgresLedger{pool: pool}
}

func (l *PostgresLedger) Reserve(ctx context.Context, productID string, quantity int) (string, error) {
	if quantity <= 0 {
		return "", fmt.Errorf("quantity must be positive, got %d", quantity)
	}

	tx, err := l.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `
UPDATE products
SET stock = stock - $2
WHERE id = $1 AND stock >= $2
`, productID, quantity)
	if err != nil {
		return "", err
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists); err != nil {
			return "", err
		}
		if !exists {
			return "", fmt.Errorf("product %s: %w", productID, domain.ErrNotFound)
		}
		return "", fmt.Errorf("product %s: %w", productID, domain.ErrInsufficientStock)
	}

	token := uuid.NewString()
	if _, err := tx.Exec(ctx, `
INSERT INTO stock_reservations (token, product_id, quantity)
VALUES ($1, $2, $3)
`, token, productID, quantity); err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return token, nil
}

func (l *PostgresLedger) Release(ctx context.Context, token string) error {
	tx, err := l.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// The released guard makes a double release a no-op.
	var productID string
	var quantity int
	err = tx.QueryRow(ctx, `
UPDATE stock_reservations
SET released = TRUE, released_at = now()
WHERE token = $1 AND released = FALSE
RETURNING product_id::text, quantity
`, token).Scan(&productID, &quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}

	if _, err := tx.Exec(ctx, `
UPDATE products
SET stock = stock + $2
WHERE id = $1
`, productID, quantity); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
