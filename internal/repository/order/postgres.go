package order

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront-backend/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logger}
}

const orderColumns = `
id::text, user_id, street, city, postal_code, country, payment_method,
items_cents, tax_cents, shipping_cents, total_cents, currency,
is_paid, paid_at, is_delivered, delivered_at,
payment_tx_id, payment_status, payment_settled_at, payment_payer_email,
created_at
`

func (r *postgresRepo) Create(ctx context.Context, in domain.Order) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const insertOrder = `
INSERT INTO orders (user_id, street, city, postal_code, country, payment_method,
	items_cents, tax_cents, shipping_cents, total_cents, currency)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING id::text, created_at
`
	created := in
	if err := tx.QueryRow(ctx, insertOrder,
		in.UserID,
		in.ShippingAddress.Street,
		in.ShippingAddress.City,
		in.ShippingAddress.PostalCode,
		in.ShippingAddress.Country,
		string(in.PaymentMethod),
		in.ItemsCents,
		in.TaxCents,
		in.ShippingCents,
		in.TotalCents,
		in.Currency,
	).Scan(&created.ID, &created.CreatedAt); err != nil {
		return nil, err
	}

	const insertItem = `
INSERT INTO order_items (order_id, product_id, name, image, quantity, unit_price_cents)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id::text
`
	created.Items = make([]domain.OrderItem, len(in.Items))
	for i, item := range in.Items {
		item.OrderID = created.ID
		if err := tx.QueryRow(ctx, insertItem,
			created.ID,
			item.ProductID,
			item.Name,
			item.Image,
			item.Quantity,
			item.UnitPriceCents,
		).Scan(&item.ID); err != nil {
			return nil, err
		}
		created.Items[i] = item
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	o, err := r.fetchOrder(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) ListByOwner(ctx context.Context, userID string) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		if err := r.attachItems(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *postgresRepo) MarkPaid(ctx context.Context, id string, result domain.PaymentResult, paidAt time.Time) (*domain.Order, error) {
	const q = `
UPDATE orders
SET is_paid = TRUE,
    paid_at = $2,
    payment_tx_id = $3,
    payment_status = $4,
    payment_settled_at = $5,
    payment_payer_email = $6
WHERE id = $1 AND is_paid = FALSE
`
	cmd, err := r.pool.Exec(ctx, q, id, paidAt, result.TransactionID, result.Status, result.SettledAt, result.PayerEmail)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		var isPaid bool
		err := r.pool.QueryRow(ctx, `SELECT is_paid FROM orders WHERE id = $1`, id).Scan(&isPaid)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		return nil, domain.ErrAlreadyPaid
	}
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) MarkDelivered(ctx context.Context, id string, deliveredAt time.Time) (*domain.Order, error) {
	const q = `
UPDATE orders
SET is_delivered = TRUE,
    delivered_at = $2
WHERE id = $1 AND is_paid = TRUE AND is_delivered = FALSE
`
	cmd, err := r.pool.Exec(ctx, q, id, deliveredAt)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		var isPaid, isDelivered bool
		err := r.pool.QueryRow(ctx, `SELECT is_paid, is_delivered FROM orders WHERE id = $1`, id).Scan(&isPaid, &isDelivered)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		if isDelivered {
			return nil, domain.ErrAlreadyDelivered
		}
		return nil, domain.ErrNotYetPaid
	}
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) fetchOrder(ctx context.Context, q string, args ...interface{}) (*domain.Order, error) {
	row := r.pool.QueryRow(ctx, q, args...)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var txID, status, payerEmail *string
	var settledAt *time.Time
	if err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.ShippingAddress.Street,
		&o.ShippingAddress.City,
		&o.ShippingAddress.PostalCode,
		&o.ShippingAddress.Country,
		&o.PaymentMethod,
		&o.ItemsCents,
		&o.TaxCents,
		&o.ShippingCents,
		&o.TotalCents,
		&o.Currency,
		&o.IsPaid,
		&o.PaidAt,
		&o.IsDelivered,
		&o.DeliveredAt,
		&txID,
		&status,
		&settledAt,
		&payerEmail,
		&o.CreatedAt,
	); err != nil {
		return nil, err
	}
	if txID != nil {
		o.PaymentResult = &domain.PaymentResult{
			TransactionID: *txID,
			SettledAt:     settledAt,
		}
		if status != nil {
			o.PaymentResult.Status = *status
		}
		if payerEmail != nil {
			o.PaymentResult.PayerEmail = *payerEmail
		}
	}
	return &o, nil
}

func (r *postgresRepo) attachItems(ctx context.Context, o *domain.Order) error {
	const q = `
SELECT id::text, order_id::text, product_id::text, name, image, quantity, unit_price_cents
FROM order_items
WHERE order_id = $1
ORDER BY created_at ASC, id ASC
`
	rows, err := r.pool.Query(ctx, q, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Name,
			&item.Image,
			&item.Quantity,
			&item.UnitPriceCents,
		); err != nil {
			return err
		}
		o.Items = append(o.Items, item)
	}
	return rows.Err()
}
