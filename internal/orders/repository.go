package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Niyatinagar/Quickpick/internal/platform/db"
	"github.com/Niyatinagar/Quickpick/internal/shared"
)

// Repository defines persistence operations for orders.
type Repository interface {
	// CreateWithCart atomically inserts the order and its items, decrements
	// product stock and clears the user's cart.
	CreateWithCart(ctx context.Context, order *Order) error
	Get(ctx context.Context, id uuid.UUID) (*Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// CreateWithCart persists the order snapshot in one transaction.
func (r *PGRepository) CreateWithCart(ctx context.Context, order *Order) error {
	now := time.Now().UTC()
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO orders (id, user_id, status, subtotal, payment_ref, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $6)`,
			order.ID, order.UserID, order.Status, order.Subtotal, order.PaymentRef, now,
		)
		if err != nil {
			return err
		}
		for i := range order.Items {
			item := &order.Items[i]
			item.OrderID = order.ID
			err := tx.QueryRow(ctx, `
				INSERT INTO order_items (order_id, product_id, product_name, unit_price, quantity)
				VALUES ($1, $2, $3, $4, $5) RETURNING id`,
				item.OrderID, item.ProductID, item.ProductName, item.UnitPrice, item.Quantity,
			).Scan(&item.ID)
			if err != nil {
				return err
			}
			tag, err := tx.Exec(ctx, `
				UPDATE products SET stock = stock - $2, updated_at = $3
				WHERE id = $1 AND stock >= $2`,
				item.ProductID, item.Quantity, now,
			)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return ErrInsufficientStock
			}
		}
		if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, order.UserID); err != nil {
			return err
		}
		order.CreatedAt = now
		order.UpdatedAt = now
		return nil
	})
}

const orderColumns = `id, user_id, status, subtotal, payment_ref, created_at, updated_at`

// Get loads one order with its items.
func (r *PGRepository) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	var o Order
	err := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id).
		Scan(&o.ID, &o.UserID, &o.Status, &o.Subtotal, &o.PaymentRef, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, order_id, product_id, product_name, unit_price, quantity
		FROM order_items WHERE order_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
			&item.UnitPrice, &item.Quantity); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, item)
	}
	return &o, rows.Err()
}

// ListByUser returns the user's orders, newest first, without items.
func (r *PGRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

// ListAll returns every order, newest first, without items.
func (r *PGRepository) ListAll(ctx context.Context) ([]Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

func (r *PGRepository) list(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.Subtotal, &o.PaymentRef,
			&o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// UpdateStatus moves an order to a new status.
func (r *PGRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	tag, err := r.pool.Exec(ctx, `UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
