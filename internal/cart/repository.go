package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Niyatinagar/Quickpick/internal/shared"
)

// Repository defines persistence operations for carts.
type Repository interface {
	Upsert(ctx context.Context, userID uuid.UUID, productID int64, quantity int) error
	SetQuantity(ctx context.Context, userID uuid.UUID, productID int64, quantity int) error
	Remove(ctx context.Context, userID uuid.UUID, productID int64) error
	List(ctx context.Context, userID uuid.UUID) ([]Line, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Upsert adds the quantity to an existing line or inserts a new one.
func (r *PGRepository) Upsert(ctx context.Context, userID uuid.UUID, productID int64, quantity int) error {
	now := time.Now().UTC()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO cart_items (user_id, product_id, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = EXCLUDED.updated_at`,
		userID, productID, quantity, now,
	)
	return err
}

// SetQuantity overwrites the quantity of an existing line.
func (r *PGRepository) SetQuantity(ctx context.Context, userID uuid.UUID, productID int64, quantity int) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE cart_items SET quantity = $3, updated_at = $4
		WHERE user_id = $1 AND product_id = $2`,
		userID, productID, quantity, time.Now().UTC(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Remove deletes one line.
func (r *PGRepository) Remove(ctx context.Context, userID uuid.UUID, productID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// List returns the cart joined with product details.
func (r *PGRepository) List(ctx context.Context, userID uuid.UUID) ([]Line, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT ci.id, ci.user_id, ci.product_id, ci.quantity, ci.created_at, ci.updated_at,
			p.name, p.price, p.stock
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = $1
		ORDER BY ci.created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.UserID, &l.ProductID, &l.Quantity, &l.CreatedAt, &l.UpdatedAt,
			&l.ProductName, &l.UnitPrice, &l.Stock); err != nil {
			return nil, err
		}
		l.LineTotal = l.UnitPrice * float64(l.Quantity)
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// Clear removes every line for the user.
func (r *PGRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	return err
}

var _ Repository = (*PGRepository)(nil)
