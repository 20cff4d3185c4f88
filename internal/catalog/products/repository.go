package products

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	catshared "github.com/Niyatinagar/Quickpick/internal/catalog/shared"
	"github.com/Niyatinagar/Quickpick/internal/shared"
)

type Repository interface {
	List(ctx context.Context, filters catshared.ListFilters) ([]Product, int, error)
	Get(ctx context.Context, id int64) (Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, id int64, product Product) error
	AdjustStock(ctx context.Context, id int64, delta int) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const productColumns = `id, name, slug, description, category_id, price, unit, stock, image_url, is_active, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters catshared.ListFilters) ([]Product, int, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM products WHERE 1=1`
	args := []any{}
	argCount := 0

	appendClause := func(clause string, value any) {
		argCount++
		numbered := clause + strconv.Itoa(argCount)
		query += numbered
		countQuery += numbered
		args = append(args, value)
	}

	if filters.CategoryID != nil {
		appendClause(` AND category_id = $`, *filters.CategoryID)
	}
	if filters.Search != "" {
		appendClause(` AND (name ILIKE $`, "%"+filters.Search+"%")
		// reuse the same argument for the description match
		query += ` OR description ILIKE $` + strconv.Itoa(argCount) + `)`
		countQuery += ` OR description ILIKE $` + strconv.Itoa(argCount) + `)`
	}
	if filters.IsActive != nil {
		appendClause(` AND is_active = $`, *filters.IsActive)
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY ` + sortOrder(filters.SortBy, filters.SortDir)
	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)
		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		args = append(args, filters.Offset())
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.CategoryID, &p.Price,
			&p.Unit, &p.Stock, &p.ImageURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.CategoryID, &p.Price,
		&p.Unit, &p.Stock, &p.ImageURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, shared.ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *repository) Create(ctx context.Context, product Product) (Product, error) {
	now := time.Now().UTC()
	err := r.db.QueryRow(ctx, `
		INSERT INTO products (name, slug, description, category_id, price, unit, stock, image_url, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`,
		product.Name, product.Slug, product.Description, product.CategoryID, product.Price,
		product.Unit, product.Stock, product.ImageURL, product.IsActive, now, now,
	).Scan(&product.ID)
	if err != nil {
		return Product{}, mapPGError(err)
	}
	product.CreatedAt = now
	product.UpdatedAt = now
	return product, nil
}

func (r *repository) Update(ctx context.Context, id int64, product Product) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE products SET name = $1, slug = $2, description = $3, category_id = $4, price = $5,
			unit = $6, stock = $7, image_url = $8, is_active = $9, updated_at = $10
		WHERE id = $11`,
		product.Name, product.Slug, product.Description, product.CategoryID, product.Price,
		product.Unit, product.Stock, product.ImageURL, product.IsActive, time.Now().UTC(), id,
	)
	if err != nil {
		return mapPGError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// AdjustStock applies a relative stock change, refusing to go negative.
func (r *repository) AdjustStock(ctx context.Context, id int64, delta int) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE products SET stock = stock + $2, updated_at = $3
		WHERE id = $1 AND stock + $2 >= 0`,
		id, delta, time.Now().UTC(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == "desc" {
		dir = "DESC"
	}
	switch sortBy {
	case "price":
		return "price " + dir
	case "stock":
		return "stock " + dir
	case "created_at":
		return "created_at " + dir
	default:
		return "name " + dir
	}
}

func mapPGError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return shared.ErrConflict
	}
	return err
}
