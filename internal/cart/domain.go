package cart

import (
	"time"

	"github.com/google/uuid"
)

// Item is a cart line for one product. One row per (user, product).
type Item struct {
	ID        int64     `json:"id"`
	UserID    uuid.UUID `json:"-"`
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Line is an Item joined with its product for display and checkout.
type Line struct {
	Item
	ProductName string  `json:"product_name"`
	UnitPrice   float64 `json:"unit_price"`
	Stock       int     `json:"stock"`
	LineTotal   float64 `json:"line_total"`
}
