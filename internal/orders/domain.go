package orders

import (
	"time"

	"github.com/google/uuid"
)

// Status enumerates the order lifecycle.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// ValidStatus reports whether s is a known order status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusPaid, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Order is a placed order with its captured line snapshot.
type Order struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	Status     Status    `json:"status"`
	Subtotal   float64   `json:"subtotal"`
	PaymentRef string    `json:"payment_ref,omitempty"`
	Items      []Item    `json:"items,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Item is an order line frozen at checkout time. Price changes after
// checkout do not affect placed orders.
type Item struct {
	ID          int64     `json:"id"`
	OrderID     uuid.UUID `json:"-"`
	ProductID   int64     `json:"product_id"`
	ProductName string    `json:"product_name"`
	UnitPrice   float64   `json:"unit_price"`
	Quantity    int       `json:"quantity"`
}
