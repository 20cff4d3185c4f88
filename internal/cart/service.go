package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Niyatinagar/Quickpick/internal/catalog/products"
	"github.com/Niyatinagar/Quickpick/internal/shared"
)

// ProductReader is the slice of the product service the cart needs.
type ProductReader interface {
	Get(ctx context.Context, id int64) (products.Product, error)
}

// Service handles cart business logic.
type Service struct {
	repo     Repository
	products ProductReader
}

// NewService builds a Service instance.
func NewService(repo Repository, products ProductReader) *Service {
	return &Service{repo: repo, products: products}
}

// AddItem adds quantity of a product, validating it exists, is active and
// has stock.
func (s *Service) AddItem(ctx context.Context, userID uuid.UUID, productID int64, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", shared.ErrBadRequest)
	}
	product, err := s.products.Get(ctx, productID)
	if err != nil {
		return err
	}
	if !product.IsActive {
		return fmt.Errorf("%w: product is not available", shared.ErrBadRequest)
	}
	if product.Stock < quantity {
		return fmt.Errorf("%w: insufficient stock", shared.ErrBadRequest)
	}
	return s.repo.Upsert(ctx, userID, productID, quantity)
}

// UpdateQuantity overwrites a line quantity; zero removes the line.
func (s *Service) UpdateQuantity(ctx context.Context, userID uuid.UUID, productID int64, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", shared.ErrBadRequest)
	}
	if quantity == 0 {
		return s.repo.Remove(ctx, userID, productID)
	}
	return s.repo.SetQuantity(ctx, userID, productID, quantity)
}

// RemoveItem deletes a line.
func (s *Service) RemoveItem(ctx context.Context, userID uuid.UUID, productID int64) error {
	return s.repo.Remove(ctx, userID, productID)
}

// List returns the cart lines with a computed subtotal.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]Line, float64, error) {
	lines, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	var subtotal float64
	for _, line := range lines {
		subtotal += line.LineTotal
	}
	return lines, subtotal, nil
}

// Clear empties the cart.
func (s *Service) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.repo.Clear(ctx, userID)
}
