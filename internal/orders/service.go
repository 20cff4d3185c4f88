package orders

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Niyatinagar/Quickpick/internal/cart"
	"github.com/Niyatinagar/Quickpick/internal/shared"
)

// PaymentGateway is the external payment collaborator. Webhook handling and
// provider wiring live outside this core.
type PaymentGateway interface {
	// Charge reserves payment for the amount and returns a provider reference.
	Charge(ctx context.Context, userID uuid.UUID, amount float64) (string, error)
}

// Mailer delivers transactional mail.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// CartReader is the slice of the cart service checkout needs.
type CartReader interface {
	List(ctx context.Context, userID uuid.UUID) ([]cart.Line, float64, error)
}

// UserReader resolves the email address for order confirmations.
type UserReader interface {
	EmailOf(ctx context.Context, userID uuid.UUID) (string, error)
}

// Service handles order business logic.
type Service struct {
	repo    Repository
	cart    CartReader
	gateway PaymentGateway
	users   UserReader
	mailer  Mailer
	logger  *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo Repository, cartReader CartReader, gateway PaymentGateway, users UserReader, mailer Mailer, logger *slog.Logger) *Service {
	return &Service{repo: repo, cart: cartReader, gateway: gateway, users: users, mailer: mailer, logger: logger}
}

// PlaceOrder snapshots the cart into an order. The gateway is charged before
// anything is persisted; a gateway failure leaves no partial state.
func (s *Service) PlaceOrder(ctx context.Context, userID uuid.UUID) (*Order, error) {
	lines, subtotal, err := s.cart.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	paymentRef, err := s.gateway.Charge(ctx, userID, subtotal)
	if err != nil {
		return nil, fmt.Errorf("orders: charge: %w", err)
	}

	order := &Order{
		ID:         uuid.New(),
		UserID:     userID,
		Status:     StatusPaid,
		Subtotal:   subtotal,
		PaymentRef: paymentRef,
	}
	for _, line := range lines {
		order.Items = append(order.Items, Item{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
		})
	}
	if err := s.repo.CreateWithCart(ctx, order); err != nil {
		return nil, err
	}

	s.sendConfirmation(ctx, order)
	return order, nil
}

// Get returns an order, restricted to its owner unless asAdmin is set.
func (s *Service) Get(ctx context.Context, id, requesterID uuid.UUID, asAdmin bool) (*Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !asAdmin && order.UserID != requesterID {
		return nil, shared.ErrForbidden
	}
	return order, nil
}

// ListMine returns the requester's own orders.
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

// ListAll returns every order; admin only, enforced by the router.
func (s *Service) ListAll(ctx context.Context) ([]Order, error) {
	return s.repo.ListAll(ctx)
}

// UpdateStatus moves an order through its lifecycle.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	if !ValidStatus(status) {
		return fmt.Errorf("%w: unknown order status %q", shared.ErrBadRequest, status)
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

func (s *Service) sendConfirmation(ctx context.Context, order *Order) {
	if s.mailer == nil || s.users == nil {
		return
	}
	email, err := s.users.EmailOf(ctx, order.UserID)
	if err != nil {
		s.logger.Warn("resolve order email", slog.Any("error", err))
		return
	}
	body := fmt.Sprintf("<p>Your order <strong>%s</strong> for %.2f has been placed.</p>", order.ID, order.Subtotal)
	if err := s.mailer.Send(ctx, email, "Quickpick order confirmation", body); err != nil {
		s.logger.Warn("enqueue order confirmation", slog.Any("error", err))
	}
}
