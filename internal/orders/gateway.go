package orders

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// LogGateway is the development PaymentGateway: it accepts every charge and
// returns a synthetic reference. Production deployments swap in a real
// provider implementation.
type LogGateway struct {
	Logger *slog.Logger
}

// Charge records the charge and returns a generated reference.
func (g LogGateway) Charge(ctx context.Context, userID uuid.UUID, amount float64) (string, error) {
	ref := "dev-" + uuid.NewString()
	if g.Logger != nil {
		g.Logger.Info("payment charge accepted",
			slog.String("user_id", userID.String()),
			slog.Float64("amount", amount),
			slog.String("ref", ref))
	}
	return ref, nil
}

var _ PaymentGateway = LogGateway{}
