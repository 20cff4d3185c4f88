package orders

import (
	"fmt"

	"github.com/Niyatinagar/Quickpick/internal/shared"
)

// ErrInsufficientStock is raised when checkout cannot reserve stock for a
// cart line. The whole transaction rolls back.
var ErrInsufficientStock = fmt.Errorf("%w: insufficient stock", shared.ErrBadRequest)

// ErrEmptyCart is raised when checkout is attempted with no cart lines.
var ErrEmptyCart = fmt.Errorf("%w: cart is empty", shared.ErrBadRequest)
