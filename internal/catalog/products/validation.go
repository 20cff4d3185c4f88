package products

import (
	"fmt"
	"strings"

	"github.com/Niyatinagar/Quickpick/internal/shared"
)

func validate(p Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: product name is required", shared.ErrBadRequest)
	}
	if p.CategoryID <= 0 {
		return fmt.Errorf("%w: category is required", shared.ErrBadRequest)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", shared.ErrBadRequest)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", shared.ErrBadRequest)
	}
	return nil
}
