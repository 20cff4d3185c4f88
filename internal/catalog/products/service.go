package products

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Niyatinagar/Quickpick/internal/catalog"
	catshared "github.com/Niyatinagar/Quickpick/internal/catalog/shared"
	"github.com/Niyatinagar/Quickpick/internal/shared"
)

type Service struct {
	repo  Repository
	cache *catalog.Cache
}

func NewService(repo Repository, cache *catalog.Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

type listResult struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
}

func (s *Service) List(ctx context.Context, filters catshared.ListFilters) ([]Product, int, error) {
	key, err := s.cache.BuildKey(ctx, "products", cacheKeyOf(filters))
	if err != nil {
		return nil, 0, err
	}
	var result listResult
	err = s.cache.FetchJSON(ctx, key, &result, func(ctx context.Context) (any, error) {
		products, total, err := s.repo.List(ctx, filters)
		if err != nil {
			return nil, err
		}
		return listResult{Products: products, Total: total}, nil
	})
	if err != nil {
		return nil, 0, err
	}
	return result.Products, result.Total, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, fmt.Errorf("%w: invalid product id", shared.ErrBadRequest)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, product Product) (Product, error) {
	if err := validate(product); err != nil {
		return Product{}, err
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return Product{}, err
	}
	_ = s.cache.Bump(ctx)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, product Product) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid product id", shared.ErrBadRequest)
	}
	if err := validate(product); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, product); err != nil {
		return err
	}
	return s.cache.Bump(ctx)
}

// AdjustStock applies a relative stock change. The repository refuses
// changes that would drive stock negative.
func (s *Service) AdjustStock(ctx context.Context, id int64, delta int) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid product id", shared.ErrBadRequest)
	}
	if delta == 0 {
		return fmt.Errorf("%w: stock delta must be non-zero", shared.ErrBadRequest)
	}
	if err := s.repo.AdjustStock(ctx, id, delta); err != nil {
		return err
	}
	return s.cache.Bump(ctx)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid product id", shared.ErrBadRequest)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	return s.cache.Bump(ctx)
}

func cacheKeyOf(filters catshared.ListFilters) string {
	category := ""
	if filters.CategoryID != nil {
		category = strconv.FormatInt(*filters.CategoryID, 10)
	}
	active := ""
	if filters.IsActive != nil {
		active = strconv.FormatBool(*filters.IsActive)
	}
	return fmt.Sprintf("p%d:l%d:s%s:c%s:a%s:o%s-%s",
		filters.Page, filters.Limit, filters.Search, category, active, filters.SortBy, filters.SortDir)
}
