package categories

import (
	"context"
	"fmt"

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
	Categories []Category `json:"categories"`
	Total      int        `json:"total"`
}

func (s *Service) List(ctx context.Context, filters catshared.ListFilters) ([]Category, int, error) {
	key, err := s.cache.BuildKey(ctx, "categories", cacheKeyOf(filters))
	if err != nil {
		return nil, 0, err
	}
	var result listResult
	err = s.cache.FetchJSON(ctx, key, &result, func(ctx context.Context) (any, error) {
		categories, total, err := s.repo.List(ctx, filters)
		if err != nil {
			return nil, err
		}
		return listResult{Categories: categories, Total: total}, nil
	})
	if err != nil {
		return nil, 0, err
	}
	return result.Categories, result.Total, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Category, error) {
	if id <= 0 {
		return Category{}, fmt.Errorf("%w: invalid category id", shared.ErrBadRequest)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (Category, error) {
	if slug == "" {
		return Category{}, fmt.Errorf("%w: slug is required", shared.ErrBadRequest)
	}
	return s.repo.GetBySlug(ctx, slug)
}

func (s *Service) Create(ctx context.Context, category Category) (Category, error) {
	if err := validate(category); err != nil {
		return Category{}, err
	}
	created, err := s.repo.Create(ctx, category)
	if err != nil {
		return Category{}, err
	}
	_ = s.cache.Bump(ctx)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, category Category) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid category id", shared.ErrBadRequest)
	}
	if err := validate(category); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, category); err != nil {
		return err
	}
	return s.cache.Bump(ctx)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid category id", shared.ErrBadRequest)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	return s.cache.Bump(ctx)
}

func cacheKeyOf(filters catshared.ListFilters) string {
	active := ""
	if filters.IsActive != nil {
		active = fmt.Sprintf("%t", *filters.IsActive)
	}
	return fmt.Sprintf("p%d:l%d:s%s:a%s", filters.Page, filters.Limit, filters.Search, active)
}
