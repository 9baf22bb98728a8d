package service

import (
	"context"

	"github.com/samber/lo"

	"preventa/internal/domain"
)

type Repository interface {
	FindByIDs(ctx context.Context, ids []int64) ([]domain.Product, error)
}

type ProductService struct {
	repo Repository
}

func NewService(repo Repository) *ProductService {
	return &ProductService{repo: repo}
}

// GetProductsByIDs splits the requested ids into found products and ids with
// no matching row. Duplicate ids are looked up once.
func (s *ProductService) GetProductsByIDs(ctx context.Context, ids []int64) ([]domain.Product, []int64, error) {
	unique := lo.Uniq(ids)

	found, err := s.repo.FindByIDs(ctx, unique)
	if err != nil {
		return nil, nil, err
	}

	foundSet := make(map[int64]struct{}, len(found))
	for _, p := range found {
		foundSet[p.ID] = struct{}{}
	}

	notFoundIDs := lo.Filter(unique, func(id int64, _ int) bool {
		_, ok := foundSet[id]
		return !ok
	})

	return found, notFoundIDs, nil
}
