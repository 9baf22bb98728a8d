package usecase

import (
	"context"

	"github.com/samber/lo"

	"preventa/internal/domain"
	"preventa/internal/dto"
)

type Service interface {
	GetProductsByIDs(ctx context.Context, ids []int64) (found []domain.Product, notFoundIDs []int64, err error)
}

type SearchUseCase struct {
	service Service
}

func NewSearchUseCase(service Service) *SearchUseCase {
	return &SearchUseCase{service: service}
}

func (uc *SearchUseCase) SearchProducts(ctx context.Context, req dto.SearchProductsRequest) (*dto.SearchProductsResponse, error) {
	found, notFoundIDs, err := uc.service.GetProductsByIDs(ctx, req.ProductIDs)
	if err != nil {
		return nil, err
	}

	products := lo.Map(found, func(p domain.Product, _ int) dto.ProductDTO {
		return dto.ProductDTO{
			ID:       p.ID,
			Code:     p.Code,
			Name:     p.Name,
			Unit:     p.Unit,
			IsActive: p.IsActive,
		}
	})

	if notFoundIDs == nil {
		notFoundIDs = []int64{}
	}

	return &dto.SearchProductsResponse{
		Products: products,
		NotFound: notFoundIDs,
	}, nil
}
