package dto

type SearchProductsRequest struct {
	ProductIDs []int64 `json:"productIds" validate:"min=1,max=100,dive,gt=0"`
}

type SearchProductsResponse struct {
	Products []ProductDTO `json:"products"`
	NotFound []int64      `json:"notFound"`
}

type ProductDTO struct {
	ID       int64  `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Unit     string `json:"unit"`
	IsActive bool   `json:"isActive"`
}
