package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"preventa/internal/dto"
)

type mockSearchUseCase struct {
	SearchProductsFunc func(ctx context.Context, req dto.SearchProductsRequest) (*dto.SearchProductsResponse, error)
}

func (m *mockSearchUseCase) SearchProducts(ctx context.Context, req dto.SearchProductsRequest) (*dto.SearchProductsResponse, error) {
	return m.SearchProductsFunc(ctx, req)
}

func TestHandleSearchProducts_Success(t *testing.T) {
	uc := &mockSearchUseCase{
		SearchProductsFunc: func(ctx context.Context, req dto.SearchProductsRequest) (*dto.SearchProductsResponse, error) {
			assert.Equal(t, []int64{1, 2}, req.ProductIDs)
			return &dto.SearchProductsResponse{
				Products: []dto.ProductDTO{{ID: 1, Code: "P-001", Name: "Arroz 5kg", Unit: "UND", IsActive: true}},
				NotFound: []int64{2},
			}, nil
		},
	}
	ctrl := NewController(uc, zap.NewNop())

	rec := httptest.NewRecorder()
	ctrl.HandleSearchProducts(rec, httptest.NewRequest(http.MethodPost, "/api/v1/products/search", strings.NewReader(`{"productIds":[1,2]}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	var body dto.SearchProductsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Products, 1)
	assert.Equal(t, []int64{2}, body.NotFound)
}

func TestHandleSearchProducts_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"productIds":`},
		{"empty ids", `{"productIds":[]}`},
		{"non positive id", `{"productIds":[0]}`},
		{"unknown field", `{"productIds":[1],"companyId":3}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockSearchUseCase{
				SearchProductsFunc: func(ctx context.Context, req dto.SearchProductsRequest) (*dto.SearchProductsResponse, error) {
					t.Fatal("use case should not be called")
					return nil, nil
				},
			}
			rec := httptest.NewRecorder()
			NewController(uc, zap.NewNop()).HandleSearchProducts(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body)))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandleSearchProducts_InternalError(t *testing.T) {
	uc := &mockSearchUseCase{
		SearchProductsFunc: func(ctx context.Context, req dto.SearchProductsRequest) (*dto.SearchProductsResponse, error) {
			return nil, errors.New("db down")
		},
	}

	rec := httptest.NewRecorder()
	NewController(uc, zap.NewNop()).HandleSearchProducts(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"productIds":[1]}`)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db down")
}
