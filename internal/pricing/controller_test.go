package pricing

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"preventa/internal/dto"
)

func newTestController() *Controller {
	return NewController(NewResolver(priceTable(creditEntry, cashEntry), zap.NewNop()), zap.NewNop())
}

func TestController_Quote(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/prices/quote?productId=10&clientTypeId=2&paymentMethod=credit&quantity=60", nil)

	newTestController().Quote(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body dto.QuoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.TierLevel)
	assert.True(t, dec("9.50").Equal(body.FinalUnitPrice))
	assert.True(t, dec("570").Equal(body.Subtotal))
}

func TestController_Quote_BadQuery(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/prices/quote?productId=abc&clientTypeId=2&paymentMethod=credit&quantity=1", nil)

	newTestController().Quote(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestController_Quote_NoPrice(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/prices/quote?productId=10&clientTypeId=2&paymentMethod=plin&quantity=1", nil)

	newTestController().Quote(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestController_Compare(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/prices/compare?productId=10&clientTypeId=2&quantity=10", nil)

	newTestController().Compare(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body dto.CompareResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, dec("10").Equal(body.Savings))
}
