package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"preventa/internal/auth"
	"preventa/internal/domain"
	"preventa/internal/notification"
)

// stub answers 200 and records which handler ran.
type stub struct {
	called string
}

func (s *stub) handle(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.called = name
		w.WriteHeader(http.StatusOK)
	}
}

func (s *stub) CreateOrder(w http.ResponseWriter, r *http.Request) { s.handle("createOrder")(w, r) }
func (s *stub) GetOrder(w http.ResponseWriter, r *http.Request) { s.handle("getOrder")(w, r) }
func (s *stub) Evaluate(w http.ResponseWriter, r *http.Request) { s.handle("evaluate")(w, r) }
func (s *stub) Pending(w http.ResponseWriter, r *http.Request) { s.handle("pending")(w, r) }
func (s *stub) Stats(w http.ResponseWriter, r *http.Request) { s.handle("evaluatorStats")(w, r) }
func (s *stub) ClientHistory(w http.ResponseWriter, r *http.Request) { s.handle("clientHistory")(w, r) }
func (s *stub) Quote(w http.ResponseWriter, r *http.Request) { s.handle("quote")(w, r) }
func (s *stub) Compare(w http.ResponseWriter, r *http.Request) { s.handle("compare")(w, r) }
func (s *stub) GetStatus(w http.ResponseWriter, r *http.Request) { s.handle("creditStatus")(w, r) }
func (s *stub) GetHistory(w http.ResponseWriter, r *http.Request) { s.handle("creditHistory")(w, r) }
func (s *stub) Release(w http.ResponseWriter, r *http.Request) { s.handle("release")(w, r) }
func (s *stub) HandleSearchProducts(w http.ResponseWriter, r *http.Request) {
	s.handle("searchProducts")(w, r)
}

const testSecret = "router-test-secret-0123456789"

func newTestRouter(t *testing.T) (http.Handler, *stub, *auth.Verifier) {
	t.Helper()
	s := &stub{}
	verifier := auth.NewVerifier(testSecret, "preventa")
	h := Handlers{
		Orders:        s,
		Evaluations:   s,
		Pricing:       s,
		Credit:        s,
		Products:      s,
		Notifications: s.handle("notifications"),
		Stats:         notification.NewDispatcher(notification.DefaultQueueSize, zap.NewNop()),
	}
	return NewRouter(h, verifier, zap.NewNop()), s, verifier
}

func TestRouter_RoleGates(t *testing.T) {
	router, s, verifier := newTestRouter(t)

	tests := []struct {
		method     string
		path       string
		role       domain.Role
		wantStatus int
		wantCalled string
	}{
		{http.MethodPost, "/api/v1/orders", domain.RoleVendor, http.StatusOK, "createOrder"},
		{http.MethodPost, "/api/v1/orders", domain.RoleEvaluator, http.StatusForbidden, ""},
		{http.MethodGet, "/api/v1/orders/501", domain.RoleClient, http.StatusOK, "getOrder"},
		{http.MethodPost, "/api/v1/evaluations", domain.RoleSupervisor, http.StatusOK, "evaluate"},
		{http.MethodPost, "/api/v1/evaluations", domain.RoleVendor, http.StatusForbidden, ""},
		{http.MethodGet, "/api/v1/evaluations/pending", domain.RoleEvaluator, http.StatusOK, "pending"},
		{http.MethodGet, "/api/v1/evaluations/stats", domain.RoleSupervisor, http.StatusOK, "evaluatorStats"},
		{http.MethodGet, "/api/v1/evaluations/stats", domain.RoleVendor, http.StatusForbidden, ""},
		{http.MethodGet, "/api/v1/clients/7/orders", domain.RoleEvaluator, http.StatusOK, "clientHistory"},
		{http.MethodGet, "/api/v1/clients/7/orders", domain.RoleVendor, http.StatusForbidden, ""},
		{http.MethodGet, "/api/v1/prices/quote", domain.RoleVendor, http.StatusOK, "quote"},
		{http.MethodGet, "/api/v1/prices/compare", domain.RoleClient, http.StatusForbidden, ""},
		{http.MethodGet, "/api/v1/clients/7/credit", domain.RoleEvaluator, http.StatusOK, "creditStatus"},
		{http.MethodGet, "/api/v1/clients/7/credit/history", domain.RoleVendor, http.StatusOK, "creditHistory"},
		{http.MethodPost, "/api/v1/clients/7/credit/release", domain.RoleSupervisor, http.StatusOK, "release"},
		{http.MethodPost, "/api/v1/clients/7/credit/release", domain.RoleEvaluator, http.StatusForbidden, ""},
		{http.MethodPost, "/api/v1/products/search", domain.RoleVendor, http.StatusOK, "searchProducts"},
		{http.MethodGet, "/ws/notifications", domain.RoleClient, http.StatusOK, "notifications"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path+" as "+string(tt.role), func(t *testing.T) {
			s.called = ""
			token, err := verifier.Sign(auth.Principal{UserID: 21, Role: tt.role}, time.Minute)
			require.NoError(t, err)

			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader("{}"))
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCalled, s.called)
		})
	}
}

func TestRouter_RequiresToken(t *testing.T) {
	router, s, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders/501", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, s.called)
}

func TestRouter_Health(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Contains(t, rec.Body.String(), `"queued":0`)
}
