package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"preventa/internal/auth"
	"preventa/internal/domain"
	"preventa/internal/httpx"
	"preventa/internal/notification"
)

type OrderHandlers interface {
	CreateOrder(w http.ResponseWriter, r *http.Request)
	GetOrder(w http.ResponseWriter, r *http.Request)
	ClientHistory(w http.ResponseWriter, r *http.Request)
}

type EvaluationHandlers interface {
	Evaluate(w http.ResponseWriter, r *http.Request)
	Pending(w http.ResponseWriter, r *http.Request)
	Stats(w http.ResponseWriter, r *http.Request)
}

type PricingHandlers interface {
	Quote(w http.ResponseWriter, r *http.Request)
	Compare(w http.ResponseWriter, r *http.Request)
}

type CreditHandlers interface {
	GetStatus(w http.ResponseWriter, r *http.Request)
	GetHistory(w http.ResponseWriter, r *http.Request)
	Release(w http.ResponseWriter, r *http.Request)
}

type ProductHandlers interface {
	HandleSearchProducts(w http.ResponseWriter, r *http.Request)
}

type StatsProvider interface {
	Stats() notification.Stats
}

// Handlers groups everything the router mounts.
type Handlers struct {
	Orders        OrderHandlers
	Evaluations   EvaluationHandlers
	Pricing       PricingHandlers
	Credit        CreditHandlers
	Products      ProductHandlers
	Notifications http.Handler
	Stats         StatsProvider
}

var staff = []domain.Role{domain.RoleVendor, domain.RoleEvaluator, domain.RoleSupervisor}

func NewRouter(h Handlers, verifier *auth.Verifier, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, logger, http.StatusOK, map[string]any{
			"status":        "ok",
			"notifications": h.Stats.Stats(),
			"time":          time.Now().UTC(),
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(verifier, logger))

		r.Handle("/ws/notifications", h.Notifications)

		r.Route("/api/v1", func(r chi.Router) {
			r.Route("/orders", func(r chi.Router) {
				r.With(auth.RequireRole(logger, domain.RoleVendor)).Post("/", h.Orders.CreateOrder)
				r.Get("/{orderId}", h.Orders.GetOrder)
			})

			r.Route("/evaluations", func(r chi.Router) {
				r.Use(auth.RequireRole(logger, domain.RoleEvaluator, domain.RoleSupervisor))
				r.Post("/", h.Evaluations.Evaluate)
				r.Get("/pending", h.Evaluations.Pending)
				r.Get("/stats", h.Evaluations.Stats)
			})

			r.Route("/prices", func(r chi.Router) {
				r.Use(auth.RequireRole(logger, staff...))
				r.Get("/quote", h.Pricing.Quote)
				r.Get("/compare", h.Pricing.Compare)
			})

			r.Route("/clients/{clientId}/credit", func(r chi.Router) {
				r.Use(auth.RequireRole(logger, staff...))
				r.Get("/", h.Credit.GetStatus)
				r.Get("/history", h.Credit.GetHistory)
				r.With(auth.RequireRole(logger, domain.RoleSupervisor)).Post("/release", h.Credit.Release)
			})

			r.With(auth.RequireRole(logger, domain.RoleEvaluator, domain.RoleSupervisor)).
				Get("/clients/{clientId}/orders", h.Orders.ClientHistory)

			r.With(auth.RequireRole(logger, staff...)).Post("/products/search", h.Products.HandleSearchProducts)
		})
	})

	return r
}
