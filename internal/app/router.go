package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Niyatinagar/Quickpick/internal/auth"
	"github.com/Niyatinagar/Quickpick/internal/cart"
	"github.com/Niyatinagar/Quickpick/internal/catalog/categories"
	"github.com/Niyatinagar/Quickpick/internal/catalog/products"
	"github.com/Niyatinagar/Quickpick/internal/observability"
	"github.com/Niyatinagar/Quickpick/internal/orders"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	AuthHandler       *auth.Handler
	AuthMiddleware    auth.Middleware
	CategoriesHandler *categories.Handler
	ProductsHandler   *products.Handler
	CartHandler       *cart.Handler
	OrdersHandler     *orders.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with Quickpick defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)

		r.Route("/categories", func(r chi.Router) {
			params.CategoriesHandler.MountPublicRoutes(r)
			r.Group(func(r chi.Router) {
				r.Use(params.AuthMiddleware.RequireAuth)
				r.Use(params.AuthMiddleware.RequireAdmin)
				params.CategoriesHandler.MountAdminRoutes(r)
			})
		})

		r.Route("/products", func(r chi.Router) {
			params.ProductsHandler.MountPublicRoutes(r)
			r.Group(func(r chi.Router) {
				r.Use(params.AuthMiddleware.RequireAuth)
				r.Use(params.AuthMiddleware.RequireAdmin)
				params.ProductsHandler.MountAdminRoutes(r)
			})
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(params.AuthMiddleware.RequireAuth)
			params.CartHandler.MountRoutes(r)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(params.AuthMiddleware.RequireAuth)
			params.OrdersHandler.MountRoutes(r)
		})

		r.Route("/admin/orders", func(r chi.Router) {
			r.Use(params.AuthMiddleware.RequireAuth)
			r.Use(params.AuthMiddleware.RequireAdmin)
			params.OrdersHandler.MountAdminRoutes(r)
		})
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
