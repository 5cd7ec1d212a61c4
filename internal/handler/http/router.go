package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/vasiliy-maslov/delivery-api/internal/account"
	"github.com/vasiliy-maslov/delivery-api/internal/auth"
	"github.com/vasiliy-maslov/delivery-api/internal/order"
	"github.com/vasiliy-maslov/delivery-api/internal/product"
)

type RouterServices struct {
	Accounts account.Service
	Auth     auth.Service
	Products product.Service
	Orders   order.Service
}

// NewRouter mounts every API route under /api/v1 behind the common
// middleware stack. /health stays outside authentication.
func NewRouter(logger zerolog.Logger, services RouterServices) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(accessLog(logger)...)
	router.Use(middleware.Recoverer)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})

	authn := RequireAuth(services.Auth)

	router.Route("/api/v1", func(r chi.Router) {
		NewAccountHandler(services.Accounts).RegisterRoutes(r, authn)
		NewAuthHandler(services.Auth).RegisterRoutes(r)
		NewProductHandler(services.Products).RegisterRoutes(r, authn)
		NewOrderHandler(services.Orders).RegisterRoutes(r, authn)
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusNotFound, "Route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return router
}
