package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/vasiliy-maslov/delivery-api/internal/account"
	"github.com/vasiliy-maslov/delivery-api/internal/auth"
	"github.com/vasiliy-maslov/delivery-api/internal/product"
)

type ProductRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
}

type ProductHandler struct {
	service  product.Service
	validate *validator.Validate
}

func NewProductHandler(service product.Service) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: newValidator(),
	}
}

func (h *ProductHandler) RegisterRoutes(router chi.Router, authn func(http.Handler) http.Handler) {
	router.Group(func(r chi.Router) {
		r.Use(authn)
		r.Use(h.requireUser)
		r.Get("/product", h.handleListProducts)
		r.Get("/product/{id}", h.handleGetProduct)
		r.Post("/product", h.handleCreateProduct)
		r.Put("/product/{id}", h.handleReplaceProduct)
		r.Delete("/product/{id}", h.handleDeleteProduct)
	})
}

// requireUser limits the catalog to USER accounts (and ADMIN).
func (h *ProductHandler) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := auth.RequireRole(auth.AccountFromContext(r.Context()), account.RoleUser); err != nil {
			respondWithServiceError(w, r, err, "access products")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *ProductHandler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err, "list products")
		return
	}

	respondWithJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	p, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, err, "get product")
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var requestPayload ProductRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	p, err := h.service.CreateProduct(r.Context(), requestPayload.input())
	if err != nil {
		respondWithServiceError(w, r, err, "create product")
		return
	}

	respondWithJSON(w, http.StatusCreated, p)
}

func (h *ProductHandler) handleReplaceProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var requestPayload ProductRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	p, err := h.service.UpdateProduct(r.Context(), id, requestPayload.input())
	if err != nil {
		respondWithServiceError(w, r, err, "replace product")
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		respondWithServiceError(w, r, err, "delete product")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (p ProductRequest) input() product.Input {
	return product.Input{
		Name:        p.Name,
		Description: p.Description,
		Price:       *p.Price,
	}
}
