package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/vasiliy-maslov/delivery-api/internal/auth"
	"github.com/vasiliy-maslov/delivery-api/internal/order"
)

type CreateOrderRequest struct {
	TransportID int64   `json:"transport_id" validate:"required,gt=0"`
	ItemsID     []int64 `json:"items_id" validate:"required,dive,gt=0"`
}

// TransitionResponse is returned by advance and cancel.
type TransitionResponse struct {
	Msg           string       `json:"msg"`
	Status        order.Status `json:"status"`
	StatusMessage string       `json:"status_message"`
}

type OrderHandler struct {
	service  order.Service
	validate *validator.Validate
}

func NewOrderHandler(service order.Service) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: newValidator(),
	}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router, authn func(http.Handler) http.Handler) {
	router.Group(func(r chi.Router) {
		r.Use(authn)
		r.Get("/order", h.handleListOrders)
		r.Get("/order/{id}", h.handleGetOrder)
		r.Post("/order", h.handleCreateOrder)
		r.Patch("/order/{id}/advance", h.handleAdvanceOrder)
		r.Patch("/order/{id}/cancel", h.handleCancelOrder)
	})
}

func (h *OrderHandler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListOrders(r.Context(), auth.AccountFromContext(r.Context()))
	if err != nil {
		respondWithServiceError(w, r, err, "list orders")
		return
	}

	respondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	v, err := h.service.GetOrder(r.Context(), auth.AccountFromContext(r.Context()), id)
	if err != nil {
		respondWithServiceError(w, r, err, "get order")
		return
	}

	respondWithJSON(w, http.StatusOK, v)
}

func (h *OrderHandler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var requestPayload CreateOrderRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	o, err := h.service.CreateOrder(r.Context(), auth.AccountFromContext(r.Context()), order.CreateInput{
		TransportID: requestPayload.TransportID,
		ProductIDs:  requestPayload.ItemsID,
	})
	if err != nil {
		respondWithServiceError(w, r, err, "create order")
		return
	}

	respondWithJSON(w, http.StatusCreated, o)
}

func (h *OrderHandler) handleAdvanceOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	o, err := h.service.AdvanceOrder(r.Context(), auth.AccountFromContext(r.Context()), id)
	if err != nil {
		respondWithServiceError(w, r, err, "advance order")
		return
	}

	respondWithJSON(w, http.StatusOK, transitionResponse("Order updated", o.Status))
}

func (h *OrderHandler) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	o, err := h.service.CancelOrder(r.Context(), auth.AccountFromContext(r.Context()), id)
	if err != nil {
		respondWithServiceError(w, r, err, "cancel order")
		return
	}

	respondWithJSON(w, http.StatusOK, transitionResponse("Order canceled", o.Status))
}

func transitionResponse(msg string, status order.Status) TransitionResponse {
	statusMessage, _ := status.Message()
	return TransitionResponse{
		Msg:           msg,
		Status:        status,
		StatusMessage: statusMessage,
	}
}
