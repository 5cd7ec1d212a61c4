package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/vasiliy-maslov/delivery-api/internal/account"
	"github.com/vasiliy-maslov/delivery-api/internal/auth"
)

type CreateAccountRequest struct {
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"required"`
	Password     string `json:"password" validate:"required"`
	Complement   string `json:"complement"`
	Street       string `json:"street" validate:"required"`
	HouseNumber  string `json:"house_number" validate:"required"`
	Neighborhood string `json:"neighborhood" validate:"required"`
	City         string `json:"city" validate:"required"`
	State        string `json:"state" validate:"required,len=2"`
	PostalCode   string `json:"postal_code" validate:"required"`
}

type AddressResponse struct {
	Complement   string `json:"complement"`
	Street       string `json:"street"`
	HouseNumber  string `json:"house_number"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
}

type AccountResponse struct {
	ID        int64            `json:"id"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Role      string           `json:"role"`
	Address   *AddressResponse `json:"address,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

func toAccountResponse(acc *account.Account) AccountResponse {
	resp := AccountResponse{
		ID:        acc.ID,
		Name:      acc.Name,
		Email:     acc.Email,
		Role:      acc.Role.String(),
		CreatedAt: acc.CreatedAt,
	}
	if a := acc.Address; a != nil {
		resp.Address = &AddressResponse{
			Complement:   a.Complement,
			Street:       a.Street,
			HouseNumber:  a.HouseNumber,
			Neighborhood: a.Neighborhood,
			City:         a.City,
			State:        a.State,
			PostalCode:   a.PostalCode,
		}
	}
	return resp
}

type AccountHandler struct {
	service  account.Service
	validate *validator.Validate
}

func NewAccountHandler(service account.Service) *AccountHandler {
	return &AccountHandler{
		service:  service,
		validate: newValidator(),
	}
}

func (h *AccountHandler) RegisterRoutes(router chi.Router, authn func(http.Handler) http.Handler) {
	router.Post("/account/user", h.handleCreateAccount(account.RoleUser))
	router.Post("/account/transport", h.handleCreateAccount(account.RoleTransport))
	router.With(authn).Get("/account", h.handleGetAccount)
}

func (h *AccountHandler) handleCreateAccount(role account.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var requestPayload CreateAccountRequest
		if !decodeAndValidate(w, r, h.validate, &requestPayload) {
			return
		}

		reg := account.Registration{
			Name:     requestPayload.Name,
			Email:    requestPayload.Email,
			Password: requestPayload.Password,
			Address: account.Address{
				Complement:   requestPayload.Complement,
				Street:       requestPayload.Street,
				HouseNumber:  requestPayload.HouseNumber,
				Neighborhood: requestPayload.Neighborhood,
				City:         requestPayload.City,
				State:        strings.ToUpper(requestPayload.State),
				PostalCode:   requestPayload.PostalCode,
			},
		}

		createdAccount, err := h.service.CreateAccount(r.Context(), reg, role)
		if err != nil {
			respondWithServiceError(w, r, err, "create account")
			return
		}

		respondWithJSON(w, http.StatusCreated, toAccountResponse(createdAccount))
	}
}

func (h *AccountHandler) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	caller := auth.AccountFromContext(r.Context())
	if caller == nil {
		respondWithServiceError(w, r, auth.ErrUnauthenticated, "get account")
		return
	}

	respondWithJSON(w, http.StatusOK, toAccountResponse(caller))
}
