package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/delivery-api/internal/account"
	"github.com/vasiliy-maslov/delivery-api/internal/auth"
	"github.com/vasiliy-maslov/delivery-api/internal/order"
	"github.com/vasiliy-maslov/delivery-api/internal/product"
)

type ValidationErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrForbidden),
		errors.Is(err, order.ErrNotCarrier),
		errors.Is(err, order.ErrNotCounterparty),
		errors.Is(err, order.ErrStatusCannotAdvance):
		return http.StatusForbidden
	case errors.Is(err, account.ErrNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, order.ErrCarrierNotFound),
		errors.Is(err, order.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, account.ErrInvalidEmail),
		errors.Is(err, account.ErrPasswordTooShort),
		errors.Is(err, account.ErrInvalidRole),
		errors.Is(err, product.ErrInvalidPrice),
		errors.Is(err, order.ErrEmptyOrder):
		return http.StatusBadRequest
	case errors.Is(err, account.ErrEmailExists),
		errors.Is(err, product.ErrProductInUse):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondWithServiceError maps err through mapErrorToStatusCode. Internal
// failures are logged and hidden behind a generic message.
func respondWithServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	statusCode := mapErrorToStatusCode(err)
	if statusCode == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msgf("Failed to %s via service", action)
		respondWithError(w, statusCode, "Internal server error")
		return
	}

	log.Warn().Err(err).Str("path", r.URL.Path).Int("status", statusCode).Msgf("Failed to %s", action)
	if statusCode == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	respondWithError(w, statusCode, capitalize(err.Error()))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func newValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return validate
}

func formatValidationErrors(errs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, fe := range errs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			details[field] = fmt.Sprintf("Field '%s' is required", field)
		case "email":
			details[field] = fmt.Sprintf("Field '%s' must be a valid email address", field)
		case "min":
			details[field] = fmt.Sprintf("Field '%s' must be at least %s characters long", field, fe.Param())
		case "len":
			details[field] = fmt.Sprintf("Field '%s' must be exactly %s characters long", field, fe.Param())
		case "gt":
			details[field] = fmt.Sprintf("Field '%s' must be greater than %s", field, fe.Param())
		case "gte":
			details[field] = fmt.Sprintf("Field '%s' must be greater than or equal to %s", field, fe.Param())
		default:
			details[field] = fmt.Sprintf("Field '%s' failed on the '%s' rule", field, fe.Tag())
		}
	}
	return details
}

// decodeAndValidate reads a JSON body into dst and validates it. It writes
// the error response itself and reports whether the handler may continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, validate *validator.Validate, dst interface{}) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		log.Warn().Err(err).Str("path", r.URL.Path).Msg("Failed to decode request body")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{
				Error:   "Validation failed",
				Details: formatValidationErrors(validationErrors),
			})
		} else {
			log.Error().Err(err).Type("validation_error_type", err).Msg("Unexpected error type during validation")
			respondWithError(w, http.StatusInternalServerError, "Internal validation error")
		}
		return false
	}

	return true
}

func parseIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idParam := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil || id <= 0 {
		log.Warn().Str("id", idParam).Msg("Failed to parse id parameter from URL")
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return 0, false
	}
	return id, true
}
