package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/delivery-api/internal/account"
	"github.com/vasiliy-maslov/delivery-api/internal/auth"
	handler "github.com/vasiliy-maslov/delivery-api/internal/handler/http"
	"github.com/vasiliy-maslov/delivery-api/internal/order"
	"github.com/vasiliy-maslov/delivery-api/internal/product"
)

func newOrderRouter(service order.Service, caller *account.Account) *chi.Mux {
	router := chi.NewRouter()
	handler.NewOrderHandler(service).RegisterRoutes(router, asCaller(caller))
	return router
}

func TestOrderHandler_Create(t *testing.T) {
	mockService := new(MockOrderService)

	in := order.CreateInput{TransportID: 2, ProductIDs: []int64{1, 2}}
	created := &order.Order{
		ID:          10,
		UserID:      testUser.ID,
		TransportID: 2,
		TotalPrice:  15.50,
		Status:      order.StatusWaitingApproval,
		Items:       []order.Item{{ID: 1, OrderID: 10, ProductID: 1}, {ID: 2, OrderID: 10, ProductID: 2}},
	}
	mockService.On("CreateOrder", mock.Anything, testUser, in).Return(created, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/order", bytes.NewBufferString(`{"transport_id":2,"items_id":[1,2]}`))
	rr := httptest.NewRecorder()
	newOrderRouter(mockService, testUser).ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	var got order.Order
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, 15.50, got.TotalPrice)
	assert.Len(t, got.Items, 2)
	assert.Equal(t, order.StatusWaitingApproval, got.Status)
	mockService.AssertExpectations(t)
}

func TestOrderHandler_Create_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{name: "carrier_missing", err: order.ErrCarrierNotFound, wantStatus: http.StatusNotFound, wantError: "Transport not found"},
		{name: "product_missing", err: fmt.Errorf("%w: %d", order.ErrProductNotFound, 99), wantStatus: http.StatusNotFound, wantError: "Product not found: 99"},
		{name: "empty", err: order.ErrEmptyOrder, wantStatus: http.StatusBadRequest, wantError: "Order must contain at least one product"},
		{name: "forbidden", err: auth.ErrForbidden, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			mockService.On("CreateOrder", mock.Anything, testUser, mock.Anything).Return(nil, tt.err).Once()

			req := httptest.NewRequest(http.MethodPost, "/order", bytes.NewBufferString(`{"transport_id":2,"items_id":[]}`))
			rr := httptest.NewRecorder()
			newOrderRouter(mockService, testUser).ServeHTTP(rr, req)
			require.Equal(t, tt.wantStatus, rr.Code)

			if tt.wantError != "" {
				var errorResponse map[string]string
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&errorResponse))
				assert.Equal(t, tt.wantError, errorResponse["error"])
			}
		})
	}
}

func TestOrderHandler_Create_Validation(t *testing.T) {
	mockService := new(MockOrderService)

	req := httptest.NewRequest(http.MethodPost, "/order", bytes.NewBufferString(`{"items_id":[0]}`))
	rr := httptest.NewRecorder()
	newOrderRouter(mockService, testUser).ServeHTTP(rr, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	var errorResponse handler.ValidationErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&errorResponse))
	assert.Contains(t, errorResponse.Details, "transport_id")
	assert.Contains(t, errorResponse.Details, "items_id[0]")
	mockService.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderHandler_List(t *testing.T) {
	mockService := new(MockOrderService)

	views := []order.View{
		{
			Order:         order.Order{ID: 1, UserID: 1, TransportID: 2, TotalPrice: 15.5, Status: order.StatusApproved},
			User:          "alice",
			Transport:     "carrier",
			StatusMessage: "order approved",
			Products:      []product.Product{{ID: 1, Name: "pizza", Price: 10}, {ID: 2, Name: "soda", Price: 5.5}},
		},
	}
	mockService.On("ListOrders", mock.Anything, testUser).Return(views, nil).Once()

	rr := httptest.NewRecorder()
	newOrderRouter(mockService, testUser).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/order", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var got []map[string]interface{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "alice", got[0]["user"])
	assert.Equal(t, "carrier", got[0]["transport"])
	assert.Equal(t, "order approved", got[0]["status_message"])
	assert.Equal(t, float64(1), got[0]["status"])
	assert.Len(t, got[0]["products"], 2)
	assert.NotContains(t, got[0], "items")
}

func TestOrderHandler_Get(t *testing.T) {
	mockService := new(MockOrderService)
	mockService.On("GetOrder", mock.Anything, testUser, int64(1)).Return(&order.View{Order: order.Order{ID: 1}}, nil).Once()
	mockService.On("GetOrder", mock.Anything, testUser, int64(2)).Return(nil, order.ErrNotCounterparty).Once()
	mockService.On("GetOrder", mock.Anything, testUser, int64(3)).Return(nil, order.ErrNotFound).Once()

	router := newOrderRouter(mockService, testUser)
	for path, want := range map[string]int{
		"/order/1": http.StatusOK,
		"/order/2": http.StatusForbidden,
		"/order/3": http.StatusNotFound,
		"/order/x": http.StatusBadRequest,
	} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, rr.Code, path)
	}
	mockService.AssertExpectations(t)
}

func TestOrderHandler_Advance(t *testing.T) {
	mockService := new(MockOrderService)
	mockService.On("AdvanceOrder", mock.Anything, testTransport, int64(4)).
		Return(&order.Order{ID: 4, Status: order.StatusDelivered}, nil).
		Once()

	rr := httptest.NewRecorder()
	newOrderRouter(mockService, testTransport).ServeHTTP(rr, httptest.NewRequest(http.MethodPatch, "/order/4/advance", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"msg":"Order updated","status":4,"status_message":"order delivered"}`, rr.Body.String())
}

func TestOrderHandler_Advance_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{name: "cannot_advance", err: order.ErrStatusCannotAdvance, wantStatus: http.StatusForbidden, wantError: "Order status cannot be increased"},
		{name: "not_carrier", err: order.ErrNotCarrier, wantStatus: http.StatusForbidden},
		{name: "buyer", err: auth.ErrForbidden, wantStatus: http.StatusForbidden},
		{name: "missing", err: order.ErrNotFound, wantStatus: http.StatusNotFound},
		{name: "internal", err: assert.AnError, wantStatus: http.StatusInternalServerError, wantError: "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			mockService.On("AdvanceOrder", mock.Anything, testTransport, int64(4)).Return(nil, tt.err).Once()

			rr := httptest.NewRecorder()
			newOrderRouter(mockService, testTransport).ServeHTTP(rr, httptest.NewRequest(http.MethodPatch, "/order/4/advance", nil))
			require.Equal(t, tt.wantStatus, rr.Code)

			if tt.wantError != "" {
				var errorResponse map[string]string
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&errorResponse))
				assert.Equal(t, tt.wantError, errorResponse["error"])
			}
		})
	}
}

func TestOrderHandler_Cancel(t *testing.T) {
	mockService := new(MockOrderService)
	mockService.On("CancelOrder", mock.Anything, testTransport, int64(4)).
		Return(&order.Order{ID: 4, Status: order.StatusRefused}, nil).
		Once()

	rr := httptest.NewRecorder()
	newOrderRouter(mockService, testTransport).ServeHTTP(rr, httptest.NewRequest(http.MethodPatch, "/order/4/cancel", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"msg":"Order canceled","status":-1,"status_message":"order refused"}`, rr.Body.String())
}
