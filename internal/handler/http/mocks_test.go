package http_test

import (
	"context"
	"net/http"

	"github.com/stretchr/testify/mock"
	"github.com/vasiliy-maslov/delivery-api/internal/account"
	"github.com/vasiliy-maslov/delivery-api/internal/auth"
	"github.com/vasiliy-maslov/delivery-api/internal/order"
	"github.com/vasiliy-maslov/delivery-api/internal/product"
)

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) CreateAccount(ctx context.Context, reg account.Registration, role account.Role) (*account.Account, error) {
	args := m.Called(ctx, reg, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountByID(ctx context.Context, id int64) (*account.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountByEmail(ctx context.Context, email string) (*account.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*auth.Token, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Token), args.Error(1)
}

func (m *MockAuthService) Authenticate(ctx context.Context, authorizationHeader string) (*account.Account, error) {
	args := m.Called(ctx, authorizationHeader)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) CreateProduct(ctx context.Context, in product.Input) (*product.Product, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) GetProduct(ctx context.Context, id int64) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) ListProducts(ctx context.Context) ([]product.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]product.Product), args.Error(1)
}

func (m *MockProductService) UpdateProduct(ctx context.Context, id int64, in product.Input) (*product.Product, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) DeleteProduct(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, buyer *account.Account, in order.CreateInput) (*order.Order, error) {
	args := m.Called(ctx, buyer, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) ListOrders(ctx context.Context, caller *account.Account) ([]order.View, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.View), args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, caller *account.Account, id int64) (*order.View, error) {
	args := m.Called(ctx, caller, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.View), args.Error(1)
}

func (m *MockOrderService) AdvanceOrder(ctx context.Context, carrier *account.Account, id int64) (*order.Order, error) {
	args := m.Called(ctx, carrier, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) CancelOrder(ctx context.Context, carrier *account.Account, id int64) (*order.Order, error) {
	args := m.Called(ctx, carrier, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

// asCaller stands in for bearer authentication in handler tests.
func asCaller(acc *account.Account) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if acc != nil {
				r = r.WithContext(auth.WithAccount(r.Context(), acc))
			}
			next.ServeHTTP(w, r)
		})
	}
}

var (
	testUser      = &account.Account{ID: 1, Name: "alice", Email: "alice@example.com", Role: account.RoleUser}
	testTransport = &account.Account{ID: 2, Name: "carrier", Email: "carrier@example.com", Role: account.RoleTransport}
)
