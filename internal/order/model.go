package order

import (
	"time"

	"github.com/vasiliy-maslov/delivery-api/internal/product"
)

type Item struct {
	ID        int64 `json:"id"`
	OrderID   int64 `json:"order_id"`
	ProductID int64 `json:"product_id"`
}

type Order struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	TransportID int64     `json:"transport_id"`
	TotalPrice  float64   `json:"total_price"`
	Status      Status    `json:"status"`
	Items       []Item    `json:"items,omitempty"` // populated on create only
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// View is an order as returned by reads: counterparty names, status
// message and the products resolved through its items.
type View struct {
	Order
	User          string            `json:"user"`
	Transport     string            `json:"transport"`
	StatusMessage string            `json:"status_message"`
	Products      []product.Product `json:"products"`
}

type CreateInput struct {
	TransportID int64
	ProductIDs  []int64
}

// Filter restricts ListOrders. Zero fields are ignored.
type Filter struct {
	UserID      int64
	TransportID int64
}
