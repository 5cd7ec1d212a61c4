package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/vasiliy-maslov/delivery-api/internal/account"
	"github.com/vasiliy-maslov/delivery-api/internal/db"
	"github.com/vasiliy-maslov/delivery-api/internal/product"
)

var (
	ErrNotFound        = errors.New("order not found")
	ErrCarrierNotFound = errors.New("transport not found")
	ErrProductNotFound = errors.New("product not found")
	ErrEmptyOrder      = errors.New("order must contain at least one product")
	ErrNotCarrier      = errors.New("order is not assigned to this transport")
	ErrNotCounterparty = errors.New("order does not belong to this account")
)

// Store is the persistence the order lifecycle runs against. One Store is
// bound to either the pool or a single transaction.
type Store interface {
	FindAccount(ctx context.Context, id int64) (*account.Account, error)
	FindProduct(ctx context.Context, id int64) (*product.Product, error)

	InsertOrder(ctx context.Context, o *Order) error
	InsertItem(ctx context.Context, item *Item) error
	SetTotalPrice(ctx context.Context, orderID int64, total float64) error

	GetOrder(ctx context.Context, id int64) (*View, error)
	// LockOrder reads the order row with SELECT ... FOR UPDATE.
	LockOrder(ctx context.Context, id int64) (*Order, error)
	UpdateStatus(ctx context.Context, id int64, status Status) (*Order, error)
	ListOrders(ctx context.Context, f Filter) ([]View, error)
	ListProducts(ctx context.Context, orderID int64) ([]product.Product, error)
}

// UnitOfWork hands out Stores. WithinTx commits when fn returns nil and
// rolls back otherwise.
type UnitOfWork interface {
	Store() Store
	WithinTx(ctx context.Context, fn func(Store) error) error
}

type postgresUnitOfWork struct {
	db db.Querier
}

func NewUnitOfWork(q db.Querier) UnitOfWork {
	return &postgresUnitOfWork{db: q}
}

func (u *postgresUnitOfWork) Store() Store {
	return newPostgresStore(u.db)
}

func (u *postgresUnitOfWork) WithinTx(ctx context.Context, fn func(Store) error) error {
	return db.WithTx(ctx, u.db, func(tx pgx.Tx) error {
		return fn(newPostgresStore(tx))
	})
}

type postgresStore struct {
	db       db.Querier
	accounts account.Repository
	products product.Repository
}

func newPostgresStore(q db.Querier) *postgresStore {
	return &postgresStore{
		db:       q,
		accounts: account.NewRepository(q),
		products: product.NewRepository(q),
	}
}

func (s *postgresStore) FindAccount(ctx context.Context, id int64) (*account.Account, error) {
	return s.accounts.GetByID(ctx, id)
}

func (s *postgresStore) FindProduct(ctx context.Context, id int64) (*product.Product, error) {
	return s.products.GetByID(ctx, id)
}

func (s *postgresStore) InsertOrder(ctx context.Context, o *Order) error {
	query := `
		INSERT INTO orders (user_id, transport_id, total_price, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	err := s.db.QueryRow(ctx, query, o.UserID, o.TransportID, o.TotalPrice, int16(o.Status)).
		Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("repository: failed to insert order: %w", err)
	}
	return nil
}

func (s *postgresStore) InsertItem(ctx context.Context, item *Item) error {
	query := `INSERT INTO order_items (order_id, product_id) VALUES ($1, $2) RETURNING id`
	if err := s.db.QueryRow(ctx, query, item.OrderID, item.ProductID).Scan(&item.ID); err != nil {
		return fmt.Errorf("repository: failed to insert item for order %d: %w", item.OrderID, err)
	}
	return nil
}

func (s *postgresStore) SetTotalPrice(ctx context.Context, orderID int64, total float64) error {
	cmdTag, err := s.db.Exec(ctx, `UPDATE orders SET total_price = $1, updated_at = NOW() WHERE id = $2`, total, orderID)
	if err != nil {
		return fmt.Errorf("repository: failed to set total for order %d: %w", orderID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const selectOrder = `SELECT id, user_id, transport_id, total_price, status, created_at, updated_at FROM orders`

const selectView = `
	SELECT o.id, o.user_id, o.transport_id, o.total_price, o.status, o.created_at, o.updated_at,
	       u.name, t.name
	FROM orders o
	JOIN accounts u ON u.id = o.user_id
	JOIN accounts t ON t.id = o.transport_id
`

func scanOrder(row pgx.Row) (*Order, error) {
	var (
		o      Order
		status int16
	)
	err := row.Scan(&o.ID, &o.UserID, &o.TransportID, &o.TotalPrice, &status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Status = Status(status)
	return &o, nil
}

func scanView(row pgx.Row) (*View, error) {
	var (
		v      View
		status int16
	)
	err := row.Scan(
		&v.ID,
		&v.UserID,
		&v.TransportID,
		&v.TotalPrice,
		&status,
		&v.CreatedAt,
		&v.UpdatedAt,
		&v.User,
		&v.Transport,
	)
	if err != nil {
		return nil, err
	}
	v.Status = Status(status)
	return &v, nil
}

func (s *postgresStore) GetOrder(ctx context.Context, id int64) (*View, error) {
	v, err := scanView(s.db.QueryRow(ctx, selectView+` WHERE o.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order %d: %w", id, err)
	}
	return v, nil
}

func (s *postgresStore) LockOrder(ctx context.Context, id int64) (*Order, error) {
	o, err := scanOrder(s.db.QueryRow(ctx, selectOrder+` WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to lock order %d: %w", id, err)
	}
	return o, nil
}

func (s *postgresStore) UpdateStatus(ctx context.Context, id int64, status Status) (*Order, error) {
	query := `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id, user_id, transport_id, total_price, status, created_at, updated_at
	`
	o, err := scanOrder(s.db.QueryRow(ctx, query, int16(status), id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to update status of order %d: %w", id, err)
	}
	return o, nil
}

func (s *postgresStore) ListOrders(ctx context.Context, f Filter) ([]View, error) {
	query := selectView + ` WHERE ($1::bigint = 0 OR o.user_id = $1) AND ($2::bigint = 0 OR o.transport_id = $2) ORDER BY o.status, o.id`

	rows, err := s.db.Query(ctx, query, f.UserID, f.TransportID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders: %w", err)
	}
	defer rows.Close()

	views := []View{}
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order: %w", err)
		}
		views = append(views, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: failed to iterate orders: %w", err)
	}
	return views, nil
}

func (s *postgresStore) ListProducts(ctx context.Context, orderID int64) ([]product.Product, error) {
	query := `
		SELECT p.id, p.name, p.description, p.price, p.created_at, p.updated_at
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.id
	`
	rows, err := s.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query products of order %d: %w", orderID, err)
	}

	products, err := pgx.CollectRows(rows, pgx.RowToStructByName[product.Product])
	if err != nil {
		return nil, fmt.Errorf("repository: failed to scan products of order %d: %w", orderID, err)
	}
	return products, nil
}
