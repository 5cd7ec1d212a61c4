package order_test

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/vasiliy-maslov/delivery-api/internal/account"
	"github.com/vasiliy-maslov/delivery-api/internal/order"
	"github.com/vasiliy-maslov/delivery-api/internal/product"
)

// fakeDB is an in-memory Store backend. WithinTx snapshots the mutable
// tables and restores them when the callback fails.
type fakeDB struct {
	accounts map[int64]*account.Account
	products map[int64]*product.Product
	orders   map[int64]order.Order
	items    []order.Item

	nextOrderID int64
	nextItemID  int64

	failInsertItem error
	transactions   int
}

type fakeSnapshot struct {
	orders      map[int64]order.Order
	items       []order.Item
	nextOrderID int64
	nextItemID  int64
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		accounts: map[int64]*account.Account{},
		products: map[int64]*product.Product{},
		orders:   map[int64]order.Order{},
	}
}

func (d *fakeDB) snapshot() fakeSnapshot {
	orders := make(map[int64]order.Order, len(d.orders))
	for id, o := range d.orders {
		orders[id] = o
	}
	return fakeSnapshot{
		orders:      orders,
		items:       append([]order.Item(nil), d.items...),
		nextOrderID: d.nextOrderID,
		nextItemID:  d.nextItemID,
	}
}

func (d *fakeDB) restore(s fakeSnapshot) {
	d.orders = s.orders
	d.items = s.items
	d.nextOrderID = s.nextOrderID
	d.nextItemID = s.nextItemID
}

func (d *fakeDB) addAccount(id int64, name string, role account.Role) *account.Account {
	acc := &account.Account{ID: id, Name: name, Email: name + "@example.com", Role: role}
	d.accounts[id] = acc
	return acc
}

func (d *fakeDB) addProduct(id int64, name string, price float64) {
	d.products[id] = &product.Product{ID: id, Name: name, Price: price}
}

// seedOrder stores an order directly, bypassing the service.
func (d *fakeDB) seedOrder(userID, transportID int64, status order.Status, productIDs ...int64) int64 {
	d.nextOrderID++
	o := order.Order{ID: d.nextOrderID, UserID: userID, TransportID: transportID, Status: status}
	for _, pid := range productIDs {
		o.TotalPrice += d.products[pid].Price
		d.nextItemID++
		d.items = append(d.items, order.Item{ID: d.nextItemID, OrderID: o.ID, ProductID: pid})
	}
	d.orders[o.ID] = o
	return o.ID
}

func (d *fakeDB) itemsOf(orderID int64) []order.Item {
	var items []order.Item
	for _, it := range d.items {
		if it.OrderID == orderID {
			items = append(items, it)
		}
	}
	return items
}

type fakeUnitOfWork struct {
	db *fakeDB
}

func (u *fakeUnitOfWork) Store() order.Store {
	return &fakeStore{db: u.db}
}

func (u *fakeUnitOfWork) WithinTx(ctx context.Context, fn func(order.Store) error) error {
	u.db.transactions++
	snap := u.db.snapshot()
	if err := fn(&fakeStore{db: u.db}); err != nil {
		u.db.restore(snap)
		return err
	}
	return nil
}

type fakeStore struct {
	db *fakeDB
}

func (s *fakeStore) FindAccount(ctx context.Context, id int64) (*account.Account, error) {
	acc, ok := s.db.accounts[id]
	if !ok {
		return nil, account.ErrNotFound
	}
	return acc, nil
}

func (s *fakeStore) FindProduct(ctx context.Context, id int64) (*product.Product, error) {
	p, ok := s.db.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *fakeStore) InsertOrder(ctx context.Context, o *order.Order) error {
	s.db.nextOrderID++
	o.ID = s.db.nextOrderID
	o.CreatedAt = time.Now().UTC()
	o.UpdatedAt = o.CreatedAt
	stored := *o
	stored.Items = nil
	s.db.orders[o.ID] = stored
	return nil
}

func (s *fakeStore) InsertItem(ctx context.Context, item *order.Item) error {
	if s.db.failInsertItem != nil {
		return s.db.failInsertItem
	}
	if _, ok := s.db.orders[item.OrderID]; !ok {
		return errors.New("fake: order does not exist")
	}
	s.db.nextItemID++
	item.ID = s.db.nextItemID
	s.db.items = append(s.db.items, *item)
	return nil
}

func (s *fakeStore) SetTotalPrice(ctx context.Context, orderID int64, total float64) error {
	o, ok := s.db.orders[orderID]
	if !ok {
		return order.ErrNotFound
	}
	o.TotalPrice = total
	s.db.orders[orderID] = o
	return nil
}

func (s *fakeStore) view(o order.Order) order.View {
	return order.View{
		Order:     o,
		User:      s.db.accounts[o.UserID].Name,
		Transport: s.db.accounts[o.TransportID].Name,
	}
}

func (s *fakeStore) GetOrder(ctx context.Context, id int64) (*order.View, error) {
	o, ok := s.db.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	v := s.view(o)
	return &v, nil
}

func (s *fakeStore) LockOrder(ctx context.Context, id int64) (*order.Order, error) {
	o, ok := s.db.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return &o, nil
}

func (s *fakeStore) UpdateStatus(ctx context.Context, id int64, status order.Status) (*order.Order, error) {
	o, ok := s.db.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now().UTC()
	s.db.orders[id] = o
	return &o, nil
}

func (s *fakeStore) ListOrders(ctx context.Context, f order.Filter) ([]order.View, error) {
	var views []order.View
	for _, o := range s.db.orders {
		if f.UserID != 0 && o.UserID != f.UserID {
			continue
		}
		if f.TransportID != 0 && o.TransportID != f.TransportID {
			continue
		}
		views = append(views, s.view(o))
	}
	sort.Slice(views, func(i, j int) bool {
		if views[i].Status != views[j].Status {
			return views[i].Status < views[j].Status
		}
		return views[i].ID < views[j].ID
	})
	return views, nil
}

func (s *fakeStore) ListProducts(ctx context.Context, orderID int64) ([]product.Product, error) {
	var products []product.Product
	for _, it := range s.db.itemsOf(orderID) {
		products = append(products, *s.db.products[it.ProductID])
	}
	return products, nil
}
