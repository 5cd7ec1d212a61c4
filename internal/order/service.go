package order

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/delivery-api/internal/account"
	"github.com/vasiliy-maslov/delivery-api/internal/auth"
	"github.com/vasiliy-maslov/delivery-api/internal/product"
)

type Service interface {
	CreateOrder(ctx context.Context, buyer *account.Account, in CreateInput) (*Order, error)
	ListOrders(ctx context.Context, caller *account.Account) ([]View, error)
	GetOrder(ctx context.Context, caller *account.Account, id int64) (*View, error)
	AdvanceOrder(ctx context.Context, carrier *account.Account, id int64) (*Order, error)
	CancelOrder(ctx context.Context, carrier *account.Account, id int64) (*Order, error)
}

type service struct {
	uow    UnitOfWork
	cancel CancelPolicy
}

func NewService(uow UnitOfWork, cancel CancelPolicy) Service {
	return &service{uow: uow, cancel: cancel}
}

func (s *service) CreateOrder(ctx context.Context, buyer *account.Account, in CreateInput) (*Order, error) {
	if err := auth.RequireRole(buyer, account.RoleUser); err != nil {
		return nil, err
	}

	if len(in.ProductIDs) == 0 {
		log.Warn().Int64("user_id", buyer.ID).Msg("service: attempt to create order with no products")
		return nil, ErrEmptyOrder
	}

	var created *Order
	err := s.uow.WithinTx(ctx, func(store Store) error {
		carrier, err := store.FindAccount(ctx, in.TransportID)
		if err != nil {
			if errors.Is(err, account.ErrNotFound) {
				return ErrCarrierNotFound
			}
			return fmt.Errorf("failed to load transport %d: %w", in.TransportID, err)
		}
		if carrier.Role != account.RoleTransport {
			return ErrCarrierNotFound
		}

		o := &Order{
			UserID:      buyer.ID,
			TransportID: carrier.ID,
			Status:      StatusWaitingApproval,
		}
		if err := store.InsertOrder(ctx, o); err != nil {
			return err
		}

		total := 0.0
		o.Items = make([]Item, 0, len(in.ProductIDs))
		for _, productID := range in.ProductIDs {
			p, err := store.FindProduct(ctx, productID)
			if err != nil {
				if errors.Is(err, product.ErrNotFound) {
					return fmt.Errorf("%w: %d", ErrProductNotFound, productID)
				}
				return fmt.Errorf("failed to load product %d: %w", productID, err)
			}
			total += p.Price

			item := Item{OrderID: o.ID, ProductID: p.ID}
			if err := store.InsertItem(ctx, &item); err != nil {
				return err
			}
			o.Items = append(o.Items, item)
		}

		o.TotalPrice = product.RoundPrice(total)
		if math.IsInf(o.TotalPrice, 0) {
			return fmt.Errorf("%w: order total is out of range", product.ErrInvalidPrice)
		}
		if err := store.SetTotalPrice(ctx, o.ID, o.TotalPrice); err != nil {
			return err
		}

		created = o
		return nil
	})
	if err != nil {
		if isDomainError(err) {
			log.Warn().Err(err).Int64("user_id", buyer.ID).Msg("service: order rejected")
			return nil, err
		}
		log.Error().Err(err).Int64("user_id", buyer.ID).Msg("service: failed to create order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	log.Info().Int64("order_id", created.ID).Int64("user_id", buyer.ID).Float64("total_price", created.TotalPrice).Msg("service: order created")
	return created, nil
}

func (s *service) ListOrders(ctx context.Context, caller *account.Account) ([]View, error) {
	if err := auth.RequireRole(caller, account.RoleUser, account.RoleTransport); err != nil {
		return nil, err
	}

	var f Filter
	switch caller.Role {
	case account.RoleTransport:
		f.TransportID = caller.ID
	case account.RoleUser:
		f.UserID = caller.ID
	}

	store := s.uow.Store()
	views, err := store.ListOrders(ctx, f)
	if err != nil {
		log.Error().Err(err).Int64("account_id", caller.ID).Msg("service: failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if views == nil {
		views = []View{}
	}

	for i := range views {
		if err := s.enrich(ctx, store, &views[i]); err != nil {
			return nil, err
		}
	}
	return views, nil
}

func (s *service) GetOrder(ctx context.Context, caller *account.Account, id int64) (*View, error) {
	if err := auth.RequireRole(caller, account.RoleUser, account.RoleTransport); err != nil {
		return nil, err
	}

	store := s.uow.Store()
	v, err := store.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Int64("order_id", id).Msg("service: failed to get order")
		return nil, fmt.Errorf("failed to get order %d: %w", id, err)
	}

	if caller.Role != account.RoleAdmin && caller.ID != v.UserID && caller.ID != v.TransportID {
		log.Warn().Int64("order_id", id).Int64("account_id", caller.ID).Msg("service: order read by non-counterparty")
		return nil, ErrNotCounterparty
	}

	if err := s.enrich(ctx, store, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *service) AdvanceOrder(ctx context.Context, carrier *account.Account, id int64) (*Order, error) {
	return s.transition(ctx, carrier, id, "advance", func(current Status) (Status, error) {
		return current.Next()
	})
}

func (s *service) CancelOrder(ctx context.Context, carrier *account.Account, id int64) (*Order, error) {
	target := s.cancel.Target()
	return s.transition(ctx, carrier, id, "cancel", func(Status) (Status, error) {
		return target, nil
	})
}

// transition locks the order, checks the caller is its carrier and writes
// the status chosen by next.
func (s *service) transition(ctx context.Context, carrier *account.Account, id int64, action string, next func(Status) (Status, error)) (*Order, error) {
	if err := auth.RequireRole(carrier, account.RoleTransport); err != nil {
		return nil, err
	}

	var updated *Order
	err := s.uow.WithinTx(ctx, func(store Store) error {
		o, err := store.LockOrder(ctx, id)
		if err != nil {
			return err
		}
		if carrier.Role != account.RoleAdmin && o.TransportID != carrier.ID {
			return ErrNotCarrier
		}

		status, err := next(o.Status)
		if err != nil {
			return err
		}

		updated, err = store.UpdateStatus(ctx, id, status)
		if err != nil {
			return err
		}

		log.Info().
			Int64("order_id", id).
			Stringer("old_status", o.Status).
			Stringer("new_status", status).
			Str("action", action).
			Msg("service: order status updated")
		return nil
	})
	if err != nil {
		if isDomainError(err) {
			log.Warn().Err(err).Int64("order_id", id).Int64("account_id", carrier.ID).Str("action", action).Msg("service: order transition rejected")
			return nil, err
		}
		log.Error().Err(err).Int64("order_id", id).Str("action", action).Msg("service: failed to update order status")
		return nil, fmt.Errorf("failed to %s order %d: %w", action, id, err)
	}

	return updated, nil
}

func (s *service) enrich(ctx context.Context, store Store, v *View) error {
	v.StatusMessage, _ = v.Status.Message()

	products, err := store.ListProducts(ctx, v.ID)
	if err != nil {
		log.Error().Err(err).Int64("order_id", v.ID).Msg("service: failed to load order products")
		return fmt.Errorf("failed to load products of order %d: %w", v.ID, err)
	}
	if products == nil {
		products = []product.Product{}
	}
	v.Products = products
	return nil
}

func isDomainError(err error) bool {
	for _, target := range []error{
		ErrNotFound,
		ErrCarrierNotFound,
		ErrProductNotFound,
		product.ErrInvalidPrice,
		ErrNotCarrier,
		ErrStatusCannotAdvance,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
