package product

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog/log"
)

type Service interface {
	CreateProduct(ctx context.Context, in Input) (*Product, error)
	GetProduct(ctx context.Context, id int64) (*Product, error)
	ListProducts(ctx context.Context) ([]Product, error)
	UpdateProduct(ctx context.Context, id int64, in Input) (*Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// RoundPrice rounds to cents.
func RoundPrice(v float64) float64 {
	return math.Round(v*100) / 100
}

func normalize(in Input) (Input, error) {
	if math.IsNaN(in.Price) || math.IsInf(in.Price, 0) || in.Price < 0 {
		return Input{}, ErrInvalidPrice
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Price = RoundPrice(in.Price)
	if math.IsInf(in.Price, 0) {
		return Input{}, ErrInvalidPrice
	}
	return in, nil
}

func (s *service) CreateProduct(ctx context.Context, in Input) (*Product, error) {
	in, err := normalize(in)
	if err != nil {
		return nil, err
	}

	p := &Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
	}

	if _, err := s.repo.Create(ctx, p); err != nil {
		log.Error().Err(err).Msg("service: failed to create product in repository")
		return nil, fmt.Errorf("failed to save product: %w", err)
	}

	return p, nil
}

func (s *service) GetProduct(ctx context.Context, id int64) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Int64("product_id", id).Msg("service: failed to get product")
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	return p, nil
}

func (s *service) ListProducts(ctx context.Context) ([]Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list products")
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	if products == nil {
		products = []Product{}
	}
	return products, nil
}

func (s *service) UpdateProduct(ctx context.Context, id int64, in Input) (*Product, error) {
	in, err := normalize(in)
	if err != nil {
		return nil, err
	}

	p := &Product{
		ID:          id,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
	}

	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Int64("product_id", id).Msg("service: failed to update product")
		return nil, fmt.Errorf("failed to update product %d: %w", id, err)
	}

	return p, nil
}

func (s *service) DeleteProduct(ctx context.Context, id int64) error {
	err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrProductInUse) {
			return err
		}
		log.Error().Err(err).Int64("product_id", id).Msg("service: failed to delete product")
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	return nil
}
