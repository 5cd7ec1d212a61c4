package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 6

type Service interface {
	CreateAccount(ctx context.Context, reg Registration, role Role) (*Account, error)
	GetAccountByID(ctx context.Context, id int64) (*Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)
}

type service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository) Service {
	return &service{
		repo:     repo,
		validate: validator.New(),
	}
}

func (s *service) CreateAccount(ctx context.Context, reg Registration, role Role) (*Account, error) {
	role, err := ParseRole(role.String())
	if err != nil {
		return nil, err
	}

	email := strings.TrimSpace(reg.Email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, ErrInvalidEmail
	}

	if utf8.RuneCountInString(reg.Password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hashPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to generate password hash")
		return nil, fmt.Errorf("internal error hashing password: %w", err)
	}

	addr := reg.Address
	acc := &Account{
		Name:         reg.Name,
		Email:        email,
		PasswordHash: string(hashPasswordBytes),
		Role:         role,
		Address:      &addr,
	}

	createdID, err := s.repo.Create(ctx, acc)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, ErrEmailExists
		}
		log.Error().Err(err).Str("role", role.String()).Msg("service: failed to create account in repository")
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	acc.ID = createdID
	acc.Address.AccountID = createdID

	log.Info().Int64("account_id", createdID).Str("role", role.String()).Msg("service: account created")
	return acc, nil
}

func (s *service) GetAccountByID(ctx context.Context, id int64) (*Account, error) {
	acc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}

		log.Error().Err(err).Int64("account_id", id).Msg("service: failed to get account by id in repository")
		return nil, fmt.Errorf("failed to get account by id %d: %w", id, err)
	}

	return acc, nil
}

func (s *service) GetAccountByEmail(ctx context.Context, email string) (*Account, error) {
	acc, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}

		log.Error().Err(err).Msg("service: failed to get account by email in repository")
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}

	return acc, nil
}
