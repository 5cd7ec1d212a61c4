package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vasiliy-maslov/delivery-api/internal/db"
)

var (
	ErrNotFound         = errors.New("account not found")
	ErrEmailExists      = errors.New("email already exists")
	ErrInvalidEmail     = errors.New("invalid email")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	ErrInvalidRole      = errors.New("invalid role")
)

type Repository interface {
	// Create inserts the account and its address atomically and returns the new id.
	Create(ctx context.Context, acc *Account) (int64, error)
	GetByID(ctx context.Context, id int64) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
}

type repository struct {
	db db.Querier
}

func NewRepository(q db.Querier) Repository {
	return &repository{db: q}
}

const selectAccount = `
	SELECT a.id, a.name, a.email, a.password, a.role, a.created_at,
	       ad.id, ad.complement, ad.street, ad.house_number, ad.neighborhood, ad.city, ad.state, ad.postal_code
	FROM accounts a
	LEFT JOIN addresses ad ON ad.account_id = a.id
`

func (r *repository) Create(ctx context.Context, acc *Account) (int64, error) {
	var createdID int64

	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		queryAccount := `
			INSERT INTO accounts (name, email, password, role)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at
		`
		err := tx.QueryRow(ctx, queryAccount, acc.Name, acc.Email, acc.PasswordHash, acc.Role.String()).
			Scan(&createdID, &acc.CreatedAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
				return ErrEmailExists
			}
			return fmt.Errorf("repository: failed to insert account: %w", err)
		}

		if acc.Address == nil {
			return nil
		}

		queryAddress := `
			INSERT INTO addresses (account_id, complement, street, house_number, neighborhood, city, state, postal_code)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id
		`
		addr := acc.Address
		err = tx.QueryRow(ctx, queryAddress,
			createdID,
			addr.Complement,
			addr.Street,
			addr.HouseNumber,
			addr.Neighborhood,
			addr.City,
			addr.State,
			addr.PostalCode,
		).Scan(&addr.ID)
		if err != nil {
			return fmt.Errorf("repository: failed to insert address for account %d: %w", createdID, err)
		}
		addr.AccountID = createdID

		return nil
	})
	if err != nil {
		return 0, err
	}

	return createdID, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Account, error) {
	acc, err := scanAccount(r.db.QueryRow(ctx, selectAccount+` WHERE a.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select account by id %d: %w", id, err)
	}
	return acc, nil
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	acc, err := scanAccount(r.db.QueryRow(ctx, selectAccount+` WHERE a.email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select account by email: %w", err)
	}
	return acc, nil
}

func scanAccount(row pgx.Row) (*Account, error) {
	var (
		acc  Account
		role string

		addrID                                *int64
		complement, street, houseNumber       *string
		neighborhood, city, state, postalCode *string
	)

	err := row.Scan(
		&acc.ID,
		&acc.Name,
		&acc.Email,
		&acc.PasswordHash,
		&role,
		&acc.CreatedAt,
		&addrID,
		&complement,
		&street,
		&houseNumber,
		&neighborhood,
		&city,
		&state,
		&postalCode,
	)
	if err != nil {
		return nil, err
	}

	acc.Role, err = ParseRole(role)
	if err != nil {
		return nil, err
	}

	if addrID != nil {
		acc.Address = &Address{
			ID:           *addrID,
			AccountID:    acc.ID,
			Complement:   deref(complement),
			Street:       deref(street),
			HouseNumber:  deref(houseNumber),
			Neighborhood: deref(neighborhood),
			City:         deref(city),
			State:        deref(state),
			PostalCode:   deref(postalCode),
		}
	}

	return &acc, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
