package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/delivery-api/internal/account"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid password")

// AccountReader is the part of account.Service authentication needs.
type AccountReader interface {
	GetAccountByID(ctx context.Context, id int64) (*account.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*account.Account, error)
}

type Service interface {
	Login(ctx context.Context, email, password string) (*Token, error)
	// Authenticate resolves an Authorization header value to the caller.
	Authenticate(ctx context.Context, authorizationHeader string) (*account.Account, error)
}

type service struct {
	accounts AccountReader
	tokens   *TokenIssuer
}

func NewService(accounts AccountReader, tokens *TokenIssuer) Service {
	return &service{accounts: accounts, tokens: tokens}
}

func (s *service) Login(ctx context.Context, email, password string) (*Token, error) {
	acc, err := s.accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		log.Warn().Int64("account_id", acc.ID).Msg("auth: password mismatch on login")
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(acc)
	if err != nil {
		log.Error().Err(err).Int64("account_id", acc.ID).Msg("auth: failed to issue token")
		return nil, err
	}

	return token, nil
}

func (s *service) Authenticate(ctx context.Context, authorizationHeader string) (*account.Account, error) {
	if authorizationHeader == "" {
		return nil, ErrUnauthenticated
	}

	scheme, tokenString, found := strings.Cut(authorizationHeader, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenString) == "" {
		return nil, ErrInvalidToken
	}

	claims, err := s.tokens.Parse(strings.TrimSpace(tokenString))
	if err != nil {
		return nil, err
	}

	acc, err := s.accounts.GetAccountByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("auth: failed to load account %d: %w", claims.AccountID, err)
	}

	return acc, nil
}
