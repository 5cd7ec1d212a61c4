package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofrs/uuid"
	"github.com/vasiliy-maslov/delivery-api/internal/account"
)

var ErrInvalidToken = errors.New("invalid or expired token")

const TokenType = "bearer"

// Claims is the JWT payload: account id, role and the standard expiry fields.
type Claims struct {
	AccountID int64  `json:"id"`
	Role      string `json:"role"`
	jwt.StandardClaims
}

type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// TokenIssuer signs and verifies HS256 access tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock replaces the issuing clock; verification always uses wall time.
func (i *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	clone := *i
	clone.now = now
	return &clone
}

func (i *TokenIssuer) TTL() time.Duration {
	return i.ttl
}

func (i *TokenIssuer) Issue(acc *account.Account) (*Token, error) {
	tokenID, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token id: %w", err)
	}

	issuedAt := i.now().UTC()
	expiresAt := issuedAt.Add(i.ttl)

	claims := &Claims{
		AccountID: acc.ID,
		Role:      acc.Role.String(),
		StandardClaims: jwt.StandardClaims{
			Id:        tokenID.String(),
			IssuedAt:  issuedAt.Unix(),
			ExpiresAt: expiresAt.Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(i.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &Token{
		AccessToken: tokenString,
		TokenType:   TokenType,
		ExpiresAt:   time.Unix(expiresAt.Unix(), 0).UTC(),
	}, nil
}

func (i *TokenIssuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.AccountID <= 0 || claims.ExpiresAt == 0 {
		return nil, ErrInvalidToken
	}
	if _, err := account.ParseRole(claims.Role); err != nil {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
