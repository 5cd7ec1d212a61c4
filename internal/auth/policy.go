package auth

import (
	"errors"

	"github.com/vasiliy-maslov/delivery-api/internal/account"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("operation not allowed for this account")
)

// RequireRole allows acc when its role is one of allowed. ADMIN is always
// allowed. A nil account is unauthenticated, not forbidden.
func RequireRole(acc *account.Account, allowed ...account.Role) error {
	if acc == nil {
		return ErrUnauthenticated
	}

	switch acc.Role {
	case account.RoleAdmin:
		return nil
	case account.RoleUser, account.RoleTransport:
		for _, role := range allowed {
			if acc.Role == role {
				return nil
			}
		}
		return ErrForbidden
	default:
		return ErrForbidden
	}
}
