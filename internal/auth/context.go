package auth

import (
	"context"

	"github.com/vasiliy-maslov/delivery-api/internal/account"
)

type accountCtxKey struct{}

func WithAccount(ctx context.Context, acc *account.Account) context.Context {
	return context.WithValue(ctx, accountCtxKey{}, acc)
}

// AccountFromContext returns the authenticated caller, or nil.
func AccountFromContext(ctx context.Context) *account.Account {
	acc, _ := ctx.Value(accountCtxKey{}).(*account.Account)
	return acc
}
