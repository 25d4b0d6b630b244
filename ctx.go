package authclient

import (
	"context"

	"github.com/goliatone/go-router"
)

var accountCtxKey = &contextKey{"account"}

type contextKey struct {
	name string
}

// WithAccount sets the authenticated Account in the given context.
func WithAccount(ctx context.Context, account *Account) context.Context {
	return context.WithValue(ctx, accountCtxKey, account)
}

// AccountFromContext finds the authenticated account in the context.
func AccountFromContext(ctx context.Context) (*Account, bool) {
	account, ok := ctx.Value(accountCtxKey).(*Account)
	if !ok || account == nil {
		return nil, false
	}
	return account, true
}

// GetRouterAccount extracts the account a Guard middleware stored in the
// router locals.
func GetRouterAccount(ctx router.Context, key string) (*Account, bool) {
	if key == "" {
		key = "account"
	}
	raw := ctx.Locals(key)
	if raw == nil {
		return nil, false
	}
	account, ok := raw.(*Account)
	if !ok || account == nil {
		return nil, false
	}
	return account, true
}
