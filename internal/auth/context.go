package auth

import (
	"context"

	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/model"
)

type contextKey struct{}

// Principal is the authenticated user resolved from a session, carried on
// the request context for authorization decisions.
type Principal struct {
	UserID    string
	Email     string
	Role      model.Role
	SessionID string
}

func (p Principal) IsAdmin() bool {
	return p.Role == model.RoleAdmin
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}

func IsAdmin(ctx context.Context) bool {
	p, ok := FromContext(ctx)
	return ok && p.IsAdmin()
}
