package auth

import (
	"context"

	"preventa/internal/domain"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID int64
	Role   domain.Role
}

func (p Principal) Identity() domain.Identity {
	return domain.Identity{UserID: p.UserID, Role: p.Role}
}

func (p Principal) HasRole(roles ...domain.Role) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
