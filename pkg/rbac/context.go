package rbac

import "context"

type roleCtxKey struct{}

// WithRole stores the acting user's role in ctx.
func WithRole(ctx context.Context, role Role) context.Context {
	return context.WithValue(ctx, roleCtxKey{}, role)
}

// RoleFromContext returns the role stored by WithRole.
func RoleFromContext(ctx context.Context) (Role, bool) {
	role, ok := ctx.Value(roleCtxKey{}).(Role)
	return role, ok
}

// RequireRoleFromContext returns ErrRoleNotInContext when no role is set.
func RequireRoleFromContext(ctx context.Context) (Role, error) {
	role, ok := RoleFromContext(ctx)
	if !ok {
		return "", ErrRoleNotInContext
	}
	return role, nil
}
