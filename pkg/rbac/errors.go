package rbac

import "errors"

var (
	// ErrUnknownRole and ErrUnknownPermission signal a typo or a stale id in
	// the caller. Checks never turn them into a silent false.
	ErrUnknownRole       = errors.New("rbac.errors.unknown_role")
	ErrUnknownPermission = errors.New("rbac.errors.unknown_permission")

	ErrInvalidDefinition   = errors.New("rbac.errors.invalid_definition")
	ErrCircularInheritance = errors.New("rbac.errors.circular_inheritance")
	ErrRoleNotInContext    = errors.New("rbac.errors.role_not_in_context")
)
