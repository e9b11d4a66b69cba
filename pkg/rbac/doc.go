// Package rbac evaluates role and permission checks for tenant members.
//
// The table is static: each role has a unique rank, a set of granted
// permissions (wildcards such as "jobs.*" allowed) and optional parent
// roles it inherits from. NewEvaluator rejects undeclared permissions,
// wildcards that match nothing, unknown parents and inheritance cycles.
//
// Every check returns (bool, error). Asking about a role or permission the
// table does not declare returns ErrUnknownRole or ErrUnknownPermission
// instead of false.
//
//	ev := rbac.Default()
//	ok, err := ev.IsAtLeast(role, rbac.RoleAdmin)
//	if err != nil {
//		return err
//	}
package rbac
