package rbac

import (
	"errors"
	"fmt"
	"slices"
)

// Evaluator answers role and permission questions from a static table.
// It is immutable after construction and safe for concurrent use.
type Evaluator struct {
	ranks       map[Role]int
	grants      map[Role][]Permission
	permissions map[Permission]struct{}
	roles       []Role
	declared    []Permission
}

// NewEvaluator validates the table and precomputes each role's effective
// grants, inherited ones included.
//
// Every permission a role grants must be declared in permissions, and every
// wildcard must cover at least one declared permission.
func NewEvaluator(defs []Definition, permissions []Permission) (*Evaluator, error) {
	e := &Evaluator{
		ranks:       make(map[Role]int, len(defs)),
		grants:      make(map[Role][]Permission, len(defs)),
		permissions: make(map[Permission]struct{}, len(permissions)),
		declared:    slices.Clone(permissions),
	}

	for _, p := range permissions {
		if p == "" || isPattern(p) {
			return nil, errors.Join(ErrInvalidDefinition, fmt.Errorf("declared permission %q must be concrete", p))
		}
		e.permissions[p] = struct{}{}
	}

	byRole := make(map[Role]Definition, len(defs))
	rankOwner := make(map[int]Role, len(defs))
	for _, d := range defs {
		if d.Role == "" {
			return nil, errors.Join(ErrInvalidDefinition, errors.New("role name cannot be empty"))
		}
		if _, dup := byRole[d.Role]; dup {
			return nil, errors.Join(ErrInvalidDefinition, fmt.Errorf("duplicate role %q", d.Role))
		}
		if other, dup := rankOwner[d.Rank]; dup {
			return nil, errors.Join(ErrInvalidDefinition, fmt.Errorf("roles %q and %q share rank %d", other, d.Role, d.Rank))
		}
		for _, p := range d.Permissions {
			if err := e.validateGrant(p); err != nil {
				return nil, errors.Join(ErrInvalidDefinition, fmt.Errorf("role %q: %w", d.Role, err))
			}
		}
		byRole[d.Role] = d
		rankOwner[d.Rank] = d.Role
		e.ranks[d.Role] = d.Rank
		e.roles = append(e.roles, d.Role)
	}

	for _, d := range defs {
		for _, parent := range d.Inherits {
			if _, ok := byRole[parent]; !ok {
				return nil, errors.Join(ErrInvalidDefinition, ErrUnknownRole,
					fmt.Errorf("role %q inherits undeclared role %q", d.Role, parent))
			}
		}
	}

	for _, d := range defs {
		grants, err := collect(d.Role, byRole, nil)
		if err != nil {
			return nil, err
		}
		slices.Sort(grants)
		e.grants[d.Role] = slices.Compact(grants)
	}

	slices.SortFunc(e.roles, func(a, b Role) int { return e.ranks[a] - e.ranks[b] })
	return e, nil
}

// MustNewEvaluator is NewEvaluator that panics on an invalid table.
func MustNewEvaluator(defs []Definition, permissions []Permission) *Evaluator {
	e, err := NewEvaluator(defs, permissions)
	if err != nil {
		panic(err)
	}
	return e
}

func (e *Evaluator) validateGrant(p Permission) error {
	if !isPattern(p) {
		if _, ok := e.permissions[p]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownPermission, p)
		}
		return nil
	}
	for declared := range e.permissions {
		if matches(declared, p) {
			return nil
		}
	}
	return fmt.Errorf("%w: wildcard %q matches no declared permission", ErrUnknownPermission, p)
}

// collect walks the inheritance graph depth first; path holds the roles
// on the current branch.
func collect(role Role, byRole map[Role]Definition, path []Role) ([]Permission, error) {
	if slices.Contains(path, role) {
		return nil, errors.Join(ErrCircularInheritance, fmt.Errorf("%v -> %s", path, role))
	}
	path = append(path, role)

	d := byRole[role]
	out := slices.Clone(d.Permissions)
	for _, parent := range d.Inherits {
		inherited, err := collect(parent, byRole, path)
		if err != nil {
			return nil, err
		}
		out = append(out, inherited...)
	}
	return out, nil
}

// Roles returns all roles from lowest to highest rank.
func (e *Evaluator) Roles() []Role {
	return slices.Clone(e.roles)
}

// Permissions returns the declared permissions in declaration order.
func (e *Evaluator) Permissions() []Permission {
	return slices.Clone(e.declared)
}

// ParseRole converts untrusted input such as a header value into a declared Role.
func (e *Evaluator) ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := e.ranks[r]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

// HasRole reports an exact role match.
func (e *Evaluator) HasRole(user, role Role) (bool, error) {
	if err := e.requireRoles(user, role); err != nil {
		return false, err
	}
	return user == role, nil
}

// HasAnyRole reports whether user is one of roles. No roles means false.
func (e *Evaluator) HasAnyRole(user Role, roles ...Role) (bool, error) {
	if err := e.requireRoles(append([]Role{user}, roles...)...); err != nil {
		return false, err
	}
	return slices.Contains(roles, user), nil
}

// IsAtLeast reports rank(user) >= rank(threshold).
func (e *Evaluator) IsAtLeast(user, threshold Role) (bool, error) {
	if err := e.requireRoles(user, threshold); err != nil {
		return false, err
	}
	return e.ranks[user] >= e.ranks[threshold], nil
}

// HasPermission reports whether the role holds perm, directly, by
// inheritance or through a wildcard.
func (e *Evaluator) HasPermission(user Role, perm Permission) (bool, error) {
	grants, err := e.lookup(user, perm)
	if err != nil {
		return false, err
	}
	return covered(grants, perm), nil
}

// HasAnyPermission reports whether the role holds at least one of perms.
// No perms means false.
func (e *Evaluator) HasAnyPermission(user Role, perms ...Permission) (bool, error) {
	grants, err := e.lookup(user, perms...)
	if err != nil {
		return false, err
	}
	return slices.ContainsFunc(perms, func(p Permission) bool { return covered(grants, p) }), nil
}

// HasAllPermissions reports whether the role holds every one of perms.
// No perms means true.
func (e *Evaluator) HasAllPermissions(user Role, perms ...Permission) (bool, error) {
	grants, err := e.lookup(user, perms...)
	if err != nil {
		return false, err
	}
	for _, p := range perms {
		if !covered(grants, p) {
			return false, nil
		}
	}
	return true, nil
}

func (e *Evaluator) lookup(user Role, perms ...Permission) ([]Permission, error) {
	grants, ok := e.grants[user]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, user)
	}
	for _, p := range perms {
		if _, ok := e.permissions[p]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPermission, p)
		}
	}
	return grants, nil
}

func (e *Evaluator) requireRoles(roles ...Role) error {
	for _, r := range roles {
		if _, ok := e.ranks[r]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownRole, r)
		}
	}
	return nil
}
