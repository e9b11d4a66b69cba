package rbac

// Role is a named position in the role hierarchy.
type Role string

// Permission is a dotted action name such as "jobs.publish".
// Role grants may use wildcards: "jobs.*" or "*".
type Permission string

// Wildcard matches every permission when granted alone.
const Wildcard Permission = "*"

// Definition declares one role.
type Definition struct {
	Role Role
	// Rank orders roles for IsAtLeast. Ranks must be unique.
	Rank int
	// Permissions granted directly; wildcards allowed.
	Permissions []Permission
	// Inherits lists roles whose permissions this role also holds.
	Inherits []Role
}
