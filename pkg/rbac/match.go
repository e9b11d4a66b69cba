package rbac

import "strings"

const delimiter = "."

// matches reports whether a granted pattern covers a concrete permission.
// "*" covers everything; "jobs.*" covers "jobs.read" and "jobs.notes.edit"
// but not "jobs" itself.
func matches(perm, pattern Permission) bool {
	if perm == pattern || pattern == Wildcard {
		return true
	}
	p := string(pattern)
	if prefix, ok := strings.CutSuffix(p, delimiter+string(Wildcard)); ok {
		return strings.HasPrefix(string(perm), prefix+delimiter)
	}
	return false
}

func isPattern(p Permission) bool {
	return strings.Contains(string(p), string(Wildcard))
}

func covered(grants []Permission, perm Permission) bool {
	for _, g := range grants {
		if matches(perm, g) {
			return true
		}
	}
	return false
}
