// Package rbac defines user roles and the role-based checks used by the HTTP
// middleware and services. Roles are a flat enumeration; Authority translates a
// role tag to its capability label.
package rbac

import "fmt"

// Role is a role tag assigned to a user.
type Role string

const (
	RoleUser             Role = "USER"
	RoleAdmin            Role = "ADMIN"
	RoleManager          Role = "MANAGER"
	RoleCustomerService  Role = "CUSTOMER_SERVICE"
	RoleInventoryManager Role = "INVENTORY_MANAGER"
)

// Valid reports whether r is a known role tag.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleManager, RoleCustomerService, RoleInventoryManager:
		return true
	}
	return false
}

// Parse converts a string to a Role, failing on unknown tags.
func Parse(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Authority returns the capability label for a role (e.g. "ROLE_ADMIN").
func Authority(r Role) string {
	return "ROLE_" + string(r)
}

// Authorities maps a role set to its capability labels.
func Authorities(roles []Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = Authority(r)
	}
	return out
}

// HasAny reports whether roles contains at least one of allowed.
func HasAny(roles []Role, allowed ...Role) bool {
	for _, have := range roles {
		for _, want := range allowed {
			if have == want {
				return true
			}
		}
	}
	return false
}

// Strings converts a role set to its string tags.
func Strings(roles []Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

// FromStrings converts string tags to roles, skipping unknown tags.
func FromStrings(tags []string) []Role {
	out := make([]Role, 0, len(tags))
	for _, t := range tags {
		r := Role(t)
		if r.Valid() {
			out = append(out, r)
		}
	}
	return out
}
