package domain

import (
	"sort"
	"strconv"
	"strings"
)

// Well-known role names seeded by the initial migration.
const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"

	rolePrefix = "ROLE_"
)

// Role is a named permission group granted to users.
// Roles are managed by migrations and are read-only for the application.
type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Authority returns the name used for authorization checks.
func (r Role) Authority() string {
	return r.Name
}

// ShortName returns the role name without the ROLE_ prefix, e.g. "ADMIN".
func (r Role) ShortName() string {
	return strings.TrimPrefix(r.Name, rolePrefix)
}

// NewRoleSet returns roles with duplicates removed, ordered by name.
// The result is never nil, so an absent set is always an empty slice.
func NewRoleSet(roles ...Role) []Role {
	set := make([]Role, 0, len(roles))
	seen := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		key := role.Name
		if key == "" {
			// unnamed roles are only distinguishable by ID
			key = "#" + strconv.FormatInt(role.ID, 10)
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		set = append(set, role)
	}

	sort.Slice(set, func(i, j int) bool {
		if set[i].Name == set[j].Name {
			return set[i].ID < set[j].ID
		}
		return set[i].Name < set[j].Name
	})
	return set
}

// RoleNames returns the authority of every role in roles.
func RoleNames(roles []Role) []string {
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, role.Authority())
	}
	return names
}

// HasRole reports whether roles contains a role with the given name.
func HasRole(roles []Role, name string) bool {
	for _, role := range roles {
		if role.Name == name {
			return true
		}
	}
	return false
}
