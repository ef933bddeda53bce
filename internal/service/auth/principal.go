package auth

import "slices"

// Principal is the authenticated caller of a request.
// Name is the login name, which for this application is the email address.
type Principal struct {
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
}

// NewPrincipal creates a principal for the given login name and role names.
func NewPrincipal(name string, roles ...string) *Principal {
	if roles == nil {
		roles = []string{}
	}
	return &Principal{Name: name, Roles: roles}
}

// HasRole reports whether the principal was granted role.
func (p *Principal) HasRole(role string) bool {
	if p == nil {
		return false
	}
	return slices.Contains(p.Roles, role)
}
