// Package domain contains the core business entities of the admin panel:
// users and the roles granted to them. It is independent of any storage or
// delivery mechanism.
package domain
