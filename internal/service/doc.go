// Package service contains the application's use cases for managing users.
//
// UserService orchestrates the user and role stores inside transactions
// opened through store.Transactor: queries run read-only, mutations
// read-write. Every user it returns has its roles loaded by an explicit
// store call in the same transaction.
//
// Account creation is delegated to a Registrar (see the registration
// subpackage), which encodes passwords and triggers onboarding side effects.
//
// Errors are reported with the sentinels in errors.go. Store failures keep
// their original error in the chain, so callers can still match store
// sentinels with errors.Is.
package service
