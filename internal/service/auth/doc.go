// Package auth issues and validates bearer tokens, encodes and verifies
// passwords, and defines the Principal that identifies an authenticated
// caller.
package auth
