// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic, allowing business rules to remain
// independent of specific database technologies or persistence details.
//
// Stores are bound to either the connection pool or a transaction through
// WithTx; services decide transaction boundaries through a Transactor.
package store
