// Package postgres provides PostgreSQL implementations of the store
// interfaces together with the embedded goose migrations that create the
// users, roles and user_roles tables.
//
// Stores run on a store.DBTX so the same code serves a *sql.DB and a
// transaction obtained through WithTx. Driver errors are translated into
// store sentinels by MapError.
package postgres
