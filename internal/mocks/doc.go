// Package mocks provides shared test doubles for the store, service and
// auth interfaces.
//
// Store and service mocks are built on testify/mock:
//
//	userStore := new(mocks.MockUserStore)
//	userStore.On("GetByID", mock.Anything, int64(5)).Return(user, nil)
//
// Their WithTx methods return the mock itself, so pair them with
// MockTransactor, which runs transactional callbacks with a nil *sql.Tx.
// Auth doubles (MockJWTService, MockPasswordVerifier) use function fields
// and canned return values instead.
package mocks
