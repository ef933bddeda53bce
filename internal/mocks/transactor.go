package mocks

import (
	"context"

	"github.com/phrazzld/useradmin/internal/store"
)

// MockTransactor implements store.Transactor without a database.
// By default both methods call fn with a nil transaction; stores mocked in
// this package ignore the transaction they are bound to.
type MockTransactor struct {
	InTxFn     func(ctx context.Context, fn store.TxFn) error
	ReadOnlyFn func(ctx context.Context, fn store.TxFn) error

	// Err, when set, is returned without calling fn.
	Err error

	InTxCalls     int
	ReadOnlyCalls int
}

var _ store.Transactor = (*MockTransactor)(nil)

// NewMockTransactor creates a MockTransactor that runs every fn directly.
func NewMockTransactor() *MockTransactor {
	return &MockTransactor{}
}

// InTx implements store.Transactor.
func (m *MockTransactor) InTx(ctx context.Context, fn store.TxFn) error {
	m.InTxCalls++
	if m.InTxFn != nil {
		return m.InTxFn(ctx, fn)
	}
	if m.Err != nil {
		return m.Err
	}
	return fn(ctx, nil)
}

// ReadOnly implements store.Transactor.
func (m *MockTransactor) ReadOnly(ctx context.Context, fn store.TxFn) error {
	m.ReadOnlyCalls++
	if m.ReadOnlyFn != nil {
		return m.ReadOnlyFn(ctx, fn)
	}
	if m.Err != nil {
		return m.Err
	}
	return fn(ctx, nil)
}
