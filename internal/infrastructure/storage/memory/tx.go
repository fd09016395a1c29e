// Package memory provides in-memory repository implementations.
// They back unit tests and local development without a database.
package memory

import (
	"context"

	"prodsupply/internal/core/tx"
)

var _ tx.ReadOnlyManager = (*TxManager)(nil)

// TxManager satisfies tx.Manager without transactional semantics: fn runs
// directly against the in-memory state.
type TxManager struct{}

// NewTxManager creates a pass-through transaction manager.
func NewTxManager() *TxManager {
	return &TxManager{}
}

// RunInTransaction executes fn.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ReadOnly executes fn.
func (m *TxManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
