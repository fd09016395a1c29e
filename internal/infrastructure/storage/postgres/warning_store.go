package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"prodsupply/internal/core/security"
	"prodsupply/internal/core/warning"
)

const warningTable = "sys_warning_acks"

var _ warning.Store = (*WarningStore)(nil)

// WarningStore persists acknowledged warning keys per user.
type WarningStore struct {
	txManager *TxManager
}

// NewWarningStore creates a new warning store.
func NewWarningStore(txManager *TxManager) *WarningStore {
	return &WarningStore{txManager: txManager}
}

func (s *WarningStore) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Check reports whether the warning must still be raised for the context
// user (true = not yet acknowledged).
func (s *WarningStore) Check(ctx context.Context, key string) (bool, error) {
	sql, args, err := s.builder().
		Select("1").
		From(warningTable).
		Where(squirrel.Eq{"user_id": security.GetUserID(ctx)}).
		Where(squirrel.Eq{"key": key}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var one int
	if err := s.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&one); err != nil {
		if pgxscan.NotFound(err) {
			return true, nil
		}
		return false, fmt.Errorf("check warning: %w", err)
	}
	return false, nil
}

// Acknowledge records that the context user accepted the warning.
func (s *WarningStore) Acknowledge(ctx context.Context, key string) error {
	sql, args, err := s.builder().
		Insert(warningTable).
		Columns("user_id", "key", "acknowledged_at").
		Values(security.GetUserID(ctx), key, time.Now().UTC()).
		Suffix("ON CONFLICT (user_id, key) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := s.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("acknowledge warning: %w", err)
	}
	return nil
}
