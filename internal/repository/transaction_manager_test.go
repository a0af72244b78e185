package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionManagerAdapter_WithTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		db, mock := setupTestDB(t)
		defer db.Close()
		tm := NewTransactionManagerAdapter(db)

		mock.ExpectBegin()
		mock.ExpectCommit()

		var sawTx bool
		err := tm.WithTransaction(ctx, func(txCtx context.Context) error {
			_, sawTx = txCtx.Value(TransactionContextKey).(*sqlx.Tx)
			return nil
		})
		require.NoError(t, err)
		assert.True(t, sawTx, "fn should receive the transaction in its context")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when fn fails", func(t *testing.T) {
		db, mock := setupTestDB(t)
		defer db.Close()
		tm := NewTransactionManagerAdapter(db)

		mock.ExpectBegin()
		mock.ExpectRollback()

		fnErr := errors.New("boom")
		err := tm.WithTransaction(ctx, func(txCtx context.Context) error {
			return fnErr
		})
		assert.ErrorIs(t, err, fnErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetExecutor(t *testing.T) {
	db, _ := setupTestDB(t)
	defer db.Close()

	assert.Equal(t, DBTX(db), GetExecutor(context.Background(), db))

	ctx := context.WithValue(context.Background(), TransactionContextKey, "not a tx")
	assert.Equal(t, DBTX(db), GetExecutor(ctx, db))
}
