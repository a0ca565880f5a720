package repository

import (
	"context"
	"database/sql"
)

// Tx carries a database transaction through multi-statement operations.
// *sql.Tx satisfies it directly; tests substitute an in-memory implementation.
type Tx interface {
	Commit() error
	Rollback() error
}

// TxManager begins the transactions the services drive.
type TxManager interface {
	Begin(ctx context.Context) (Tx, error)
}

type sqlTxManager struct {
	db *sql.DB
}

func NewTxManager(db *sql.DB) TxManager {
	return &sqlTxManager{db: db}
}

func (m *sqlTxManager) Begin(ctx context.Context) (Tx, error) {
	return m.db.BeginTx(ctx, nil)
}

// sqlTx unwraps the concrete transaction; nil when tx is absent or not
// database-backed, in which case repositories fall back to the pool.
func sqlTx(tx Tx) *sql.Tx {
	if t, ok := tx.(*sql.Tx); ok {
		return t
	}
	return nil
}
