package store

import (
	"database/sql"
	"fmt"

	"github.com/roach88/structdb/internal/querysql"
)

// Tx is an explicit unit of work. Provisioning, inserts, unique
// synchronization and queries all run inside one.
//
// A Tx must be used from one goroutine. Close any open query batch before
// Commit or Rollback.
type Tx struct {
	tx    *sql.Tx
	store *Store
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Rollback aborts the transaction.
func (t *Tx) Rollback() error {
	if err := t.tx.Rollback(); err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}

// ident quotes a table or column name.
func ident(name string) string {
	return querysql.SQLite.QuoteIdent(name)
}
