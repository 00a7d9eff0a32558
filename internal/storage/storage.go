package storage

import (
	"goDBDriver/internal/sql"

	"github.com/cockroachdb/errors"
)

var (
	// ErrTableNotFound is returned for operations on a missing table.
	ErrTableNotFound = errors.New("table does not exist")
	// ErrTableExists is returned when creating a table twice.
	ErrTableExists = errors.New("table already exists")
)

// Tx represents a storage-level transaction.
type Tx interface {
	Insert(tableName string, row sql.Row) error

	// Scan returns the table schema and a copy of every stored row.
	Scan(tableName string) (cols []sql.Column, rows []sql.Row, err error)

	// ReplaceAll swaps the table contents for rows.
	ReplaceAll(tableName string, rows []sql.Row) error
}

// Engine is a storage engine that can create and manage transactions.
type Engine interface {
	// Begin starts a new transaction.
	// readOnly = true means the transaction must not perform writes.
	Begin(readOnly bool) (Tx, error)

	// Commit finishes a transaction and makes changes visible.
	Commit(tx Tx) error

	// Rollback aborts a transaction.
	Rollback(tx Tx) error

	// CreateTable creates a new empty table with the given columns.
	CreateTable(name string, cols []sql.Column) error

	// DropTable removes a table and its rows.
	DropTable(name string) error

	// ListTables returns the table names in sorted order.
	ListTables() ([]string, error)

	// TableSchema returns the column definitions for a table.
	TableSchema(name string) ([]sql.Column, error)
}
