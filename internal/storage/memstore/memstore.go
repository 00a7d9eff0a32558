package memstore

import (
	"sort"
	"sync"

	"goDBDriver/internal/sql"
	"goDBDriver/internal/storage"

	"github.com/cockroachdb/errors"
)

type table struct {
	name string
	cols []sql.Column
	rows []sql.Row
}

type memEngine struct {
	mu     sync.RWMutex
	tables map[string]*table
}

// New creates a new in-memory storage engine.
func New() storage.Engine {
	return &memEngine{
		tables: make(map[string]*table),
	}
}

// memTx represents a transaction on top of memEngine.
type memTx struct {
	eng      *memEngine
	readOnly bool
}

func (e *memEngine) lookup(name string) (*table, error) {
	t, ok := e.tables[name]
	if !ok {
		return nil, errors.Wrapf(storage.ErrTableNotFound, "table %s", name)
	}
	return t, nil
}

// checkRow validates arity and types; NULL fits any column.
func checkRow(t *table, r sql.Row) error {
	if len(r) != len(t.cols) {
		return errors.Newf("column count mismatch: expected %d, got %d", len(t.cols), len(r))
	}
	for i, col := range t.cols {
		if r[i].Type != col.Type && !r[i].IsNull() {
			return errors.Newf("type mismatch for column %q: expected %v, got %v", col.Name, col.Type, r[i].Type)
		}
	}
	return nil
}

func copyRows(rows []sql.Row) []sql.Row {
	out := make([]sql.Row, len(rows))
	for i, r := range rows {
		rowCopy := make(sql.Row, len(r))
		copy(rowCopy, r)
		out[i] = rowCopy
	}
	return out
}

func (tx *memTx) ReplaceAll(tableName string, rows []sql.Row) error {
	if tx.readOnly {
		return errors.New("cannot replace in a read-only transaction")
	}

	tx.eng.mu.Lock()
	defer tx.eng.mu.Unlock()

	t, err := tx.eng.lookup(tableName)
	if err != nil {
		return err
	}

	for _, r := range rows {
		if err := checkRow(t, r); err != nil {
			return errors.Wrap(err, "ReplaceAll")
		}
	}

	// store a deep copy to avoid external modification
	t.rows = copyRows(rows)
	return nil
}

func (tx *memTx) Scan(tableName string) ([]sql.Column, []sql.Row, error) {
	tx.eng.mu.RLock()
	defer tx.eng.mu.RUnlock()

	t, err := tx.eng.lookup(tableName)
	if err != nil {
		return nil, nil, err
	}

	cols := make([]sql.Column, len(t.cols))
	copy(cols, t.cols)

	// Return a deep copy to prevent callers from mutating stored data.
	return cols, copyRows(t.rows), nil
}

// Insert adds a row into a table inside this transaction.
func (tx *memTx) Insert(tableName string, row sql.Row) error {
	if tx.readOnly {
		return errors.New("cannot insert in a read-only transaction")
	}

	tx.eng.mu.Lock()
	defer tx.eng.mu.Unlock()

	t, err := tx.eng.lookup(tableName)
	if err != nil {
		return err
	}
	if err := checkRow(t, row); err != nil {
		return err
	}

	rowCopy := make(sql.Row, len(row))
	copy(rowCopy, row)
	t.rows = append(t.rows, rowCopy)
	return nil
}

// Begin starts a new transaction.
func (e *memEngine) Begin(readOnly bool) (storage.Tx, error) {
	return &memTx{
		eng:      e,
		readOnly: readOnly,
	}, nil
}

// Commit finishes a transaction.
// For this simple in-memory implementation, it's a no-op.
func (e *memEngine) Commit(tx storage.Tx) error {
	return nil
}

// Rollback aborts a transaction.
// For this simple in-memory implementation, it's a no-op.
func (e *memEngine) Rollback(tx storage.Tx) error {
	return nil
}

// CreateTable creates a new empty table in memory.
func (e *memEngine) CreateTable(name string, cols []sql.Column) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.tables[name]; exists {
		return errors.Wrapf(storage.ErrTableExists, "table %s", name)
	}

	schema := make([]sql.Column, len(cols))
	copy(schema, cols)
	e.tables[name] = &table{
		name: name,
		cols: schema,
		rows: make([]sql.Row, 0),
	}

	return nil
}

// DropTable removes a table.
func (e *memEngine) DropTable(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.lookup(name); err != nil {
		return err
	}
	delete(e.tables, name)
	return nil
}

// ListTables returns all table names, sorted.
func (e *memEngine) ListTables() ([]string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.tables))
	for name := range e.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// TableSchema returns a copy of the column definitions.
func (e *memEngine) TableSchema(name string) ([]sql.Column, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	t, err := e.lookup(name)
	if err != nil {
		return nil, err
	}
	cols := make([]sql.Column, len(t.cols))
	copy(cols, t.cols)
	return cols, nil
}
