package engine

import (
	"sort"
	"strings"
	"sync"

	"goDBDriver/internal/sql"
	"goDBDriver/internal/storage"

	"github.com/cockroachdb/errors"
)

var (
	// ErrNotFound marks references to tables or views that do not exist.
	ErrNotFound = errors.New("object not found")
	// ErrExists marks attempts to create an object twice.
	ErrExists = errors.New("object already exists")
)

// ObjectKind is the engine-native kind of a catalog object.
type ObjectKind int

const (
	ManagedTable ObjectKind = iota
	ExternalTable
	VirtualView
)

func (k ObjectKind) String() string {
	switch k {
	case ExternalTable:
		return "EXTERNAL_TABLE"
	case VirtualView:
		return "VIRTUAL_VIEW"
	}
	return "MANAGED_TABLE"
}

// Object is a table or view registered in the catalog.
type Object struct {
	Name      string
	Kind      ObjectKind
	Comment   string
	Columns   []sql.Column
	QueryText string // view definition

	query *sql.SelectStmt
}

func (o *Object) clone() Object {
	c := *o
	c.Columns = make([]sql.Column, len(o.Columns))
	copy(c.Columns, o.Columns)
	return c
}

// DBEngine is the main database engine struct. It owns the catalog of tables
// and views; table rows live in the storage engine.
type DBEngine struct {
	started bool
	store   storage.Engine

	mu      sync.RWMutex
	objects map[string]*Object
}

// New creates a new DBEngine instance on top of a storage engine.
func New(store storage.Engine) *DBEngine {
	return &DBEngine{
		store:   store,
		objects: make(map[string]*Object),
	}
}

// Start runs initialization steps for the engine. Tables already present in
// the storage engine are registered as managed tables.
func (e *DBEngine) Start() error {
	if e.started {
		return errors.New("engine already started")
	}

	names, err := e.store.ListTables()
	if err != nil {
		return errors.Wrap(err, "list tables")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, name := range names {
		cols, err := e.store.TableSchema(name)
		if err != nil {
			return errors.Wrapf(err, "schema of %s", name)
		}
		e.objects[normalize(name)] = &Object{Name: normalize(name), Kind: ManagedTable, Columns: cols}
	}

	e.started = true
	return nil
}

// Objects returns a snapshot of the catalog ordered by name.
func (e *DBEngine) Objects() ([]Object, error) {
	if !e.started {
		return nil, errors.New("engine not started")
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]Object, 0, len(e.objects))
	for _, o := range e.objects {
		out = append(out, o.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// lookup finds an object by name. The caller holds e.mu.
func (e *DBEngine) lookup(name string) (*Object, error) {
	o, ok := e.objects[normalize(name)]
	if !ok {
		return nil, errors.Mark(errors.Newf("Table not found '%s'", name), ErrNotFound)
	}
	return o, nil
}

// normalize folds identifiers; object names are case-insensitive.
func normalize(name string) string {
	return strings.ToLower(name)
}

// columnIndex resolves a column by case-insensitive name, first match wins.
func columnIndex(cols []sql.Column, name string) (int, error) {
	for i, c := range cols {
		if strings.EqualFold(c.Name, name) {
			return i, nil
		}
	}
	return -1, errors.Mark(errors.Newf("Invalid table alias or column reference '%s'", name), sql.ErrSyntax)
}
