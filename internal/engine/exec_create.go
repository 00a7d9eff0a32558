package engine

import (
	"fmt"
	"strings"

	"goDBDriver/internal/sql"

	"github.com/cockroachdb/errors"
)

func (e *DBEngine) planCreateTable(s *sql.CreateTableStmt) (*Plan, error) {
	seen := make(map[string]bool, len(s.Columns))
	for _, c := range s.Columns {
		key := strings.ToLower(c.Name)
		if seen[key] {
			return nil, errors.Mark(errors.Newf("Duplicate column name: %s", c.Name), sql.ErrSyntax)
		}
		seen[key] = true
	}

	kind := ManagedTable
	if s.External {
		kind = ExternalTable
	}
	name := normalize(s.TableName)

	return &Plan{
		explain: []string{fmt.Sprintf("  Create Table Operator: %s (%s)", name, kind)},
		run: func() (*Result, error) {
			e.mu.Lock()
			defer e.mu.Unlock()

			if _, exists := e.objects[name]; exists {
				if s.IfNotExists {
					return &Result{Warnings: []string{fmt.Sprintf("Table %s already exists, skipping", name)}}, nil
				}
				return nil, errors.Mark(errors.Newf("Table %s already exists", name), ErrExists)
			}
			if err := e.store.CreateTable(name, s.Columns); err != nil {
				return nil, errors.Wrapf(err, "create table %s", name)
			}
			e.objects[name] = &Object{
				Name:    name,
				Kind:    kind,
				Comment: s.Comment,
				Columns: append([]sql.Column(nil), s.Columns...),
			}
			return &Result{}, nil
		},
	}, nil
}

func (e *DBEngine) planCreateView(s *sql.CreateViewStmt) (*Plan, error) {
	sp, err := e.planSelect(s.Query)
	if err != nil {
		return nil, err
	}
	name := normalize(s.ViewName)

	return &Plan{
		explain: append([]string{fmt.Sprintf("  Create View Operator: %s", name)}, sp.describe()...),
		run: func() (*Result, error) {
			e.mu.Lock()
			defer e.mu.Unlock()

			if _, exists := e.objects[name]; exists {
				if s.IfNotExists {
					return &Result{Warnings: []string{fmt.Sprintf("Table %s already exists, skipping", name)}}, nil
				}
				return nil, errors.Mark(errors.Newf("Table %s already exists", name), ErrExists)
			}
			e.objects[name] = &Object{
				Name:      name,
				Kind:      VirtualView,
				Comment:   s.Comment,
				Columns:   sp.columns,
				QueryText: s.QueryText,
				query:     s.Query,
			}
			return &Result{}, nil
		},
	}, nil
}

func (e *DBEngine) planDrop(s *sql.DropStmt) *Plan {
	name := normalize(s.Name)
	what := "Table"
	if s.View {
		what = "View"
	}

	return &Plan{
		explain: []string{fmt.Sprintf("  Drop %s Operator: %s", what, name)},
		run: func() (*Result, error) {
			e.mu.Lock()
			defer e.mu.Unlock()

			obj, ok := e.objects[name]
			if !ok {
				if s.IfExists {
					return &Result{Warnings: []string{fmt.Sprintf("%s %s does not exist, skipping", what, name)}}, nil
				}
				return nil, errors.Mark(errors.Newf("%s not found '%s'", what, name), ErrNotFound)
			}

			isView := obj.Kind == VirtualView
			switch {
			case s.View && !isView:
				return nil, errors.Newf("Cannot drop a table with DROP VIEW: %s", name)
			case !s.View && isView:
				return nil, errors.Newf("Cannot drop a view with DROP TABLE: %s", name)
			}

			if !isView {
				if err := e.store.DropTable(name); err != nil {
					return nil, errors.Wrapf(err, "drop table %s", name)
				}
			}
			delete(e.objects, name)
			return &Result{}, nil
		},
	}
}
