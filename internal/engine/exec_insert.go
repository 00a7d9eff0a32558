package engine

import (
	"fmt"

	"goDBDriver/internal/sql"
	"goDBDriver/internal/storage"

	"github.com/cockroachdb/errors"
)

// writableTable resolves the target of INSERT, UPDATE or DELETE.
func (e *DBEngine) writableTable(name string) (*Object, error) {
	obj, err := e.lookup(name)
	if err != nil {
		return nil, err
	}
	if obj.Kind == VirtualView {
		return nil, errors.Mark(errors.Newf("Cannot modify view %s", obj.Name), sql.ErrSyntax)
	}
	return obj, nil
}

// buildInsertRows maps the VALUES rows onto the table schema, coercing each
// literal into its column type. Columns missing from an explicit column list
// are NULL.
func buildInsertRows(cols []sql.Column, stmt *sql.InsertStmt) ([]sql.Row, error) {
	positions := make([]int, 0, len(cols))
	if len(stmt.Columns) == 0 {
		for i := range cols {
			positions = append(positions, i)
		}
	} else {
		seen := make([]bool, len(cols))
		for _, name := range stmt.Columns {
			pos, err := columnIndex(cols, name)
			if err != nil {
				return nil, err
			}
			if seen[pos] {
				return nil, errors.Mark(errors.Newf("INSERT: duplicate column %q in column list", name), sql.ErrSyntax)
			}
			seen[pos] = true
			positions = append(positions, pos)
		}
	}

	out := make([]sql.Row, 0, len(stmt.Rows))
	for _, values := range stmt.Rows {
		if len(values) != len(positions) {
			return nil, errors.Mark(errors.Newf("INSERT: value count %d does not match column count %d",
				len(values), len(positions)), sql.ErrSyntax)
		}
		row := make(sql.Row, len(cols))
		for i := range row {
			row[i] = sql.Null
		}
		for i, v := range values {
			pos := positions[i]
			coerced, err := sql.Coerce(v, cols[pos].Type)
			if err != nil {
				return nil, errors.Mark(errors.Wrapf(err, "INSERT: column %s", cols[pos].Name), sql.ErrSyntax)
			}
			row[pos] = coerced
		}
		out = append(out, row)
	}
	return out, nil
}

func (e *DBEngine) planInsert(s *sql.InsertStmt) (*Plan, error) {
	obj, err := e.writableTable(s.TableName)
	if err != nil {
		return nil, err
	}
	rows, err := buildInsertRows(obj.Columns, s)
	if err != nil {
		return nil, err
	}
	name := obj.Name

	return &Plan{
		explain: []string{fmt.Sprintf("  Insert Operator: %s (%d rows)", name, len(rows))},
		run: func() (*Result, error) {
			err := e.withTx(false, func(tx storage.Tx) error {
				for _, r := range rows {
					if err := tx.Insert(name, r); err != nil {
						return errors.Wrap(err, "insert")
					}
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
			return &Result{RowsAffected: int64(len(rows))}, nil
		},
	}, nil
}
