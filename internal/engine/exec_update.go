package engine

import (
	"fmt"

	"goDBDriver/internal/sql"
	"goDBDriver/internal/storage"

	"github.com/cockroachdb/errors"
)

func (e *DBEngine) planUpdate(s *sql.UpdateStmt) (*Plan, error) {
	if s.Where == nil {
		return nil, errors.Mark(errors.New("UPDATE without WHERE is not supported yet"), sql.ErrSyntax)
	}

	obj, err := e.writableTable(s.TableName)
	if err != nil {
		return nil, err
	}
	where, err := compileWhere(obj.Columns, s.Where)
	if err != nil {
		return nil, err
	}

	assigns := make([]assignment, len(s.Assignments))
	for i, a := range s.Assignments {
		idx, err := columnIndex(obj.Columns, a.Column)
		if err != nil {
			return nil, err
		}
		v, err := sql.Coerce(a.Value, obj.Columns[idx].Type)
		if err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "UPDATE: column %s", a.Column), sql.ErrSyntax)
		}
		assigns[i] = assignment{idx: idx, value: v}
	}
	name := obj.Name

	return &Plan{
		explain: []string{
			fmt.Sprintf("  Update Operator: %s", name),
			"    filter: " + where.String(),
		},
		run: func() (*Result, error) {
			var affected int
			err := e.withTx(false, func(tx storage.Tx) error {
				_, rows, err := tx.Scan(name)
				if err != nil {
					return errors.Wrap(err, "scan")
				}
				var newRows []sql.Row
				newRows, affected = applyUpdate(rows, where, assigns)
				return errors.Wrap(tx.ReplaceAll(name, newRows), "replaceAll")
			})
			if err != nil {
				return nil, err
			}
			return &Result{RowsAffected: int64(affected)}, nil
		},
	}, nil
}
