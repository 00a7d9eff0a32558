package engine

import (
	"fmt"

	"goDBDriver/internal/sql"
	"goDBDriver/internal/storage"

	"github.com/cockroachdb/errors"
)

func (e *DBEngine) planDelete(s *sql.DeleteStmt) (*Plan, error) {
	if s.Where == nil {
		return nil, errors.Mark(errors.New("DELETE without WHERE is not supported yet"), sql.ErrSyntax)
	}

	obj, err := e.writableTable(s.TableName)
	if err != nil {
		return nil, err
	}
	where, err := compileWhere(obj.Columns, s.Where)
	if err != nil {
		return nil, err
	}
	name := obj.Name

	return &Plan{
		explain: []string{
			fmt.Sprintf("  Delete Operator: %s", name),
			"    filter: " + where.String(),
		},
		run: func() (*Result, error) {
			var deleted int
			err := e.withTx(false, func(tx storage.Tx) error {
				_, rows, err := tx.Scan(name)
				if err != nil {
					return errors.Wrap(err, "scan")
				}
				var remaining []sql.Row
				remaining, deleted = applyDelete(rows, where)
				return errors.Wrap(tx.ReplaceAll(name, remaining), "replaceAll")
			})
			if err != nil {
				return nil, err
			}
			return &Result{RowsAffected: int64(deleted)}, nil
		},
	}, nil
}
