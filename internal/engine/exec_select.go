package engine

import (
	"fmt"
	"sort"

	"goDBDriver/internal/sql"
	"goDBDriver/internal/storage"

	"github.com/cockroachdb/errors"
)

type sortKey struct {
	idx  int
	desc bool
	name string
}

// selectPlan is a compiled SELECT.
type selectPlan struct {
	eng *DBEngine

	source     *Object     // nil without FROM
	view       *selectPlan // set when source is a view
	sourceCols []sql.Column

	where   filter
	order   []sortKey
	proj    []projection
	limit   int
	columns []sql.Column
}

// planSelect compiles a SELECT. The caller holds e.mu for reading.
func (e *DBEngine) planSelect(s *sql.SelectStmt) (*selectPlan, error) {
	sp := &selectPlan{eng: e, limit: s.Limit}

	if s.TableName != "" {
		obj, err := e.lookup(s.TableName)
		if err != nil {
			return nil, err
		}
		snapshot := obj.clone()
		sp.source = &snapshot
		sp.sourceCols = snapshot.Columns
		if obj.Kind == VirtualView {
			if sp.view, err = e.planSelect(obj.query); err != nil {
				return nil, errors.Wrapf(err, "view %s", obj.Name)
			}
			sp.sourceCols = sp.view.columns
		}
	}

	var err error
	if sp.where, err = compileWhere(sp.sourceCols, s.Where); err != nil {
		return nil, err
	}

	for _, o := range s.OrderBy {
		idx, err := columnIndex(sp.sourceCols, o.Column)
		if err != nil {
			return nil, err
		}
		sp.order = append(sp.order, sortKey{idx: idx, desc: o.Desc, name: sp.sourceCols[idx].Name})
	}

	sp.columns = []sql.Column{}
	for i, item := range s.Items {
		switch {
		case item.Star:
			if s.TableName == "" {
				return nil, errors.Mark(errors.New("SELECT * requires a FROM clause"), sql.ErrSyntax)
			}
			for j, c := range sp.sourceCols {
				sp.proj = append(sp.proj, projection{idx: j})
				sp.columns = append(sp.columns, sql.Column{Name: c.Name, Type: c.Type})
			}
		case item.Column != "":
			idx, err := columnIndex(sp.sourceCols, item.Column)
			if err != nil {
				return nil, err
			}
			name := sp.sourceCols[idx].Name
			if item.Alias != "" {
				name = item.Alias
			}
			sp.proj = append(sp.proj, projection{idx: idx})
			sp.columns = append(sp.columns, sql.Column{Name: name, Type: sp.sourceCols[idx].Type})
		default:
			name := item.Alias
			if name == "" {
				name = fmt.Sprintf("_c%d", i)
			}
			sp.proj = append(sp.proj, projection{idx: -1, value: item.Literal})
			sp.columns = append(sp.columns, sql.Column{Name: name, Type: item.Literal.Type})
		}
	}
	return sp, nil
}

// scanSource reads the rows of the FROM object.
func (sp *selectPlan) scanSource() ([]sql.Row, error) {
	switch {
	case sp.source == nil:
		// SELECT without FROM yields a single row.
		return []sql.Row{{}}, nil
	case sp.view != nil:
		return sp.view.execute()
	}

	var rows []sql.Row
	err := sp.eng.withTx(true, func(tx storage.Tx) error {
		var err error
		_, rows, err = tx.Scan(sp.source.Name)
		if errors.Is(err, storage.ErrTableNotFound) {
			return errors.Mark(errors.Newf("Table not found '%s'", sp.source.Name), ErrNotFound)
		}
		return err
	})
	return rows, err
}

func (sp *selectPlan) execute() ([]sql.Row, error) {
	rows, err := sp.scanSource()
	if err != nil {
		return nil, err
	}

	rows = filterRows(rows, sp.where)

	if len(sp.order) > 0 {
		sort.SliceStable(rows, func(i, j int) bool {
			for _, k := range sp.order {
				c := compareForSort(rows[i][k.idx], rows[j][k.idx])
				if c == 0 {
					continue
				}
				if k.desc {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}

	if sp.limit >= 0 && len(rows) > sp.limit {
		rows = rows[:sp.limit]
	}
	return projectRows(rows, sp.proj), nil
}

// compareForSort orders NULLs first.
func compareForSort(a, b sql.Value) int {
	switch {
	case a.IsNull() && b.IsNull():
		return 0
	case a.IsNull():
		return -1
	case b.IsNull():
		return 1
	}
	c, err := sql.Compare(a, b)
	if err != nil {
		return 0
	}
	return c
}

func (sp *selectPlan) describe() []string {
	lines := []string{"  Fetch Operator"}
	switch {
	case sp.source == nil:
		lines = append(lines, "    source: <constant row>")
	default:
		lines = append(lines, fmt.Sprintf("    source: %s (%s)", sp.source.Name, sp.source.Kind))
	}
	if len(sp.where) > 0 {
		lines = append(lines, "    filter: "+sp.where.String())
	}
	for _, k := range sp.order {
		dir := "ASC"
		if k.desc {
			dir = "DESC"
		}
		lines = append(lines, fmt.Sprintf("    order: %s %s", k.name, dir))
	}
	if sp.limit >= 0 {
		lines = append(lines, fmt.Sprintf("    limit: %d", sp.limit))
	}
	out := "    output:"
	for _, c := range sp.columns {
		out += fmt.Sprintf(" %s:%s", c.Name, c.Type)
	}
	return append(lines, out)
}
