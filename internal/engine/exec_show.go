package engine

import (
	"goDBDriver/internal/sql"
)

func stringValue(s string) sql.Value {
	return sql.Value{Type: sql.TypeString, S: s}
}

func (e *DBEngine) planShowTables() *Plan {
	cols := []sql.Column{{Name: "tab_name", Type: sql.TypeString}}
	return &Plan{
		Columns: cols,
		explain: []string{"  Show Tables Operator"},
		run: func() (*Result, error) {
			objs, err := e.Objects()
			if err != nil {
				return nil, err
			}
			rows := make([]sql.Row, len(objs))
			for i, o := range objs {
				rows[i] = sql.Row{stringValue(o.Name)}
			}
			return &Result{Columns: cols, Rows: rows}, nil
		},
	}
}

func (e *DBEngine) planDescribe(s *sql.DescribeStmt) (*Plan, error) {
	obj, err := e.lookup(s.TableName)
	if err != nil {
		return nil, err
	}
	snapshot := obj.clone()

	cols := []sql.Column{
		{Name: "col_name", Type: sql.TypeString},
		{Name: "data_type", Type: sql.TypeString},
		{Name: "comment", Type: sql.TypeString},
	}
	return &Plan{
		Columns: cols,
		explain: []string{"  Describe Table Operator: " + snapshot.Name},
		run: func() (*Result, error) {
			rows := make([]sql.Row, len(snapshot.Columns))
			for i, c := range snapshot.Columns {
				comment := sql.Null
				if c.Comment != "" {
					comment = stringValue(c.Comment)
				}
				rows[i] = sql.Row{stringValue(c.Name), stringValue(c.Type.String()), comment}
			}
			return &Result{Columns: cols, Rows: rows}, nil
		},
	}, nil
}

func (e *DBEngine) planExplain(s *sql.ExplainStmt) (*Plan, error) {
	target, err := e.prepare(s.Target)
	if err != nil {
		return nil, err
	}

	lines := append([]string{
		"STAGE DEPENDENCIES:",
		"  Stage-0 is a root stage",
		"",
		"STAGE PLANS:",
		"  Stage: Stage-0",
	}, target.explain...)

	cols := []sql.Column{{Name: "Explain", Type: sql.TypeString}}
	return &Plan{
		Columns: cols,
		explain: []string{"  Explain Operator"},
		run: func() (*Result, error) {
			rows := make([]sql.Row, len(lines))
			for i, l := range lines {
				rows[i] = sql.Row{stringValue(l)}
			}
			return &Result{Columns: cols, Rows: rows}, nil
		},
	}, nil
}
