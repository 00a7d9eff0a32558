package engine

import (
	"goDBDriver/internal/sql"

	"github.com/cockroachdb/errors"
)

// Result is the outcome of running a statement.
type Result struct {
	Columns      []sql.Column // nil when the statement produces no rows
	Rows         []sql.Row
	RowsAffected int64
	Warnings     []string
}

// Plan is a compiled statement. Compiling resolves every object and column
// reference, so a Plan knows its result schema before it runs.
type Plan struct {
	// Columns is the result schema; nil for statements without a result set.
	Columns []sql.Column

	explain []string
	run     func() (*Result, error)
}

// HasResultSet reports whether running the plan yields rows.
func (p *Plan) HasResultSet() bool { return p.Columns != nil }

// Prepare compiles a parsed statement against the current catalog.
func (e *DBEngine) Prepare(stmt sql.Statement) (*Plan, error) {
	if !e.started {
		return nil, errors.New("engine not started")
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.prepare(stmt)
}

func (e *DBEngine) prepare(stmt sql.Statement) (*Plan, error) {
	switch s := stmt.(type) {
	case *sql.SelectStmt:
		sp, err := e.planSelect(s)
		if err != nil {
			return nil, err
		}
		return &Plan{
			Columns: sp.columns,
			explain: sp.describe(),
			run: func() (*Result, error) {
				rows, err := sp.execute()
				if err != nil {
					return nil, err
				}
				return &Result{Columns: sp.columns, Rows: rows}, nil
			},
		}, nil

	case *sql.CreateTableStmt:
		return e.planCreateTable(s)

	case *sql.CreateViewStmt:
		return e.planCreateView(s)

	case *sql.DropStmt:
		return e.planDrop(s), nil

	case *sql.InsertStmt:
		return e.planInsert(s)

	case *sql.UpdateStmt:
		return e.planUpdate(s)

	case *sql.DeleteStmt:
		return e.planDelete(s)

	case *sql.ShowTablesStmt:
		return e.planShowTables(), nil

	case *sql.DescribeStmt:
		return e.planDescribe(s)

	case *sql.ExplainStmt:
		return e.planExplain(s)
	}
	return nil, errors.Newf("unsupported statement type %T", stmt)
}

// Run executes a compiled plan.
func (e *DBEngine) Run(p *Plan) (*Result, error) {
	if !e.started {
		return nil, errors.New("engine not started")
	}
	return p.run()
}

// Execute compiles and runs a statement in one step.
func (e *DBEngine) Execute(stmt sql.Statement) (*Result, error) {
	p, err := e.Prepare(stmt)
	if err != nil {
		return nil, err
	}
	return e.Run(p)
}

// Explain renders the plan description shown by EXPLAIN.
func (p *Plan) Explain() []string {
	return p.explain
}
