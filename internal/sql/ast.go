package sql

// Statement is the common interface for all SQL statements.
type Statement interface {
	stmtNode()
}

// CreateTableStmt represents a parsed CREATE TABLE statement.
type CreateTableStmt struct {
	TableName   string
	Columns     []Column
	Comment     string
	External    bool
	IfNotExists bool
}

func (*CreateTableStmt) stmtNode() {}

// CreateViewStmt represents CREATE VIEW name [COMMENT '...'] AS SELECT ...
type CreateViewStmt struct {
	ViewName    string
	Comment     string
	IfNotExists bool
	Query       *SelectStmt
	QueryText   string
}

func (*CreateViewStmt) stmtNode() {}

// DropStmt represents DROP TABLE or DROP VIEW.
type DropStmt struct {
	Name     string
	View     bool
	IfExists bool
}

func (*DropStmt) stmtNode() {}

// InsertStmt represents INSERT INTO t [(cols)] VALUES (...), (...).
type InsertStmt struct {
	TableName string
	Columns   []string // empty means all columns in table order
	Rows      []Row
}

func (*InsertStmt) stmtNode() {}

// Operand is either a column reference or a literal.
type Operand struct {
	Column  string
	Literal Value
}

// IsColumn reports whether the operand names a column.
func (o Operand) IsColumn() bool { return o.Column != "" }

func (o Operand) String() string {
	if o.IsColumn() {
		return o.Column
	}
	if o.Literal.Type == TypeString {
		return "'" + o.Literal.S + "'"
	}
	return o.Literal.String()
}

// Comparison is a binary predicate such as "id >= 10".
type Comparison struct {
	Left  Operand
	Op    string // "=", "<>", "<", "<=", ">", ">="
	Right Operand
}

func (c Comparison) String() string {
	return c.Left.String() + " " + c.Op + " " + c.Right.String()
}

// WhereExpr is a conjunction of comparisons.
type WhereExpr struct {
	Terms []Comparison
}

// SelectItem is one entry of the select list.
type SelectItem struct {
	Star    bool
	Column  string
	Literal Value
	Alias   string
}

// OrderItem is one ORDER BY key.
type OrderItem struct {
	Column string
	Desc   bool
}

// SelectStmt represents SELECT items [FROM t] [WHERE ...] [ORDER BY ...] [LIMIT n].
type SelectStmt struct {
	Items     []SelectItem
	TableName string // empty when there is no FROM clause
	Where     *WhereExpr
	OrderBy   []OrderItem
	Limit     int // -1 means no limit
}

func (*SelectStmt) stmtNode() {}

// Assignment is a single SET column = literal.
type Assignment struct {
	Column string
	Value  Value
}

// UpdateStmt represents UPDATE t SET ... WHERE ...
type UpdateStmt struct {
	TableName   string
	Assignments []Assignment
	Where       *WhereExpr
}

func (*UpdateStmt) stmtNode() {}

// DeleteStmt represents DELETE FROM t WHERE ...
type DeleteStmt struct {
	TableName string
	Where     *WhereExpr
}

func (*DeleteStmt) stmtNode() {}

// ShowTablesStmt represents SHOW TABLES.
type ShowTablesStmt struct{}

func (*ShowTablesStmt) stmtNode() {}

// DescribeStmt represents DESCRIBE t.
type DescribeStmt struct {
	TableName string
}

func (*DescribeStmt) stmtNode() {}

// ExplainStmt represents EXPLAIN <statement>.
type ExplainStmt struct {
	Target Statement
}

func (*ExplainStmt) stmtNode() {}
