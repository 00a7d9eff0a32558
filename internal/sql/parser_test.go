package sql

import (
	"testing"

	"github.com/cockroachdb/errors"
)

func TestParseCreateTable_Basic(t *testing.T) {
	query := "CREATE TABLE users (id INT, name STRING, active BOOL);"

	stmt, err := Parse(query)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	ct, ok := stmt.(*CreateTableStmt)
	if !ok {
		t.Fatalf("expected *CreateTableStmt, got %T", stmt)
	}

	if ct.TableName != "users" {
		t.Fatalf("expected table name %q, got %q", "users", ct.TableName)
	}

	if len(ct.Columns) != 3 {
		t.Fatalf("expected 3 columns, got %d", len(ct.Columns))
	}

	assertCol := func(idx int, name string, dt DataType) {
		if ct.Columns[idx].Name != name {
			t.Fatalf("column %d: expected name %q, got %q", idx, name, ct.Columns[idx].Name)
		}
		if ct.Columns[idx].Type != dt {
			t.Fatalf("column %d: expected type %v, got %v", idx, dt, ct.Columns[idx].Type)
		}
	}

	assertCol(0, "id", TypeInt)
	assertCol(1, "name", TypeString)
	assertCol(2, "active", TypeBool)
}

func TestParseCreateTable_CaseAndSpaces(t *testing.T) {
	query := "  create   table   Accounts  (  balance   float ,  owner  text );  "

	stmt, err := Parse(query)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	ct, ok := stmt.(*CreateTableStmt)
	if !ok {
		t.Fatalf("expected *CreateTableStmt, got %T", stmt)
	}

	if ct.TableName != "Accounts" {
		t.Fatalf("expected table name %q, got %q", "Accounts", ct.TableName)
	}

	if len(ct.Columns) != 2 {
		t.Fatalf("expected 2 columns, got %d", len(ct.Columns))
	}

	if ct.Columns[0].Name != "balance" || ct.Columns[0].Type != TypeFloat {
		t.Fatalf("unexpected first column: %+v", ct.Columns[0])
	}

	if ct.Columns[1].Name != "owner" || ct.Columns[1].Type != TypeString {
		t.Fatalf("unexpected second column: %+v", ct.Columns[1])
	}
}

func TestParseCreateTable_CommentsAndOptions(t *testing.T) {
	query := "CREATE EXTERNAL TABLE IF NOT EXISTS t (under_col int comment 'the under column', value string) comment 'my table'"

	stmt, err := Parse(query)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	ct := stmt.(*CreateTableStmt)
	if !ct.External || !ct.IfNotExists {
		t.Fatalf("expected EXTERNAL and IF NOT EXISTS, got %+v", ct)
	}
	if ct.Comment != "my table" {
		t.Fatalf("unexpected table comment %q", ct.Comment)
	}
	if ct.Columns[0].Comment != "the under column" || ct.Columns[1].Comment != "" {
		t.Fatalf("unexpected column comments: %+v", ct.Columns)
	}
}

func TestParseCreateTable_AllTypes(t *testing.T) {
	query := "CREATE TABLE all_types (a tinyint, b smallint, c int, d bigint, e float, f double, g string, h boolean, i timestamp, j decimal)"

	stmt, err := Parse(query)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	want := []DataType{TypeTinyInt, TypeSmallInt, TypeInt, TypeBigInt, TypeFloat, TypeDouble,
		TypeString, TypeBool, TypeTimestamp, TypeDecimal}
	ct := stmt.(*CreateTableStmt)
	for i, dt := range want {
		if ct.Columns[i].Type != dt {
			t.Fatalf("column %d: expected %v, got %v", i, dt, ct.Columns[i].Type)
		}
	}
}

func TestParseCreateView(t *testing.T) {
	query := "CREATE VIEW v COMMENT 'view comment' AS SELECT * FROM t WHERE a > 1;"

	stmt, err := Parse(query)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	cv, ok := stmt.(*CreateViewStmt)
	if !ok {
		t.Fatalf("expected *CreateViewStmt, got %T", stmt)
	}
	if cv.ViewName != "v" || cv.Comment != "view comment" {
		t.Fatalf("unexpected view: %+v", cv)
	}
	if cv.QueryText != "SELECT * FROM t WHERE a > 1" {
		t.Fatalf("unexpected view text %q", cv.QueryText)
	}
	if cv.Query.TableName != "t" {
		t.Fatalf("unexpected view source %q", cv.Query.TableName)
	}
}

func TestParseDrop(t *testing.T) {
	stmt, err := Parse("drop view if exists v")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	ds := stmt.(*DropStmt)
	if !ds.View || !ds.IfExists || ds.Name != "v" {
		t.Fatalf("unexpected drop: %+v", ds)
	}

	stmt, err = Parse("DROP TABLE t")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	ds = stmt.(*DropStmt)
	if ds.View || ds.IfExists || ds.Name != "t" {
		t.Fatalf("unexpected drop: %+v", ds)
	}
}

func TestParseInsert_Basic(t *testing.T) {
	query := "INSERT INTO users VALUES (1, 'Alice', true);"

	stmt, err := Parse(query)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	ins, ok := stmt.(*InsertStmt)
	if !ok {
		t.Fatalf("expected *InsertStmt, got %T", stmt)
	}

	if ins.TableName != "users" {
		t.Fatalf("expected table name %q, got %q", "users", ins.TableName)
	}

	if len(ins.Rows) != 1 || len(ins.Rows[0]) != 3 {
		t.Fatalf("expected 1 row of 3 values, got %+v", ins.Rows)
	}
	values := ins.Rows[0]

	// id
	if values[0].Type != TypeInt || values[0].I64 != 1 {
		t.Fatalf("unexpected first value: %+v", values[0])
	}
	// name
	if values[1].Type != TypeString || values[1].S != "Alice" {
		t.Fatalf("unexpected second value: %+v", values[1])
	}
	// active
	if values[2].Type != TypeBool || values[2].B != true {
		t.Fatalf("unexpected third value: %+v", values[2])
	}
}

func TestParseInsert_CaseAndSpaces(t *testing.T) {
	query := "  insert  into   Accounts   values  (  100.5 ,  'John Doe' , FALSE ); "

	stmt, err := Parse(query)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	ins, ok := stmt.(*InsertStmt)
	if !ok {
		t.Fatalf("expected *InsertStmt, got %T", stmt)
	}

	if ins.TableName != "Accounts" {
		t.Fatalf("expected table name %q, got %q", "Accounts", ins.TableName)
	}

	values := ins.Rows[0]
	if values[0].Type != TypeDouble || values[0].F64 != 100.5 {
		t.Fatalf("expected first value to be DOUBLE 100.5, got %+v", values[0])
	}
	if values[1].Type != TypeString || values[1].S != "John Doe" {
		t.Fatalf("unexpected second value: %+v", values[1])
	}
	if values[2].Type != TypeBool || values[2].B != false {
		t.Fatalf("unexpected third value: %+v", values[2])
	}
}

func TestParseInsert_MultiRowAndLiterals(t *testing.T) {
	query := `INSERT INTO t (a, b, c) VALUES (-3, 'it''s', NULL), (3000000000, "x\'y", 2.5BD), (1Y, 2S, 7L)`

	stmt, err := Parse(query)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	ins := stmt.(*InsertStmt)
	if len(ins.Columns) != 3 || len(ins.Rows) != 3 {
		t.Fatalf("unexpected insert: %+v", ins)
	}

	r0, r1, r2 := ins.Rows[0], ins.Rows[1], ins.Rows[2]
	if r0[0].Type != TypeInt || r0[0].I64 != -3 {
		t.Fatalf("unexpected negative literal: %+v", r0[0])
	}
	if r0[1].S != "it's" {
		t.Fatalf("unexpected doubled-quote literal: %q", r0[1].S)
	}
	if !r0[2].IsNull() {
		t.Fatalf("expected NULL, got %+v", r0[2])
	}
	if r1[0].Type != TypeBigInt {
		t.Fatalf("expected BIGINT for out-of-int-range literal, got %v", r1[0].Type)
	}
	if r1[1].S != "x'y" {
		t.Fatalf("unexpected escaped literal: %q", r1[1].S)
	}
	if r1[2].Type != TypeDecimal || r1[2].D.Text('f') != "2.5" {
		t.Fatalf("unexpected decimal literal: %+v", r1[2])
	}
	if r2[0].Type != TypeTinyInt || r2[1].Type != TypeSmallInt || r2[2].Type != TypeBigInt {
		t.Fatalf("unexpected suffixed literals: %+v", r2)
	}
}

func TestParseInsert_ColumnCountMismatch(t *testing.T) {
	_, err := Parse("INSERT INTO t (a, b) VALUES (1)")
	if !errors.Is(err, ErrSyntax) {
		t.Fatalf("expected syntax error, got %v", err)
	}
}

func TestParseSelect_Basic(t *testing.T) {
	query := "SELECT * FROM users;"

	stmt, err := Parse(query)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	sel, ok := stmt.(*SelectStmt)
	if !ok {
		t.Fatalf("expected *SelectStmt, got %T", stmt)
	}

	if sel.TableName != "users" {
		t.Fatalf("expected table name %q, got %q", "users", sel.TableName)
	}
	if len(sel.Items) != 1 || !sel.Items[0].Star {
		t.Fatalf("expected a single star item, got %+v", sel.Items)
	}
	if sel.Limit != -1 {
		t.Fatalf("expected no limit, got %d", sel.Limit)
	}
}

func TestParseSelect_CaseAndSpaces(t *testing.T) {
	query := "   select   *   from   Accounts   ; "

	stmt, err := Parse(query)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	sel, ok := stmt.(*SelectStmt)
	if !ok {
		t.Fatalf("expected *SelectStmt, got %T", stmt)
	}

	if sel.TableName != "Accounts" {
		t.Fatalf("expected table name %q, got %q", "Accounts", sel.TableName)
	}
}

func TestParseSelect_WithWhereInt(t *testing.T) {
	query := "SELECT * FROM users WHERE id = 1;"

	stmt, err := Parse(query)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	sel := stmt.(*SelectStmt)
	if sel.Where == nil || len(sel.Where.Terms) != 1 {
		t.Fatalf("expected one WHERE term, got %+v", sel.Where)
	}
	term := sel.Where.Terms[0]
	if term.Left.Column != "id" || term.Op != "=" {
		t.Fatalf("unexpected WHERE expr: %+v", term)
	}
	if term.Right.Literal.Type != TypeInt || term.Right.Literal.I64 != 1 {
		t.Fatalf("unexpected WHERE value: %+v", term.Right.Literal)
	}
}

func TestParseSelect_WithWhereConjunction(t *testing.T) {
	query := "  select * from  users  where  name = 'Alice Smith' and 10 <= age AND active != false ; "

	stmt, err := Parse(query)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	terms := stmt.(*SelectStmt).Where.Terms
	if len(terms) != 3 {
		t.Fatalf("expected 3 terms, got %d", len(terms))
	}
	if terms[0].Right.Literal.S != "Alice Smith" {
		t.Fatalf("unexpected first term: %+v", terms[0])
	}
	if terms[1].Left.IsColumn() || terms[1].Right.Column != "age" || terms[1].Op != "<=" {
		t.Fatalf("unexpected second term: %+v", terms[1])
	}
	if terms[2].Op != "<>" {
		t.Fatalf("expected != to normalize to <>, got %q", terms[2].Op)
	}
}

func TestParseSelect_ItemsOrderLimit(t *testing.T) {
	query := "SELECT id, name AS n, 1 one, 'x' FROM users ORDER BY name DESC, id LIMIT 10"

	stmt, err := Parse(query)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	sel := stmt.(*SelectStmt)
	if len(sel.Items) != 4 {
		t.Fatalf("expected 4 items, got %d", len(sel.Items))
	}
	if sel.Items[0].Column != "id" || sel.Items[1].Alias != "n" || sel.Items[2].Alias != "one" {
		t.Fatalf("unexpected items: %+v", sel.Items)
	}
	if sel.Items[3].Column != "" || sel.Items[3].Literal.S != "x" {
		t.Fatalf("unexpected literal item: %+v", sel.Items[3])
	}
	if len(sel.OrderBy) != 2 || !sel.OrderBy[0].Desc || sel.OrderBy[1].Desc {
		t.Fatalf("unexpected ORDER BY: %+v", sel.OrderBy)
	}
	if sel.Limit != 10 {
		t.Fatalf("expected limit 10, got %d", sel.Limit)
	}
}

func TestParseSelect_NoFrom(t *testing.T) {
	stmt, err := Parse("select 1")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if sel := stmt.(*SelectStmt); sel.TableName != "" {
		t.Fatalf("expected no source, got %q", sel.TableName)
	}
}

func TestParseUpdate_Basic(t *testing.T) {
	query := "UPDATE users SET name = 'Bob' WHERE id = 1;"

	stmt, err := Parse(query)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	up, ok := stmt.(*UpdateStmt)
	if !ok {
		t.Fatalf("expected *UpdateStmt, got %T", stmt)
	}
	if up.TableName != "users" {
		t.Fatalf("expected table name users, got %q", up.TableName)
	}
	if len(up.Assignments) != 1 || up.Assignments[0].Column != "name" || up.Assignments[0].Value.S != "Bob" {
		t.Fatalf("unexpected assignments: %+v", up.Assignments)
	}
	if up.Where.Terms[0].Left.Column != "id" {
		t.Fatalf("unexpected WHERE: %+v", up.Where)
	}
}

func TestParseUpdate_MultiAssignmentWithSpaces(t *testing.T) {
	query := "  update   users   set   name = 'Alice' ,  active = false   where  id = 2 ; "

	stmt, err := Parse(query)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	up := stmt.(*UpdateStmt)
	if len(up.Assignments) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(up.Assignments))
	}
	if up.Assignments[1].Column != "active" || up.Assignments[1].Value.Type != TypeBool {
		t.Fatalf("unexpected second assignment: %+v", up.Assignments[1])
	}
}

func TestParseUpdate_RequiresWhere(t *testing.T) {
	if _, err := Parse("UPDATE users SET name = 'x'"); !errors.Is(err, ErrSyntax) {
		t.Fatalf("expected syntax error, got %v", err)
	}
}

func TestParseDelete_Basic(t *testing.T) {
	stmt, err := Parse("DELETE FROM users WHERE id = 1;")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	del, ok := stmt.(*DeleteStmt)
	if !ok {
		t.Fatalf("expected *DeleteStmt, got %T", stmt)
	}
	if del.TableName != "users" || del.Where.Terms[0].Right.Literal.I64 != 1 {
		t.Fatalf("unexpected delete: %+v", del)
	}
}

func TestParseDelete_WithSpaces(t *testing.T) {
	stmt, err := Parse("   delete   from   Accounts   where   owner = 'John Doe'  ;  ")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	del := stmt.(*DeleteStmt)
	if del.TableName != "Accounts" || del.Where.Terms[0].Right.Literal.S != "John Doe" {
		t.Fatalf("unexpected delete: %+v", del)
	}
}

func TestParseShowDescribeExplain(t *testing.T) {
	if _, err := Parse("show tables"); err != nil {
		t.Fatalf("SHOW TABLES failed: %v", err)
	}

	stmt, err := Parse("describe t")
	if err != nil {
		t.Fatalf("DESCRIBE failed: %v", err)
	}
	if d := stmt.(*DescribeStmt); d.TableName != "t" {
		t.Fatalf("unexpected describe target %q", d.TableName)
	}

	stmt, err = Parse("explain select c1 from t")
	if err != nil {
		t.Fatalf("EXPLAIN failed: %v", err)
	}
	if _, ok := stmt.(*ExplainStmt).Target.(*SelectStmt); !ok {
		t.Fatalf("expected EXPLAIN of a SELECT, got %+v", stmt)
	}
}

func TestParse_SyntaxErrors(t *testing.T) {
	cases := map[string]string{
		"misspelled keyword": "SELECTT * FROM t",
		"empty":              "   ",
		"unterminated":       "SELECT 'abc FROM t",
		"trailing garbage":   "SELECT * FROM t t2 t3",
		"bad type":           "CREATE TABLE t (a blob)",
		"missing operand":    "SELECT * FROM t WHERE a =",
	}
	for name, query := range cases {
		_, err := Parse(query)
		if err == nil {
			t.Fatalf("%s: expected error for %q", name, query)
		}
		if !errors.Is(err, ErrSyntax) {
			t.Fatalf("%s: expected syntax error, got %v", name, err)
		}
	}
}

func TestParse_ErrorMentionsInput(t *testing.T) {
	_, err := Parse("SELECTT * FROM t")
	want := "line 1:0 cannot recognize input near 'SELECTT' '*' 'FROM'"
	if err == nil || err.Error() != want {
		t.Fatalf("expected %q, got %v", want, err)
	}
}

func TestLex_PlaceholdersOutsideStrings(t *testing.T) {
	toks, err := Lex("select * from t where a = ? and b = '?'")
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}
	n := 0
	for _, tok := range toks {
		if tok.Kind == TokSymbol && tok.Text == "?" {
			n++
		}
	}
	if n != 1 {
		t.Fatalf("expected 1 placeholder, got %d", n)
	}
}
