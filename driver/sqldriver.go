package driver

import (
	"context"
	"database/sql"
	sqldriver "database/sql/driver"
	"io"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// DriverName is the name registered with database/sql.
const DriverName = "godb"

func init() {
	sql.Register(DriverName, &Driver{})
}

// Driver adapts the driver to database/sql. Statements always run
// synchronously.
type Driver struct{}

var (
	_ sqldriver.Driver        = (*Driver)(nil)
	_ sqldriver.DriverContext = (*Driver)(nil)
)

func (d *Driver) Open(dsn string) (sqldriver.Conn, error) {
	c, err := d.OpenConnector(dsn)
	if err != nil {
		return nil, err
	}
	return c.Connect(context.Background())
}

func (d *Driver) OpenConnector(dsn string) (sqldriver.Connector, error) {
	if _, err := ParseURL(dsn); err != nil {
		return nil, err
	}
	return &connector{driver: d, dsn: dsn}, nil
}

type connector struct {
	driver *Driver
	dsn    string
}

func (c *connector) Connect(ctx context.Context) (sqldriver.Conn, error) {
	sess, err := Connect(ctx, c.dsn)
	if err != nil {
		return nil, err
	}
	if err := sess.SetSessionOption(OptionBlocking, "true"); err != nil {
		return nil, err
	}
	return &conn{sess: sess}, nil
}

func (c *connector) Driver() sqldriver.Driver {
	return c.driver
}

type conn struct {
	sess *Session
}

var (
	_ sqldriver.ConnPrepareContext = (*conn)(nil)
	_ sqldriver.Pinger             = (*conn)(nil)
)

func (c *conn) Prepare(query string) (sqldriver.Stmt, error) {
	return c.PrepareContext(context.Background(), query)
}

func (c *conn) PrepareContext(_ context.Context, query string) (sqldriver.Stmt, error) {
	ps, err := c.sess.Prepare(query)
	if err != nil {
		return nil, err
	}
	return &stmt{ps: ps}, nil
}

func (c *conn) Close() error {
	return c.sess.Close()
}

func (c *conn) Begin() (sqldriver.Tx, error) {
	return nil, newError(UnsupportedOperation, "Transactions are not supported")
}

func (c *conn) Ping(ctx context.Context) error {
	if c.sess.IsClosed() {
		return sqldriver.ErrBadConn
	}
	_, err := c.sess.backend.Info(ctx)
	return fromBackend(err)
}

type stmt struct {
	ps *PreparedStatement
}

var (
	_ sqldriver.StmtExecContext  = (*stmt)(nil)
	_ sqldriver.StmtQueryContext = (*stmt)(nil)
)

func (s *stmt) Close() error {
	return s.ps.Close()
}

func (s *stmt) NumInput() int {
	return s.ps.ParameterCount()
}

func (s *stmt) bindArgs(args []sqldriver.NamedValue) error {
	s.ps.ClearParameters()
	for _, arg := range args {
		if arg.Name != "" {
			return newError(UnsupportedOperation, "Named parameters are not supported")
		}
		if err := s.ps.SetObject(arg.Ordinal, arg.Value); err != nil {
			return err
		}
	}
	return nil
}

func namedValues(args []sqldriver.Value) []sqldriver.NamedValue {
	out := make([]sqldriver.NamedValue, len(args))
	for i, v := range args {
		out[i] = sqldriver.NamedValue{Ordinal: i + 1, Value: v}
	}
	return out
}

func (s *stmt) Exec(args []sqldriver.Value) (sqldriver.Result, error) {
	return s.ExecContext(context.Background(), namedValues(args))
}

func (s *stmt) ExecContext(ctx context.Context, args []sqldriver.NamedValue) (sqldriver.Result, error) {
	if err := s.bindArgs(args); err != nil {
		return nil, err
	}
	n, err := s.ps.ExecuteUpdate(ctx)
	if err != nil {
		return nil, err
	}
	return sqldriver.RowsAffected(n), nil
}

func (s *stmt) Query(args []sqldriver.Value) (sqldriver.Rows, error) {
	return s.QueryContext(context.Background(), namedValues(args))
}

func (s *stmt) QueryContext(ctx context.Context, args []sqldriver.NamedValue) (sqldriver.Rows, error) {
	if err := s.bindArgs(args); err != nil {
		return nil, err
	}
	rs, err := s.ps.ExecuteQuery(ctx)
	if err != nil {
		return nil, err
	}
	meta, err := rs.MetaData()
	if err != nil {
		return nil, err
	}
	return &rows{rs: rs, meta: meta}, nil
}

type rows struct {
	rs   *ResultSet
	meta *ResultSetMetaData
}

var _ sqldriver.RowsColumnTypeDatabaseTypeName = (*rows)(nil)

func (r *rows) Columns() []string {
	names := make([]string, r.meta.ColumnCount())
	for i := range names {
		names[i], _ = r.meta.ColumnLabel(i + 1)
	}
	return names
}

func (r *rows) ColumnTypeDatabaseTypeName(index int) string {
	name, _ := r.meta.ColumnTypeName(index + 1)
	return strings.ToUpper(name)
}

func (r *rows) Close() error {
	return r.rs.Close()
}

func (r *rows) Next(dest []sqldriver.Value) error {
	ok, err := r.rs.Next()
	if err != nil {
		return err
	}
	if !ok {
		return io.EOF
	}
	for i := range dest {
		v, err := r.rs.Object(i + 1)
		if err != nil {
			return err
		}
		if d, isDecimal := v.(*apd.Decimal); isDecimal {
			v = d.Text('f')
		}
		dest[i] = v
	}
	return nil
}
