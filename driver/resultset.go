package driver

import (
	"context"
	"strings"
	"sync"
	"time"

	"goDBDriver/api"

	"github.com/cockroachdb/apd/v3"
)

// rowSource produces the rows of a cursor in batches.
type rowSource interface {
	fetch(ctx context.Context, max int) (rows []api.Row, eof bool, err error)
}

// staticSource serves rows held in memory.
type staticSource struct {
	rows []api.Row
}

func (src *staticSource) fetch(_ context.Context, max int) ([]api.Row, bool, error) {
	n := len(src.rows)
	if max > 0 && max < n {
		n = max
	}
	out := src.rows[:n]
	src.rows = src.rows[n:]
	return out, len(src.rows) == 0, nil
}

type cursorPosition int

const (
	beforeFirst cursorPosition = iota
	onRow
	afterLast
)

// ResultSet is a cursor over the rows of a query. Columns are addressed
// from 1.
type ResultSet struct {
	ctx  context.Context
	meta *ResultSetMetaData
	src  rowSource
	mode CursorMode

	mu          sync.Mutex
	closed      bool
	fetchSize   int
	defaultSize int
	maxRows     int
	pending     []api.Row
	buffer      []api.Row
	pulled      int
	eof         bool
	pos         cursorPosition
	rowNum      int
	row         api.Row
	wasNull     bool
}

func newResultSet(ctx context.Context, schema []api.Column, src rowSource, mode CursorMode, fetchSize, maxRows int) *ResultSet {
	cols := make([]ColumnDescriptor, len(schema))
	for i, c := range schema {
		cols[i] = describeColumn(c)
	}
	if fetchSize <= 0 {
		fetchSize = DefaultFetchSize
	}
	return &ResultSet{
		ctx:         ctx,
		meta:        &ResultSetMetaData{cols: cols},
		src:         src,
		mode:        mode,
		defaultSize: fetchSize,
		maxRows:     maxRows,
	}
}

// newStaticResultSet returns a scroll-insensitive cursor over rows.
func newStaticResultSet(ctx context.Context, schema []api.Column, rows []api.Row) *ResultSet {
	return newResultSet(ctx, schema, &staticSource{rows: rows}, ScrollInsensitive, 0, 0)
}

// Next advances to the next row. It returns false once the rows, or the
// row cap, are exhausted. Past the cap it keeps returning false; past the
// last row it fails with NoMoreRows.
func (rs *ResultSet) Next() (bool, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.closed {
		return false, errCursorClosed()
	}
	if rs.pos == afterLast {
		if rs.maxRows > 0 && rs.rowNum >= rs.maxRows {
			return false, nil
		}
		return false, newError(NoMoreRows, "No more rows: cursor is after the last row")
	}
	if rs.maxRows > 0 && rs.rowNum >= rs.maxRows {
		rs.toAfterLast()
		return false, nil
	}
	if rs.rowNum < len(rs.buffer) {
		rs.setRow(rs.buffer[rs.rowNum])
		return true, nil
	}
	if len(rs.pending) == 0 && !rs.eof {
		if err := rs.fill(); err != nil {
			return false, err
		}
	}
	if len(rs.pending) == 0 {
		rs.toAfterLast()
		return false, nil
	}

	row := rs.pending[0]
	rs.pending = rs.pending[1:]
	if rs.mode == ScrollInsensitive {
		rs.buffer = append(rs.buffer, row)
	}
	rs.setRow(row)
	return true, nil
}

func (rs *ResultSet) fill() error {
	n := rs.batchSize()
	if rs.maxRows > 0 && rs.maxRows-rs.pulled < n {
		n = rs.maxRows - rs.pulled
	}
	if n <= 0 {
		rs.eof = true
		return nil
	}

	rows, eof, err := rs.src.fetch(rs.ctx, n)
	if err != nil {
		return err
	}
	rs.pulled += len(rows)
	rs.pending = rows
	rs.eof = eof || len(rows) == 0
	return nil
}

func (rs *ResultSet) setRow(row api.Row) {
	rs.row = row
	rs.rowNum++
	rs.pos = onRow
	rs.wasNull = false
}

func (rs *ResultSet) toAfterLast() {
	rs.row = nil
	rs.pos = afterLast
}

func (rs *ResultSet) batchSize() int {
	if rs.fetchSize > 0 {
		return rs.fetchSize
	}
	return rs.defaultSize
}

// BeforeFirst moves a scroll-insensitive cursor back before its first row.
func (rs *ResultSet) BeforeFirst() error {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.closed {
		return errCursorClosed()
	}
	if rs.mode == ForwardOnly {
		return newError(UnsupportedOperation, "Method not supported for forward-only cursor")
	}
	rs.pos = beforeFirst
	rs.rowNum = 0
	rs.row = nil
	return nil
}

// Close releases the cursor. Closing twice is a no-op.
func (rs *ResultSet) Close() error {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.closed = true
	rs.pending, rs.buffer, rs.row = nil, nil, nil
	return nil
}

func (rs *ResultSet) IsClosed() bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.closed
}

func (rs *ResultSet) IsBeforeFirst() (bool, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.closed {
		return false, errCursorClosed()
	}
	return rs.pos == beforeFirst, nil
}

func (rs *ResultSet) IsAfterLast() (bool, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.closed {
		return false, errCursorClosed()
	}
	return rs.pos == afterLast, nil
}

// Row returns the 1-based number of the current row, or 0 when the cursor
// is not on a row.
func (rs *ResultSet) Row() (int, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.closed {
		return 0, errCursorClosed()
	}
	if rs.pos != onRow {
		return 0, nil
	}
	return rs.rowNum, nil
}

// MetaData describes the columns of the cursor.
func (rs *ResultSet) MetaData() (*ResultSetMetaData, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.closed {
		return nil, errCursorClosed()
	}
	return rs.meta, nil
}

// SetFetchSize sets the rows per round trip; 0 restores the statement's
// value.
func (rs *ResultSet) SetFetchSize(n int) error {
	if n < 0 {
		return newError(InvalidArgument, "fetch size must be >= 0")
	}
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.closed {
		return errCursorClosed()
	}
	rs.fetchSize = n
	return nil
}

func (rs *ResultSet) FetchSize() (int, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.closed {
		return 0, errCursorClosed()
	}
	return rs.batchSize(), nil
}

// WasNull reports whether the last getter read a NULL cell.
func (rs *ResultSet) WasNull() (bool, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.closed {
		return false, errCursorClosed()
	}
	return rs.wasNull, nil
}

// FindColumn returns the index of the first column whose label matches,
// ignoring case.
func (rs *ResultSet) FindColumn(label string) (int, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.closed {
		return 0, errCursorClosed()
	}
	return rs.findColumn(label)
}

func (rs *ResultSet) findColumn(label string) (int, error) {
	for i, c := range rs.meta.cols {
		if strings.EqualFold(c.Label, label) {
			return i + 1, nil
		}
	}
	return 0, newError(InvalidColumn, "Invalid column label: %s", label)
}

// cell returns the raw value of column i on the current row.
func (rs *ResultSet) cell(i int) (any, ColumnDescriptor, error) {
	if rs.closed {
		return nil, ColumnDescriptor{}, errCursorClosed()
	}
	if i < 1 || i > len(rs.meta.cols) {
		return nil, ColumnDescriptor{}, newError(InvalidColumn, "Invalid column index: %d", i)
	}
	if rs.pos != onRow {
		return nil, ColumnDescriptor{}, newError(InvalidCursorPosition, "Cursor is not positioned on a row")
	}
	col := rs.meta.cols[i-1]
	if i > len(rs.row) {
		return nil, col, nil
	}
	return rs.row[i-1], col, nil
}

func get[T any](rs *ResultSet, i int, conv func(any, ColumnDescriptor) (T, error)) (T, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	var zero T
	v, col, err := rs.cell(i)
	if err != nil {
		return zero, err
	}
	rs.wasNull = v == nil
	if v == nil {
		return zero, nil
	}
	out, err := conv(v, col)
	if err != nil {
		return zero, wrapError(InvalidConversion, err, "Unable to convert column %s: %v", col.Label, err)
	}
	return out, nil
}

func getByLabel[T any](rs *ResultSet, label string, conv func(any, ColumnDescriptor) (T, error)) (T, error) {
	i, err := rs.FindColumn(label)
	if err != nil {
		var zero T
		return zero, err
	}
	return get(rs, i, conv)
}

func (rs *ResultSet) String(i int) (string, error) { return get(rs, i, toString) }
func (rs *ResultSet) Bool(i int) (bool, error) { return get(rs, i, toBool) }
func (rs *ResultSet) Int8(i int) (int8, error) { return get(rs, i, toInt8) }
func (rs *ResultSet) Int16(i int) (int16, error) { return get(rs, i, toInt16) }
func (rs *ResultSet) Int32(i int) (int32, error) { return get(rs, i, toInt32) }
func (rs *ResultSet) Int64(i int) (int64, error) { return get(rs, i, toInt64Col) }
func (rs *ResultSet) Float32(i int) (float32, error) { return get(rs, i, toFloat32) }
func (rs *ResultSet) Float64(i int) (float64, error) { return get(rs, i, toFloat64) }
func (rs *ResultSet) Time(i int) (time.Time, error) { return get(rs, i, toTime) }
func (rs *ResultSet) Decimal(i int) (*apd.Decimal, error) { return get(rs, i, toDecimal) }
func (rs *ResultSet) Object(i int) (any, error) { return get(rs, i, toObject) }
func (rs *ResultSet) StringByLabel(l string) (string, error) { return getByLabel(rs, l, toString) }
func (rs *ResultSet) BoolByLabel(l string) (bool, error) { return getByLabel(rs, l, toBool) }
func (rs *ResultSet) Int8ByLabel(l string) (int8, error) { return getByLabel(rs, l, toInt8) }
func (rs *ResultSet) Int16ByLabel(l string) (int16, error) { return getByLabel(rs, l, toInt16) }
func (rs *ResultSet) Int32ByLabel(l string) (int32, error) { return getByLabel(rs, l, toInt32) }
func (rs *ResultSet) Int64ByLabel(l string) (int64, error) { return getByLabel(rs, l, toInt64Col) }
func (rs *ResultSet) Float32ByLabel(l string) (float32, error) { return getByLabel(rs, l, toFloat32) }
func (rs *ResultSet) Float64ByLabel(l string) (float64, error) { return getByLabel(rs, l, toFloat64) }
func (rs *ResultSet) TimeByLabel(l string) (time.Time, error) { return getByLabel(rs, l, toTime) }
func (rs *ResultSet) DecimalByLabel(l string) (*apd.Decimal, error) {
	return getByLabel(rs, l, toDecimal)
}
func (rs *ResultSet) ObjectByLabel(l string) (any, error) { return getByLabel(rs, l, toObject) }
