package driver

// ResultSetMetaData describes the columns of a cursor. Indexes are 1-based.
type ResultSetMetaData struct {
	cols []ColumnDescriptor
}

// ColumnCount returns the number of columns.
func (m *ResultSetMetaData) ColumnCount() int {
	return len(m.cols)
}

// Column returns the descriptor of column i.
func (m *ResultSetMetaData) Column(i int) (ColumnDescriptor, error) {
	if i < 1 || i > len(m.cols) {
		return ColumnDescriptor{}, newError(InvalidColumn, "Invalid column index: %d", i)
	}
	return m.cols[i-1], nil
}

func (m *ResultSetMetaData) ColumnName(i int) (string, error) {
	c, err := m.Column(i)
	return c.Name, err
}

func (m *ResultSetMetaData) ColumnLabel(i int) (string, error) {
	c, err := m.Column(i)
	return c.Label, err
}

func (m *ResultSetMetaData) ColumnType(i int) (SQLType, error) {
	c, err := m.Column(i)
	return c.SQLType, err
}

func (m *ResultSetMetaData) ColumnTypeName(i int) (string, error) {
	c, err := m.Column(i)
	return c.TypeName, err
}

func (m *ResultSetMetaData) ColumnDisplaySize(i int) (int, error) {
	c, err := m.Column(i)
	return c.DisplaySize, err
}

func (m *ResultSetMetaData) Precision(i int) (int, error) {
	c, err := m.Column(i)
	return c.Precision, err
}

func (m *ResultSetMetaData) Scale(i int) (int, error) {
	c, err := m.Column(i)
	return c.Scale, err
}

func (m *ResultSetMetaData) IsNullable(i int) (bool, error) {
	c, err := m.Column(i)
	return c.Nullable, err
}
