package api

// Column type names as they appear in schemas.
const (
	TypeNull      = "void"
	TypeTinyInt   = "tinyint"
	TypeSmallInt  = "smallint"
	TypeInt       = "int"
	TypeBigInt    = "bigint"
	TypeFloat     = "float"
	TypeDouble    = "double"
	TypeString    = "string"
	TypeBoolean   = "boolean"
	TypeTimestamp = "timestamp"
	TypeDecimal   = "decimal"
)

// OperationState is the lifecycle state of a submitted statement.
type OperationState string

const (
	StateRunning   OperationState = "RUNNING"
	StateComplete  OperationState = "COMPLETE"
	StateFailed    OperationState = "FAILED"
	StateCancelled OperationState = "CANCELLED"
)

// Terminal reports whether no further transitions can happen.
func (s OperationState) Terminal() bool {
	return s == StateComplete || s == StateFailed || s == StateCancelled
}

// SubmitRequest is a statement plus the session configuration snapshot it
// runs with.
type SubmitRequest struct {
	SQL  string            `json:"sql" yaml:"sql"`
	Conf map[string]string `json:"conf,omitempty" yaml:"conf,omitempty"`
}

// Column describes one result or table column.
type Column struct {
	Name    string `json:"name" yaml:"name"`
	Type    string `json:"type" yaml:"type"`
	Comment string `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// Operation is returned by Submit.
type Operation struct {
	Handle       string   `json:"handle" yaml:"handle"`
	HasResultSet bool     `json:"has_result_set" yaml:"has_result_set"`
	Schema       []Column `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// Status is a point-in-time view of an operation.
type Status struct {
	Handle       string         `json:"handle" yaml:"handle"`
	State        OperationState `json:"state" yaml:"state"`
	HasResultSet bool           `json:"has_result_set" yaml:"has_result_set"`
	UpdateCount  int64          `json:"update_count" yaml:"update_count"`
	Warnings     []string       `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Error        *RemoteError   `json:"error,omitempty" yaml:"error,omitempty"`
}

// Row is one result row. Cells are nil, int64, float64, string, bool,
// time.Time or *apd.Decimal.
type Row []any

// RowBatch is one FetchNext response. EOF is set once the last row has been
// handed out.
type RowBatch struct {
	Rows []Row `json:"rows"`
	EOF  bool  `json:"eof"`
}

// CatalogObject is a table or view as listed by the engine. Kind is the
// engine-native kind name (MANAGED_TABLE, EXTERNAL_TABLE, VIRTUAL_VIEW,
// INDEX_TABLE).
type CatalogObject struct {
	Schema   string   `json:"schema" yaml:"schema"`
	Name     string   `json:"name" yaml:"name"`
	Kind     string   `json:"kind" yaml:"kind"`
	Comment  string   `json:"comment,omitempty" yaml:"comment,omitempty"`
	Columns  []Column `json:"columns" yaml:"columns"`
	ViewText string   `json:"view_text,omitempty" yaml:"view_text,omitempty"`
}

// ServerInfo describes the engine product.
type ServerInfo struct {
	ProductName    string   `json:"product_name" yaml:"product_name"`
	ProductVersion string   `json:"product_version" yaml:"product_version"`
	MajorVersion   int      `json:"major_version" yaml:"major_version"`
	MinorVersion   int      `json:"minor_version" yaml:"minor_version"`
	Schemas        []string `json:"schemas" yaml:"schemas"`
}
