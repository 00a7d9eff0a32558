package driver

import (
	"context"
	"sort"
	"strings"

	"goDBDriver/api"
)

// DatabaseMetaData answers catalog queries with in-memory cursors. Names
// are filtered with SQL LIKE patterns; a nil pattern matches everything.
type DatabaseMetaData struct {
	sess *Session
}

// columns builds a schema from "NAME type" definitions.
func columns(defs ...string) []api.Column {
	out := make([]api.Column, len(defs))
	for i, def := range defs {
		name, typ, _ := strings.Cut(def, " ")
		out[i] = api.Column{Name: name, Type: typ}
	}
	return out
}

var (
	catalogsSchema = columns("TABLE_CAT string")
	schemasSchema  = columns("TABLE_SCHEM string", "TABLE_CATALOG string")
	tablesSchema   = columns("TABLE_CAT string", "TABLE_SCHEM string", "TABLE_NAME string",
		"TABLE_TYPE string", "REMARKS string")
	tableTypesSchema = columns("TABLE_TYPE string")
	columnsSchema    = columns(
		"TABLE_CAT string", "TABLE_SCHEM string", "TABLE_NAME string", "COLUMN_NAME string",
		"DATA_TYPE int", "TYPE_NAME string", "COLUMN_SIZE int", "BUFFER_LENGTH int",
		"DECIMAL_DIGITS int", "NUM_PREC_RADIX int", "NULLABLE int", "REMARKS string",
		"COLUMN_DEF string", "SQL_DATA_TYPE int", "SQL_DATETIME_SUB int", "CHAR_OCTET_LENGTH int",
		"ORDINAL_POSITION int", "IS_NULLABLE string", "SCOPE_CATALOG string", "SCOPE_SCHEMA string",
		"SCOPE_TABLE string", "SOURCE_DATA_TYPE smallint", "IS_AUTO_INCREMENT string",
	)
	typeInfoSchema = columns(
		"TYPE_NAME string", "DATA_TYPE int", "PRECISION int", "LITERAL_PREFIX string",
		"LITERAL_SUFFIX string", "CREATE_PARAMS string", "NULLABLE smallint", "CASE_SENSITIVE boolean",
		"SEARCHABLE smallint", "UNSIGNED_ATTRIBUTE boolean", "FIXED_PREC_SCALE boolean",
		"AUTO_INCREMENT boolean", "LOCAL_TYPE_NAME string", "MINIMUM_SCALE smallint",
		"MAXIMUM_SCALE smallint", "SQL_DATA_TYPE int", "SQL_DATETIME_SUB int", "NUM_PREC_RADIX int",
	)
	proceduresSchema = columns(
		"PROCEDURE_CAT string", "PROCEDURE_SCHEM string", "PROCEDURE_NAME string", "RESERVED1 string",
		"RESERVED2 string", "RESERVED3 string", "REMARKS string", "PROCEDURE_TYPE smallint",
		"SPECIFIC_NAME string",
	)
	procedureColumnsSchema = columns(
		"PROCEDURE_CAT string", "PROCEDURE_SCHEM string", "PROCEDURE_NAME string", "COLUMN_NAME string",
		"COLUMN_TYPE smallint", "DATA_TYPE int", "TYPE_NAME string", "PRECISION int", "LENGTH int",
		"SCALE smallint", "RADIX smallint", "NULLABLE smallint", "REMARKS string", "COLUMN_DEF string",
		"SQL_DATA_TYPE int", "SQL_DATETIME_SUB int", "CHAR_OCTET_LENGTH int", "ORDINAL_POSITION int",
		"IS_NULLABLE string", "SPECIFIC_NAME string",
	)
	primaryKeysSchema = columns("TABLE_CAT string", "TABLE_SCHEM string", "TABLE_NAME string",
		"COLUMN_NAME string", "KEY_SEQ smallint", "PK_NAME string")
	importedKeysSchema = columns(
		"PKTABLE_CAT string", "PKTABLE_SCHEM string", "PKTABLE_NAME string", "PKCOLUMN_NAME string",
		"FKTABLE_CAT string", "FKTABLE_SCHEM string", "FKTABLE_NAME string", "FKCOLUMN_NAME string",
		"KEY_SEQ smallint", "UPDATE_RULE smallint", "DELETE_RULE smallint", "FK_NAME string",
		"PK_NAME string", "DEFERRABILITY smallint",
	)
)

// jdbc nullability constant "columnNullable".
const columnNullable = 1

func (m *DatabaseMetaData) result(ctx context.Context, schema []api.Column, rows []api.Row) (*ResultSet, error) {
	if m.sess.IsClosed() {
		return nil, errConnectionClosed()
	}
	return newStaticResultSet(ctx, schema, rows), nil
}

func (m *DatabaseMetaData) objects(ctx context.Context) ([]api.CatalogObject, error) {
	if m.sess.IsClosed() {
		return nil, errConnectionClosed()
	}
	objs, err := m.sess.backend.ListObjects(ctx)
	if err != nil {
		return nil, fromBackend(err)
	}
	sort.SliceStable(objs, func(i, j int) bool {
		return objs[i].Name < objs[j].Name
	})
	return objs, nil
}

func (m *DatabaseMetaData) info(ctx context.Context) (api.ServerInfo, error) {
	if m.sess.IsClosed() {
		return api.ServerInfo{}, errConnectionClosed()
	}
	info, err := m.sess.backend.Info(ctx)
	if err != nil {
		return api.ServerInfo{}, fromBackend(err)
	}
	return info, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Catalogs returns the catalogs. The engine has none.
func (m *DatabaseMetaData) Catalogs(ctx context.Context) (*ResultSet, error) {
	return m.result(ctx, catalogsSchema, nil)
}

// Schemas returns the schemas whose names match schemaPattern.
func (m *DatabaseMetaData) Schemas(ctx context.Context, schemaPattern *string) (*ResultSet, error) {
	info, err := m.info(ctx)
	if err != nil {
		return nil, err
	}
	match := compileLike(schemaPattern)
	var rows []api.Row
	for _, schema := range info.Schemas {
		if match.match(schema) {
			rows = append(rows, api.Row{schema, nil})
		}
	}
	return m.result(ctx, schemasSchema, rows)
}

// Tables returns the tables and views matching the patterns. types filters
// on the mapped type names; nil keeps every type.
func (m *DatabaseMetaData) Tables(ctx context.Context, catalog, schemaPattern, tablePattern *string, types []string) (*ResultSet, error) {
	objs, err := m.objects(ctx)
	if err != nil {
		return nil, err
	}
	mapping := m.sess.tableTypeMapping()
	schemaMatch, tableMatch := compileLike(schemaPattern), compileLike(tablePattern)

	var wanted map[string]bool
	if types != nil {
		wanted = make(map[string]bool, len(types))
		for _, t := range types {
			wanted[strings.ToUpper(t)] = true
		}
	}

	var rows []api.Row
	for _, obj := range objs {
		if !schemaMatch.match(obj.Schema) || !tableMatch.match(obj.Name) {
			continue
		}
		typ := mapping.ClientType(obj.Kind)
		if wanted != nil && !wanted[strings.ToUpper(typ)] {
			continue
		}
		rows = append(rows, api.Row{nil, obj.Schema, obj.Name, typ, nullable(obj.Comment)})
	}
	return m.result(ctx, tablesSchema, rows)
}

// TableTypes returns the types Tables can report under the session's
// mapping.
func (m *DatabaseMetaData) TableTypes(ctx context.Context) (*ResultSet, error) {
	var rows []api.Row
	for _, t := range m.sess.tableTypeMapping().ClientTypes() {
		rows = append(rows, api.Row{t})
	}
	return m.result(ctx, tableTypesSchema, rows)
}

// Columns returns the columns matching the patterns, ordered by table name
// and ordinal position.
func (m *DatabaseMetaData) Columns(ctx context.Context, catalog, schemaPattern, tablePattern, columnPattern *string) (*ResultSet, error) {
	objs, err := m.objects(ctx)
	if err != nil {
		return nil, err
	}
	schemaMatch, tableMatch, columnMatch := compileLike(schemaPattern), compileLike(tablePattern), compileLike(columnPattern)

	var rows []api.Row
	for _, obj := range objs {
		if !schemaMatch.match(obj.Schema) || !tableMatch.match(obj.Name) {
			continue
		}
		for i, col := range obj.Columns {
			if !columnMatch.match(col.Name) {
				continue
			}
			info := lookupType(col.Type)
			var radix any
			if info.numeric {
				radix = int64(10)
			}
			rows = append(rows, api.Row{
				nil, obj.Schema, obj.Name, col.Name,
				int64(info.sqlType), col.Type, int64(info.precision), nil,
				int64(info.scale), radix, int64(columnNullable), nullable(col.Comment),
				nil, nil, nil, nil,
				int64(i + 1), "YES", nil, nil,
				nil, nil, "NO",
			})
		}
	}
	return m.result(ctx, columnsSchema, rows)
}

// TypeInfo describes the types supported by the engine.
func (m *DatabaseMetaData) TypeInfo(ctx context.Context) (*ResultSet, error) {
	var rows []api.Row
	for _, name := range typeNames {
		info := typeInfos[name]
		var prefix, suffix, radix any
		switch name {
		case "string", "timestamp":
			prefix, suffix = "'", "'"
		}
		if info.numeric {
			radix = int64(10)
		}
		rows = append(rows, api.Row{
			strings.ToUpper(name), int64(info.sqlType), int64(info.precision), prefix,
			suffix, nil, int64(columnNullable), name == "string",
			int64(3), !info.numeric, false,
			false, nil, int64(0),
			int64(info.scale), nil, nil, radix,
		})
	}
	return m.result(ctx, typeInfoSchema, rows)
}

// Procedures always returns an empty cursor.
func (m *DatabaseMetaData) Procedures(ctx context.Context, catalog, schemaPattern, procedurePattern *string) (*ResultSet, error) {
	return m.result(ctx, proceduresSchema, nil)
}

// ProcedureColumns always returns an empty cursor.
func (m *DatabaseMetaData) ProcedureColumns(ctx context.Context, catalog, schemaPattern, procedurePattern, columnPattern *string) (*ResultSet, error) {
	return m.result(ctx, procedureColumnsSchema, nil)
}

// PrimaryKeys always returns an empty cursor.
func (m *DatabaseMetaData) PrimaryKeys(ctx context.Context, catalog, schema *string, table string) (*ResultSet, error) {
	return m.result(ctx, primaryKeysSchema, nil)
}

// ImportedKeys always returns an empty cursor.
func (m *DatabaseMetaData) ImportedKeys(ctx context.Context, catalog, schema *string, table string) (*ResultSet, error) {
	return m.result(ctx, importedKeysSchema, nil)
}

func (m *DatabaseMetaData) DatabaseProductName(ctx context.Context) (string, error) {
	info, err := m.info(ctx)
	return info.ProductName, err
}

func (m *DatabaseMetaData) DatabaseProductVersion(ctx context.Context) (string, error) {
	info, err := m.info(ctx)
	return info.ProductVersion, err
}

func (m *DatabaseMetaData) DatabaseMajorVersion(ctx context.Context) (int, error) {
	info, err := m.info(ctx)
	return info.MajorVersion, err
}

func (m *DatabaseMetaData) DatabaseMinorVersion(ctx context.Context) (int, error) {
	info, err := m.info(ctx)
	return info.MinorVersion, err
}

// DriverName returns the name the database/sql adapter registers under.
func (m *DatabaseMetaData) DriverName() string {
	return DriverName
}
