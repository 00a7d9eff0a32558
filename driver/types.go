package driver

import (
	"math"
	"strings"

	"goDBDriver/api"
)

// SQLType is a java.sql.Types compatible type code.
type SQLType int

const (
	TypeNull      SQLType = 0
	TypeTinyInt   SQLType = -6
	TypeSmallInt  SQLType = 5
	TypeInteger   SQLType = 4
	TypeBigInt    SQLType = -5
	TypeFloat     SQLType = 6
	TypeDouble    SQLType = 8
	TypeDecimal   SQLType = 3
	TypeVarchar   SQLType = 12
	TypeBoolean   SQLType = 16
	TypeTimestamp SQLType = 93
)

type typeInfo struct {
	sqlType     SQLType
	displaySize int
	precision   int
	scale       int
	numeric     bool
}

var typeInfos = map[string]typeInfo{
	api.TypeNull:      {TypeNull, 4, 0, 0, false},
	api.TypeTinyInt:   {TypeTinyInt, 4, 3, 0, true},
	api.TypeSmallInt:  {TypeSmallInt, 6, 5, 0, true},
	api.TypeInt:       {TypeInteger, 11, 10, 0, true},
	api.TypeBigInt:    {TypeBigInt, 20, 19, 0, true},
	api.TypeFloat:     {TypeFloat, 24, 7, 7, true},
	api.TypeDouble:    {TypeDouble, 25, 15, 15, true},
	api.TypeBoolean:   {TypeBoolean, 1, 1, 0, false},
	api.TypeString:    {TypeVarchar, math.MaxInt32, math.MaxInt32, 0, false},
	api.TypeTimestamp: {TypeTimestamp, 29, 29, 9, false},
	api.TypeDecimal:   {TypeDecimal, math.MaxInt32, math.MaxInt32, math.MaxInt32, true},
}

// typeNames lists the engine types in TypeInfo order.
var typeNames = []string{
	api.TypeNull, api.TypeBoolean, api.TypeTinyInt, api.TypeSmallInt, api.TypeInt,
	api.TypeBigInt, api.TypeFloat, api.TypeDouble, api.TypeString, api.TypeTimestamp,
	api.TypeDecimal,
}

func lookupType(name string) typeInfo {
	if info, ok := typeInfos[strings.ToLower(name)]; ok {
		return info
	}
	return typeInfos[api.TypeString]
}

// SQLTypeOf returns the type code of an engine type name. Unknown names
// map to TypeVarchar.
func SQLTypeOf(typeName string) SQLType {
	return lookupType(typeName).sqlType
}

// ColumnDescriptor describes one cursor column.
type ColumnDescriptor struct {
	Name        string
	Label       string
	TypeName    string
	SQLType     SQLType
	DisplaySize int
	Precision   int
	Scale       int
	Nullable    bool
}

func describeColumn(c api.Column) ColumnDescriptor {
	info := lookupType(c.Type)
	return ColumnDescriptor{
		Name:        c.Name,
		Label:       c.Name,
		TypeName:    c.Type,
		SQLType:     info.sqlType,
		DisplaySize: info.displaySize,
		Precision:   info.precision,
		Scale:       info.scale,
		Nullable:    true,
	}
}
