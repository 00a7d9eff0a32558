package driver

import (
	"strings"
)

// Native catalog object types.
const (
	ManagedTable  = "MANAGED_TABLE"
	ExternalTable = "EXTERNAL_TABLE"
	VirtualView   = "VIRTUAL_VIEW"
	IndexTable    = "INDEX_TABLE"
)

// TableTypeMapping translates native object types into the vocabulary
// reported by the catalog.
type TableTypeMapping int

const (
	// TableTypeNative reports native types unchanged.
	TableTypeNative TableTypeMapping = iota
	// TableTypeClassic reports TABLE and VIEW.
	TableTypeClassic
)

// ParseTableTypeMapping parses NATIVE or CLASSIC, ignoring case.
func ParseTableTypeMapping(s string) (TableTypeMapping, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "NATIVE":
		return TableTypeNative, nil
	case "CLASSIC":
		return TableTypeClassic, nil
	}
	return TableTypeNative, newError(InvalidArgument, "Invalid table type mapping: %s", s)
}

func (m TableTypeMapping) String() string {
	if m == TableTypeClassic {
		return "CLASSIC"
	}
	return "NATIVE"
}

// ClientType maps a native type.
func (m TableTypeMapping) ClientType(native string) string {
	if m != TableTypeClassic {
		return native
	}
	switch native {
	case ManagedTable, ExternalTable, IndexTable:
		return "TABLE"
	case VirtualView:
		return "VIEW"
	}
	return native
}

// ClientTypes lists every type the mapping can report.
func (m TableTypeMapping) ClientTypes() []string {
	if m == TableTypeClassic {
		return []string{"TABLE", "VIEW"}
	}
	return []string{ManagedTable, ExternalTable, VirtualView, IndexTable}
}
