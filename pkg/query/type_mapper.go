package query

import (
	"database/sql"
	"strings"

	"github.com/nnnkkk7/snowflake-bridge/pkg/types"
)

// TypeMapper resolves driver type names to Snowflake wire types and cell kinds.
// kindOverrides classifies driver types more precisely than their wire type.
type TypeMapper struct {
	typeMapping   map[string]types.SnowflakeType
	kindOverrides map[string]types.CellKind
}

// NewTypeMapper creates a new type mapper with default mappings.
func NewTypeMapper() *TypeMapper {
	// gosnowflake already reports wire names (FIXED, REAL, TEXT, ...). The
	// offline DuckDB engine reports its own names, which are mapped here.
	return &TypeMapper{
		typeMapping: map[string]types.SnowflakeType{
			"BIGINT":                   types.TypeFixed,
			"INTEGER":                  types.TypeFixed,
			"INT":                      types.TypeFixed,
			"SMALLINT":                 types.TypeFixed,
			"TINYINT":                  types.TypeFixed,
			"HUGEINT":                  types.TypeFixed,
			"UBIGINT":                  types.TypeFixed,
			"UINTEGER":                 types.TypeFixed,
			"USMALLINT":                types.TypeFixed,
			"UTINYINT":                 types.TypeFixed,
			"DECIMAL":                  types.TypeDecimal,
			"NUMERIC":                  types.TypeDecimal,
			"DOUBLE":                   types.TypeReal,
			"FLOAT":                    types.TypeReal,
			"REAL":                     types.TypeReal,
			"VARCHAR":                  types.TypeText,
			"TEXT":                     types.TypeText,
			"STRING":                   types.TypeText,
			"UUID":                     types.TypeText,
			"INTERVAL":                 types.TypeText,
			"TIMESTAMP":                types.TypeTimestampNTZ,
			"TIMESTAMP_NS":             types.TypeTimestampNTZ,
			"TIMESTAMP_MS":             types.TypeTimestampNTZ,
			"TIMESTAMP_S":              types.TypeTimestampNTZ,
			"TIMESTAMPTZ":              types.TypeTimestampTZ,
			"TIMESTAMP WITH TIME ZONE": types.TypeTimestampTZ,
			"DATE":                     types.TypeDate,
			"TIME":                     types.TypeTime,
			"BOOLEAN":                  types.TypeBoolean,
			"BOOL":                     types.TypeBoolean,
			"BLOB":                     types.TypeBinary,
			"BYTEA":                    types.TypeBinary,
			"JSON":                     types.TypeVariant,
			"LIST":                     types.TypeArray,
			"STRUCT":                   types.TypeObject,
			"MAP":                      types.TypeObject,
		},
		kindOverrides: map[string]types.CellKind{
			"UUID": types.KindUUID,
		},
	}
}

// MapType converts a driver type name to its Snowflake wire equivalent.
// Parameters such as DECIMAL(10,2) are ignored; names that are already wire
// names pass through; anything else maps to an empty type.
func (m *TypeMapper) MapType(dbType string) types.SnowflakeType {
	name := baseTypeName(dbType)
	if strings.HasSuffix(name, "[]") {
		return types.TypeArray
	}

	if sfType, ok := m.typeMapping[name]; ok {
		return sfType
	}
	if sfType := types.SnowflakeType(name); sfType.IsKnown() {
		return sfType
	}
	return ""
}

// Kind classifies a driver type name with its declared scale.
func (m *TypeMapper) Kind(dbType string, scale int64) types.CellKind {
	if kind, ok := m.kindOverrides[baseTypeName(dbType)]; ok {
		return kind
	}
	return m.MapType(dbType).CellKind(scale)
}

// baseTypeName upper-cases dbType and drops parameters such as (10,2).
func baseTypeName(dbType string) string {
	name := strings.ToUpper(strings.TrimSpace(dbType))
	if strings.HasSuffix(name, "[]") {
		return name
	}
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = strings.TrimSpace(name[:i])
	}
	return name
}

// InferColumns builds column metadata from column names and the driver's
// column types. columnTypes may be nil or shorter than columns, in which case
// the remaining columns are classified as KindOther.
func (m *TypeMapper) InferColumns(columns []string, columnTypes []*sql.ColumnType) []Column {
	result := make([]Column, len(columns))

	for i, name := range columns {
		col := Column{
			Name:     name,
			Kind:     types.KindOther,
			Nullable: true,
		}

		if i < len(columnTypes) && columnTypes[i] != nil {
			ct := columnTypes[i]
			col.DatabaseType = ct.DatabaseTypeName()
			if precision, scale, ok := ct.DecimalSize(); ok {
				col.Precision = precision
				col.Scale = scale
			}
			if nullable, ok := ct.Nullable(); ok {
				col.Nullable = nullable
			}
			col.Kind = m.Kind(col.DatabaseType, col.Scale)
		}

		result[i] = col
	}

	return result
}

// defaultTypeMapper is the package-level type mapper instance.
var defaultTypeMapper = NewTypeMapper()

// MapDatabaseType is a convenience function using the default mapper.
func MapDatabaseType(dbType string) types.SnowflakeType {
	return defaultTypeMapper.MapType(dbType)
}

// InferColumnMetadata is a convenience function using the default mapper.
func InferColumnMetadata(columns []string, columnTypes []*sql.ColumnType) []Column {
	return defaultTypeMapper.InferColumns(columns, columnTypes)
}
