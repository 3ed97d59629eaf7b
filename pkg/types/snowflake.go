// Package types provides Snowflake wire type names and their classification into
// the cell kinds the result normalizer understands.
package types

// SnowflakeType is a wire type name as reported in the driver's column metadata.
type SnowflakeType string

// Wire type names.
const (
	TypeFixed        SnowflakeType = "FIXED"
	TypeNumber       SnowflakeType = "NUMBER"
	TypeDecimal      SnowflakeType = "DECIMAL"
	TypeNumeric      SnowflakeType = "NUMERIC"
	TypeReal         SnowflakeType = "REAL"
	TypeFloat        SnowflakeType = "FLOAT"
	TypeDouble       SnowflakeType = "DOUBLE"
	TypeText         SnowflakeType = "TEXT"
	TypeVarchar      SnowflakeType = "VARCHAR"
	TypeBoolean      SnowflakeType = "BOOLEAN"
	TypeDate         SnowflakeType = "DATE"
	TypeTime         SnowflakeType = "TIME"
	TypeTimestamp    SnowflakeType = "TIMESTAMP"
	TypeTimestampNTZ SnowflakeType = "TIMESTAMP_NTZ"
	TypeTimestampLTZ SnowflakeType = "TIMESTAMP_LTZ"
	TypeTimestampTZ  SnowflakeType = "TIMESTAMP_TZ"
	TypeVariant      SnowflakeType = "VARIANT"
	TypeObject       SnowflakeType = "OBJECT"
	TypeArray        SnowflakeType = "ARRAY"
	TypeBinary       SnowflakeType = "BINARY"
	TypeGeography    SnowflakeType = "GEOGRAPHY"
)

// CellKind is the declared type of a result cell, which decides how it is
// serialized.
type CellKind string

// Cell kinds. KindUUID has no wire type: Snowflake returns UUIDs as TEXT and
// only the offline engine reports them natively.
const (
	KindNull        CellKind = "null"
	KindText        CellKind = "text"
	KindInteger     CellKind = "integer"
	KindFloat       CellKind = "float"
	KindDecimal     CellKind = "decimal"
	KindDate        CellKind = "date"
	KindTimestamp   CellKind = "timestamp"
	KindTimestampTZ CellKind = "timestamp_tz"
	KindTime        CellKind = "time"
	KindUUID        CellKind = "uuid"
	KindOther       CellKind = "other"
)

// wireKinds holds every known wire type. FIXED and NUMBER are refined by scale.
var wireKinds = map[SnowflakeType]CellKind{
	TypeFixed:        KindInteger,
	TypeNumber:       KindInteger,
	TypeDecimal:      KindDecimal,
	TypeNumeric:      KindDecimal,
	TypeReal:         KindFloat,
	TypeFloat:        KindFloat,
	TypeDouble:       KindFloat,
	TypeText:         KindText,
	TypeVarchar:      KindText,
	TypeDate:         KindDate,
	TypeTimestamp:    KindTimestamp,
	TypeTimestampNTZ: KindTimestamp,
	TypeTimestampLTZ: KindTimestampTZ,
	TypeTimestampTZ:  KindTimestampTZ,
	TypeBoolean:      KindOther,
	TypeTime:         KindTime,
	TypeVariant:      KindOther,
	TypeObject:       KindOther,
	TypeArray:        KindOther,
	TypeBinary:       KindOther,
	TypeGeography:    KindOther,
}

// CellKind classifies the type. scale is the declared fractional digit count
// and only matters for FIXED and NUMBER: zero means integer, anything else
// decimal. Unknown types are KindOther.
func (t SnowflakeType) CellKind(scale int64) CellKind {
	kind, ok := wireKinds[t]
	if !ok {
		return KindOther
	}
	if kind == KindInteger && scale > 0 {
		return KindDecimal
	}
	return kind
}

// IsKnown reports whether t is one of the wire type names above.
func (t SnowflakeType) IsKnown() bool {
	_, ok := wireKinds[t]
	return ok
}
