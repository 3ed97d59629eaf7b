package query

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/nnnkkk7/snowflake-bridge/pkg/types"
)

// Layouts used for temporal cells.
const (
	DateLayout         = "2006-01-02"
	TimestampNTZLayout = "2006-01-02T15:04:05.999999999"
	TimeLayout         = "15:04:05.999999999"
)

// Normalize converts a ResultSet into JSON-representable rows. It never fails:
// every cell is mapped by its column kind, with a string fallback for values
// the kind does not anticipate. Short rows are padded with nulls and extra
// cells are dropped so that every row carries exactly one value per column.
func Normalize(rs *ResultSet) NormalizedResult {
	if rs == nil {
		return NormalizedResult{Columns: []string{}, Rows: []map[string]any{}}
	}

	result := NormalizedResult{
		Columns: rs.ColumnNames(),
		Rows:    make([]map[string]any, 0, len(rs.Rows)),
	}

	for _, row := range rs.Rows {
		normalized := make(map[string]any, len(rs.Columns))
		for i, col := range rs.Columns {
			var cell any
			if i < len(row) {
				cell = row[i]
			}
			normalized[col.Name] = NormalizeValue(col.Kind, cell)
		}
		result.Rows = append(result.Rows, normalized)
	}

	return result
}

// NormalizeValue applies the serialization rule for kind to a single cell.
func NormalizeValue(kind types.CellKind, v any) any {
	if isNil(v) {
		return nil
	}

	switch kind {
	case types.KindNull:
		return nil
	case types.KindDate:
		if t, ok := v.(time.Time); ok {
			return t.Format(DateLayout)
		}
	case types.KindTimestamp:
		if t, ok := v.(time.Time); ok {
			return t.Format(TimestampNTZLayout)
		}
	case types.KindTimestampTZ:
		if t, ok := v.(time.Time); ok {
			return t.Format(time.RFC3339Nano)
		}
	case types.KindTime:
		if t, ok := v.(time.Time); ok {
			return t.Format(TimeLayout)
		}
	case types.KindUUID:
		if id, ok := toUUID(v); ok {
			return id.String()
		}
	case types.KindDecimal:
		if f, ok := toFloat(v); ok {
			return finiteOrString(f)
		}
	case types.KindInteger:
		if n, ok := toInteger(v); ok {
			return n
		}
	case types.KindFloat:
		if f, ok := toFloat(v); ok {
			return finiteOrString(f)
		}
	case types.KindText:
		switch s := v.(type) {
		case string:
			return s
		case []byte:
			return bytesToText(s)
		}
	}

	return normalizeOther(v)
}

// normalizeOther is the fallback for cells whose Go type does not match the
// declared kind, and for kinds with no dedicated rule.
func normalizeOther(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case string, bool, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return val
	case float32:
		return finiteOrString(float64(val))
	case float64:
		return finiteOrString(val)
	case []byte:
		return bytesToText(val)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case *big.Int:
		return bigIntValue(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeOther(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalizeOther(item)
		}
		return out
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// toUUID accepts the 16 raw bytes drivers hand out for UUID columns, as well
// as their textual form.
func toUUID(v any) (uuid.UUID, bool) {
	switch val := v.(type) {
	case uuid.UUID:
		return val, true
	case [16]byte:
		return uuid.UUID(val), true
	case []byte:
		if len(val) == 16 {
			id, err := uuid.FromBytes(val)
			return id, err == nil
		}
		id, err := uuid.ParseBytes(val)
		return id, err == nil
	case string:
		id, err := uuid.Parse(val)
		return id, err == nil
	}
	return uuid.UUID{}, false
}

// toInteger accepts native integers, integral strings and big integers.
// Values wider than 64 bits become json.Number so they keep every digit.
func toInteger(v any) (any, bool) {
	switch val := v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return val, true
	case *big.Int:
		return bigIntValue(val), true
	case float64:
		return finiteOrString(val), true
	case float32:
		return finiteOrString(float64(val)), true
	case []byte:
		return toInteger(string(val))
	case string:
		s := strings.TrimSpace(val)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}
		if b, ok := new(big.Int).SetString(s, 10); ok {
			return bigIntValue(b), true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return finiteOrString(f), true
		}
	}
	return nil, false
}

func bigIntValue(b *big.Int) any {
	if b.IsInt64() {
		return b.Int64()
	}
	return json.Number(b.String())
}

// toFloat converts any numeric representation to float64. Decimal types from
// drivers are handled through their Float64 method.
func toFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return f, err == nil
	case []byte:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(val)), 64)
		return f, err == nil
	case *big.Int:
		f, _ := new(big.Float).SetInt(val).Float64()
		return f, true
	case *big.Float:
		f, _ := val.Float64()
		return f, true
	case *big.Rat:
		f, _ := val.Float64()
		return f, true
	}
	return float64er(v)
}

type floatConverter interface {
	Float64() float64
}

// float64er calls a Float64 method declared on either the value or its pointer.
func float64er(v any) (float64, bool) {
	if fc, ok := v.(floatConverter); ok {
		return fc.Float64(), true
	}
	rv := reflect.ValueOf(v)
	ptr := reflect.New(rv.Type())
	ptr.Elem().Set(rv)
	if fc, ok := ptr.Interface().(floatConverter); ok {
		return fc.Float64(), true
	}
	return 0, false
}

// finiteOrString returns f unless it cannot be represented in JSON.
func finiteOrString(f float64) any {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	default:
		return f
	}
}

func bytesToText(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return hex.EncodeToString(b)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
