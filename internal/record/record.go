package record

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"db-crud/internal/schema"
)

// Field is one column value of a Record.
type Field struct {
	Name  string
	Value any
}

// Record is one row in declared column order. Values are nil, int64,
// float64, string or time.Time.
type Record []Field

// Get returns the value of the named column.
func (r Record) Get(name string) (any, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Map returns the record as an unordered map.
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r))
	for _, f := range r {
		m[f.Name] = f.Value
	}
	return m
}

// MarshalJSON encodes the record as an object whose keys keep column order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// normalizeValue maps a driver value onto the record value space.
func normalizeValue(col *schema.Column, v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case []byte:
		return fromText(col, string(val))
	case string:
		if col.Kind == schema.KindInteger || col.Kind == schema.KindFloat {
			return fromText(col, val)
		}
		return val
	case time.Time:
		if col.DataType == "date" {
			return val.Format("2006-01-02")
		}
		return val
	case int:
		return int64(val)
	case int32:
		return int64(val)
	case int16:
		return int64(val)
	case int8:
		return int64(val)
	case uint8:
		return int64(val)
	case float32:
		return float64(val)
	case bool:
		if val {
			return int64(1)
		}
		return int64(0)
	default:
		return val
	}
}

// fromText parses numeric text the driver handed back as bytes or strings.
// Text that does not parse stays a string.
func fromText(col *schema.Column, s string) any {
	switch col.Kind {
	case schema.KindInteger:
		if n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			return n
		}
	case schema.KindFloat:
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f
		}
	}
	return s
}
