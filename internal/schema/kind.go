package schema

import (
	"strconv"
	"strings"
)

// Kind is the semantic tag of a declared column type.
type Kind int

const (
	KindOther Kind = iota
	KindInteger
	KindFloat
	KindText
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindDate:
		return "date"
	default:
		return "other"
	}
}

// KindOf classifies a normalized declared type.
func KindOf(dataType string) Kind {
	t := strings.ToLower(dataType)
	switch {
	case t == "":
		return KindOther
	case strings.Contains(t, "interval") || strings.Contains(t, "point"):
		return KindOther
	case strings.Contains(t, "int") || strings.Contains(t, "serial"):
		return KindInteger
	case strings.Contains(t, "decimal") || strings.Contains(t, "numeric") || strings.Contains(t, "number") ||
		strings.Contains(t, "float") || strings.Contains(t, "double") || strings.Contains(t, "real") ||
		strings.Contains(t, "money"):
		return KindFloat
	case strings.Contains(t, "char") || strings.Contains(t, "text") || strings.Contains(t, "clob") ||
		strings.Contains(t, "string"):
		return KindText
	case strings.Contains(t, "date") || strings.Contains(t, "time"):
		return KindDate
	default:
		return KindOther
	}
}

// Coerce converts raw user input into a value for a column of kind k.
// Empty input is null. Numeric kinds are parsed best-effort: when parsing
// fails the raw string is returned unchanged and the storage engine decides.
func (k Kind) Coerce(raw string) any {
	if raw == "" {
		return nil
	}
	switch k {
	case KindInteger:
		if n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64); err == nil {
			return n
		}
		return raw
	case KindFloat:
		if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			return f
		}
		return raw
	default:
		return raw
	}
}

var variableTextTypes = map[string]bool{
	"varchar":           true,
	"character varying": true,
	"nvarchar":          true,
	"varchar2":          true,
	"nvarchar2":         true,
	"text":              true,
	"ntext":             true,
	"tinytext":          true,
	"mediumtext":        true,
	"longtext":          true,
	"clob":              true,
	"string":            true,
}

// IsVariableText reports whether the column is a variable-length text type.
func (c *Column) IsVariableText() bool {
	return variableTextTypes[c.DataType]
}
