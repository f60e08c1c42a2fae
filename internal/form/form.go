// Package form turns reflected tables into editable field descriptors and
// maps entered values back into column values for the record accessor.
package form

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"db-crud/internal/record"
	"db-crud/internal/schema"

	"go.uber.org/zap"
)

var ErrValidation = errors.New("validation error")

// choiceSeparator joins key and label in an encoded choice.
const choiceSeparator = ". "

// Choice is one selectable referenced row.
type Choice struct {
	Key   any
	Label string
}

// String encodes the choice as "{key}. {label}".
func (c Choice) String() string {
	return FormatValue(c.Key) + choiceSeparator + c.Label
}

// Reference describes the target of a foreign-key field.
type Reference struct {
	Table   string
	Column  string
	Kind    schema.Kind // kind of the referenced column
	Choices []Choice
}

// Field is one editable column. Primary keys never become fields.
type Field struct {
	Name      string
	Kind      schema.Kind
	Nullable  bool
	Reference *Reference // nil unless the column is a foreign key
}

func (f Field) IsForeignKey() bool {
	return f.Reference != nil
}

// RowSource reads projected rows; *record.Accessor implements it.
type RowSource interface {
	GetColumns(ctx context.Context, table string, columns ...string) ([]record.Record, error)
}

// Build returns one Field per non-key column of table, in declared order.
// Foreign-key fields carry the choice list of the referenced table, labelled
// by its display column.
func Build(ctx context.Context, catalog *schema.Catalog, table string, src RowSource, logger *zap.Logger) ([]Field, error) {
	t, err := catalog.Table(table)
	if err != nil {
		return nil, err
	}

	fields := make([]Field, 0, len(t.Columns))
	for _, col := range t.Columns {
		if col.IsPK {
			continue
		}
		f := Field{Name: col.Name, Kind: col.Kind, Nullable: col.IsNullable}
		if fk := t.ForeignKey(col.Name); fk != nil {
			ref, err := buildReference(ctx, catalog, fk, src, logger)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", col.Name, err)
			}
			f.Reference = ref
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func buildReference(ctx context.Context, catalog *schema.Catalog, fk *schema.ForeignKey, src RowSource, logger *zap.Logger) (*Reference, error) {
	refTable, err := catalog.Table(fk.RefTable)
	if err != nil {
		return nil, err
	}
	refCol, err := refTable.Column(fk.RefColumn)
	if err != nil {
		return nil, err
	}

	columns := []string{refCol.Name}
	display, ok := schema.DisplayColumn(refTable)
	if !ok {
		logger.Warn("no display column, labelling choices by key", zap.String("table", refTable.Name))
	} else if display != refCol.Name {
		columns = append(columns, display)
	}

	rows, err := src.GetColumns(ctx, refTable.Name, columns...)
	if err != nil {
		return nil, err
	}

	ref := &Reference{
		Table:   refTable.Name,
		Column:  refCol.Name,
		Kind:    refCol.Kind,
		Choices: make([]Choice, 0, len(rows)),
	}
	for _, row := range rows {
		key, _ := row.Get(refCol.Name)
		label := FormatValue(key)
		if ok {
			v, _ := row.Get(display)
			label = FormatValue(v)
		}
		ref.Choices = append(ref.Choices, Choice{Key: key, Label: label})
	}
	return ref, nil
}

// ParseChoice extracts the key text from an encoded "{key}. {label}" choice.
func ParseChoice(s string) (string, error) {
	key, _, found := strings.Cut(s, choiceSeparator)
	if !found {
		key, found = strings.CutSuffix(s, ".")
	}
	key = strings.TrimSpace(key)
	if !found || key == "" {
		return "", fmt.Errorf("%w: malformed choice %q", ErrValidation, s)
	}
	return key, nil
}

// Values maps entered text back to column values. Plain fields pass through
// as strings (empty is null) for the accessor to coerce. Foreign-key fields
// decode the selected choice into the referenced key.
func Values(fields []Field, input map[string]string) (map[string]any, error) {
	known := make(map[string]Field, len(fields))
	for _, f := range fields {
		known[f.Name] = f
	}
	for name := range input {
		if _, ok := known[name]; !ok {
			return nil, fmt.Errorf("%w: unknown field %q", ErrValidation, name)
		}
	}

	values := make(map[string]any, len(input))
	for _, f := range fields {
		raw, ok := input[f.Name]
		if !ok {
			continue
		}
		if !f.IsForeignKey() {
			if strings.TrimSpace(raw) == "" {
				values[f.Name] = nil
			} else {
				values[f.Name] = raw
			}
			continue
		}

		if strings.TrimSpace(raw) == "" {
			if !f.Nullable {
				return nil, fmt.Errorf("%w: %s requires a selection", ErrValidation, f.Name)
			}
			values[f.Name] = nil
			continue
		}
		keyText, err := ParseChoice(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		key := f.Reference.Kind.Coerce(keyText)
		if f.Reference.Kind == schema.KindInteger {
			if _, isInt := key.(int64); !isInt {
				return nil, fmt.Errorf("%w: %s: %q is not a valid key", ErrValidation, f.Name, keyText)
			}
		}
		values[f.Name] = key
	}
	return values, nil
}

// Prefill renders an existing record as form input, one string per field.
// Foreign-key fields get the matching encoded choice.
func Prefill(fields []Field, rec record.Record) map[string]string {
	input := make(map[string]string, len(fields))
	for _, f := range fields {
		v, _ := rec.Get(f.Name)
		if v == nil {
			input[f.Name] = ""
			continue
		}
		if !f.IsForeignKey() {
			input[f.Name] = FormatValue(v)
			continue
		}
		text := FormatValue(v)
		choice := Choice{Key: v}
		for _, c := range f.Reference.Choices {
			if FormatValue(c.Key) == text {
				choice = c
				break
			}
		}
		input[f.Name] = choice.String()
	}
	return input
}

// FormatValue renders a record value as input text.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprint(val)
	}
}
