package seed

import (
	"context"
	"errors"

	"db-crud/internal/record"
	"db-crud/internal/schema"

	"go.uber.org/zap"
)

// Result reports how one table was filled.
type Result struct {
	Table    string
	Target   int
	Inserted int
	Status   string
	ErrorMsg string
}

// Fill inserts count generated rows into every table through acc. Tables are
// expected in dependency order: foreign-key columns draw from the keys
// already present in the referenced table. A table whose required
// reference has no rows to point at is skipped.
func Fill(ctx context.Context, acc *record.Accessor, tables []*schema.Table, count int, onProgress func(), logger *zap.Logger) ([]Result, error) {
	var results []Result
	keyPool := make(map[string][]any) // "table.column" -> existing values

	for _, t := range tables {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		res := Result{Table: t.Name, Target: count, Status: "OK"}
		inserted, attempts := 0, 0
		for inserted < count && attempts < count*3 {
			attempts++
			values, ok, err := generateRow(ctx, acc, t, keyPool, attempts)
			if err != nil {
				return results, err
			}
			if !ok {
				res.Status = "SKIPPED"
				res.ErrorMsg = "required reference has no rows"
				break
			}

			if _, err := acc.InsertRecord(ctx, t.Name, values); err != nil {
				if res.ErrorMsg == "" {
					res.ErrorMsg = err.Error()
				}
				logger.Debug("generated row rejected", zap.String("table", t.Name), zap.Error(err))
				continue
			}
			inserted++
			if onProgress != nil {
				onProgress()
			}
		}

		res.Inserted = inserted
		if res.Status == "OK" && inserted < count {
			res.Status = "MISSING DATA"
		}
		logger.Info("table filled",
			zap.String("table", t.Name),
			zap.Int("inserted", inserted),
			zap.String("status", res.Status))
		results = append(results, res)
	}
	return results, nil
}

// generateRow builds the values of one row. ok is false when a non-nullable
// foreign key has nothing to reference.
func generateRow(ctx context.Context, acc *record.Accessor, t *schema.Table, pool map[string][]any, index int) (map[string]any, bool, error) {
	values := make(map[string]any, len(t.Columns))
	for _, col := range t.Columns {
		if col.IsPK && col.Kind == schema.KindInteger {
			continue // serial key
		}

		fk := t.ForeignKey(col.Name)
		if fk == nil {
			if v := GenerateValue(col, t.Name); v != nil {
				values[col.Name] = v
			}
			continue
		}

		keys, err := referencedKeys(ctx, acc, fk, pool)
		if err != nil {
			return nil, false, err
		}
		if len(keys) == 0 {
			if col.IsNullable {
				values[col.Name] = nil
				continue
			}
			return nil, false, nil
		}
		values[col.Name] = keys[(index+seededRand.Intn(len(keys)))%len(keys)]
	}
	return values, true, nil
}

// referencedKeys loads, once per fill, the values a foreign key may point at.
func referencedKeys(ctx context.Context, acc *record.Accessor, fk *schema.ForeignKey, pool map[string][]any) ([]any, error) {
	poolKey := fk.RefTable + "." + fk.RefColumn
	if keys, ok := pool[poolKey]; ok && len(keys) > 0 {
		return keys, nil
	}

	rows, err := acc.GetColumns(ctx, fk.RefTable, fk.RefColumn)
	if errors.Is(err, schema.ErrTableNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	keys := make([]any, 0, len(rows))
	for _, row := range rows {
		if v, _ := row.Get(fk.RefColumn); v != nil {
			keys = append(keys, v)
		}
	}
	pool[poolKey] = keys
	return keys, nil
}
