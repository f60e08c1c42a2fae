// Package record implements generic CRUD over any table of a reflected
// catalog. Nothing here knows about a particular schema: table and column
// names are resolved against the catalog and always quoted, values are
// always bound.
package record

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"db-crud/internal/changefeed"
	"db-crud/internal/dialect"
	"db-crud/internal/schema"

	"go.uber.org/zap"
)

// Accessor is stateless apart from its collaborators; it is safe for
// concurrent use.
type Accessor struct {
	db        *sql.DB
	dialect   dialect.Dialect
	catalog   *schema.Catalog
	publisher changefeed.Publisher
	logger    *zap.Logger
}

// NewAccessor wires an accessor. A nil publisher disables the change feed.
func NewAccessor(db *sql.DB, d dialect.Dialect, catalog *schema.Catalog, publisher changefeed.Publisher, logger *zap.Logger) *Accessor {
	if publisher == nil {
		publisher = changefeed.Nop{}
	}
	return &Accessor{
		db:        db,
		dialect:   d,
		catalog:   catalog,
		publisher: publisher,
		logger:    logger,
	}
}

// Catalog returns the catalog the accessor resolves names against.
func (a *Accessor) Catalog() *schema.Catalog {
	return a.catalog
}

// GetAllTables returns the names of every reflected table.
func (a *Accessor) GetAllTables() []string {
	return a.catalog.Tables()
}

// GetByID returns the row whose primary key equals id.
func (a *Accessor) GetByID(ctx context.Context, table, id string) (Record, error) {
	t, pk, err := a.keyed(table)
	if err != nil {
		return nil, err
	}
	key := pk.Kind.Coerce(id)
	if key == nil {
		return nil, fmt.Errorf("%w: %s with empty %s", ErrNotFound, t.Name, pk.Name)
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s",
		dialect.QuoteList(a.dialect, t.ColumnNames()), a.dialect.Quote(t.Name),
		a.dialect.Quote(pk.Name), a.dialect.Placeholder(0))

	records, err := a.query(ctx, t.Columns, query, 2, key)
	if err != nil {
		return nil, err
	}
	switch len(records) {
	case 0:
		return nil, fmt.Errorf("%w: %s with %s=%s", ErrNotFound, t.Name, pk.Name, id)
	case 1:
		return records[0], nil
	default:
		return nil, fmt.Errorf("%w: %s with %s=%s", ErrAmbiguousKey, t.Name, pk.Name, id)
	}
}

// GetAll returns every row of the table.
func (a *Accessor) GetAll(ctx context.Context, table string) ([]Record, error) {
	return a.GetColumns(ctx, table)
}

// GetColumns returns every row of the table projected onto columns, or onto
// all columns when none are given.
func (a *Accessor) GetColumns(ctx context.Context, table string, columns ...string) ([]Record, error) {
	t, err := a.catalog.Table(table)
	if err != nil {
		return nil, err
	}

	cols := t.Columns
	if len(columns) > 0 {
		cols = make([]*schema.Column, 0, len(columns))
		for _, name := range columns {
			c, err := t.Column(name)
			if err != nil {
				return nil, err
			}
			cols = append(cols, c)
		}
	}

	query := fmt.Sprintf("SELECT %s FROM %s", dialect.QuoteList(a.dialect, columnNames(cols)), a.dialect.Quote(t.Name))
	return a.query(ctx, cols, query, 0)
}

// GetByField returns every row whose field equals value, coerced the same way
// writes are. An empty value matches NULL.
func (a *Accessor) GetByField(ctx context.Context, table, field, value string) ([]Record, error) {
	t, err := a.catalog.Table(table)
	if err != nil {
		return nil, err
	}
	col, err := t.Column(field)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s",
		dialect.QuoteList(a.dialect, t.ColumnNames()), a.dialect.Quote(t.Name), a.dialect.Quote(col.Name))
	var args []any
	if v := col.Kind.Coerce(value); v == nil {
		query += " IS NULL"
	} else {
		query += " = " + a.dialect.Placeholder(0)
		args = append(args, v)
	}

	records, err := a.query(ctx, t.Columns, query, 0, args...)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s with %s=%s", ErrNotFound, t.Name, col.Name, value)
	}
	return records, nil
}

// SetField updates one column of the row whose primary key equals id.
// Empty input stores NULL.
func (a *Accessor) SetField(ctx context.Context, table, id, field, value string) error {
	return a.UpdateRecord(ctx, table, id, map[string]any{field: value})
}

// UpdateRecord updates several columns of one row in a single statement.
// String values are coerced by column kind, other values are bound as is.
// Exactly one row must be affected: none is ErrNotFound, several roll the
// statement back with ErrAmbiguousKey.
func (a *Accessor) UpdateRecord(ctx context.Context, table, id string, values map[string]any) error {
	t, pk, err := a.keyed(table)
	if err != nil {
		return err
	}
	cols, args, err := bindValues(t, values)
	if err != nil {
		return err
	}
	key := pk.Kind.Coerce(id)
	if key == nil {
		return fmt.Errorf("%w: %s with empty %s", ErrNotFound, t.Name, pk.Name)
	}
	if len(cols) == 0 {
		_, err := a.GetByID(ctx, table, id)
		return err
	}

	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = a.dialect.Quote(c) + " = " + a.dialect.Placeholder(i)
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		a.dialect.Quote(t.Name), strings.Join(sets, ", "),
		a.dialect.Quote(pk.Name), a.dialect.Placeholder(len(cols)))
	args = append(args, key)

	if err := a.execOne(ctx, t, pk, id, query, args); err != nil {
		return err
	}

	a.publish(ctx, changefeed.Event{
		Table:  t.Name,
		Op:     changefeed.OpUpdate,
		Key:    key,
		Values: zipValues(cols, args),
	})
	return nil
}

// DeleteRecord deletes the row whose primary key equals id.
func (a *Accessor) DeleteRecord(ctx context.Context, table, id string) error {
	t, pk, err := a.keyed(table)
	if err != nil {
		return err
	}
	key := pk.Kind.Coerce(id)
	if key == nil {
		return fmt.Errorf("%w: %s with empty %s", ErrNotFound, t.Name, pk.Name)
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE %s = %s",
		a.dialect.Quote(t.Name), a.dialect.Quote(pk.Name), a.dialect.Placeholder(0))
	if err := a.execOne(ctx, t, pk, id, query, []any{key}); err != nil {
		return err
	}

	a.publish(ctx, changefeed.Event{Table: t.Name, Op: changefeed.OpDelete, Key: key})
	return nil
}

// InsertRecord inserts one row built from values and returns its primary
// key when the engine reports it, nil otherwise.
//
// Coercion is lenient: numeric-looking strings become numbers, unparsable
// ones are stored as given and the engine decides. Any database error is
// reported as ErrInsertFailed carrying the driver message.
func (a *Accessor) InsertRecord(ctx context.Context, table string, values map[string]any) (any, error) {
	t, err := a.catalog.Table(table)
	if err != nil {
		return nil, err
	}
	cols, args, err := bindValues(t, values)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInsertFailed, err)
	}

	pk, _ := t.PrimaryKey()
	returning := ""
	if pk != nil {
		returning = pk.Name
	}
	query, returnsKey := a.dialect.InsertQuery(t.Name, cols, returning)
	a.logger.Debug("insert", zap.String("table", t.Name), zap.String("sql", query))

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var key any
	if returnsKey {
		var raw any
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&raw); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInsertFailed, t.Name, err)
		}
		key = normalizeValue(pk, raw)
	} else {
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInsertFailed, t.Name, err)
		}
		if pk != nil {
			if id, err := res.LastInsertId(); err == nil && id != 0 {
				key = id
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInsertFailed, t.Name, err)
	}

	// An explicitly supplied key wins over whatever the driver reported.
	if pk != nil {
		for i, c := range cols {
			if c == pk.Name && args[i] != nil {
				key = args[i]
			}
		}
	}

	a.publish(ctx, changefeed.Event{
		Table:  t.Name,
		Op:     changefeed.OpInsert,
		Key:    key,
		Values: zipValues(cols, args),
	})
	return key, nil
}

// keyed resolves a table and its single primary key.
func (a *Accessor) keyed(table string) (*schema.Table, *schema.Column, error) {
	t, err := a.catalog.Table(table)
	if err != nil {
		return nil, nil, err
	}
	pk, err := t.PrimaryKey()
	if err != nil {
		return nil, nil, err
	}
	return t, pk, nil
}

// query runs a SELECT and scans up to limit rows (0 = all) into records.
func (a *Accessor) query(ctx context.Context, cols []*schema.Column, query string, limit int, args ...any) ([]Record, error) {
	a.logger.Debug("query", zap.String("sql", query))

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		rec := make(Record, len(cols))
		for i, c := range cols {
			rec[i] = Field{Name: c.Name, Value: normalizeValue(c, raw[i])}
		}
		records = append(records, rec)

		if limit > 0 && len(records) >= limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return records, nil
}

// execOne runs a keyed UPDATE or DELETE in its own transaction and commits
// only when exactly one row was affected.
func (a *Accessor) execOne(ctx context.Context, t *schema.Table, pk *schema.Column, id, query string, args []any) error {
	a.logger.Debug("exec", zap.String("table", t.Name), zap.String("sql", query))

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", t.Name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	switch {
	case n == 0:
		// MySQL counts changed rows only; an update to identical values
		// reports 0 for a row that exists.
		exists, err := a.keyExists(ctx, tx, t, pk, args[len(args)-1])
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: %s with %s=%s", ErrNotFound, t.Name, pk.Name, id)
		}
	case n > 1:
		return fmt.Errorf("%w: %s with %s=%s (%d rows)", ErrAmbiguousKey, t.Name, pk.Name, id, n)
	}
	return tx.Commit()
}

func (a *Accessor) keyExists(ctx context.Context, tx *sql.Tx, t *schema.Table, pk *schema.Column, key any) (bool, error) {
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE %s = %s",
		a.dialect.Quote(t.Name), a.dialect.Quote(pk.Name), a.dialect.Placeholder(0))
	rows, err := tx.QueryContext(ctx, query, key)
	if err != nil {
		return false, fmt.Errorf("%s: %w", t.Name, err)
	}
	defer rows.Close()
	return rows.Next(), rows.Err()
}

// publish reports a committed write. Failures are logged, never returned:
// the write itself already happened.
func (a *Accessor) publish(ctx context.Context, ev changefeed.Event) {
	ev.At = time.Now().UTC()
	if err := a.publisher.Publish(ctx, ev); err != nil {
		a.logger.Warn("failed to publish change event",
			zap.String("table", ev.Table),
			zap.String("op", string(ev.Op)),
			zap.Error(err))
	}
}

// bindValues validates values against the table and returns the columns in
// declared order with their coerced arguments.
func bindValues(t *schema.Table, values map[string]any) ([]string, []any, error) {
	for name := range values {
		if _, err := t.Column(name); err != nil {
			return nil, nil, err
		}
	}

	var cols []string
	var args []any
	for _, c := range t.Columns {
		v, ok := values[c.Name]
		if !ok {
			continue
		}
		cols = append(cols, c.Name)
		args = append(args, coerce(c, v))
	}
	return cols, args, nil
}

func coerce(c *schema.Column, v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		return c.Kind.Coerce(val)
	default:
		return val
	}
}

func zipValues(cols []string, args []any) map[string]any {
	m := make(map[string]any, len(cols))
	for i, c := range cols {
		m[c] = args[i]
	}
	return m
}

func columnNames(cols []*schema.Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}
