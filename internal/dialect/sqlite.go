package dialect

import (
	"fmt"
	"strings"
)

// SqliteDialect reflects through the pragma table-valued functions so the
// three metadata queries keep the same row shape as information_schema.
type SqliteDialect struct{}

func (d *SqliteDialect) Name() string { return "sqlite" }

func (d *SqliteDialect) GetTablesQuery() string {
	return `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' AND ? IS NOT NULL ORDER BY name`
}

func (d *SqliteDialect) GetColumnsQuery() string {
	return `
SELECT
    m.name,
    p.name,
    p.type,
    CASE WHEN p."notnull" = 0 AND p.pk = 0 THEN 'YES' ELSE 'NO' END,
    CASE WHEN p.pk > 0 THEN 'PRI' ELSE '' END
FROM sqlite_master m
JOIN pragma_table_info(m.name) p
WHERE m.type = 'table' AND m.name NOT LIKE 'sqlite_%' AND ? IS NOT NULL
ORDER BY m.name, p.cid`
}

// GetForeignKeysQuery may report a NULL referenced column when the constraint
// was declared against the parent's implicit primary key.
func (d *SqliteDialect) GetForeignKeysQuery() string {
	return `
SELECT
    m.name,
    'fk_' || m.name || '_' || p.id,
    p."from",
    p."table",
    p."to"
FROM sqlite_master m
JOIN pragma_foreign_key_list(m.name) p
WHERE m.type = 'table' AND m.name NOT LIKE 'sqlite_%' AND ? IS NOT NULL
ORDER BY m.name, p.id, p.seq`
}

func (d *SqliteDialect) Quote(ident string) string {
	return quoteWith(ident, `"`, `"`)
}

func (d *SqliteDialect) Placeholder(index int) string {
	return "?"
}

func (d *SqliteDialect) InsertQuery(table string, cols []string, returning string) (string, bool) {
	var b strings.Builder
	b.WriteString("INSERT INTO " + d.Quote(table))
	if len(cols) == 0 {
		b.WriteString(" DEFAULT VALUES")
	} else {
		fmt.Fprintf(&b, " (%s) VALUES (%s)", QuoteList(d, cols), GeneratePlaceholders(len(cols), d.Placeholder))
	}
	if returning == "" {
		return b.String(), false
	}
	b.WriteString(" RETURNING " + d.Quote(returning))
	return b.String(), true
}

func (d *SqliteDialect) SerialPrimaryKey(col string) string {
	return d.Quote(col) + " INTEGER PRIMARY KEY"
}

func (d *SqliteDialect) NormalizeType(sqlType string) string {
	return DefaultNormalizeType(sqlType)
}

func (d *SqliteDialect) GetSchemaName(input string) string {
	if input == "" {
		return "main"
	}
	return input
}
