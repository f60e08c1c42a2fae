package dialect

import (
	"fmt"
	"strings"
)

type OracleDialect struct{}

// Oracle reflects the current user's tables; the schema argument is bound but
// only consumed by a dummy predicate so all dialects share one call shape.

func (d *OracleDialect) Name() string { return "oracle" }

func (d *OracleDialect) GetTablesQuery() string {
	return `SELECT TABLE_NAME FROM USER_TABLES WHERE :1 IS NOT NULL ORDER BY TABLE_NAME`
}

func (d *OracleDialect) GetColumnsQuery() string {
	return `
SELECT
    t.TABLE_NAME,
    t.COLUMN_NAME,
    CASE
        WHEN t.DATA_TYPE = 'NUMBER' AND COALESCE(t.DATA_SCALE, 0) > 0 THEN 'DECIMAL'
        WHEN t.DATA_TYPE = 'NUMBER' THEN 'INTEGER'
        ELSE t.DATA_TYPE
    END,
    CASE WHEN t.NULLABLE = 'Y' THEN 'YES' ELSE 'NO' END,
    CASE WHEN p.CONSTRAINT_NAME IS NOT NULL THEN 'PRI' ELSE '' END
FROM USER_TAB_COLUMNS t
LEFT JOIN (
    SELECT cc.TABLE_NAME, cc.COLUMN_NAME, cc.CONSTRAINT_NAME
    FROM USER_CONS_COLUMNS cc
    JOIN USER_CONSTRAINTS uc ON cc.CONSTRAINT_NAME = uc.CONSTRAINT_NAME
    WHERE uc.CONSTRAINT_TYPE = 'P'
) p ON t.TABLE_NAME = p.TABLE_NAME AND t.COLUMN_NAME = p.COLUMN_NAME
WHERE :1 IS NOT NULL
ORDER BY t.TABLE_NAME, t.COLUMN_ID`
}

func (d *OracleDialect) GetForeignKeysQuery() string {
	return `
SELECT
    c.TABLE_NAME,
    c.CONSTRAINT_NAME,
    cc.COLUMN_NAME,
    r.TABLE_NAME AS REF_TABLE,
    rcc.COLUMN_NAME AS REF_COLUMN
FROM USER_CONSTRAINTS c
JOIN USER_CONS_COLUMNS cc
    ON c.CONSTRAINT_NAME = cc.CONSTRAINT_NAME
    AND c.OWNER = cc.OWNER
JOIN USER_CONSTRAINTS r
    ON c.R_CONSTRAINT_NAME = r.CONSTRAINT_NAME
    AND c.R_OWNER = r.OWNER
JOIN USER_CONS_COLUMNS rcc
    ON r.CONSTRAINT_NAME = rcc.CONSTRAINT_NAME
    AND r.OWNER = rcc.OWNER
    AND cc.POSITION = rcc.POSITION
WHERE c.CONSTRAINT_TYPE = 'R'
AND :1 IS NOT NULL`
}

func (d *OracleDialect) Quote(ident string) string {
	return quoteWith(ident, `"`, `"`)
}

func (d *OracleDialect) Placeholder(index int) string {
	// Oracle uses :1, :2, etc. (1-based index)
	return fmt.Sprintf(":%d", index+1)
}

// InsertQuery does not report generated keys; RETURNING ... INTO needs an out
// bind that the generic insert path does not use.
func (d *OracleDialect) InsertQuery(table string, cols []string, returning string) (string, bool) {
	if len(cols) == 0 {
		// Oracle has no DEFAULT VALUES; insert a DEFAULT into the key column.
		target := returning
		if target == "" {
			target = "ID"
		}
		return fmt.Sprintf("INSERT INTO %s (%s) VALUES (DEFAULT)", d.Quote(table), d.Quote(target)), false
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.Quote(table),
		QuoteList(d, cols),
		GeneratePlaceholders(len(cols), d.Placeholder)), false
}

func (d *OracleDialect) SerialPrimaryKey(col string) string {
	return d.Quote(col) + " NUMBER GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY"
}

func (d *OracleDialect) NormalizeType(sqlType string) string {
	s := DefaultNormalizeType(sqlType)
	switch {
	case strings.Contains(s, "varchar") || s == "clob" || s == "nclob":
		return "varchar"
	case strings.HasPrefix(s, "timestamp"):
		return "timestamp"
	default:
		return s
	}
}

func (d *OracleDialect) GetSchemaName(input string) string {
	if input == "" {
		// Any non-null value satisfies the ":1 IS NOT NULL" predicates.
		return "USER"
	}
	return input
}
