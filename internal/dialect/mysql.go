package dialect

import (
	"fmt"
)

type MysqlDialect struct{}

func (d *MysqlDialect) Name() string { return "mysql" }

func (d *MysqlDialect) GetTablesQuery() string {
	return `SELECT TABLE_NAME FROM information_schema.TABLES WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE' ORDER BY TABLE_NAME`
}

func (d *MysqlDialect) GetColumnsQuery() string {
	return `SELECT TABLE_NAME, COLUMN_NAME, DATA_TYPE, IS_NULLABLE, IF(COLUMN_KEY = 'PRI', 'PRI', '') AS COLUMN_KEY FROM information_schema.COLUMNS WHERE TABLE_SCHEMA = ? ORDER BY TABLE_NAME, ORDINAL_POSITION`
}

func (d *MysqlDialect) GetForeignKeysQuery() string {
	return `SELECT TABLE_NAME, CONSTRAINT_NAME, COLUMN_NAME, REFERENCED_TABLE_NAME, REFERENCED_COLUMN_NAME FROM information_schema.KEY_COLUMN_USAGE WHERE TABLE_SCHEMA = ? AND REFERENCED_TABLE_NAME IS NOT NULL ORDER BY TABLE_NAME, ORDINAL_POSITION`
}

func (d *MysqlDialect) Quote(ident string) string {
	return quoteWith(ident, "`", "`")
}

func (d *MysqlDialect) Placeholder(index int) string {
	return "?"
}

// InsertQuery never returns the key in-band; callers use LastInsertId.
func (d *MysqlDialect) InsertQuery(table string, cols []string, returning string) (string, bool) {
	if len(cols) == 0 {
		return fmt.Sprintf("INSERT INTO %s () VALUES ()", d.Quote(table)), false
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", d.Quote(table), QuoteList(d, cols), GeneratePlaceholders(len(cols), d.Placeholder)), false
}

func (d *MysqlDialect) SerialPrimaryKey(col string) string {
	return d.Quote(col) + " INTEGER AUTO_INCREMENT PRIMARY KEY"
}

func (d *MysqlDialect) NormalizeType(sqlType string) string {
	return DefaultNormalizeType(sqlType)
}

func (d *MysqlDialect) GetSchemaName(input string) string {
	return DefaultGetSchemaName(input)
}
