package dialect

// Dialect abstracts database-specific SQL.
type Dialect interface {
	// Name is the database/sql driver name the dialect belongs to.
	Name() string

	// Metadata Queries (Schema Introspection)
	//
	// Every query takes the resolved schema name as its single bound argument.
	// Tables: (table_name)
	// Columns: (table_name, column_name, data_type, is_nullable YES/NO, column_key PRI or '')
	// Foreign keys: (table_name, constraint_name, column_name, referenced_table, referenced_column)
	GetTablesQuery() string
	GetColumnsQuery() string
	GetForeignKeysQuery() string

	// Query Generation
	Quote(ident string) string
	Placeholder(index int) string // 0-based index; returns ?, $1, @p1, :1
	InsertQuery(table string, cols []string, returning string) (query string, returnsKey bool)

	// DDL used by the sample schema bootstrap.
	SerialPrimaryKey(col string) string

	// Helpers
	NormalizeType(sqlType string) string
	GetSchemaName(input string) string
}
