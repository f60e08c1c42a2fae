package schema

// ColumnInfo is the serialization-friendly view of a Column.
type ColumnInfo struct {
	Name       string `json:"name" yaml:"name"`
	Type       string `json:"type" yaml:"type"`
	Kind       string `json:"kind" yaml:"kind"`
	Nullable   bool   `json:"nullable" yaml:"nullable"`
	PrimaryKey bool   `json:"primary_key" yaml:"primary_key"`
}

// ForeignKeyInfo is the serialization-friendly view of a ForeignKey.
type ForeignKeyInfo struct {
	Column           string `json:"column" yaml:"column"`
	ReferencedTable  string `json:"referenced_table" yaml:"referenced_table"`
	ReferencedColumn string `json:"referenced_column" yaml:"referenced_column"`
}

type TableInfo struct {
	Columns     []ColumnInfo     `json:"columns" yaml:"columns"`
	ForeignKeys []ForeignKeyInfo `json:"foreign_keys" yaml:"foreign_keys"`
}

// Describe exposes the catalog as table name -> {columns, foreign_keys}.
func (c *Catalog) Describe() map[string]TableInfo {
	out := make(map[string]TableInfo, len(c.tables))
	for name, t := range c.tables {
		info := TableInfo{
			Columns:     make([]ColumnInfo, 0, len(t.Columns)),
			ForeignKeys: make([]ForeignKeyInfo, 0, len(t.ForeignKeys)),
		}
		for _, col := range t.Columns {
			info.Columns = append(info.Columns, ColumnInfo{
				Name:       col.Name,
				Type:       col.DataType,
				Kind:       col.Kind.String(),
				Nullable:   col.IsNullable,
				PrimaryKey: col.IsPK,
			})
		}
		for _, fk := range t.ForeignKeys {
			info.ForeignKeys = append(info.ForeignKeys, ForeignKeyInfo{
				Column:           fk.Column,
				ReferencedTable:  fk.RefTable,
				ReferencedColumn: fk.RefColumn,
			})
		}
		out[name] = info
	}
	return out
}
