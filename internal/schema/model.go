package schema

import (
	"fmt"
	"sort"
)

// Catalog is the reflected structure of one database schema. It is built once
// by Load and never mutated afterwards, so it is safe for concurrent readers.
type Catalog struct {
	tables map[string]*Table
	order  []*Table // dependency order, parents first
}

// NewCatalog builds a Catalog from already reflected tables.
func NewCatalog(tables []*Table) *Catalog {
	c := &Catalog{tables: make(map[string]*Table, len(tables))}
	for _, t := range tables {
		c.tables[t.Name] = t
	}
	c.order = SortTablesByFKCount(tables)
	return c
}

// Table returns the descriptor of the named table.
func (c *Catalog) Table(name string) (*Table, error) {
	t, ok := c.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTableNotFound, name)
	}
	return t, nil
}

// Tables returns the known table names, sorted.
func (c *Catalog) Tables() []string {
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Ordered returns the tables in dependency order (referenced tables first).
func (c *Catalog) Ordered() []*Table {
	return c.order
}

type Table struct {
	Name         string
	Columns      []*Column
	ForeignKeys  []*ForeignKey
	Dependencies []string // referenced tables, for dependency sorting
}

type Column struct {
	Name       string
	DataType   string // normalized declared type, e.g. "varchar", "int"
	Kind       Kind
	IsNullable bool
	IsPK       bool
	Meaning    string // classification from column name (e.g. "phone", "email")
}

type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
}

// PrimaryKey returns the single primary-key column.
func (t *Table) PrimaryKey() (*Column, error) {
	var pk *Column
	for _, c := range t.Columns {
		if !c.IsPK {
			continue
		}
		if pk != nil {
			// Multiplicity is reported as NoPrimaryKey too: no single key to use.
			return nil, fmt.Errorf("%w: %w: table %q", ErrNoPrimaryKey, ErrCompositePrimaryKey, t.Name)
		}
		pk = c
	}
	if pk == nil {
		return nil, fmt.Errorf("%w: table %q", ErrNoPrimaryKey, t.Name)
	}
	return pk, nil
}

// Column returns the named column.
func (t *Table) Column(name string) (*Column, error) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %q in table %q", ErrUnknownField, name, t.Name)
}

// ForeignKey returns the foreign key whose source is column, or nil.
func (t *Table) ForeignKey(column string) *ForeignKey {
	for _, fk := range t.ForeignKeys {
		if fk.Column == column {
			return fk
		}
	}
	return nil
}

// ColumnNames returns column names in declared order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}
