package seed

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"db-crud/internal/dialect"
)

type columnType int

const (
	typeText columnType = iota
	typeInteger
	typeDate
)

type sampleColumn struct {
	name string
	typ  columnType
	ref  string // referenced table (by its "id" column)
}

type sampleTable struct {
	name    string
	columns []sampleColumn
}

// sampleSchema is the student-records demo schema, parents before children.
// Every table gets a serial "id" primary key.
var sampleSchema = []sampleTable{
	{"faculties", []sampleColumn{{name: "name"}, {name: "dean"}}},
	{"groups", []sampleColumn{{name: "name"}, {name: "faculty_id", typ: typeInteger, ref: "faculties"}}},
	{"curators", []sampleColumn{
		{name: "full_name"}, {name: "status"}, {name: "phone"}, {name: "email"},
		{name: "group_id", typ: typeInteger, ref: "groups"},
	}},
	{"students", []sampleColumn{
		{name: "full_name"}, {name: "email"}, {name: "phone"}, {name: "record_book"}, {name: "extra_data"},
		{name: "group_id", typ: typeInteger, ref: "groups"},
	}},
	{"semesters", []sampleColumn{{name: "name"}, {name: "start_date", typ: typeDate}, {name: "end_date", typ: typeDate}}},
	{"teachers", []sampleColumn{{name: "full_name"}, {name: "email"}, {name: "phone"}}},
	{"subjects", []sampleColumn{
		{name: "name"},
		{name: "semester_id", typ: typeInteger, ref: "semesters"},
		{name: "teacher_id", typ: typeInteger, ref: "teachers"},
	}},
	{"grades", []sampleColumn{
		{name: "student_id", typ: typeInteger, ref: "students"},
		{name: "subject_id", typ: typeInteger, ref: "subjects"},
		{name: "grade"},
	}},
}

// SampleTables returns the demo table names in creation order.
func SampleTables() []string {
	names := make([]string, len(sampleSchema))
	for i, t := range sampleSchema {
		names[i] = t.name
	}
	return names
}

// createTableQuery renders the CREATE TABLE statement of one demo table.
func createTableQuery(d dialect.Dialect, t sampleTable) string {
	defs := []string{d.SerialPrimaryKey("id")}
	var constraints []string
	for _, c := range t.columns {
		var typ string
		switch c.typ {
		case typeInteger:
			typ = "INTEGER"
		case typeDate:
			typ = "DATE"
		default:
			typ = "VARCHAR(255)"
		}
		defs = append(defs, d.Quote(c.name)+" "+typ)
		if c.ref != "" {
			constraints = append(constraints, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s (%s)",
				d.Quote(c.name), d.Quote(c.ref), d.Quote("id")))
		}
	}
	defs = append(defs, constraints...)
	return fmt.Sprintf("CREATE TABLE %s (\n    %s\n)", d.Quote(t.name), strings.Join(defs, ",\n    "))
}

// CreateSampleSchema creates the demo tables that are not in existing
// (case-insensitive) and returns the names it created.
func CreateSampleSchema(ctx context.Context, db *sql.DB, d dialect.Dialect, existing []string) ([]string, error) {
	present := make(map[string]bool, len(existing))
	for _, name := range existing {
		present[strings.ToLower(name)] = true
	}

	var created []string
	for _, t := range sampleSchema {
		if present[t.name] {
			continue
		}
		if _, err := db.ExecContext(ctx, createTableQuery(d, t)); err != nil {
			return created, fmt.Errorf("failed to create table %s: %w", t.name, err)
		}
		created = append(created, t.name)
	}
	return created, nil
}
