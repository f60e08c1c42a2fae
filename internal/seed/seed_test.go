package seed_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"db-crud/internal/record"
	"db-crud/internal/schema"
	"db-crud/internal/seed"
	"db-crud/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCreateSampleSchema_SkipsExisting(t *testing.T) {
	ctx := context.Background()
	h := testutil.OpenSQLite(t)
	testutil.Exec(t, h, `CREATE TABLE faculties (id INTEGER PRIMARY KEY, title TEXT)`)

	created, err := seed.CreateSampleSchema(ctx, h.DB, h.Dialect, []string{"FACULTIES"})
	require.NoError(t, err)
	assert.Equal(t, []string{"groups", "curators", "students", "semesters", "teachers", "subjects", "grades"}, created)

	catalog, err := h.LoadCatalog(ctx)
	require.NoError(t, err)
	faculties, err := catalog.Table("faculties")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "title"}, faculties.ColumnNames(), "existing table is left untouched")

	created, err = seed.CreateSampleSchema(ctx, h.DB, h.Dialect, catalog.Tables())
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestGenerateValue(t *testing.T) {
	email := seed.GenerateValue(&schema.Column{Name: "email", DataType: "varchar", Kind: schema.KindText, Meaning: "email"}, "students")
	assert.Contains(t, email, "@")

	day := seed.GenerateValue(&schema.Column{Name: "start_date", DataType: "date", Kind: schema.KindDate}, "semesters")
	_, err := time.Parse("2006-01-02", day.(string))
	assert.NoError(t, err)

	n := seed.GenerateValue(&schema.Column{Name: "credits", DataType: "int", Kind: schema.KindInteger}, "subjects")
	assert.IsType(t, int64(0), n)

	name := seed.GenerateValue(&schema.Column{Name: "name", DataType: "varchar", Kind: schema.KindText, Meaning: "name"}, "faculties")
	assert.Contains(t, seed.Faculties, name)

	person := seed.GenerateValue(&schema.Column{Name: "full_name", DataType: "varchar", Kind: schema.KindText, Meaning: "name"}, "students")
	assert.Len(t, strings.Fields(person.(string)), 3)

	assert.Nil(t, seed.GenerateValue(&schema.Column{Name: "blob", DataType: "blob", Kind: schema.KindOther}, "x"))
}

func TestFill(t *testing.T) {
	ctx := context.Background()
	h, catalog := testutil.OpenSample(t)
	acc := record.NewAccessor(h.DB, h.Dialect, catalog, nil, zap.NewNop())

	progress := 0
	results, err := seed.Fill(ctx, acc, catalog.Ordered(), 5, func() { progress++ }, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, results, 8)
	assert.Equal(t, 40, progress)

	for _, res := range results {
		assert.Equal(t, "OK", res.Status, "%s: %s", res.Table, res.ErrorMsg)
		assert.Equal(t, 5, res.Inserted, res.Table)

		rows, err := acc.GetAll(ctx, res.Table)
		require.NoError(t, err)
		assert.Len(t, rows, 5, res.Table)
	}

	// Foreign keys are enforced by the database, so every grade points at a
	// real student.
	grades, err := acc.GetAll(ctx, "grades")
	require.NoError(t, err)
	for _, g := range grades {
		studentID, _ := g.Get("student_id")
		require.NotNil(t, studentID)
		_, err := acc.GetByID(ctx, "students", fmt.Sprint(studentID))
		assert.NoError(t, err)
	}
}

func TestFill_SkipsUnreferencedRequiredKey(t *testing.T) {
	ctx := context.Background()
	h := testutil.OpenSQLite(t)
	testutil.Exec(t, h,
		`CREATE TABLE owners (id INTEGER PRIMARY KEY, name TEXT)`,
		`CREATE TABLE pets (id INTEGER PRIMARY KEY, name TEXT, owner_id INTEGER NOT NULL REFERENCES owners (id))`,
	)
	catalog, err := h.LoadCatalog(ctx)
	require.NoError(t, err)
	acc := record.NewAccessor(h.DB, h.Dialect, catalog, nil, zap.NewNop())

	pets, err := catalog.Table("pets")
	require.NoError(t, err)
	results, err := seed.Fill(ctx, acc, []*schema.Table{pets}, 3, nil, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "SKIPPED", results[0].Status)
	assert.Zero(t, results[0].Inserted)
}
