package record_test

import (
	"context"
	"encoding/json"
	"testing"

	"db-crud/internal/changefeed"
	"db-crud/internal/record"
	"db-crud/internal/schema"
	"db-crud/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAccessor(t *testing.T, ddl ...string) (*record.Accessor, *changefeed.Memory) {
	t.Helper()

	h, _ := testutil.OpenSample(t)
	testutil.Exec(t, h, ddl...)
	catalog, err := h.LoadCatalog(context.Background())
	require.NoError(t, err)

	feed := changefeed.NewMemory(64)
	return record.NewAccessor(h.DB, h.Dialect, catalog, feed, zap.NewNop()), feed
}

const peopleDDL = `CREATE TABLE people (id INTEGER PRIMARY KEY, name TEXT, age INTEGER, score REAL)`

func TestInsertThenGetByID(t *testing.T) {
	ctx := context.Background()
	acc, _ := newAccessor(t)

	key, err := acc.InsertRecord(ctx, "faculties", map[string]any{"name": "Physics", "dean": "Dr. Bloch"})
	require.NoError(t, err)
	require.Equal(t, int64(1), key)

	rec, err := acc.GetByID(ctx, "faculties", "1")
	require.NoError(t, err)
	assert.Equal(t, record.Record{
		{Name: "id", Value: int64(1)},
		{Name: "name", Value: "Physics"},
		{Name: "dean", Value: "Dr. Bloch"},
	}, rec)
}

func TestInsertNumericCoercion(t *testing.T) {
	ctx := context.Background()
	acc, _ := newAccessor(t, peopleDDL)

	key, err := acc.InsertRecord(ctx, "people", map[string]any{"name": "Ann", "age": "30", "score": "4.5"})
	require.NoError(t, err)
	rec, err := acc.GetByID(ctx, "people", "1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), key)
	age, _ := rec.Get("age")
	assert.Equal(t, int64(30), age)
	score, _ := rec.Get("score")
	assert.Equal(t, 4.5, score)

	_, err = acc.InsertRecord(ctx, "people", map[string]any{"name": "Bob", "age": "thirty"})
	require.NoError(t, err, "unparsable numbers are stored as given")
	rec, err = acc.GetByID(ctx, "people", "2")
	require.NoError(t, err)
	age, _ = rec.Get("age")
	assert.Equal(t, "thirty", age)
}

func TestInsertEmptyStringIsNull(t *testing.T) {
	ctx := context.Background()
	acc, _ := newAccessor(t)

	_, err := acc.InsertRecord(ctx, "teachers", map[string]any{"full_name": "Ada", "email": ""})
	require.NoError(t, err)

	rec, err := acc.GetByID(ctx, "teachers", "1")
	require.NoError(t, err)
	email, ok := rec.Get("email")
	assert.True(t, ok)
	assert.Nil(t, email)
}

func TestInsertErrors(t *testing.T) {
	ctx := context.Background()
	acc, _ := newAccessor(t)

	_, err := acc.InsertRecord(ctx, "nope", map[string]any{})
	assert.ErrorIs(t, err, schema.ErrTableNotFound)

	_, err = acc.InsertRecord(ctx, "faculties", map[string]any{"colour": "red"})
	assert.ErrorIs(t, err, record.ErrInsertFailed)
	assert.ErrorIs(t, err, schema.ErrUnknownField)

	// Foreign keys are enforced: group 99 does not exist.
	_, err = acc.InsertRecord(ctx, "students", map[string]any{"full_name": "Eve", "group_id": "99"})
	assert.ErrorIs(t, err, record.ErrInsertFailed)
	assert.Contains(t, err.Error(), "FOREIGN KEY")
}

func TestInsertDefaults(t *testing.T) {
	ctx := context.Background()
	acc, _ := newAccessor(t)

	key, err := acc.InsertRecord(ctx, "teachers", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), key)
}

func TestGetByID(t *testing.T) {
	ctx := context.Background()
	acc, _ := newAccessor(t)

	_, err := acc.GetByID(ctx, "faculties", "42")
	assert.ErrorIs(t, err, record.ErrNotFound)

	_, err = acc.GetByID(ctx, "missing", "1")
	assert.ErrorIs(t, err, schema.ErrTableNotFound)
	assert.NotErrorIs(t, err, record.ErrNotFound)
}

func TestNoPrimaryKey(t *testing.T) {
	ctx := context.Background()
	acc, _ := newAccessor(t, `CREATE TABLE audit (msg TEXT, at TEXT)`)

	_, err := acc.GetByID(ctx, "audit", "1")
	assert.ErrorIs(t, err, schema.ErrNoPrimaryKey)
	err = acc.SetField(ctx, "audit", "1", "msg", "x")
	assert.ErrorIs(t, err, schema.ErrNoPrimaryKey)

	// Inserting does not need a key.
	key, err := acc.InsertRecord(ctx, "audit", map[string]any{"msg": "hello"})
	require.NoError(t, err)
	assert.Nil(t, key)
}

func TestAmbiguousKey(t *testing.T) {
	ctx := context.Background()
	h := testutil.OpenSQLite(t)
	testutil.Exec(t, h,
		`CREATE TABLE dupes (code INTEGER, label TEXT)`,
		`INSERT INTO dupes VALUES (1, 'a'), (1, 'b'), (2, 'c')`,
	)
	// A catalog that believes code is unique.
	catalog := schema.NewCatalog([]*schema.Table{{
		Name: "dupes",
		Columns: []*schema.Column{
			{Name: "code", DataType: "integer", Kind: schema.KindInteger, IsPK: true},
			{Name: "label", DataType: "text", Kind: schema.KindText, IsNullable: true},
		},
	}})
	acc := record.NewAccessor(h.DB, h.Dialect, catalog, nil, zap.NewNop())

	_, err := acc.GetByID(ctx, "dupes", "1")
	assert.ErrorIs(t, err, record.ErrAmbiguousKey)

	err = acc.SetField(ctx, "dupes", "1", "label", "z")
	assert.ErrorIs(t, err, record.ErrAmbiguousKey)

	rows, err := acc.GetByField(ctx, "dupes", "label", "z")
	assert.ErrorIs(t, err, record.ErrNotFound, "ambiguous update must be rolled back")
	assert.Empty(t, rows)

	rec, err := acc.GetByID(ctx, "dupes", "2")
	require.NoError(t, err)
	label, _ := rec.Get("label")
	assert.Equal(t, "c", label)
}

func TestSetField(t *testing.T) {
	ctx := context.Background()
	acc, feed := newAccessor(t)

	_, err := acc.InsertRecord(ctx, "curators", map[string]any{"full_name": "Ivan", "status": "active", "phone": "555"})
	require.NoError(t, err)
	before, err := acc.GetByID(ctx, "curators", "1")
	require.NoError(t, err)

	require.NoError(t, acc.SetField(ctx, "curators", "1", "status", "retired"))

	after, err := acc.GetByID(ctx, "curators", "1")
	require.NoError(t, err)
	for _, f := range before {
		got, _ := after.Get(f.Name)
		if f.Name == "status" {
			assert.Equal(t, "retired", got)
			continue
		}
		assert.Equal(t, f.Value, got, f.Name)
	}

	require.NoError(t, acc.SetField(ctx, "curators", "1", "phone", ""))
	after, err = acc.GetByID(ctx, "curators", "1")
	require.NoError(t, err)
	phone, _ := after.Get("phone")
	assert.Nil(t, phone)

	events := feed.Drain()
	require.Len(t, events, 3)
	assert.Equal(t, changefeed.OpInsert, events[0].Op)
	assert.Equal(t, changefeed.OpUpdate, events[1].Op)
	assert.Equal(t, map[string]any{"status": "retired"}, events[1].Values)
	assert.Equal(t, int64(1), events[1].Key)
}

func TestSetFieldErrors(t *testing.T) {
	ctx := context.Background()
	acc, feed := newAccessor(t)

	err := acc.SetField(ctx, "curators", "7", "status", "x")
	assert.ErrorIs(t, err, record.ErrNotFound)

	err = acc.SetField(ctx, "curators", "1", "shoe_size", "x")
	assert.ErrorIs(t, err, schema.ErrUnknownField)

	err = acc.SetField(ctx, "ghosts", "1", "status", "x")
	assert.ErrorIs(t, err, schema.ErrTableNotFound)

	assert.Empty(t, feed.Drain(), "failed writes publish nothing")
}

func TestUpdateRecord(t *testing.T) {
	ctx := context.Background()
	acc, _ := newAccessor(t)

	_, err := acc.InsertRecord(ctx, "semesters", map[string]any{"name": "Fall", "start_date": "2024-09-01"})
	require.NoError(t, err)

	err = acc.UpdateRecord(ctx, "semesters", "1", map[string]any{"name": "Autumn", "end_date": "2024-12-20"})
	require.NoError(t, err)

	rec, err := acc.GetByID(ctx, "semesters", "1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"id":         int64(1),
		"name":       "Autumn",
		"start_date": "2024-09-01",
		"end_date":   "2024-12-20",
	}, rec.Map())

	assert.ErrorIs(t, acc.UpdateRecord(ctx, "semesters", "2", map[string]any{"name": "x"}), record.ErrNotFound)
	assert.ErrorIs(t, acc.UpdateRecord(ctx, "semesters", "2", nil), record.ErrNotFound)
}

func TestDeleteRecord(t *testing.T) {
	ctx := context.Background()
	acc, feed := newAccessor(t)

	_, err := acc.InsertRecord(ctx, "teachers", map[string]any{"full_name": "Grace"})
	require.NoError(t, err)

	require.NoError(t, acc.DeleteRecord(ctx, "teachers", "1"))
	_, err = acc.GetByID(ctx, "teachers", "1")
	assert.ErrorIs(t, err, record.ErrNotFound)
	assert.ErrorIs(t, acc.DeleteRecord(ctx, "teachers", "1"), record.ErrNotFound)

	events := feed.Drain()
	require.Len(t, events, 2)
	assert.Equal(t, changefeed.OpDelete, events[1].Op)
}

func TestGetAll(t *testing.T) {
	ctx := context.Background()
	acc, _ := newAccessor(t)

	rows, err := acc.GetAll(ctx, "faculties")
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.NotNil(t, rows)

	for _, name := range []string{"Physics", "Chemistry", "History"} {
		_, err := acc.InsertRecord(ctx, "faculties", map[string]any{"name": name})
		require.NoError(t, err)
	}
	rows, err = acc.GetAll(ctx, "faculties")
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	_, err = acc.GetAll(ctx, "nope")
	assert.ErrorIs(t, err, schema.ErrTableNotFound)
}

func TestGetByField(t *testing.T) {
	ctx := context.Background()
	acc, _ := newAccessor(t)

	for _, s := range []map[string]any{
		{"full_name": "A", "phone": "111"},
		{"full_name": "B", "phone": "222"},
		{"full_name": "C", "phone": "111"},
	} {
		_, err := acc.InsertRecord(ctx, "students", s)
		require.NoError(t, err)
	}

	rows, err := acc.GetByField(ctx, "students", "phone", "111")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	first, _ := rows[0].Get("full_name")
	second, _ := rows[1].Get("full_name")
	assert.ElementsMatch(t, []any{"A", "C"}, []any{first, second})

	rows, err = acc.GetByField(ctx, "students", "id", "2")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	rows, err = acc.GetByField(ctx, "students", "email", "")
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	_, err = acc.GetByField(ctx, "students", "phone", "999")
	assert.ErrorIs(t, err, record.ErrNotFound)

	_, err = acc.GetByField(ctx, "students", "height", "1")
	assert.ErrorIs(t, err, schema.ErrUnknownField)
}

func TestGetColumns(t *testing.T) {
	ctx := context.Background()
	acc, _ := newAccessor(t)

	_, err := acc.InsertRecord(ctx, "groups", map[string]any{"name": "G-1"})
	require.NoError(t, err)

	rows, err := acc.GetColumns(ctx, "groups", "id", "name")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, record.Record{{Name: "id", Value: int64(1)}, {Name: "name", Value: "G-1"}}, rows[0])

	_, err = acc.GetColumns(ctx, "groups", "size")
	assert.ErrorIs(t, err, schema.ErrUnknownField)
}

func TestGetAllTables(t *testing.T) {
	acc, _ := newAccessor(t)

	assert.ElementsMatch(t,
		[]string{"faculties", "groups", "curators", "students", "semesters", "teachers", "subjects", "grades"},
		acc.GetAllTables())
}

func TestRecordMarshalJSONKeepsOrder(t *testing.T) {
	rec := record.Record{
		{Name: "id", Value: int64(3)},
		{Name: "zeta", Value: "z"},
		{Name: "alpha", Value: nil},
		{Name: "score", Value: 1.5},
	}

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Equal(t, `{"id":3,"zeta":"z","alpha":null,"score":1.5}`, string(out))

	out, err = json.Marshal([]record.Record{rec[:1], {}})
	require.NoError(t, err)
	assert.Equal(t, `[{"id":3},{}]`, string(out))
}
