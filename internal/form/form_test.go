package form_test

import (
	"context"
	"errors"
	"testing"

	"db-crud/internal/form"
	"db-crud/internal/record"
	"db-crud/internal/schema"
	"db-crud/internal/testutil"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sampleAccessor(t *testing.T) *record.Accessor {
	t.Helper()
	h, catalog := testutil.OpenSample(t)
	return record.NewAccessor(h.DB, h.Dialect, catalog, nil, zap.NewNop())
}

func mustInsert(t *testing.T, acc *record.Accessor, table string, values map[string]any) {
	t.Helper()
	_, err := acc.InsertRecord(context.Background(), table, values)
	require.NoError(t, err)
}

func TestBuild(t *testing.T) {
	ctx := context.Background()
	acc := sampleAccessor(t)
	mustInsert(t, acc, "faculties", map[string]any{"name": "Physics", "dean": "Bloch"})
	mustInsert(t, acc, "faculties", map[string]any{"name": "History", "dean": "Bloch"})

	fields, err := form.Build(ctx, acc.Catalog(), "groups", acc, zap.NewNop())
	require.NoError(t, err)

	want := []form.Field{
		{Name: "name", Kind: schema.KindText, Nullable: true},
		{Name: "faculty_id", Kind: schema.KindInteger, Nullable: true, Reference: &form.Reference{
			Table:  "faculties",
			Column: "id",
			Kind:   schema.KindInteger,
			Choices: []form.Choice{
				{Key: int64(1), Label: "Physics"},
				{Key: int64(2), Label: "History"},
			},
		}},
	}
	if diff := cmp.Diff(want, fields); diff != "" {
		t.Errorf("Build() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "2. History", fields[1].Reference.Choices[1].String())
}

func TestBuild_MissingTable(t *testing.T) {
	acc := sampleAccessor(t)

	_, err := form.Build(context.Background(), acc.Catalog(), "nope", acc, zap.NewNop())
	assert.ErrorIs(t, err, schema.ErrTableNotFound)
}

func TestBuild_MissingReferencedTable(t *testing.T) {
	catalog := schema.NewCatalog([]*schema.Table{{
		Name: "pets",
		Columns: []*schema.Column{
			{Name: "id", IsPK: true, Kind: schema.KindInteger},
			{Name: "owner_id", Kind: schema.KindInteger},
		},
		ForeignKeys: []*schema.ForeignKey{{Column: "owner_id", RefTable: "owners", RefColumn: "id"}},
	}})

	_, err := form.Build(context.Background(), catalog, "pets", nil, zap.NewNop())
	assert.ErrorIs(t, err, schema.ErrTableNotFound)
}

type stubSource struct {
	rows []record.Record
}

func (s stubSource) GetColumns(ctx context.Context, table string, columns ...string) ([]record.Record, error) {
	return s.rows, nil
}

func TestBuild_NarrowReferencedTable(t *testing.T) {
	catalog := schema.NewCatalog([]*schema.Table{
		{Name: "tags", Columns: []*schema.Column{{Name: "id", IsPK: true, Kind: schema.KindInteger}}},
		{
			Name: "notes",
			Columns: []*schema.Column{
				{Name: "id", IsPK: true, Kind: schema.KindInteger},
				{Name: "tag_id", Kind: schema.KindInteger, IsNullable: true},
			},
			ForeignKeys: []*schema.ForeignKey{{Column: "tag_id", RefTable: "tags", RefColumn: "id"}},
		},
	})
	src := stubSource{rows: []record.Record{{{Name: "id", Value: int64(7)}}}}

	fields, err := form.Build(context.Background(), catalog, "notes", src, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, []form.Choice{{Key: int64(7), Label: "7"}}, fields[0].Reference.Choices)
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"3. Physics", "3", false},
		{"12. Dr. Who", "12", false},
		{"7. ", "7", false},
		{"7.", "7", false},
		{"Physics", "", true},
		{". Physics", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := form.ParseChoice(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, form.ErrValidation, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func studentFields() []form.Field {
	return []form.Field{
		{Name: "full_name", Kind: schema.KindText, Nullable: true},
		{Name: "group_id", Kind: schema.KindInteger, Nullable: true, Reference: &form.Reference{
			Table: "groups", Column: "id", Kind: schema.KindInteger,
			Choices: []form.Choice{{Key: int64(1), Label: "G-1"}},
		}},
		{Name: "curator_id", Kind: schema.KindInteger, Nullable: false, Reference: &form.Reference{
			Table: "curators", Column: "id", Kind: schema.KindInteger,
		}},
	}
}

func TestValues(t *testing.T) {
	got, err := form.Values(studentFields(), map[string]string{
		"full_name":  "Ann",
		"group_id":   "1. G-1",
		"curator_id": "4. Ivan",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"full_name": "Ann", "group_id": int64(1), "curator_id": int64(4)}, got)

	got, err = form.Values(studentFields(), map[string]string{"full_name": "", "group_id": ""})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"full_name": nil, "group_id": nil}, got)

	// Blank input is null; other text is kept as typed.
	got, err = form.Values(studentFields(), map[string]string{"full_name": "  \t", "group_id": "1. G-1"})
	require.NoError(t, err)
	assert.Nil(t, got["full_name"])

	got, err = form.Values(studentFields(), map[string]string{"full_name": " Ann ", "group_id": "1. G-1"})
	require.NoError(t, err)
	assert.Equal(t, " Ann ", got["full_name"])
}

func TestValues_Errors(t *testing.T) {
	tests := map[string]map[string]string{
		"malformed choice":   {"group_id": "G-1"},
		"non numeric key":    {"group_id": "x. G-1"},
		"required selection": {"curator_id": ""},
		"unknown field":      {"nickname": "annie"},
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := form.Values(studentFields(), input)
			assert.True(t, errors.Is(err, form.ErrValidation), "got %v", err)
		})
	}
}

func TestPrefill(t *testing.T) {
	rec := record.Record{
		{Name: "id", Value: int64(5)},
		{Name: "full_name", Value: "Ann"},
		{Name: "group_id", Value: int64(1)},
		{Name: "curator_id", Value: int64(9)},
	}

	got := form.Prefill(studentFields(), rec)
	assert.Equal(t, map[string]string{
		"full_name":  "Ann",
		"group_id":   "1. G-1",
		"curator_id": "9. ",
	}, got)

	values, err := form.Values(studentFields(), got)
	require.NoError(t, err)
	assert.Equal(t, int64(9), values["curator_id"])
}

func TestSession(t *testing.T) {
	ctx := context.Background()
	acc := sampleAccessor(t)
	fields, err := form.Build(ctx, acc.Catalog(), "faculties", acc, zap.NewNop())
	require.NoError(t, err)

	s := form.NewSession("faculties", fields, acc)
	assert.Equal(t, form.State{Mode: form.Browsing}, s.State())

	key, err := s.Submit(ctx, map[string]string{"name": "Physics", "dean": "Bloch"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), key)
	assert.Equal(t, form.Browsing, s.State().Mode)

	s.Edit("1")
	assert.Equal(t, form.State{Mode: form.Editing, Key: "1"}, s.State())

	_, err = s.Submit(ctx, map[string]string{"bogus": "x"})
	assert.ErrorIs(t, err, form.ErrValidation)
	assert.Equal(t, form.Editing, s.State().Mode, "failed submit keeps editing")

	key, err = s.Submit(ctx, map[string]string{"name": "Astrophysics", "dean": ""})
	require.NoError(t, err)
	assert.Equal(t, "1", key)
	assert.Equal(t, form.State{Mode: form.Browsing}, s.State())

	rec, err := acc.GetByID(ctx, "faculties", "1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": int64(1), "name": "Astrophysics", "dean": nil}, rec.Map())

	s.Edit("42")
	_, err = s.Submit(ctx, map[string]string{"name": "x"})
	assert.ErrorIs(t, err, record.ErrNotFound)
	s.Cancel()
	assert.Equal(t, form.State{Mode: form.Browsing}, s.State())
}
