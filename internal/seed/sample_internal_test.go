package seed

import (
	"strings"
	"testing"

	"db-crud/internal/dialect"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTableQuery(t *testing.T) {
	d, err := dialect.GetDialect("postgres")
	require.NoError(t, err)

	q := createTableQuery(d, sampleSchema[1])
	assert.True(t, strings.HasPrefix(q, `CREATE TABLE "groups" (`), q)
	assert.Contains(t, q, d.SerialPrimaryKey("id"))
	assert.Contains(t, q, `"name" VARCHAR(255)`)
	assert.Contains(t, q, `"faculty_id" INTEGER`)
	assert.Contains(t, q, `FOREIGN KEY ("faculty_id") REFERENCES "faculties" ("id")`)
}

func TestSampleSchemaOrder(t *testing.T) {
	seen := map[string]bool{}
	for _, tbl := range sampleSchema {
		for _, c := range tbl.columns {
			if c.ref != "" {
				assert.True(t, seen[c.ref], "%s references %s before it is created", tbl.name, c.ref)
			}
		}
		seen[tbl.name] = true
	}
	assert.Len(t, SampleTables(), 8)
}
