package api_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"db-crud/internal/api"
	"db-crud/internal/changefeed"
	"db-crud/internal/record"
	"db-crud/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newApp(t *testing.T, cfg api.Config) *fiber.App {
	t.Helper()
	return newAppWithFeed(t, cfg, nil)
}

func newAppWithFeed(t *testing.T, cfg api.Config, feed changefeed.Publisher) *fiber.App {
	t.Helper()
	h, _ := testutil.OpenSample(t)
	testutil.Exec(t, h, `CREATE TABLE audit (msg TEXT)`)
	// Reload so the keyless table is part of the catalog.
	catalog, err := h.LoadCatalog(t.Context())
	require.NoError(t, err)
	acc := record.NewAccessor(h.DB, h.Dialect, catalog, feed, zap.NewNop())
	return api.New(acc, cfg, zap.NewNop())
}

func do(t *testing.T, app *fiber.App, method, target string) (int, string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, target, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestGetAllTables(t *testing.T) {
	app := newApp(t, api.Config{})

	code, body := do(t, app, http.MethodGet, "/GetAllTables")
	require.Equal(t, http.StatusOK, code)

	var names []string
	require.NoError(t, json.Unmarshal([]byte(body), &names))
	assert.ElementsMatch(t,
		[]string{"faculties", "groups", "curators", "students", "semesters", "teachers", "subjects", "grades", "audit"},
		names)
}

func TestRecordLifecycle(t *testing.T) {
	app := newApp(t, api.Config{})

	code, body := do(t, app, http.MethodPost, "/AddRecordToTable?table=faculties&name=Physics&dean=Bloch")
	require.Equal(t, http.StatusOK, code, body)
	assert.JSONEq(t, `{"success": true}`, body)

	code, body = do(t, app, http.MethodGet, "/GetFromTable?table=faculties&id=1")
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, `{"id":1,"name":"Physics","dean":"Bloch"}`, body)

	code, body = do(t, app, http.MethodPost, "/SetFieldValue?table=faculties&id=1&field=dean&value=")
	require.Equal(t, http.StatusOK, code, body)

	code, body = do(t, app, http.MethodGet, "/GetAllFromTable?table=faculties")
	require.Equal(t, http.StatusOK, code, body)
	assert.JSONEq(t, `[{"id":1,"name":"Physics","dean":null}]`, body)

	code, body = do(t, app, http.MethodGet, "/GetByField?table=faculties&field=name&value=Physics")
	require.Equal(t, http.StatusOK, code, body)
	assert.JSONEq(t, `[{"id":1,"name":"Physics","dean":null}]`, body)

	code, _ = do(t, app, http.MethodPost, "/DeleteRecord?table=faculties&id=1")
	require.Equal(t, http.StatusOK, code)

	code, _ = do(t, app, http.MethodGet, "/GetFromTable?table=faculties&id=1")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestErrorStatus(t *testing.T) {
	app := newApp(t, api.Config{})

	tests := []struct {
		name   string
		method string
		target string
		want   int
	}{
		{"unknown table", http.MethodGet, "/GetFromTable?table=nope&id=1", http.StatusNotFound},
		{"missing record", http.MethodGet, "/GetFromTable?table=faculties&id=9", http.StatusNotFound},
		{"no primary key", http.MethodGet, "/GetFromTable?table=audit&id=1", http.StatusBadRequest},
		{"missing parameter", http.MethodGet, "/GetFromTable?table=faculties", http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/SetFieldValue?table=faculties&id=1&field=x&value=y", http.StatusBadRequest},
		{"set on missing record", http.MethodPost, "/SetFieldValue?table=faculties&id=1&field=name&value=y", http.StatusNotFound},
		{"get by field no match", http.MethodGet, "/GetByField?table=faculties&field=name&value=none", http.StatusNotFound},
		{"insert into unknown table", http.MethodPost, "/AddRecordToTable?table=nope&a=1", http.StatusNotFound},
		{"insert violates constraint", http.MethodPost, "/AddRecordToTable?table=groups&faculty_id=77", http.StatusInternalServerError},
		{"delete missing", http.MethodPost, "/DeleteRecord?table=faculties&id=5", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := do(t, app, tt.method, tt.target)
			assert.Equal(t, tt.want, code, body)

			var payload map[string]string
			require.NoError(t, json.Unmarshal([]byte(body), &payload))
			assert.NotEmpty(t, payload["detail"])
		})
	}
}

func TestDescribeAndHealth(t *testing.T) {
	app := newApp(t, api.Config{})

	code, body := do(t, app, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"ok"}`, body)

	code, body = do(t, app, http.MethodGet, "/describe")
	require.Equal(t, http.StatusOK, code)
	var described map[string]struct {
		Columns     []map[string]any `json:"columns"`
		ForeignKeys []map[string]any `json:"foreign_keys"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &described))
	assert.Len(t, described["students"].Columns, 7)
	require.Len(t, described["students"].ForeignKeys, 1)
	assert.Equal(t, "groups", described["students"].ForeignKeys[0]["referenced_table"])
}

func TestRateLimit(t *testing.T) {
	app := newApp(t, api.Config{RateLimit: 0.001, Burst: 1})

	code, _ := do(t, app, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, code)
	code, body := do(t, app, http.MethodGet, "/health")
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Contains(t, body, "rate limit")
}

func TestChangefeedKeepsRequestValues(t *testing.T) {
	feed := changefeed.NewMemory(16)
	app := newAppWithFeed(t, api.Config{}, feed)

	names := []string{"Alice", "Bobby", "Carol", "Danny"}
	for _, name := range names {
		code, body := do(t, app, http.MethodPost, "/AddRecordToTable?table=teachers&full_name="+name)
		require.Equal(t, http.StatusOK, code, body)
	}
	code, body := do(t, app, http.MethodPost, "/SetFieldValue?table=teachers&id=2&field=email&value=bob@example.com")
	require.Equal(t, http.StatusOK, code, body)

	events := feed.Drain()
	require.Len(t, events, 5)
	for i, name := range names {
		assert.Equal(t, changefeed.OpInsert, events[i].Op)
		assert.Equal(t, name, events[i].Values["full_name"])
	}
	assert.Equal(t, changefeed.OpUpdate, events[4].Op)
	assert.Equal(t, "bob@example.com", events[4].Values["email"])
}
