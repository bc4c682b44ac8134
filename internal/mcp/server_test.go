package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"farmdash/internal/db"
	"farmdash/internal/records"
	"farmdash/internal/settings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *records.Service {
	t.Helper()
	ctx := context.Background()
	sqlDB, err := db.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	repo := records.NewSQLiteRepo(sqlDB)
	require.NoError(t, repo.EnsureIndexes(ctx))
	return records.NewService(repo)
}

func call(t *testing.T, h func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (string, bool) {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	res, err := h(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text, res.IsError
}

func newTestSettings(t *testing.T) *settings.Service {
	t.Helper()
	ctx := context.Background()
	sqlDB, err := db.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	store := settings.NewSQLiteStore(sqlDB)
	require.NoError(t, store.EnsureSchema(ctx))
	return settings.NewService(store)
}

func TestNewServer(t *testing.T) {
	assert.NotNil(t, NewServer(newTestService(t), newTestSettings(t)))
}

func TestTools_Settings(t *testing.T) {
	svc := newTestSettings(t)

	out, isErr := call(t, handleGetSettings(svc), map[string]any{})
	require.False(t, isErr, out)
	assert.Contains(t, out, `"measuring_unit": "Metric"`)

	out, isErr = call(t, handleUpdateSettings(svc), map[string]any{
		"fields": `{"farm_name":"Sunrise","no_of_birds":1200}`,
	})
	require.False(t, isErr, out)
	assert.Contains(t, out, `"farm_name": "Sunrise"`)
	assert.Contains(t, out, `"no_of_birds": 1200`)

	out, isErr = call(t, handleUpdateSettings(svc), map[string]any{
		"fields": `{"measuring_unit":"Stone"}`,
	})
	assert.True(t, isErr)
	assert.Equal(t, "Measuring Unit must be one of Metric, Imperial.", out)

	out, isErr = call(t, handleUpdateSettings(svc), map[string]any{"fields": `[1]`})
	assert.True(t, isErr)
	assert.Contains(t, out, "fields must be a JSON object")

	out, _ = call(t, handleGetSettings(svc), map[string]any{})
	assert.Contains(t, out, `"farm_name": "Sunrise"`)
}

func TestTools_RecordLifecycle(t *testing.T) {
	svc := newTestService(t)

	out, isErr := call(t, handleCreateRecord(svc), map[string]any{
		"category": "egg-production",
		"fields":   `{"total_eggs":120,"broken_eggs":6,"collection_time":"07:00","collection_date":"2024-03-01"}`,
	})
	require.False(t, isErr, out)
	var created map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	id := created["id"].(string)

	out, isErr = call(t, handleUpdateRecord(svc), map[string]any{
		"category": "eggs", "id": id, "fields": `{"broken_eggs":3}`,
	})
	require.False(t, isErr, out)
	assert.Contains(t, out, `"broken_eggs": 3`)

	out, isErr = call(t, handleGetRecord(svc), map[string]any{"category": "eggs", "id": id})
	require.False(t, isErr, out)
	assert.Contains(t, out, `"total_eggs": 120`)

	out, isErr = call(t, handleListRecords(svc), map[string]any{"category": "eggs", "since": "2024-03-01"})
	require.False(t, isErr, out)
	var list []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	assert.Len(t, list, 1)

	out, isErr = call(t, handleSummarizeRecords(svc), map[string]any{"category": "eggs"})
	require.False(t, isErr, out)
	assert.Contains(t, out, "# Egg Production report")
	assert.Contains(t, out, "**Broken rate:** 2.5%")

	out, isErr = call(t, handleDeleteRecord(svc), map[string]any{"category": "eggs", "id": id})
	require.False(t, isErr, out)

	out, isErr = call(t, handleGetRecord(svc), map[string]any{"category": "eggs", "id": id})
	assert.True(t, isErr)
	assert.Equal(t, "record not found", out)
}

func TestTools_Errors(t *testing.T) {
	svc := newTestService(t)

	out, isErr := call(t, handleCreateRecord(svc), map[string]any{"category": "feed", "fields": `{"qty":1}`})
	assert.True(t, isErr)
	assert.Equal(t, "All fields are required.", out)

	out, isErr = call(t, handleCreateRecord(svc), map[string]any{"category": "feed", "fields": `[1,2]`})
	assert.True(t, isErr)
	assert.Equal(t, "fields must be a JSON object", out)

	out, isErr = call(t, handleListRecords(svc), map[string]any{"category": "geese"})
	assert.True(t, isErr)
	assert.Equal(t, "unknown category", out)

	_, isErr = call(t, handleGetRecord(svc), map[string]any{"category": "feed"})
	assert.True(t, isErr)

	_, isErr = call(t, handleSummarizeRecords(svc), map[string]any{"category": "feed", "since": "May"})
	assert.True(t, isErr)
}

func TestTools_ListCategoriesDescribesFields(t *testing.T) {
	out, isErr := call(t, handleListCategories(newTestService(t)), nil)
	require.False(t, isErr, out)

	var cats []CategoryResult
	require.NoError(t, json.Unmarshal([]byte(out), &cats))
	require.Len(t, cats, 4)
	assert.Equal(t, "feed", cats[0].Name)
	assert.Equal(t, "feed_type", cats[0].Fields[0].Name)
	assert.Equal(t, []string{"Starter", "Grower", "Finisher", "Layer"}, cats[0].Fields[0].Options)
}
