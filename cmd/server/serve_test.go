package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"farmdash/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setup(t *testing.T) {
	t.Helper()
	cfg = config.DefaultConfig()
	cfg.Storage.SQLitePath = filepath.Join(t.TempDir(), "farmdash.db")
	logger = zap.NewNop()
	reportFrom, reportTo, reportFormat, reportOut = "", "", "csv", ""
}

func TestNewMux_Wiring(t *testing.T) {
	setup(t)
	ctx := context.Background()
	st, err := openStores(ctx, cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.close(ctx) })

	mux, _, err := newMux(st)
	require.NoError(t, err)

	tests := []struct {
		method, path, body string
		status             int
		contains           string
	}{
		{http.MethodGet, "/health", "", http.StatusOK, "ok"},
		{http.MethodGet, "/static/app.css", "", http.StatusOK, ".panel"},
		{http.MethodPost, "/api/feed-usage", `{"feed_type":"Layer","qty":3,"time_of_feeding":"06:00","feed_date":"2024-05-01"}`, http.StatusCreated, `"id":"1"`},
		{http.MethodGet, "/api/categories", "", http.StatusOK, `"count":1`},
		{http.MethodGet, "/", "", http.StatusOK, "Layer Feed"},
		{http.MethodGet, "/reports/feed-usage/export.csv", "", http.StatusOK, "Layer Feed,3,06:00,2024-05-01"},
		{http.MethodGet, "/reports/feed-usage/export.xlsx", "", http.StatusOK, "PK"},
		{http.MethodPut, "/api/settings", `{"farm_name":"Sunrise","no_of_birds":40}`, http.StatusOK, `"farm_name":"Sunrise"`},
		{http.MethodGet, "/settings", "", http.StatusOK, `value="Sunrise"`},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.contains)
		})
	}
}

func TestRunReport(t *testing.T) {
	setup(t)
	ctx := context.Background()
	st, err := openStores(ctx, cfg, logger)
	require.NoError(t, err)
	_, err = st.records.Create(ctx, "environment", map[string]any{
		"temperature": 24.5, "humidity": 55, "collection_time": "12:00", "collection_date": "2024-06-01",
	})
	require.NoError(t, err)
	require.NoError(t, st.close(ctx))

	var out bytes.Buffer
	reportFormat = "markdown"
	require.NoError(t, runReport(ctx, "environment", &out))
	assert.Contains(t, out.String(), "# Environment Control report")
	assert.Contains(t, out.String(), "**Average temperature:** 24.5°C")

	out.Reset()
	reportFormat = "pdf"
	require.NoError(t, runReport(ctx, "environment", &out))
	assert.True(t, bytes.HasPrefix(out.Bytes(), []byte("%PDF-")))

	reportFormat = "docx"
	assert.Error(t, runReport(ctx, "environment", &out))
	reportFormat = "csv"
	assert.Error(t, runReport(ctx, "geese", &out))
}
