package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"farmdash/internal/farm"
	"farmdash/internal/settings"
	"farmdash/internal/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL+"/", time.Second, nil)
	require.NoError(t, err)
	t.Cleanup(c.http.CloseIdleConnections)
	return c
}

func TestNewClient_RejectsBadURL(t *testing.T) {
	_, err := NewClient("not a url", 0, nil)
	assert.Error(t, err)
}

func TestResource_List(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/feed-usage", r.URL.Path)
		w.Write([]byte(`[{"id":1,"qty":10.5},{"id":"b","qty":3}]`))
	}))

	docs, err := c.Resource("feed-usage").List(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, json.Number("1"), docs[0]["id"])
	assert.Equal(t, "10.5", table.FormatID(docs[0]["qty"]))
}

func TestResource_CreateSendsJSON(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var doc map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&doc))
		doc["id"] = "7"
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(doc)
	}))

	out, err := c.Resource("feed-usage").Create(context.Background(), map[string]any{"qty": 4.0})
	require.NoError(t, err)
	assert.Equal(t, "7", out["id"])
}

func TestResource_UpdateWithoutBody(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/feed-usage/12", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))

	out, err := c.Resource("feed-usage").Update(context.Background(), "12", map[string]any{"qty": 1.0})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestResource_ErrorBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"message", `{"message":"Quantity must be positive."}`, "Quantity must be positive."},
		{"error key", `{"error":"boom"}`, "boom"},
		{"not json", `<html>bad gateway</html>`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(tt.body))
			}))
			err := c.Resource("feed-usage").Delete(context.Background(), "1")

			var re *table.RemoteError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, http.StatusBadRequest, re.Status)
			assert.Equal(t, tt.want, re.Message)
			assert.False(t, IsUnavailable(err))
		})
	}
}

func TestResource_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewClient(url, time.Second, nil)
	require.NoError(t, err)
	_, err = c.Resource("feed-usage").List(context.Background())
	require.Error(t, err)
	assert.True(t, IsUnavailable(err))
}

func TestResource_DrivesTableWithServerMessage(t *testing.T) {
	var deletes atomic.Int32
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Write([]byte(`[{"id":"1","feed_type":"Starter","qty":10,"time_of_feeding":"08:00","feed_date":"2024-01-01"}]`))
		case http.MethodPut:
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"message":"Quantity exceeds silo stock."}`))
		case http.MethodDelete:
			deletes.Add(1)
			w.WriteHeader(http.StatusNoContent)
		}
	}))

	schema, err := farm.Lookup(farm.FeedUsage)
	require.NoError(t, err)
	tbl := table.New(schema, c.Resource(schema.Path), table.Options{})
	ctx := context.Background()

	require.NoError(t, tbl.Fetch(ctx))
	require.NoError(t, tbl.BeginEdit("1"))
	require.NoError(t, tbl.EditField("Quantity (kg)", "900"))
	require.Error(t, tbl.Commit(ctx))

	status := tbl.Status()
	require.NotNil(t, status)
	assert.Equal(t, "Quantity exceeds silo stock.", status.Message)
	assert.Equal(t, "10", tbl.Records()[0].Values["Quantity (kg)"])

	require.NoError(t, tbl.RequestDelete("1"))
	require.NoError(t, tbl.ConfirmDelete(ctx))
	assert.Empty(t, tbl.Records())
	assert.EqualValues(t, 1, deletes.Load())
}

func TestSettingsResource(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/settings", r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			w.Write([]byte(`{"farm_name":"Sunrise","no_of_birds":300,"measuring_unit":"Metric","data_retention_period":"6 Month"}`))
		case http.MethodPut:
			var body map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			if body["measuring_unit"] == "Stone" {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"message":"Measuring Unit must be one of Metric, Imperial."}`))
				return
			}
			assert.Equal(t, map[string]any{"no_of_birds": float64(450)}, body)
			w.Write([]byte(`{"farm_name":"Sunrise","no_of_birds":450,"measuring_unit":"Metric","data_retention_period":"6 Month"}`))
		}
	}))
	ctx := context.Background()

	got, err := c.Settings().Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Sunrise", got.FarmName)
	assert.EqualValues(t, 300, got.NoOfBirds)

	birds := int64(450)
	got, err = c.Settings().Update(ctx, settings.Patch{NoOfBirds: &birds})
	require.NoError(t, err)
	assert.EqualValues(t, 450, got.NoOfBirds)

	unit := "Stone"
	_, err = c.Settings().Update(ctx, settings.Patch{MeasuringUnit: &unit})
	var re *table.RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "Measuring Unit must be one of Metric, Imperial.", re.Message)
}
