package settings

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func serve(t *testing.T, mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandler_RoundTrip(t *testing.T) {
	mux := http.NewServeMux()
	NewHandler(newTestService(t), zap.NewNop()).Register(mux)

	res := serve(t, mux, http.MethodGet, "/api/settings", "")
	require.Equal(t, http.StatusOK, res.Code)
	var got Settings
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &got))
	assert.Equal(t, "6 Month", got.DataRetentionPeriod)

	res = serve(t, mux, http.MethodPut, "/api/settings", `{"farm_name":"Sunrise","farm_size":3.5,"no_of_birds":250,"measuring_unit":"Imperial"}`)
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())

	// a GET body can be sent straight back
	res = serve(t, mux, http.MethodGet, "/api/settings", "")
	res = serve(t, mux, http.MethodPost, "/api/settings", res.Body.String())
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &got))
	assert.Equal(t, "Sunrise", got.FarmName)
	assert.Equal(t, 3.5, got.FarmSize)
	assert.EqualValues(t, 250, got.NoOfBirds)
	assert.Equal(t, UnitImperial, got.MeasuringUnit)
}

func TestHandler_Errors(t *testing.T) {
	mux := http.NewServeMux()
	NewHandler(newTestService(t), zap.NewNop()).Register(mux)

	tests := []struct {
		name, body, want string
	}{
		{"bad json", `{`, "invalid JSON body"},
		{"wrong type", `{"no_of_birds":"many"}`, "no_of_birds has the wrong type"},
		{"validation", `{"data_retention_period":"2 Weeks"}`, "Data Retention Period must be one of 3 Month, 6 Month, 1 Year, Forever."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := serve(t, mux, http.MethodPut, "/api/settings", tt.body)
			assert.Equal(t, http.StatusBadRequest, res.Code)
			assert.JSONEq(t, `{"message":`+quote(tt.want)+`}`, res.Body.String())
		})
	}
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
