package dashboard

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessions_CookieKeepsBoard(t *testing.T) {
	s := NewSessions(time.Hour, newBackend().board, nil)

	rec := httptest.NewRecorder()
	first := s.Board(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, cookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	assert.Same(t, first, s.Board(rec, req))
	assert.Empty(t, rec.Result().Cookies())
	assert.Equal(t, 1, s.Len())
}

func TestSessions_UnknownCookieStartsNewSession(t *testing.T) {
	s := NewSessions(time.Hour, newBackend().board, nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: "stale"})

	rec := httptest.NewRecorder()
	s.Board(rec, req)
	require.Len(t, rec.Result().Cookies(), 1)
	assert.NotEqual(t, "stale", rec.Result().Cookies()[0].Value)
}

func TestSessions_PruneIdle(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewSessions(time.Minute, newBackend().board, nil)
	s.now = func() time.Time { return now }

	s.Board(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	s.Board(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, 2, s.Len())

	now = now.Add(30 * time.Second)
	assert.Zero(t, s.Prune())

	now = now.Add(time.Minute)
	assert.Equal(t, 2, s.Prune())
	assert.Zero(t, s.Len())
}
