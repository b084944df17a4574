package tracking

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/analytics-tagger/internal/analytics/flashstore"
	"github.com/ignite/analytics-tagger/internal/config"
	"github.com/ignite/analytics-tagger/internal/page"
)

func newTestRouter(t *testing.T, origins []string) http.Handler {
	t.Helper()
	pr, err := page.New(config.PageConfig{Title: "Shop"})
	require.NoError(t, err)
	sessions := NewSessions(flashstore.NewMemoryStore(time.Minute, nil), testSessionCfg, gaFactory)
	return NewRouter(NewHandler(sessions, pr, false), origins)
}

func TestNewRouter_CORS(t *testing.T) {
	router := newTestRouter(t, []string{"https://shop.example.com"})

	req := httptest.NewRequest(http.MethodOptions, "/analytics/events", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "https://shop.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodOptions, "/analytics/events", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewRouter_DefaultOrigins(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}
