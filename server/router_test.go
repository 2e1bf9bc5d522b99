package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cameronmore/go-courses/config"
	"github.com/cameronmore/go-courses/courses"
	"github.com/cameronmore/go-courses/logging"
	"github.com/cameronmore/go-courses/sessions"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"
	cfg.LoginRate = 100
	cfg.LoginBurst = 100
	return cfg
}

func newTestHandler(t *testing.T, store sessions.UserStore, logs io.Writer) http.Handler {
	t.Helper()
	catalog, err := courses.DefaultCatalog()
	require.NoError(t, err)
	h, err := NewHandler(testConfig(), store, catalog, logging.New(logs, "info").Hook(requestIDHook{}))
	require.NoError(t, err)
	return h
}

func TestNewHandler_RequiresSecret(t *testing.T) {
	cfg := testConfig()
	cfg.SecretKey = ""
	catalog, err := courses.DefaultCatalog()
	require.NoError(t, err)

	_, err = NewHandler(cfg, sessions.NewMemoryStore(), catalog, logging.New(io.Discard, "info"))
	assert.ErrorIs(t, err, sessions.ErrMissingSecret)
}

func TestRouter_ProtectedRoutesRedirect(t *testing.T) {
	h := newTestHandler(t, sessions.NewMemoryStore(), io.Discard)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/dashboard", http.StatusFound},
		{http.MethodGet, "/dashboard/courses", http.StatusFound},
		{http.MethodGet, "/dashboard/unknown", http.StatusFound},
		{http.MethodPost, "/dashboard/courses/register/os", http.StatusSeeOther},
		{http.MethodPost, "/dashboard/courses/deregister/os", http.StatusSeeOther},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "/login", rec.Header().Get("Location"))
		})
	}
}

func TestRouter_PublicPages(t *testing.T) {
	h := newTestHandler(t, sessions.NewMemoryStore(), io.Discard)

	for _, path := range []string{"/", "/login", "/signup", "/public/css/main.css"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRouter_Healthz(t *testing.T) {
	h := newTestHandler(t, sessions.NewMemoryStore(), io.Discard)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestRouter_AccessLogCarriesRequestId(t *testing.T) {
	var logs bytes.Buffer
	h := newTestHandler(t, sessions.NewMemoryStore(), &logs)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(logs.Bytes()), &entry))
	assert.Equal(t, "request", entry["message"])
	assert.Equal(t, "/healthz", entry["path"])
	assert.NotEmpty(t, entry["req_id"])
}

type brokenWriter struct {
	header http.Header
}

func (b *brokenWriter) Header() http.Header        { return b.header }
func (b *brokenWriter) Write([]byte) (int, error)  { return 0, errors.New("broken pipe") }
func (b *brokenWriter) WriteHeader(statusCode int) {}

func TestHealthz_LogsWriteError(t *testing.T) {
	var logs bytes.Buffer
	h := hlog.NewHandler(zerolog.New(&logs))(http.HandlerFunc(healthz))

	h.ServeHTTP(&brokenWriter{header: http.Header{}}, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Contains(t, logs.String(), "Error writing health response")
	assert.Contains(t, logs.String(), "broken pipe")
}

func TestRouter_LoginIsRateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.LoginRate = 0.001
	cfg.LoginBurst = 1
	catalog, err := courses.DefaultCatalog()
	require.NoError(t, err)
	h, err := NewHandler(cfg, sessions.NewMemoryStore(), catalog, logging.New(io.Discard, "info"))
	require.NoError(t, err)

	send := func() int {
		r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("email=a&password=b"))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec.Code
	}
	assert.Equal(t, http.StatusUnauthorized, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
}

func TestRouter_RateLimitIgnoresForwardedHeaders(t *testing.T) {
	cfg := testConfig()
	cfg.LoginRate = 0.001
	cfg.LoginBurst = 1
	catalog, err := courses.DefaultCatalog()
	require.NoError(t, err)
	h, err := NewHandler(cfg, sessions.NewMemoryStore(), catalog, logging.New(io.Discard, "info"))
	require.NoError(t, err)

	var statuses []int
	for i := 0; i < 5; i++ {
		r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("email=a&password=b"))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		r.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
		r.Header.Set("X-Real-IP", fmt.Sprintf("198.51.100.%d", i+1))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		statuses = append(statuses, rec.Code)
	}

	assert.Equal(t, http.StatusUnauthorized, statuses[0])
	for _, status := range statuses[1:] {
		assert.Equal(t, http.StatusTooManyRequests, status)
	}
}

func TestRouter_TrustProxyUsesForwardedAddress(t *testing.T) {
	cfg := testConfig()
	cfg.LoginRate = 0.001
	cfg.LoginBurst = 1
	cfg.TrustProxy = true
	catalog, err := courses.DefaultCatalog()
	require.NoError(t, err)
	h, err := NewHandler(cfg, sessions.NewMemoryStore(), catalog, logging.New(io.Discard, "info"))
	require.NoError(t, err)

	send := func(forwardedFor string) int {
		r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("email=a&password=b"))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		r.Header.Set("X-Forwarded-For", forwardedFor)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec.Code
	}
	assert.Equal(t, http.StatusUnauthorized, send("203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.1"))
	assert.Equal(t, http.StatusUnauthorized, send("203.0.113.2"), "each proxied client has its own budget")
}

// End to end over a real SQLite database: sign up, register, deregister, log out.
func TestPortalFlow_SQLite(t *testing.T) {
	ctx := context.Background()
	db, store, err := OpenStore(ctx, config.DriverSQLite, filepath.Join(t.TempDir(), "portal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(ctx))

	srv := httptest.NewServer(newTestHandler(t, store, io.Discard))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}

	body := func(resp *http.Response) string {
		t.Helper()
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return string(b)
	}

	resp, err := client.PostForm(srv.URL+"/signup", url.Values{
		"username":        {"john"},
		"email":           {"f20224321@goa.bits-pilani.ac.in"},
		"password":        {"hunter2"},
		"confirmPassword": {"hunter2"},
	})
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/dashboard", resp.Request.URL.String())
	assert.Contains(t, body(resp), "Welcome, john")

	resp, err = client.PostForm(srv.URL+"/dashboard/courses/register/os", nil)
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/dashboard/courses", resp.Request.URL.String())
	assert.Contains(t, body(resp), "/dashboard/courses/deregister/os")

	u, err := store.LoadUserByEmail(ctx, "f20224321@goa.bits-pilani.ac.in")
	require.NoError(t, err)
	assert.Equal(t, []string{"os"}, u.RegisteredCourses)

	resp, err = client.PostForm(srv.URL+"/dashboard/courses/deregister/os", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = body(resp)

	u, err = store.LoadUserByEmail(ctx, "f20224321@goa.bits-pilani.ac.in")
	require.NoError(t, err)
	assert.Empty(t, u.RegisteredCourses)

	resp, err = client.Get(srv.URL + "/logout")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/login", resp.Request.URL.String())
	_ = body(resp)

	resp, err = client.Get(srv.URL + "/dashboard")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/login", resp.Request.URL.String(), "the session is gone after logout")
	_ = body(resp)
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	_, _, err := OpenStore(context.Background(), "mysql", "dsn")
	assert.Error(t, err)
}
