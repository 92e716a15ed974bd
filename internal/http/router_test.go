package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"nippo/internal/auth"
	"nippo/internal/config"
	"nippo/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "nippo.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&auth.User{}, &report.Report{}))

	cfg := config.Config{HTTPAddr: ":0"}
	srv := httptest.NewServer(NewRouter(cfg, gdb, auth.NewJWT("test-secret")))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func register(t *testing.T, srv *httptest.Server, email string) string {
	t.Helper()
	resp := doJSON(t, http.MethodPost, srv.URL+"/auth/register", "", map[string]string{
		"email": email, "password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[map[string]string](t, resp)["token"]
}

func TestRegisterLoginAndMe(t *testing.T) {
	srv := newTestServer(t)

	register(t, srv, "tanaka@example.com")

	// duplicate email conflicts
	resp := doJSON(t, http.MethodPost, srv.URL+"/auth/register", "", map[string]string{
		"email": "tanaka@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// wrong password
	resp = doJSON(t, http.MethodPost, srv.URL+"/auth/login", "", map[string]string{
		"email": "tanaka@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// correct login, then /me reflects the session
	resp = doJSON(t, http.MethodPost, srv.URL+"/auth/login", "", map[string]string{
		"email": "tanaka@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token := decode[map[string]string](t, resp)["token"]

	resp = doJSON(t, http.MethodGet, srv.URL+"/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decode[map[string]any](t, resp)
	assert.Equal(t, "tanaka@example.com", me["email"])

	// logout answers even without state to clear
	resp = doJSON(t, http.MethodPost, srv.URL+"/auth/logout", "", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestReportsRequireAuth(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/reports/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestReportCRUDFlow(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "tanaka@example.com")

	// create
	resp := doJSON(t, http.MethodPost, srv.URL+"/reports/", token, map[string]string{
		"date": "2025-01-16", "person": "Tanaka", "location": "SiteA",
		"content": "meeting and site visit",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[map[string]any](t, resp)
	id := uint64(created["id"].(float64))
	require.NotZero(t, id)

	// month listing contains exactly the created record
	resp = doJSON(t, http.MethodGet, srv.URL+"/reports/?year=2025&month=1", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]map[string]any](t, resp)
	require.Len(t, list, 1)
	assert.Equal(t, "meeting and site visit", list[0]["content"])
	assert.Equal(t, "2025-01-16 - Tanaka", list[0]["label"])

	// selection prefill by id
	resp = doJSON(t, http.MethodGet, srv.URL+"/reports/"+itoa(id), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	one := decode[map[string]any](t, resp)
	assert.Equal(t, "SiteA", one["location"])

	// update
	resp = doJSON(t, http.MethodPut, srv.URL+"/reports/"+itoa(id), token, map[string]string{
		"date": "2025-01-16", "person": "Tanaka", "location": "SiteA",
		"content": "revised content",
	})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/reports/"+itoa(id), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "revised content", decode[map[string]any](t, resp)["content"])

	// delete, then the listing never includes it again
	resp = doJSON(t, http.MethodDelete, srv.URL+"/reports/"+itoa(id), token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/reports/?year=2025&month=1", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]map[string]any](t, resp))

	// repeated delete reports not found, no crash
	resp = doJSON(t, http.MethodDelete, srv.URL+"/reports/"+itoa(id), token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReportValidationAndFilters(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "tanaka@example.com")

	// blank content refused before any store write
	resp := doJSON(t, http.MethodPost, srv.URL+"/reports/", token, map[string]string{
		"date": "2025-01-16", "person": "Tanaka", "content": "  ",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// half-picked range refuses the fetch
	resp = doJSON(t, http.MethodGet, srv.URL+"/reports/?from=2025-01-01", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// keyword OR match across two records
	for _, c := range []string{"client meeting", "warehouse inspection"} {
		resp = doJSON(t, http.MethodPost, srv.URL+"/reports/", token, map[string]string{
			"date": "2025-01-10", "person": "Tanaka", "content": c,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/reports/?year=2025&month=1&q=meeting+inspection", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]map[string]any](t, resp), 2)

	resp = doJSON(t, http.MethodGet, srv.URL+"/reports/?year=2025&month=1&q=meeting", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]map[string]any](t, resp)
	require.Len(t, list, 1)
	assert.Equal(t, "client meeting", list[0]["content"])
}

func TestReportsAreOwnerScoped(t *testing.T) {
	srv := newTestServer(t)
	tokenA := register(t, srv, "a@example.com")
	tokenB := register(t, srv, "b@example.com")

	resp := doJSON(t, http.MethodPost, srv.URL+"/reports/", tokenA, map[string]string{
		"date": "2025-01-16", "person": "A", "content": "private note",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := uint64(decode[map[string]any](t, resp)["id"].(float64))

	resp = doJSON(t, http.MethodGet, srv.URL+"/reports/?year=2025&month=1", tokenB, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]map[string]any](t, resp))

	resp = doJSON(t, http.MethodGet, srv.URL+"/reports/"+itoa(id), tokenB, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/reports/"+itoa(id), tokenB, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestExportCSV(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "tanaka@example.com")

	resp := doJSON(t, http.MethodPost, srv.URL+"/reports/", token, map[string]string{
		"date": "2025-01-16", "person": "Tanaka", "location": "SiteA",
		"content": "meeting and site visit",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = doJSON(t, http.MethodPost, srv.URL+"/reports/", token, map[string]string{
		"date": "2025-02-02", "person": "Tanaka", "content": "out of period",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/reports/export?year=2025&month=1", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "nippo_2025-01.csv")

	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)

	body := buf.Bytes()
	require.True(t, bytes.HasPrefix(body, []byte{0xEF, 0xBB, 0xBF}))
	assert.Contains(t, string(body), "日付,担当者,場所,業務内容")
	assert.Contains(t, string(body), "2025-01-16,Tanaka,SiteA,meeting and site visit")
	assert.NotContains(t, string(body), "out of period")
}

func itoa(id uint64) string {
	return strconv.FormatUint(id, 10)
}
