package cachectl

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tang-admin/internal/apiserver/auth"
	"tang-admin/internal/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMux(t *testing.T) (*http.ServeMux, cache.Cache) {
	t.Helper()
	c := cache.NewMemoryCache()
	mux := http.NewServeMux()
	NewHandler(c).RegisterRoutes(mux)
	return mux, c
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestCacheSetGetRoundTrip(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := doJSON(t, mux, http.MethodPost, "/api/Cache/greeting", map[string]string{"msg": "hello"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, "/api/Cache/greeting", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "hello", body.Data["msg"])
}

func TestCacheGetMiss(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := doJSON(t, mux, http.MethodGet, "/api/Cache/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "cache not found")
}

func TestCacheSetExpiry(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := doJSON(t, mux, http.MethodPost, "/api/Cache/short?expiry=5", "v")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, mux, http.MethodPost, "/api/Cache/bad?expiry=-1", "v")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid expiry")

	rec = doJSON(t, mux, http.MethodPost, "/api/Cache/bad?expiry=abc", "v")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCacheRemoveAndExists(t *testing.T) {
	mux, _ := newTestMux(t)

	doJSON(t, mux, http.MethodPost, "/api/Cache/k1", 42)

	rec := doJSON(t, mux, http.MethodGet, "/api/Cache/exists/k1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":true`)

	rec = doJSON(t, mux, http.MethodDelete, "/api/Cache/k1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, "/api/Cache/exists/k1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":false`)
}

func TestCacheBatchGet(t *testing.T) {
	mux, _ := newTestMux(t)

	doJSON(t, mux, http.MethodPost, "/api/Cache/a", "va")
	doJSON(t, mux, http.MethodPost, "/api/Cache/b", "vb")

	rec := doJSON(t, mux, http.MethodPost, "/api/Cache/batch/get", []string{"a", "b", "missing"})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, map[string]string{"a": "va", "b": "vb"}, body.Data)
}

func TestCacheBatchRemove(t *testing.T) {
	mux, _ := newTestMux(t)

	doJSON(t, mux, http.MethodPost, "/api/Cache/a", 1)
	doJSON(t, mux, http.MethodPost, "/api/Cache/b", 2)

	rec := doJSON(t, mux, http.MethodPost, "/api/Cache/batch/remove", []string{"a", "b"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, "/api/Cache/a", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = doJSON(t, mux, http.MethodGet, "/api/Cache/b", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCacheClearRequiresPermission(t *testing.T) {
	mux, _ := newTestMux(t)

	doJSON(t, mux, http.MethodPost, "/api/Cache/k", 1)

	// 未认证
	req := httptest.NewRequest(http.MethodDelete, "/api/Cache/clear", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// 无 system:cache 权限
	p := &auth.Principal{UserID: 1, UserName: "user", Permissions: []string{"system:user"}}
	req = httptest.NewRequest(http.MethodDelete, "/api/Cache/clear", nil)
	req = req.WithContext(auth.WithPrincipal(req.Context(), p))
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "permission denied")

	// 有权限 → 清空
	p = &auth.Principal{UserID: 1, UserName: "admin", Permissions: []string{"system:cache"}}
	req = httptest.NewRequest(http.MethodDelete, "/api/Cache/clear", nil)
	req = req.WithContext(auth.WithPrincipal(req.Context(), p))
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, "/api/Cache/k", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
