package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tang-admin/internal/model"
	sqlitedriver "tang-admin/internal/storage/driver/sqlite"
	"tang-admin/internal/storage/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSeededStore 创建带种子数据的内存数据库 Store（admin/123456）
func newSeededStore(t *testing.T) *repository.Store {
	t.Helper()
	db, err := sqlitedriver.Open(":memory:")
	require.NoError(t, err)
	dialect := sqlitedriver.NewDialect()
	require.NoError(t, dialect.AutoMigrate(db))
	store := repository.NewStore(db, dialect)
	t.Cleanup(func() { store.Close() })

	hash, err := HashPassword("123456")
	require.NoError(t, err)
	require.NoError(t, store.EnsureSeedData(context.Background(), "admin", hash))
	return store
}

func TestLoginSuccessIssuesClaims(t *testing.T) {
	store := newSeededStore(t)
	cfg := testConfig()
	svc := NewService(store, cfg)

	token, err := svc.Login(context.Background(), "admin", "123456")
	require.NoError(t, err)

	claims, err := ParseToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Name)
	assert.Equal(t, []string{"admin"}, claims.Roles)
	assert.Contains(t, claims.Permissions, "system:user")
	assert.Contains(t, claims.Permissions, "system:role")
	assert.Contains(t, claims.Permissions, "system:menu")
}

func TestLoginWrongPassword(t *testing.T) {
	store := newSeededStore(t)
	svc := NewService(store, testConfig())

	_, err := svc.Login(context.Background(), "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownUser(t *testing.T) {
	store := newSeededStore(t)
	svc := NewService(store, testConfig())

	// 未知用户与密码错误返回同一个错误
	_, err := svc.Login(context.Background(), "nobody", "123456")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginDeletedUserRejected(t *testing.T) {
	store := newSeededStore(t)
	svc := NewService(store, testConfig())
	ctx := context.Background()

	admin, err := store.GetUserByUserName(ctx, "admin")
	require.NoError(t, err)
	require.NoError(t, store.SoftDeleteUser(ctx, admin.ID))

	_, err = svc.Login(ctx, "admin", "123456")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginDisabledUserRejected(t *testing.T) {
	store := newSeededStore(t)
	svc := NewService(store, testConfig())
	ctx := context.Background()

	admin, err := store.GetUserByUserName(ctx, "admin")
	require.NoError(t, err)
	admin.Status = model.StatusDisabled
	require.NoError(t, store.UpdateUser(ctx, admin))

	_, err = svc.Login(ctx, "admin", "123456")
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

// ============================================================================
// 登录 HTTP 接口测试
// ============================================================================

func loginRequest(t *testing.T, handler http.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/Auth/login", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func newLoginMux(t *testing.T) http.Handler {
	t.Helper()
	store := newSeededStore(t)
	svc := NewService(store, testConfig())
	mux := http.NewServeMux()
	NewHandler(svc).Register(mux)
	return mux
}

func TestLoginEndpointSuccess(t *testing.T) {
	mux := newLoginMux(t)

	rec := loginRequest(t, mux, LoginRequest{UserName: "admin", Password: "123456"})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Data    struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 200, body.Code)
	assert.Equal(t, "success", body.Message)
	assert.NotEmpty(t, body.Data.Token)

	claims, err := ParseToken(testConfig(), body.Data.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Name)
}

func TestLoginEndpointBadCredentials(t *testing.T) {
	mux := newLoginMux(t)

	rec := loginRequest(t, mux, LoginRequest{UserName: "admin", Password: "bad"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(400), body["code"])
	assert.Equal(t, "invalid username or password", body["message"])
}

func TestLoginEndpointMissingFields(t *testing.T) {
	mux := newLoginMux(t)

	rec := loginRequest(t, mux, LoginRequest{UserName: "admin"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginEndpointInvalidBody(t *testing.T) {
	mux := newLoginMux(t)

	req := httptest.NewRequest(http.MethodPost, "/api/Auth/login", bytes.NewBufferString("{broken"))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
