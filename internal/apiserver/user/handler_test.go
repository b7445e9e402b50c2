package user

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"tang-admin/internal/model"
	sqlitedriver "tang-admin/internal/storage/driver/sqlite"
	"tang-admin/internal/storage/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMux(t *testing.T) (*http.ServeMux, *repository.Store) {
	t.Helper()
	db, err := sqlitedriver.Open(":memory:")
	require.NoError(t, err)
	dialect := sqlitedriver.NewDialect()
	require.NoError(t, dialect.AutoMigrate(db))
	store := repository.NewStore(db, dialect)
	t.Cleanup(func() { store.Close() })

	mux := http.NewServeMux()
	NewHandler(store).RegisterRoutes(mux)
	return mux, store
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data any) (int, string) {
	t.Helper()
	var body struct {
		Code    int             `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	if data != nil && len(body.Data) > 0 {
		require.NoError(t, json.Unmarshal(body.Data, data))
	}
	return body.Code, body.Message
}

func seedUser(t *testing.T, store *repository.Store, name string) *model.User {
	t.Helper()
	u := &model.User{UserName: name, Password: "hash", NickName: name, Status: model.StatusEnabled}
	u.CreateTime = time.Now()
	require.NoError(t, store.CreateUser(context.Background(), u))
	return u
}

func TestCreateUserEndpoint(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := doJSON(t, mux, http.MethodPost, "/api/User", CreateRequest{
		UserName: "zhangsan",
		Password: "123456",
		NickName: "张三",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var got model.User
	code, message := decodeEnvelope(t, rec, &got)
	assert.Equal(t, 200, code)
	assert.Equal(t, "success", message)
	assert.NotZero(t, got.ID)
	assert.Equal(t, "zhangsan", got.UserName)

	// 密码不得出现在响应中
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "123456")
}

func TestCreateUserDuplicateName(t *testing.T) {
	mux, store := newTestMux(t)
	seedUser(t, store, "zhangsan")

	rec := doJSON(t, mux, http.MethodPost, "/api/User", CreateRequest{
		UserName: "zhangsan",
		Password: "123456",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	code, message := decodeEnvelope(t, rec, nil)
	assert.Equal(t, 400, code)
	assert.Equal(t, "user name already exists", message)
}

func TestCreateUserValidation(t *testing.T) {
	mux, _ := newTestMux(t)

	// 缺密码
	rec := doJSON(t, mux, http.MethodPost, "/api/User", CreateRequest{UserName: "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// 密码过短
	rec = doJSON(t, mux, http.MethodPost, "/api/User", CreateRequest{UserName: "x", Password: "123"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetUserEndpoint(t *testing.T) {
	mux, store := newTestMux(t)
	u := seedUser(t, store, "lisi")

	rec := doJSON(t, mux, http.MethodGet, "/api/User/"+itoa(u.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got model.User
	decodeEnvelope(t, rec, &got)
	assert.Equal(t, u.ID, got.ID)

	// 不存在 → 404 外壳
	rec = doJSON(t, mux, http.MethodGet, "/api/User/9999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	code, message := decodeEnvelope(t, rec, nil)
	assert.Equal(t, 404, code)
	assert.Equal(t, "user not found", message)

	// 非法 ID → 400
	rec = doJSON(t, mux, http.MethodGet, "/api/User/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateUserEndpoint(t *testing.T) {
	mux, store := newTestMux(t)
	u := seedUser(t, store, "wangwu")

	rec := doJSON(t, mux, http.MethodPut, "/api/User", UpdateRequest{
		ID:       u.ID,
		UserName: "wangwu",
		NickName: "老王",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var got model.User
	decodeEnvelope(t, rec, &got)
	assert.Equal(t, "老王", got.NickName)

	updated, err := store.GetUser(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "老王", updated.NickName)
}

func TestDeleteUserEndpoint(t *testing.T) {
	mux, store := newTestMux(t)
	u := seedUser(t, store, "zhaoliu")

	rec := doJSON(t, mux, http.MethodDelete, "/api/User/"+itoa(u.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	gone, err := store.GetUser(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	// 重复删除 → 404
	rec = doJSON(t, mux, http.MethodDelete, "/api/User/"+itoa(u.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSetUserRolesEndpoint(t *testing.T) {
	mux, store := newTestMux(t)
	ctx := context.Background()
	u := seedUser(t, store, "admin2")

	var roleIDs []int64
	for _, code := range []string{"r1", "r2", "r3"} {
		r := &model.Role{RoleName: code, RoleCode: code, Status: model.StatusEnabled}
		r.CreateTime = time.Now()
		require.NoError(t, store.CreateRole(ctx, r))
		roleIDs = append(roleIDs, r.ID)
	}

	rec := doJSON(t, mux, http.MethodPost, "/api/User/"+itoa(u.ID)+"/roles",
		SetRolesRequest{RoleIDs: roleIDs[:1]})
	require.Equal(t, http.StatusOK, rec.Code)

	// 整体替换为 r2+r3 后读回
	rec = doJSON(t, mux, http.MethodPost, "/api/User/"+itoa(u.ID)+"/roles",
		SetRolesRequest{RoleIDs: roleIDs[1:]})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, "/api/User/"+itoa(u.ID)+"/roles", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var roles []*model.Role
	decodeEnvelope(t, rec, &roles)
	require.Len(t, roles, 2)
	assert.Equal(t, roleIDs[1], roles[0].ID)
	assert.Equal(t, roleIDs[2], roles[1].ID)
}

func TestPageUsersEndpoint(t *testing.T) {
	mux, store := newTestMux(t)
	for _, name := range []string{"u1", "u2", "u3"} {
		seedUser(t, store, name)
	}

	rec := doJSON(t, mux, http.MethodGet, "/api/User/page?pageIndex=1&pageSize=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var page model.PageResult[*model.User]
	decodeEnvelope(t, rec, &page)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Items, 2)
	assert.True(t, page.HasNext)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
