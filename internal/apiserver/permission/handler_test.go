package permission

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
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func seedPermission(t *testing.T, store *repository.Store, name, code string, parentID int64, sort int) *model.Permission {
	t.Helper()
	p := &model.Permission{ParentID: parentID, Name: name, Type: model.PermissionTypeMenu,
		PermissionCode: code, Sort: sort, Status: model.StatusEnabled}
	p.CreateTime = time.Now()
	require.NoError(t, store.CreatePermission(context.Background(), p))
	return p
}

func TestCreatePermissionEndpoint(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := doJSON(t, mux, http.MethodPost, "/api/Permission", SaveRequest{
		Name:           "系统管理",
		Type:           model.PermissionTypeMenu,
		PermissionCode: "system",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"permissionCode":"system"`)
}

func TestCreatePermissionValidation(t *testing.T) {
	mux, store := newTestMux(t)

	// 非法类型
	rec := doJSON(t, mux, http.MethodPost, "/api/Permission", SaveRequest{
		Name: "x", Type: 3, PermissionCode: "x",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// 重复编码
	seedPermission(t, store, "已存在", "dup", 0, 1)
	rec = doJSON(t, mux, http.MethodPost, "/api/Permission", SaveRequest{
		Name: "y", Type: model.PermissionTypeMenu, PermissionCode: "dup",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "permission code already exists")

	// 父节点不存在
	rec = doJSON(t, mux, http.MethodPost, "/api/Permission", SaveRequest{
		Name: "z", Type: model.PermissionTypeMenu, PermissionCode: "z", ParentID: 999,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "parent permission not found")
}

func TestPermissionTreeEndpoint(t *testing.T) {
	mux, store := newTestMux(t)
	root := seedPermission(t, store, "系统管理", "system", 0, 1)
	seedPermission(t, store, "用户管理", "system:user", root.ID, 1)
	seedPermission(t, store, "角色管理", "system:role", root.ID, 2)

	rec := doJSON(t, mux, http.MethodGet, "/api/Permission/tree", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []*model.Permission `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "system", body.Data[0].PermissionCode)
	require.Len(t, body.Data[0].Children, 2)
	assert.Equal(t, "system:user", body.Data[0].Children[0].PermissionCode)
}

func TestPermissionTreeKeywordOrphans(t *testing.T) {
	mux, store := newTestMux(t)
	root := seedPermission(t, store, "系统管理", "system", 0, 1)
	seedPermission(t, store, "用户管理", "system:user", root.ID, 1)

	// 过滤命中子节点但父节点被过滤掉时，子节点挂到根层
	rec := doJSON(t, mux, http.MethodGet, "/api/Permission/tree?keyword=用户", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []*model.Permission `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "system:user", body.Data[0].PermissionCode)
}

func TestDeletePermissionConstraints(t *testing.T) {
	mux, store := newTestMux(t)
	ctx := context.Background()
	root := seedPermission(t, store, "父", "parent", 0, 1)
	child := seedPermission(t, store, "子", "child", root.ID, 1)

	// 有子节点 → 拒绝
	rec := doJSON(t, mux, http.MethodDelete, "/api/Permission/"+strconv.FormatInt(root.ID, 10), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "child nodes")

	// 被角色引用 → 拒绝
	r := &model.Role{RoleName: "引用者", RoleCode: "ref", Status: model.StatusEnabled}
	r.CreateTime = time.Now()
	require.NoError(t, store.CreateRole(ctx, r))
	require.NoError(t, store.SetRolePermissions(ctx, r.ID, []int64{child.ID}))

	rec = doJSON(t, mux, http.MethodDelete, "/api/Permission/"+strconv.FormatInt(child.ID, 10), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "assigned to roles")

	// 解除引用后先删子再删父
	require.NoError(t, store.SetRolePermissions(ctx, r.ID, nil))
	rec = doJSON(t, mux, http.MethodDelete, "/api/Permission/"+strconv.FormatInt(child.ID, 10), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, mux, http.MethodDelete, "/api/Permission/"+strconv.FormatInt(root.ID, 10), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdatePermissionSelfParentRejected(t *testing.T) {
	mux, store := newTestMux(t)
	p := seedPermission(t, store, "节点", "node", 0, 1)

	rec := doJSON(t, mux, http.MethodPut, "/api/Permission", SaveRequest{
		ID: p.ID, ParentID: p.ID, Name: "节点", Type: model.PermissionTypeMenu, PermissionCode: "node",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "own parent")
}
