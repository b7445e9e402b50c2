// Package role 角色领域 - HTTP 处理
package role

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"tang-admin/internal/apiserver/respond"
	"tang-admin/internal/apperr"
	"tang-admin/internal/model"
	"tang-admin/internal/storage/repository"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Handler 角色领域 HTTP 处理器
type Handler struct {
	store *repository.Store
}

// NewHandler 创建角色处理器
func NewHandler(store *repository.Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes 注册角色相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/Role/list", respond.Handle(h.List))
	mux.HandleFunc("GET /api/Role/{id}", respond.Handle(h.Get))
	mux.HandleFunc("POST /api/Role", respond.Handle(h.Create))
	mux.HandleFunc("PUT /api/Role", respond.Handle(h.Update))
	mux.HandleFunc("DELETE /api/Role/{id}", respond.Handle(h.Delete))
	mux.HandleFunc("GET /api/Role/{id}/permissions", respond.Handle(h.GetPermissions))
	mux.HandleFunc("POST /api/Role/{id}/permissions", respond.Handle(h.SetPermissions))
}

// SaveRequest 创建/更新角色的请求体（更新时 ID 在请求体中）
type SaveRequest struct {
	ID       int64  `json:"id"`
	RoleName string `json:"roleName" validate:"required,max=64"`
	RoleCode string `json:"roleCode" validate:"required,max=64"`
	Status   *int   `json:"status"`
	Remark   string `json:"remark"`
}

// SetPermissionsRequest 设置角色权限的请求体
type SetPermissionsRequest struct {
	PermissionIDs []int64 `json:"permissionIds"`
}

// List 列出角色
// GET /api/Role/list?keyword=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) error {
	roles, err := h.store.ListRoles(r.Context(), r.URL.Query().Get("keyword"))
	if err != nil {
		return err
	}
	respond.OK(w, roles)
	return nil
}

// Get 获取角色详情
// GET /api/Role/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	role, err := h.store.GetRole(r.Context(), id)
	if err != nil {
		return err
	}
	if role == nil {
		return apperr.NotFound("role not found")
	}
	respond.OK(w, role)
	return nil
}

// Create 创建角色
// POST /api/Role
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) error {
	var req SaveRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		return err
	}
	if err := validate.Struct(&req); err != nil {
		return apperr.New("invalid role payload: " + err.Error())
	}

	exists, err := h.store.RoleCodeExists(r.Context(), req.RoleCode, 0)
	if err != nil {
		return err
	}
	if exists {
		return apperr.New("role code already exists")
	}

	role := &model.Role{
		RoleName: req.RoleName,
		RoleCode: req.RoleCode,
		Status:   model.StatusEnabled,
		Remark:   req.Remark,
	}
	if req.Status != nil {
		role.Status = *req.Status
	}
	if err := h.store.CreateRole(r.Context(), role); err != nil {
		return err
	}
	respond.OK(w, role)
	return nil
}

// Update 更新角色
// PUT /api/Role
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) error {
	var req SaveRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		return err
	}
	if err := validate.Struct(&req); err != nil {
		return apperr.New("invalid role payload: " + err.Error())
	}
	if req.ID <= 0 {
		return apperr.New("invalid id")
	}
	id := req.ID

	role, err := h.store.GetRole(r.Context(), id)
	if err != nil {
		return err
	}
	if role == nil {
		return apperr.NotFound("role not found")
	}

	exists, err := h.store.RoleCodeExists(r.Context(), req.RoleCode, id)
	if err != nil {
		return err
	}
	if exists {
		return apperr.New("role code already exists")
	}

	role.RoleName = req.RoleName
	role.RoleCode = req.RoleCode
	role.Remark = req.Remark
	if req.Status != nil {
		role.Status = *req.Status
	}
	if err := h.store.UpdateRole(r.Context(), role); err != nil {
		return err
	}
	respond.OK(w, role)
	return nil
}

// Delete 删除角色（软删除）
//
// 角色仍被用户引用时拒绝删除。
// DELETE /api/Role/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	role, err := h.store.GetRole(r.Context(), id)
	if err != nil {
		return err
	}
	if role == nil {
		return apperr.NotFound("role not found")
	}

	inUse, err := h.store.RoleInUse(r.Context(), id)
	if err != nil {
		return err
	}
	if inUse {
		return apperr.New("role is assigned to users and cannot be deleted")
	}

	if err := h.store.SoftDeleteRole(r.Context(), id); err != nil {
		return err
	}
	respond.OKEmpty(w)
	return nil
}

// GetPermissions 查询角色已分配的权限
// GET /api/Role/{id}/permissions
func (h *Handler) GetPermissions(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	permissions, err := h.store.GetRolePermissions(r.Context(), id)
	if err != nil {
		return err
	}
	respond.OK(w, permissions)
	return nil
}

// SetPermissions 设置角色权限（整体替换）
// POST /api/Role/{id}/permissions
func (h *Handler) SetPermissions(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	var req SetPermissionsRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		return err
	}
	role, err := h.store.GetRole(r.Context(), id)
	if err != nil {
		return err
	}
	if role == nil {
		return apperr.NotFound("role not found")
	}
	if err := h.store.SetRolePermissions(r.Context(), id, req.PermissionIDs); err != nil {
		return err
	}
	respond.OKEmpty(w)
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.New("invalid id")
	}
	return id, nil
}
