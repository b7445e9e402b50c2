// Package permission 权限领域 - HTTP 处理
package permission

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

// Handler 权限领域 HTTP 处理器
type Handler struct {
	store *repository.Store
}

// NewHandler 创建权限处理器
func NewHandler(store *repository.Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes 注册权限相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/Permission/list", respond.Handle(h.List))
	mux.HandleFunc("GET /api/Permission/tree", respond.Handle(h.Tree))
	mux.HandleFunc("GET /api/Permission/{id}", respond.Handle(h.Get))
	mux.HandleFunc("POST /api/Permission", respond.Handle(h.Create))
	mux.HandleFunc("PUT /api/Permission", respond.Handle(h.Update))
	mux.HandleFunc("DELETE /api/Permission/{id}", respond.Handle(h.Delete))
}

// SaveRequest 创建/更新权限的请求体（更新时 ID 在请求体中）
type SaveRequest struct {
	ID             int64  `json:"id"`
	ParentID       int64  `json:"parentId"`
	Name           string `json:"name" validate:"required,max=64"`
	Type           int    `json:"type" validate:"oneof=1 2"`
	PermissionCode string `json:"permissionCode" validate:"required,max=128"`
	Path           string `json:"path"`
	Component      string `json:"component"`
	Icon           string `json:"icon"`
	Sort           int    `json:"sort"`
	Status         *int   `json:"status"`
}

// List 平铺列出权限（按 sort 排序）
// GET /api/Permission/list?keyword=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) error {
	permissions, err := h.store.ListPermissions(r.Context(), r.URL.Query().Get("keyword"))
	if err != nil {
		return err
	}
	respond.OK(w, permissions)
	return nil
}

// Tree 以树形结构返回权限
//
// keyword 过滤后命中的节点可能失去父节点，此时挂到根层展示。
// GET /api/Permission/tree?keyword=
func (h *Handler) Tree(w http.ResponseWriter, r *http.Request) error {
	permissions, err := h.store.ListPermissions(r.Context(), r.URL.Query().Get("keyword"))
	if err != nil {
		return err
	}

	ids := make(map[int64]bool, len(permissions))
	for _, p := range permissions {
		ids[p.ID] = true
	}
	tree := model.BuildPermissionTree(permissions, 0)
	for _, p := range permissions {
		if p.ParentID != 0 && !ids[p.ParentID] {
			p.Children = model.BuildPermissionTree(permissions, p.ID)
			tree = append(tree, p)
		}
	}
	respond.OK(w, tree)
	return nil
}

// Get 获取权限详情
// GET /api/Permission/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	p, err := h.store.GetPermission(r.Context(), id)
	if err != nil {
		return err
	}
	if p == nil {
		return apperr.NotFound("permission not found")
	}
	respond.OK(w, p)
	return nil
}

// Create 创建权限
// POST /api/Permission
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) error {
	var req SaveRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		return err
	}
	if err := validate.Struct(&req); err != nil {
		return apperr.New("invalid permission payload: " + err.Error())
	}
	if err := h.checkParent(r, req.ParentID, 0); err != nil {
		return err
	}

	exists, err := h.store.PermissionCodeExists(r.Context(), req.PermissionCode, 0)
	if err != nil {
		return err
	}
	if exists {
		return apperr.New("permission code already exists")
	}

	p := &model.Permission{
		ParentID:       req.ParentID,
		Name:           req.Name,
		Type:           req.Type,
		PermissionCode: req.PermissionCode,
		Path:           req.Path,
		Component:      req.Component,
		Icon:           req.Icon,
		Sort:           req.Sort,
		Status:         model.StatusEnabled,
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
	if err := h.store.CreatePermission(r.Context(), p); err != nil {
		return err
	}
	respond.OK(w, p)
	return nil
}

// Update 更新权限
// PUT /api/Permission
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) error {
	var req SaveRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		return err
	}
	if err := validate.Struct(&req); err != nil {
		return apperr.New("invalid permission payload: " + err.Error())
	}
	if req.ID <= 0 {
		return apperr.New("invalid id")
	}
	id := req.ID
	if err := h.checkParent(r, req.ParentID, id); err != nil {
		return err
	}

	p, err := h.store.GetPermission(r.Context(), id)
	if err != nil {
		return err
	}
	if p == nil {
		return apperr.NotFound("permission not found")
	}

	exists, err := h.store.PermissionCodeExists(r.Context(), req.PermissionCode, id)
	if err != nil {
		return err
	}
	if exists {
		return apperr.New("permission code already exists")
	}

	p.ParentID = req.ParentID
	p.Name = req.Name
	p.Type = req.Type
	p.PermissionCode = req.PermissionCode
	p.Path = req.Path
	p.Component = req.Component
	p.Icon = req.Icon
	p.Sort = req.Sort
	if req.Status != nil {
		p.Status = *req.Status
	}
	if err := h.store.UpdatePermission(r.Context(), p); err != nil {
		return err
	}
	respond.OK(w, p)
	return nil
}

// Delete 删除权限（软删除）
//
// 存在未删除子节点或仍被角色引用时拒绝删除。
// DELETE /api/Permission/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	p, err := h.store.GetPermission(r.Context(), id)
	if err != nil {
		return err
	}
	if p == nil {
		return apperr.NotFound("permission not found")
	}

	hasChildren, err := h.store.HasChildPermissions(r.Context(), id)
	if err != nil {
		return err
	}
	if hasChildren {
		return apperr.New("permission has child nodes and cannot be deleted")
	}

	inUse, err := h.store.PermissionInUse(r.Context(), id)
	if err != nil {
		return err
	}
	if inUse {
		return apperr.New("permission is assigned to roles and cannot be deleted")
	}

	if err := h.store.SoftDeletePermission(r.Context(), id); err != nil {
		return err
	}
	respond.OKEmpty(w)
	return nil
}

// checkParent 校验父节点存在且未删除（parentID 为 0 表示根节点）
func (h *Handler) checkParent(r *http.Request, parentID, selfID int64) error {
	if parentID == 0 {
		return nil
	}
	if parentID == selfID {
		return apperr.New("permission cannot be its own parent")
	}
	parent, err := h.store.GetPermission(r.Context(), parentID)
	if err != nil {
		return err
	}
	if parent == nil {
		return apperr.New("parent permission not found")
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.New("invalid id")
	}
	return id, nil
}
