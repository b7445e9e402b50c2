// Package user 用户领域 - HTTP 处理
package user

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"tang-admin/internal/apiserver/auth"
	"tang-admin/internal/apiserver/respond"
	"tang-admin/internal/apperr"
	"tang-admin/internal/model"
	"tang-admin/internal/storage/repository"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Handler 用户领域 HTTP 处理器
type Handler struct {
	store *repository.Store
}

// NewHandler 创建用户处理器
func NewHandler(store *repository.Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes 注册用户相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/User/list", respond.Handle(h.List))
	mux.HandleFunc("GET /api/User/page", respond.Handle(h.Page))
	mux.HandleFunc("GET /api/User/{id}", respond.Handle(h.Get))
	mux.HandleFunc("POST /api/User", respond.Handle(h.Create))
	mux.HandleFunc("PUT /api/User", respond.Handle(h.Update))
	mux.HandleFunc("DELETE /api/User/{id}", respond.Handle(h.Delete))
	mux.HandleFunc("GET /api/User/{id}/roles", respond.Handle(h.GetRoles))
	mux.HandleFunc("POST /api/User/{id}/roles", respond.Handle(h.SetRoles))
	mux.HandleFunc("POST /api/User/{id}/password", respond.Handle(h.ResetPassword))
}

// CreateRequest 创建用户的请求体
type CreateRequest struct {
	UserName string `json:"userName" validate:"required,max=64"`
	Password string `json:"password" validate:"required,min=6"`
	NickName string `json:"nickName" validate:"max=64"`
	Avatar   string `json:"avatar"`
	Status   *int   `json:"status"`
	Remark   string `json:"remark"`
}

// UpdateRequest 更新用户的请求体（不含密码，ID 在请求体中）
type UpdateRequest struct {
	ID       int64  `json:"id" validate:"required,gt=0"`
	UserName string `json:"userName" validate:"required,max=64"`
	NickName string `json:"nickName" validate:"max=64"`
	Avatar   string `json:"avatar"`
	Status   *int   `json:"status"`
	Remark   string `json:"remark"`
}

// SetRolesRequest 设置用户角色的请求体
type SetRolesRequest struct {
	RoleIDs []int64 `json:"roleIds"`
}

// ResetPasswordRequest 重置密码的请求体
type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=6"`
}

// List 列出用户
// GET /api/User/list?keyword=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) error {
	users, err := h.store.ListUsers(r.Context(), r.URL.Query().Get("keyword"))
	if err != nil {
		return err
	}
	respond.OK(w, users)
	return nil
}

// Page 分页查询用户
// GET /api/User/page?pageIndex=&pageSize=&keyword=
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) error {
	page := model.PageRequest{
		PageIndex: queryInt(r, "pageIndex"),
		PageSize:  queryInt(r, "pageSize"),
	}
	page.Normalize()

	users, total, err := h.store.PageUsers(r.Context(), r.URL.Query().Get("keyword"), page)
	if err != nil {
		return err
	}
	respond.OK(w, model.NewPageResult(page, total, users))
	return nil
}

// Get 获取用户详情
// GET /api/User/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	u, err := h.store.GetUser(r.Context(), id)
	if err != nil {
		return err
	}
	if u == nil {
		return apperr.NotFound("user not found")
	}
	respond.OK(w, u)
	return nil
}

// Create 创建用户
// POST /api/User
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) error {
	var req CreateRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		return err
	}
	if err := validate.Struct(&req); err != nil {
		return apperr.New("invalid user payload: " + err.Error())
	}

	exists, err := h.store.UserNameExists(r.Context(), req.UserName, 0)
	if err != nil {
		return err
	}
	if exists {
		return apperr.New("user name already exists")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return err
	}
	u := &model.User{
		UserName: req.UserName,
		Password: hash,
		NickName: req.NickName,
		Avatar:   req.Avatar,
		Status:   model.StatusEnabled,
		Remark:   req.Remark,
	}
	if req.Status != nil {
		u.Status = *req.Status
	}
	if err := h.store.CreateUser(r.Context(), u); err != nil {
		return err
	}
	respond.OK(w, u)
	return nil
}

// Update 更新用户（密码不在此接口修改）
// PUT /api/User
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) error {
	var req UpdateRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		return err
	}
	if err := validate.Struct(&req); err != nil {
		return apperr.New("invalid user payload: " + err.Error())
	}

	u, err := h.store.GetUser(r.Context(), req.ID)
	if err != nil {
		return err
	}
	if u == nil {
		return apperr.NotFound("user not found")
	}

	exists, err := h.store.UserNameExists(r.Context(), req.UserName, req.ID)
	if err != nil {
		return err
	}
	if exists {
		return apperr.New("user name already exists")
	}

	u.UserName = req.UserName
	u.NickName = req.NickName
	u.Avatar = req.Avatar
	u.Remark = req.Remark
	if req.Status != nil {
		u.Status = *req.Status
	}
	if err := h.store.UpdateUser(r.Context(), u); err != nil {
		return err
	}
	respond.OK(w, u)
	return nil
}

// Delete 删除用户（软删除）
// DELETE /api/User/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	u, err := h.store.GetUser(r.Context(), id)
	if err != nil {
		return err
	}
	if u == nil {
		return apperr.NotFound("user not found")
	}
	if err := h.store.SoftDeleteUser(r.Context(), id); err != nil {
		return err
	}
	respond.OKEmpty(w)
	return nil
}

// GetRoles 查询用户已分配的角色
// GET /api/User/{id}/roles
func (h *Handler) GetRoles(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	roles, err := h.store.GetUserRoles(r.Context(), id)
	if err != nil {
		return err
	}
	respond.OK(w, roles)
	return nil
}

// SetRoles 设置用户角色（整体替换）
// POST /api/User/{id}/roles
func (h *Handler) SetRoles(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	var req SetRolesRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		return err
	}
	u, err := h.store.GetUser(r.Context(), id)
	if err != nil {
		return err
	}
	if u == nil {
		return apperr.NotFound("user not found")
	}
	if err := h.store.SetUserRoles(r.Context(), id, req.RoleIDs); err != nil {
		return err
	}
	respond.OKEmpty(w)
	return nil
}

// ResetPassword 重置用户密码
// POST /api/User/{id}/password
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	var req ResetPasswordRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		return err
	}
	if err := validate.Struct(&req); err != nil {
		return apperr.New("password must be at least 6 characters")
	}
	u, err := h.store.GetUser(r.Context(), id)
	if err != nil {
		return err
	}
	if u == nil {
		return apperr.NotFound("user not found")
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return err
	}
	if err := h.store.UpdateUserPassword(r.Context(), id, hash); err != nil {
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

func queryInt(r *http.Request, name string) int {
	v, _ := strconv.Atoi(r.URL.Query().Get(name))
	return v
}
