package auth

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"tang-admin/internal/apiserver/respond"
	"tang-admin/internal/apperr"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoginRequest 登录请求体
type LoginRequest struct {
	UserName string `json:"userName" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse 登录响应数据
type LoginResponse struct {
	Token string `json:"token"`
}

// Handler 认证相关 HTTP 处理器
type Handler struct {
	service *Service

	// OnLogin 登录结果回调（"success" / "failure"），用于指标采集，可为 nil
	OnLogin func(result string)
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/Auth/login", respond.Handle(h.login))
}

func (h *Handler) recordLogin(result string) {
	if h.OnLogin != nil {
		h.OnLogin(result)
	}
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) error {
	var req LoginRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		return err
	}
	if err := validate.Struct(&req); err != nil {
		return apperr.New("userName and password are required")
	}

	token, err := h.service.Login(r.Context(), req.UserName, req.Password)
	if err != nil {
		h.recordLogin("failure")
		if errors.Is(err, ErrInvalidCredentials) {
			return apperr.New("invalid username or password")
		}
		if errors.Is(err, ErrAccountDisabled) {
			return apperr.New("account is disabled")
		}
		return err
	}

	h.recordLogin("success")
	respond.OK(w, LoginResponse{Token: token})
	return nil
}
