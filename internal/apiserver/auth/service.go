package auth

import (
	"context"
	"errors"

	"tang-admin/internal/model"
)

// ErrInvalidCredentials 登录凭据无效
//
// 用户不存在与密码错误返回同一个错误，不向客户端透露差异。
var ErrInvalidCredentials = errors.New("invalid username or password")

// ErrAccountDisabled 账号已被禁用
var ErrAccountDisabled = errors.New("account is disabled")

// CredentialStore 认证所需的存储接口
type CredentialStore interface {
	GetUserByUserName(ctx context.Context, userName string) (*model.User, error)
	ListRoleCodesByUser(ctx context.Context, userID int64) ([]string, error)
	ListPermissionCodesByUser(ctx context.Context, userID int64) ([]string, error)
}

// Service 认证业务逻辑
type Service struct {
	store CredentialStore
	cfg   Config
}

// NewService 创建认证服务
func NewService(store CredentialStore, cfg Config) *Service {
	return &Service{store: store, cfg: cfg}
}

// Login 校验凭据并签发令牌
//
// 解析用户当前的角色/权限编码集合写入令牌声明。
func (s *Service) Login(ctx context.Context, userName, password string) (string, error) {
	user, err := s.store.GetUserByUserName(ctx, userName)
	if err != nil {
		return "", err
	}
	if user == nil || !CheckPassword(password, user.Password) {
		return "", ErrInvalidCredentials
	}
	if user.Status != model.StatusEnabled {
		return "", ErrAccountDisabled
	}

	roles, err := s.store.ListRoleCodesByUser(ctx, user.ID)
	if err != nil {
		return "", err
	}
	permissions, err := s.store.ListPermissionCodesByUser(ctx, user.ID)
	if err != nil {
		return "", err
	}

	return GenerateToken(s.cfg, user.ID, user.UserName, roles, permissions)
}
