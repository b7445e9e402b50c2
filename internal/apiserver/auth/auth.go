// Package auth 用户认证：JWT 令牌签发与校验、密码哈希、HTTP 中间件
package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// contextKey context 键类型
type contextKey string

const ctxKeyPrincipal contextKey = "principal"

// Config 认证配置
type Config struct {
	Secret        string `yaml:"-"` // 只从 JWT_SECRET 环境变量读取
	Issuer        string `yaml:"issuer"`
	Audience      string `yaml:"audience"`
	ExpireMinutes int    `yaml:"expire_minutes"`
}

// DefaultConfig 返回默认认证配置
func DefaultConfig() Config {
	return Config{
		Issuer:        "tang-admin",
		Audience:      "tang-admin-web",
		ExpireMinutes: 120,
	}
}

// TTL 令牌有效期
func (c Config) TTL() time.Duration {
	return time.Duration(c.ExpireMinutes) * time.Minute
}

// ============================================================================
// 密码哈希
// ============================================================================

// HashPassword 使用 bcrypt 哈希密码
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword 验证密码
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ============================================================================
// JWT Token
// ============================================================================

// Claims JWT 声明
//
// 除注册声明外携带用户名、角色编码集合与权限编码集合，
// 供下游做角色/权限检查，无需回查数据库。
type Claims struct {
	jwt.RegisteredClaims
	Name        string   `json:"name,omitempty"`
	Roles       []string `json:"roles,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// GenerateToken 签发访问令牌
//
// Subject 为用户 ID，JTI 每次签发为全新随机值。
func GenerateToken(cfg Config, userID int64, userName string, roles, permissions []string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    cfg.Issuer,
			Audience:  jwt.ClaimStrings{cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL())),
			ID:        uuid.NewString(),
		},
		Name:        userName,
		Roles:       roles,
		Permissions: permissions,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.Secret))
}

// ParseToken 解析并验证 JWT
//
// 校验签名、签发者、受众与有效期，任一不符即失败。
func ParseToken(cfg Config, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(cfg.Secret), nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithAudience(cfg.Audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// ============================================================================
// Principal
// ============================================================================

// Principal 从已验证令牌还原出的请求主体
//
// 每个请求构造一次，生命周期内不可变。
type Principal struct {
	UserID      int64
	UserName    string
	Roles       []string
	Permissions []string
}

// HasRole 检查主体是否拥有指定角色
func (p *Principal) HasRole(code string) bool {
	for _, r := range p.Roles {
		if r == code {
			return true
		}
	}
	return false
}

// HasPermission 检查主体是否拥有指定权限
func (p *Principal) HasPermission(code string) bool {
	for _, perm := range p.Permissions {
		if perm == code {
			return true
		}
	}
	return false
}

func principalFromClaims(claims *Claims) (*Principal, error) {
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid subject: %w", err)
	}
	return &Principal{
		UserID:      userID,
		UserName:    claims.Name,
		Roles:       claims.Roles,
		Permissions: claims.Permissions,
	}, nil
}

// WithPrincipal 将请求主体注入 context
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ctxKeyPrincipal, p)
}

// PrincipalFromContext 从 context 获取请求主体，未认证时返回 nil
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(ctxKeyPrincipal).(*Principal)
	return p
}
