package auth

import (
	"net/http"
	"strings"

	"tang-admin/internal/apiserver/respond"
	"tang-admin/internal/model"
)

// 免认证路由白名单（前缀匹配）
var publicPrefixes = []string{
	"/api/Auth/login",
	"/health",
	"/metrics",
}

func isPublicRoute(method, path string) bool {
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	// 静态资源放行（前端 SPA）
	if !strings.HasPrefix(path, "/api/") {
		return true
	}
	return false
}

// Middleware 创建 JWT 认证中间件
//
// 除白名单路由外，所有请求必须携带有效 Bearer Token；
// 校验失败统一返回 401 外壳，不透露具体失败原因。
// 校验通过后将 Principal 注入 context 供下游使用。
func Middleware(cfg Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicRoute(r.Method, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			// 提取 Bearer Token
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeUnauthorized(w)
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				writeUnauthorized(w)
				return
			}

			claims, err := ParseToken(cfg, parts[1])
			if err != nil {
				writeUnauthorized(w)
				return
			}
			principal, err := principalFromClaims(claims)
			if err != nil {
				writeUnauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// RequirePermission 创建权限校验装饰器
//
// 主体的权限声明中不含指定编码时返回 403。
func RequirePermission(code string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			principal := PrincipalFromContext(r.Context())
			if principal == nil {
				writeUnauthorized(w)
				return
			}
			if !principal.HasPermission(code) {
				respond.WriteResult(w, http.StatusForbidden,
					model.Failure(http.StatusForbidden, "permission denied"))
				return
			}
			next(w, r)
		}
	}
}

// RequireRole 创建角色校验装饰器
func RequireRole(code string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			principal := PrincipalFromContext(r.Context())
			if principal == nil {
				writeUnauthorized(w)
				return
			}
			if !principal.HasRole(code) {
				respond.WriteResult(w, http.StatusForbidden,
					model.Failure(http.StatusForbidden, "permission denied"))
				return
			}
			next(w, r)
		}
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	respond.WriteResult(w, http.StatusUnauthorized,
		model.Failure(http.StatusUnauthorized, "unauthorized"))
}
