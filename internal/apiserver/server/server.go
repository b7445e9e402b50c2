// Package server 路由配置与核心基础设施
//
// 本文件定义 HTTP API 路由，将请求分发到各领域独立包。
package server

import (
	"encoding/json"
	"net/http"

	"tang-admin/internal/apiserver/auth"
	"tang-admin/internal/apiserver/cachectl"
	"tang-admin/internal/apiserver/middleware"
	"tang-admin/internal/apiserver/permission"
	"tang-admin/internal/apiserver/role"
	"tang-admin/internal/apiserver/user"
	"tang-admin/internal/cache"
	"tang-admin/internal/storage/repository"
)

// Handler API 处理器
//
// Handler 是所有 HTTP API 的入口，负责：
//   - 路由请求到各领域处理器
//   - 管理存储层与缓存连接
//   - 组装中间件链
type Handler struct {
	store   *repository.Store
	cache   cache.Cache
	authCfg auth.Config
	metrics *middleware.Metrics
}

// NewHandler 创建 Handler 实例
func NewHandler(store *repository.Store, c cache.Cache, authCfg auth.Config) *Handler {
	return &Handler{
		store:   store,
		cache:   c,
		authCfg: authCfg,
		metrics: middleware.NewMetrics("tang"),
	}
}

// GetMetrics 返回指标实例
func (h *Handler) GetMetrics() *middleware.Metrics {
	return h.metrics
}

// Router 返回配置好的 HTTP 路由
//
// 路由规则：
//
// 健康检查:
//   - GET /health - 服务健康检查
//
// 认证 (Auth):
//   - POST /api/Auth/login - 登录换取令牌
//
// 用户管理 (User):
//   - GET    /api/User/list          - 列出用户
//   - GET    /api/User/page          - 分页查询用户
//   - GET    /api/User/{id}          - 获取用户详情
//   - POST   /api/User               - 创建用户
//   - PUT    /api/User               - 更新用户
//   - DELETE /api/User/{id}          - 删除用户（软删除）
//   - GET    /api/User/{id}/roles    - 查询用户角色
//   - POST   /api/User/{id}/roles    - 设置用户角色
//   - POST   /api/User/{id}/password - 重置密码
//
// 角色管理 (Role):
//   - GET    /api/Role/list               - 列出角色
//   - GET    /api/Role/{id}               - 获取角色详情
//   - POST   /api/Role                    - 创建角色
//   - PUT    /api/Role                    - 更新角色
//   - DELETE /api/Role/{id}               - 删除角色（软删除）
//   - GET    /api/Role/{id}/permissions   - 查询角色权限
//   - POST   /api/Role/{id}/permissions   - 设置角色权限
//
// 权限管理 (Permission):
//   - GET    /api/Permission/list   - 平铺列出权限
//   - GET    /api/Permission/tree   - 权限树
//   - GET    /api/Permission/{id}   - 获取权限详情
//   - POST   /api/Permission        - 创建权限
//   - PUT    /api/Permission        - 更新权限
//   - DELETE /api/Permission/{id}   - 删除权限（软删除）
//
// 缓存管理 (Cache):
//   - GET    /api/Cache/{key}         - 读取缓存
//   - POST   /api/Cache/{key}?expiry= - 写入缓存（过期分钟数）
//   - DELETE /api/Cache/{key}         - 删除缓存键
//   - GET    /api/Cache/exists/{key}  - 判断键是否存在
//   - DELETE /api/Cache/clear         - 清空缓存（需 system:cache 权限）
//   - POST   /api/Cache/batch/get     - 批量读取
//   - POST   /api/Cache/batch/remove  - 批量删除
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	// 健康检查
	mux.HandleFunc("GET /health", h.Health)

	// Prometheus 指标端点
	mux.Handle("GET /metrics", middleware.MetricsHandler())

	// Auth 接口
	authService := auth.NewService(h.store, h.authCfg)
	authHandler := auth.NewHandler(authService)
	authHandler.OnLogin = h.metrics.RecordLogin
	authHandler.Register(mux)

	// User 接口
	user.NewHandler(h.store).RegisterRoutes(mux)

	// Role 接口
	role.NewHandler(h.store).RegisterRoutes(mux)

	// Permission 接口
	permission.NewHandler(h.store).RegisterRoutes(mux)

	// Cache 管理接口
	cacheHandler := cachectl.NewHandler(h.cache)
	cacheHandler.OnOp = h.metrics.RecordCacheOp
	cacheHandler.RegisterRoutes(mux)

	// 中间件链（由内向外）：外壳包装 → 认证 → 指标 → CORS → 恢复
	var handler http.Handler = mux
	handler = middleware.Envelope(handler)
	handler = auth.Middleware(h.authCfg)(handler)
	handler = h.metrics.MetricsMiddleware(handler)
	handler = corsMiddleware(handler)
	handler = middleware.Recover(handler)

	return handler
}

// corsMiddleware 添加 CORS 头支持跨域请求
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Health 健康检查接口
//
// 路由: GET /health
//
// 用于负载均衡器和监控系统检查服务状态。
// 返回 {"status": "ok"} 表示服务正常运行。
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
