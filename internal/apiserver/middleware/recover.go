package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"tang-admin/internal/apiserver/respond"
	"tang-admin/internal/model"
)

// Recover 创建异常恢复中间件
//
// 捕获处理器 panic，记录堆栈后返回 500 外壳，
// 内部细节不出现在响应体中。
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("panic recovered",
					"method", r.Method,
					"path", r.URL.Path,
					"panic", rec,
					"stack", string(debug.Stack()))
				respond.WriteResult(w, http.StatusInternalServerError,
					model.Failure(http.StatusInternalServerError, "internal server error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
