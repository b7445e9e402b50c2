// Package respond 统一响应写出
//
// 处理器以 func(w, r) error 形式编写，由 Handle 适配为 http.HandlerFunc：
// 业务错误(*apperr.Error)按其自带的状态码/消息写出响应外壳，
// 其余错误记录日志后统一写出 500，内部细节不出站。
// 成功路径通过 OK/OKEmpty 直接从已知形状构造外壳，无需运行期探测。
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"tang-admin/internal/apperr"
	"tang-admin/internal/model"
)

// HandlerFunc 业务处理器签名
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Handle 将业务处理器适配为 http.HandlerFunc 并接管错误映射
func Handle(fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}
		if e, ok := apperr.As(err); ok {
			WriteResult(w, e.Code, model.Failure(e.Code, e.Message))
			return
		}
		slog.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
		WriteResult(w, http.StatusInternalServerError,
			model.Failure(http.StatusInternalServerError, "internal server error"))
	}
}

// OK 写出成功响应
func OK(w http.ResponseWriter, data any) error {
	WriteResult(w, http.StatusOK, model.Success(data))
	return nil
}

// OKEmpty 写出无数据的成功响应
func OKEmpty(w http.ResponseWriter) error {
	WriteResult(w, http.StatusOK, model.Success(nil))
	return nil
}

// WriteResult 以指定 HTTP 状态码写出响应外壳
func WriteResult(w http.ResponseWriter, status int, result model.Result) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(result)
}

// DecodeJSON 解析请求体 JSON
func DecodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.New("invalid request body")
	}
	return nil
}
