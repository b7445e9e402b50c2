// Package middleware 提供 HTTP 中间件：响应外壳、异常恢复、指标采集
package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"tang-admin/internal/model"
)

// 不参与外壳包装的路径前缀
var envelopeExemptPrefixes = []string{
	"/metrics",
	"/health",
}

func envelopeExempt(path string) bool {
	for _, prefix := range envelopeExemptPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// envelopeRecorder 缓冲响应体，延迟写出以便包装
type envelopeRecorder struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (rec *envelopeRecorder) WriteHeader(code int) {
	rec.status = code
}

func (rec *envelopeRecorder) Write(p []byte) (int, error) {
	return rec.buf.Write(p)
}

// Envelope 创建统一响应外壳中间件
//
// 200 且响应体非空时，将业务数据包装为 {code, message, data}；
// 已是外壳格式的响应原样透传，保证包装幂等。
// 非 200 响应与空响应体不做包装。
func Envelope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if envelopeExempt(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		rec := &envelopeRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		body := rec.buf.Bytes()
		if rec.status != http.StatusOK || len(body) == 0 {
			flush(w, rec.status, body)
			return
		}
		if isEnveloped(body) {
			flush(w, rec.status, body)
			return
		}

		var payload any
		if err := json.Unmarshal(body, &payload); err != nil {
			// 非 JSON 响应体当作字符串数据包装
			payload = string(body)
		}
		wrapped, err := json.Marshal(model.Success(payload))
		if err != nil {
			flush(w, rec.status, body)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		flush(w, http.StatusOK, wrapped)
	})
}

func flush(w http.ResponseWriter, status int, body []byte) {
	w.WriteHeader(status)
	if len(body) > 0 {
		w.Write(body)
	}
}

// isEnveloped 判断响应体是否已是外壳格式
//
// 判定条件：顶层 JSON 对象同时含非负数值 code 与非空字符串 message 字段。
// 字段存在但取值非法（负 code、空 message）的响应体视为业务数据，照常包装。
func isEnveloped(body []byte) bool {
	var probe struct {
		Code    *int    `json:"code"`
		Message *string `json:"message"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return false
	}
	return probe.Code != nil && *probe.Code >= 0 &&
		probe.Message != nil && *probe.Message != ""
}
