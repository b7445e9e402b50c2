// Package cachectl 缓存管理 - HTTP 处理
package cachectl

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"tang-admin/internal/apiserver/auth"
	"tang-admin/internal/apiserver/respond"
	"tang-admin/internal/apperr"
	"tang-admin/internal/cache"
)

// Handler 缓存管理 HTTP 处理器
type Handler struct {
	cache cache.Cache

	// OnOp 缓存操作回调（操作名 + "hit"/"miss"/"ok"/"error"），用于指标采集，可为 nil
	OnOp func(operation, result string)
}

// NewHandler 创建缓存处理器
func NewHandler(c cache.Cache) *Handler {
	return &Handler{cache: c}
}

func (h *Handler) recordOp(operation, result string) {
	if h.OnOp != nil {
		h.OnOp(operation, result)
	}
}

// RegisterRoutes 注册缓存相关路由
//
// 清空操作影响面大，额外要求 system:cache 权限。
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/Cache/batch/get", respond.Handle(h.BatchGet))
	mux.HandleFunc("POST /api/Cache/batch/remove", respond.Handle(h.BatchRemove))
	mux.HandleFunc("DELETE /api/Cache/clear",
		auth.RequirePermission("system:cache")(respond.Handle(h.Clear)))
	mux.HandleFunc("GET /api/Cache/exists/{key}", respond.Handle(h.Exists))
	mux.HandleFunc("GET /api/Cache/{key}", respond.Handle(h.Get))
	mux.HandleFunc("POST /api/Cache/{key}", respond.Handle(h.Set))
	mux.HandleFunc("DELETE /api/Cache/{key}", respond.Handle(h.Remove))
}

// Get 读取缓存值
// GET /api/Cache/{key}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) error {
	key, err := pathKey(r)
	if err != nil {
		return err
	}
	raw, ok, err := h.cache.Get(r.Context(), key)
	if err != nil {
		h.recordOp("get", "error")
		return err
	}
	if !ok {
		h.recordOp("get", "miss")
		return apperr.NotFound("cache not found")
	}
	h.recordOp("get", "hit")
	respond.OK(w, json.RawMessage(raw))
	return nil
}

// Set 写入缓存值
//
// expiry 查询参数为过期分钟数，缺省或 0 表示不过期。
// POST /api/Cache/{key}?expiry=
func (h *Handler) Set(w http.ResponseWriter, r *http.Request) error {
	key, err := pathKey(r)
	if err != nil {
		return err
	}
	var value json.RawMessage
	if err := respond.DecodeJSON(r, &value); err != nil {
		return err
	}

	var ttl time.Duration
	if raw := r.URL.Query().Get("expiry"); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes < 0 {
			return apperr.New("invalid expiry")
		}
		ttl = time.Duration(minutes) * time.Minute
	}

	if err := h.cache.Set(r.Context(), key, value, ttl); err != nil {
		h.recordOp("set", "error")
		return err
	}
	h.recordOp("set", "ok")
	respond.OKEmpty(w)
	return nil
}

// Remove 删除缓存键
// DELETE /api/Cache/{key}
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) error {
	key, err := pathKey(r)
	if err != nil {
		return err
	}
	if err := h.cache.Remove(r.Context(), key); err != nil {
		h.recordOp("remove", "error")
		return err
	}
	h.recordOp("remove", "ok")
	respond.OKEmpty(w)
	return nil
}

// Exists 判断缓存键是否存在
// GET /api/Cache/exists/{key}
func (h *Handler) Exists(w http.ResponseWriter, r *http.Request) error {
	key, err := pathKey(r)
	if err != nil {
		return err
	}
	ok, err := h.cache.Exists(r.Context(), key)
	if err != nil {
		return err
	}
	respond.OK(w, ok)
	return nil
}

// Clear 清空本应用前缀下的全部缓存
// DELETE /api/Cache/clear
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) error {
	if err := h.cache.Clear(r.Context()); err != nil {
		h.recordOp("clear", "error")
		return err
	}
	h.recordOp("clear", "ok")
	respond.OKEmpty(w)
	return nil
}

// BatchGet 批量读取缓存
//
// 返回 key 到值的映射，未命中的键不出现在结果中。
// POST /api/Cache/batch/get
func (h *Handler) BatchGet(w http.ResponseWriter, r *http.Request) error {
	var keys []string
	if err := respond.DecodeJSON(r, &keys); err != nil {
		return err
	}
	result := make(map[string]json.RawMessage, len(keys))
	for _, key := range keys {
		raw, ok, err := h.cache.Get(r.Context(), key)
		if err != nil {
			return err
		}
		if ok {
			result[key] = raw
		}
	}
	respond.OK(w, result)
	return nil
}

// BatchRemove 批量删除缓存键
// POST /api/Cache/batch/remove
func (h *Handler) BatchRemove(w http.ResponseWriter, r *http.Request) error {
	var keys []string
	if err := respond.DecodeJSON(r, &keys); err != nil {
		return err
	}
	for _, key := range keys {
		if err := h.cache.Remove(r.Context(), key); err != nil {
			return err
		}
	}
	respond.OKEmpty(w)
	return nil
}

func pathKey(r *http.Request) (string, error) {
	key := r.PathValue("key")
	if key == "" {
		return "", apperr.New("cache key is required")
	}
	return key, nil
}
