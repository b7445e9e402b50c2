// Package cache 统一缓存抽象
//
// 两种可互换后端：进程内存缓存与 Redis。后端在启动时由配置静态选定，
// 运行期不可切换。值以 JSON 形式存取，调用方拿到的是原始 JSON 字节。
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Cache 缓存接口
//
// ttl 为 0 表示永不过期。Get/Exists 对不存在或已过期的键返回未命中，
// 不视为错误。
type Cache interface {
	// Get 读取键值，第二个返回值表示是否命中
	Get(ctx context.Context, key string) (json.RawMessage, bool, error)
	// Set 写入键值，value 被 JSON 序列化后存储
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	// Remove 删除键
	Remove(ctx context.Context, key string) error
	// Exists 检查键是否存在且未过期
	Exists(ctx context.Context, key string) (bool, error)
	// Clear 清空本应用持有的全部缓存条目
	Clear(ctx context.Context) error
}

// Config 缓存配置
type Config struct {
	// Type 后端类型: "memory" 或 "redis"
	Type string `yaml:"type"`
	// Prefix Redis 键命名空间前缀，Clear 只作用于该前缀下的键
	Prefix string      `yaml:"prefix"`
	Redis  RedisConfig `yaml:"redis"`
}

// RedisConfig Redis 后端连接配置
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	DB       int    `yaml:"db"`
	Password string `yaml:"-"` // 只从 REDIS_PASSWORD 环境变量读取
}

// New 按配置选择缓存后端
func New(cfg Config) (Cache, error) {
	switch cfg.Type {
	case "", "memory":
		return NewMemoryCache(), nil
	case "redis":
		addr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
		return NewRedisCache(addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Prefix)
	default:
		return nil, fmt.Errorf("unknown cache type: %q", cfg.Type)
	}
}
