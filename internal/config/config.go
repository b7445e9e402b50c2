// Package config 统一配置管理
//
// 配置加载策略：
//  1. 从 .env 加载敏感信息（密码、密钥）和 APP_ENV
//  2. 根据 APP_ENV 加载对应的 configs/{env}.yaml 配置文件
//  3. 环境变量可覆盖 YAML 配置
//
// 使用方式：
//   - 开发环境: APP_ENV=dev (默认)
//   - 测试环境: APP_ENV=test
//   - 生产环境: APP_ENV=prod
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment 环境类型
type Environment string

const (
	EnvProduction  Environment = "prod"
	EnvTest        Environment = "test"
	EnvDevelopment Environment = "dev"
)

// Config 应用配置
type Config struct {
	Env      Environment    `yaml:"-"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	JWT      JWTConfig      `yaml:"jwt"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

// DatabaseConfig 数据库配置
//
// driver 取值 sqlite / mysql / postgres；sqlite 仅使用 path。
// 密码只从 DB_PASSWORD 环境变量读取，不写入 YAML。
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
	Password string `yaml:"-"`
}

// CacheConfig 缓存配置，type 取值 memory / redis
type CacheConfig struct {
	Type   string      `yaml:"type"`
	Prefix string      `yaml:"prefix"`
	Redis  RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	DB       int    `yaml:"db"`
	Password string `yaml:"-"`
}

// JWTConfig 令牌签发配置，密钥只从 JWT_SECRET 环境变量读取
type JWTConfig struct {
	Issuer        string `yaml:"issuer"`
	Audience      string `yaml:"audience"`
	ExpireMinutes int    `yaml:"expire_minutes"`
	Secret        string `yaml:"-"`
}

// LogConfig 日志配置
type LogConfig struct {
	FilePath     string `yaml:"file_path"`
	RetainedDays int    `yaml:"retained_days"`
	Console      bool   `yaml:"console"`
}

var configPaths = []string{
	"configs",
	"../configs",
	"../../configs",
	"../../../configs",
}

var envPaths = []string{
	".env",
	"../.env",
	"../../.env",
	"../../../.env",
}

// Load 加载配置
// 1. 加载 .env（敏感信息 + APP_ENV）
// 2. 根据 APP_ENV 加载 configs/{env}.yaml
// 3. 环境变量注入敏感信息
func Load() *Config {
	// 加载 .env
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	env := parseEnv(getEnv("APP_ENV", "dev"))
	cfg := loadYAMLConfig(env)
	cfg.Env = env

	// 敏感信息只来自环境变量
	cfg.Database.Password = os.Getenv("DB_PASSWORD")
	cfg.Cache.Redis.Password = os.Getenv("REDIS_PASSWORD")
	cfg.JWT.Secret = os.Getenv("JWT_SECRET")

	// 常用覆盖项
	if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Server.Port = port
	}

	return cfg
}

// loadYAMLConfig 加载 YAML 配置文件
// 加载顺序：默认值 → {env}.yaml
func loadYAMLConfig(env Environment) *Config {
	cfg := &Config{
		Server:   ServerConfig{Port: "8080"},
		Database: DatabaseConfig{Driver: "sqlite", Path: "data/tang.db", Host: "localhost", Port: 5432, User: "tang", Name: "tang_admin", SSLMode: "disable"},
		Cache:    CacheConfig{Type: "memory", Prefix: "tang:cache:", Redis: RedisConfig{Host: "localhost", Port: 6379, DB: 0}},
		JWT:      JWTConfig{Issuer: "tang-admin", Audience: "tang-admin-web", ExpireMinutes: 120},
		Log:      LogConfig{FilePath: "logs", RetainedDays: 7, Console: true},
	}

	filename := fmt.Sprintf("%s.yaml", env)
	for _, base := range configPaths {
		path := filepath.Join(base, filename)
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, cfg)
			break
		}
	}

	return cfg
}

// DSN 构建数据库连接字符串
func (d DatabaseConfig) DSN() string {
	switch d.Driver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
			d.User, d.Password, d.Host, d.Port, d.Name)
	case "postgres":
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
			d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
	default:
		return d.Path
	}
}

// Addr 返回 Redis 地址 host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

func parseEnv(env string) Environment {
	switch strings.ToLower(env) {
	case "test":
		return EnvTest
	case "prod", "production":
		return EnvProduction
	default:
		return EnvDevelopment
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsTest 是否为测试环境
func (c *Config) IsTest() bool {
	return c.Env == EnvTest
}

// String 返回配置摘要（不含敏感信息）
func (c *Config) String() string {
	return fmt.Sprintf("Config{Env: %s, Driver: %s, Cache: %s, Port: %s}",
		c.Env, c.Database.Driver, c.Cache.Type, c.Server.Port)
}
