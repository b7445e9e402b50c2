// Package main API Server 入口
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tang-admin/internal/apiserver/auth"
	"tang-admin/internal/apiserver/server"
	"tang-admin/internal/cache"
	"tang-admin/internal/config"
	"tang-admin/internal/storage/dbutil"
	"tang-admin/internal/storage/driver/mysql"
	"tang-admin/internal/storage/driver/postgres"
	"tang-admin/internal/storage/driver/sqlite"
	"tang-admin/internal/storage/repository"
	"tang-admin/pkg/logging"
)

func main() {
	// 加载配置（自动加载 .env，根据 APP_ENV 切换 YAML）
	cfg := config.Load()

	logger, err := logging.New(logging.Config{
		Level:        os.Getenv("LOG_LEVEL"),
		Format:       "text",
		FilePath:     cfg.Log.FilePath,
		Console:      cfg.Log.Console,
		RetainedDays: cfg.Log.RetainedDays,
		Component:    "api-server",
	})
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Close()
	logger.SetAsDefault()

	log.Printf("Starting API Server... [env=%s]", cfg.Env)
	log.Printf("Config: %s", cfg.String())

	if cfg.JWT.Secret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	// 初始化数据库
	db, dialect, err := openDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if err := dialect.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	store := repository.NewStore(db, dialect)
	defer store.Close()
	log.Printf("Connected to database [driver=%s]", cfg.Database.Driver)

	// 种子数据（仅用户表为空时生效）
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	adminHash, err := auth.HashPassword("123456")
	if err != nil {
		log.Fatalf("Failed to hash seed password: %v", err)
	}
	if err := store.EnsureSeedData(ctx, "admin", adminHash); err != nil {
		log.Fatalf("Failed to seed data: %v", err)
	}

	// 初始化缓存
	appCache, err := cache.New(cache.Config{
		Type:   cfg.Cache.Type,
		Prefix: cfg.Cache.Prefix,
		Redis: cache.RedisConfig{
			Host:     cfg.Cache.Redis.Host,
			Port:     cfg.Cache.Redis.Port,
			DB:       cfg.Cache.Redis.DB,
			Password: cfg.Cache.Redis.Password,
		},
	})
	if err != nil {
		log.Fatalf("Failed to init cache: %v", err)
	}
	log.Printf("Cache ready [type=%s]", cfg.Cache.Type)

	authCfg := auth.Config{
		Secret:        cfg.JWT.Secret,
		Issuer:        cfg.JWT.Issuer,
		Audience:      cfg.JWT.Audience,
		ExpireMinutes: cfg.JWT.ExpireMinutes,
	}
	h := server.NewHandler(store, appCache, authCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      h.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 优雅关闭
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("API Server listening on :%s", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	fmt.Println("Server stopped")
}

// openDatabase 按配置的 driver 打开数据库连接
func openDatabase(cfg config.DatabaseConfig) (*sql.DB, dbutil.Dialect, error) {
	switch cfg.Driver {
	case "sqlite", "":
		db, err := sqlite.Open(cfg.DSN())
		return db, sqlite.NewDialect(), err
	case "mysql":
		db, err := mysql.Open(cfg.DSN())
		return db, mysql.NewDialect(), err
	case "postgres":
		db, err := postgres.Open(cfg.DSN())
		return db, postgres.NewDialect(), err
	default:
		return nil, nil, fmt.Errorf("unsupported database driver: %q", cfg.Driver)
	}
}
