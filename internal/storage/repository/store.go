// Package repository 数据库无关的业务存储层
//
// 通过 dbutil.Dialect 接口屏蔽不同数据库的 SQL 差异，
// 所有 SQL 以 PostgreSQL 风格编写，运行时由 Dialect.Rebind() 转换。
//
// 软删除约定：实体查询统一从各文件的 base 查询常量出发，
// 排除已删除行的谓词只出现在 base 查询中，不在调用点重复。
package repository

import (
	"context"
	"database/sql"

	"tang-admin/internal/storage/dbutil"
)

// Store 通用存储实现
type Store struct {
	db      *sql.DB
	dialect dbutil.Dialect
}

// NewStore 创建通用存储
func NewStore(db *sql.DB, dialect dbutil.Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// Close 关闭数据库连接
func (s *Store) Close() error {
	return s.db.Close()
}

// DB 返回底层数据库连接（仅用于测试）
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect 返回当前方言
func (s *Store) Dialect() dbutil.Dialect {
	return s.dialect
}

// rebind 快捷方法：将 PG 风格 SQL 转换为当前方言
func (s *Store) rebind(query string) string {
	return s.dialect.Rebind(query)
}

// insertID 执行 INSERT 并返回自增主键
//
// PostgreSQL 不支持 LastInsertId，改写为 INSERT ... RETURNING id。
func (s *Store) insertID(ctx context.Context, query string, args ...any) (int64, error) {
	if s.dialect.SupportsLastInsertID() {
		res, err := s.db.ExecContext(ctx, s.rebind(query), args...)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	}
	var id int64
	err := s.db.QueryRowContext(ctx, s.rebind(query+" RETURNING id"), args...).Scan(&id)
	return id, err
}

// insertIDTx 在事务内执行 INSERT 并返回自增主键
func (s *Store) insertIDTx(ctx context.Context, tx *sql.Tx, query string, args ...any) (int64, error) {
	if s.dialect.SupportsLastInsertID() {
		res, err := tx.ExecContext(ctx, s.rebind(query), args...)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	}
	var id int64
	err := tx.QueryRowContext(ctx, s.rebind(query+" RETURNING id"), args...).Scan(&id)
	return id, err
}

// withTx 在事务中执行 fn，出错时回滚
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// exists 执行只返回一行一列的存在性查询
func (s *Store) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, s.rebind(query), args...).Scan(&n)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
