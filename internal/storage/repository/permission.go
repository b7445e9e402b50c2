package repository

import (
	"context"
	"database/sql"
	"time"

	"tang-admin/internal/model"
)

const permissionBase = `SELECT id, parent_id, name, type, permission_code, path, component,
 icon, sort, status, create_time, update_time, is_deleted
 FROM sys_permission WHERE is_deleted = FALSE`

func scanPermission(row interface{ Scan(...any) error }) (*model.Permission, error) {
	p := &model.Permission{}
	var updateTime sql.NullTime
	err := row.Scan(&p.ID, &p.ParentID, &p.Name, &p.Type, &p.PermissionCode,
		&p.Path, &p.Component, &p.Icon, &p.Sort, &p.Status,
		&p.CreateTime, &updateTime, &p.IsDeleted)
	if err != nil {
		return nil, err
	}
	if updateTime.Valid {
		t := updateTime.Time
		p.UpdateTime = &t
	}
	return p, nil
}

// GetPermission 按 ID 查找未删除权限，不存在时返回 nil
func (s *Store) GetPermission(ctx context.Context, id int64) (*model.Permission, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(permissionBase+` AND id = $1`), id)
	p, err := scanPermission(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// ListPermissions 按 Sort 列出未删除权限，keyword 模糊匹配名称/编码
func (s *Store) ListPermissions(ctx context.Context, keyword string) ([]*model.Permission, error) {
	query := permissionBase
	args := []any{}
	if keyword != "" {
		query += ` AND (name LIKE $1 OR permission_code LIKE $2)`
		pattern := "%" + keyword + "%"
		args = append(args, pattern, pattern)
	}
	query += ` ORDER BY sort, id`

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var permissions []*model.Permission
	for rows.Next() {
		p, err := scanPermission(rows)
		if err != nil {
			return nil, err
		}
		permissions = append(permissions, p)
	}
	return permissions, rows.Err()
}

// PermissionCodeExists 检查权限编码是否已被其他未删除权限占用
func (s *Store) PermissionCodeExists(ctx context.Context, code string, excludeID int64) (bool, error) {
	return s.exists(ctx,
		`SELECT COUNT(*) FROM sys_permission WHERE permission_code = $1 AND id <> $2 AND is_deleted = FALSE`,
		code, excludeID)
}

// CreatePermission 创建权限并回填自增 ID
func (s *Store) CreatePermission(ctx context.Context, p *model.Permission) error {
	if p.CreateTime.IsZero() {
		p.CreateTime = time.Now()
	}
	id, err := s.insertID(ctx,
		`INSERT INTO sys_permission (parent_id, name, type, permission_code, path, component,
		 icon, sort, status, create_time, is_deleted)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, FALSE)`,
		p.ParentID, p.Name, p.Type, p.PermissionCode, p.Path, p.Component,
		p.Icon, p.Sort, p.Status, p.CreateTime)
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

// UpdatePermission 更新权限
func (s *Store) UpdatePermission(ctx context.Context, p *model.Permission) error {
	now := time.Now()
	_, err := s.db.ExecContext(ctx, s.rebind(
		`UPDATE sys_permission SET parent_id = $1, name = $2, type = $3, permission_code = $4,
		 path = $5, component = $6, icon = $7, sort = $8, status = $9, update_time = $10
		 WHERE id = $11 AND is_deleted = FALSE`),
		p.ParentID, p.Name, p.Type, p.PermissionCode, p.Path, p.Component,
		p.Icon, p.Sort, p.Status, now, p.ID)
	if err == nil {
		p.UpdateTime = &now
	}
	return err
}

// HasChildPermissions 检查权限是否存在未删除的子权限
func (s *Store) HasChildPermissions(ctx context.Context, id int64) (bool, error) {
	return s.exists(ctx,
		`SELECT COUNT(*) FROM sys_permission WHERE parent_id = $1 AND is_deleted = FALSE`, id)
}

// PermissionInUse 检查权限是否仍被角色关联引用
func (s *Store) PermissionInUse(ctx context.Context, permissionID int64) (bool, error) {
	return s.exists(ctx,
		`SELECT COUNT(*) FROM sys_role_permission WHERE permission_id = $1`, permissionID)
}

// SoftDeletePermission 软删除权限
func (s *Store) SoftDeletePermission(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, s.rebind(
		`UPDATE sys_permission SET is_deleted = TRUE, update_time = $1 WHERE id = $2 AND is_deleted = FALSE`),
		time.Now(), id)
	return err
}
