package repository

import (
	"context"
	"database/sql"
	"time"

	"tang-admin/internal/model"
)

const roleBase = `SELECT id, role_name, role_code, status, remark,
 create_time, update_time, is_deleted
 FROM sys_role WHERE is_deleted = FALSE`

func scanRole(row interface{ Scan(...any) error }) (*model.Role, error) {
	r := &model.Role{}
	var updateTime sql.NullTime
	err := row.Scan(&r.ID, &r.RoleName, &r.RoleCode, &r.Status, &r.Remark,
		&r.CreateTime, &updateTime, &r.IsDeleted)
	if err != nil {
		return nil, err
	}
	if updateTime.Valid {
		t := updateTime.Time
		r.UpdateTime = &t
	}
	return r, nil
}

// GetRole 按 ID 查找未删除角色，不存在时返回 nil
func (s *Store) GetRole(ctx context.Context, id int64) (*model.Role, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(roleBase+` AND id = $1`), id)
	r, err := scanRole(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return r, err
}

// ListRoles 列出未删除角色，keyword 模糊匹配名称/编码
func (s *Store) ListRoles(ctx context.Context, keyword string) ([]*model.Role, error) {
	query := roleBase
	args := []any{}
	if keyword != "" {
		query += ` AND (role_name LIKE $1 OR role_code LIKE $2)`
		pattern := "%" + keyword + "%"
		args = append(args, pattern, pattern)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []*model.Role
	for rows.Next() {
		r, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}

// RoleCodeExists 检查角色编码是否已被其他未删除角色占用
func (s *Store) RoleCodeExists(ctx context.Context, roleCode string, excludeID int64) (bool, error) {
	return s.exists(ctx,
		`SELECT COUNT(*) FROM sys_role WHERE role_code = $1 AND id <> $2 AND is_deleted = FALSE`,
		roleCode, excludeID)
}

// CreateRole 创建角色并回填自增 ID
func (s *Store) CreateRole(ctx context.Context, r *model.Role) error {
	if r.CreateTime.IsZero() {
		r.CreateTime = time.Now()
	}
	id, err := s.insertID(ctx,
		`INSERT INTO sys_role (role_name, role_code, status, remark, create_time, is_deleted)
		 VALUES ($1, $2, $3, $4, $5, FALSE)`,
		r.RoleName, r.RoleCode, r.Status, r.Remark, r.CreateTime)
	if err != nil {
		return err
	}
	r.ID = id
	return nil
}

// UpdateRole 更新角色
func (s *Store) UpdateRole(ctx context.Context, r *model.Role) error {
	now := time.Now()
	_, err := s.db.ExecContext(ctx, s.rebind(
		`UPDATE sys_role SET role_name = $1, role_code = $2, status = $3, remark = $4,
		 update_time = $5 WHERE id = $6 AND is_deleted = FALSE`),
		r.RoleName, r.RoleCode, r.Status, r.Remark, now, r.ID)
	if err == nil {
		r.UpdateTime = &now
	}
	return err
}

// SoftDeleteRole 软删除角色
func (s *Store) SoftDeleteRole(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, s.rebind(
		`UPDATE sys_role SET is_deleted = TRUE, update_time = $1 WHERE id = $2 AND is_deleted = FALSE`),
		time.Now(), id)
	return err
}

// RoleInUse 检查角色是否仍被用户关联引用
func (s *Store) RoleInUse(ctx context.Context, roleID int64) (bool, error) {
	return s.exists(ctx,
		`SELECT COUNT(*) FROM sys_user_role WHERE role_id = $1`, roleID)
}

// GetRolePermissions 查询角色关联的未删除权限
func (s *Store) GetRolePermissions(ctx context.Context, roleID int64) ([]*model.Permission, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT p.id, p.parent_id, p.name, p.type, p.permission_code, p.path, p.component,
		 p.icon, p.sort, p.status, p.create_time, p.update_time, p.is_deleted
		 FROM sys_permission p
		 INNER JOIN sys_role_permission rp ON p.id = rp.permission_id
		 WHERE rp.role_id = $1 AND p.is_deleted = FALSE
		 ORDER BY p.sort, p.id`), roleID)
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

// SetRolePermissions 全量替换角色的权限集合
//
// 删除+插入在同一事务内执行，失败时整体回滚。
func (s *Store) SetRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.rebind(
			`DELETE FROM sys_role_permission WHERE role_id = $1`), roleID); err != nil {
			return err
		}
		now := time.Now()
		for _, permissionID := range permissionIDs {
			if _, err := tx.ExecContext(ctx, s.rebind(
				`INSERT INTO sys_role_permission (role_id, permission_id, create_time) VALUES ($1, $2, $3)`),
				roleID, permissionID, now); err != nil {
				return err
			}
		}
		return nil
	})
}
