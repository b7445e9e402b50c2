package repository

import "context"

// ListRoleCodesByUser 解析用户的有效角色编码集合
//
// 经 sys_user_role 关联，排除已删除角色。
func (s *Store) ListRoleCodesByUser(ctx context.Context, userID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT r.role_code
		 FROM sys_role r
		 INNER JOIN sys_user_role ur ON r.id = ur.role_id
		 WHERE ur.user_id = $1 AND r.is_deleted = FALSE
		 ORDER BY r.id`), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

// ListPermissionCodesByUser 解析用户的有效权限编码集合
//
// 经 sys_user_role → sys_role_permission 两级关联，排除已删除的角色与权限；
// 多角色共享同一权限时去重。
func (s *Store) ListPermissionCodesByUser(ctx context.Context, userID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT DISTINCT p.permission_code
		 FROM sys_permission p
		 INNER JOIN sys_role_permission rp ON p.id = rp.permission_id
		 INNER JOIN sys_role r ON r.id = rp.role_id AND r.is_deleted = FALSE
		 INNER JOIN sys_user_role ur ON rp.role_id = ur.role_id
		 WHERE ur.user_id = $1 AND p.is_deleted = FALSE
		 ORDER BY p.permission_code`), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}
