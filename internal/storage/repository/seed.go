package repository

import (
	"context"
	"database/sql"
	"time"

	"tang-admin/internal/model"
)

// EnsureSeedData 初始化种子数据（启动时调用）
//
// 仅当用户表为空时执行：创建超级管理员角色与账号、基础菜单权限，
// 并建立管理员的角色/权限关联。全部写入在同一事务内完成，
// 中途失败整体回滚，用户表保持为空，下次启动可重新播种。
// 重复调用无副作用。
func (s *Store) EnsureSeedData(ctx context.Context, adminUserName, adminPasswordHash string) error {
	hasUsers, err := s.exists(ctx, `SELECT COUNT(*) FROM sys_user WHERE is_deleted = FALSE`)
	if err != nil {
		return err
	}
	if hasUsers {
		return nil
	}

	now := time.Now()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		roleID, err := s.insertIDTx(ctx, tx,
			`INSERT INTO sys_role (role_name, role_code, status, remark, create_time, is_deleted)
			 VALUES ($1, $2, $3, $4, $5, FALSE)`,
			"超级管理员", "admin", model.StatusEnabled, "系统内置超级管理员", now)
		if err != nil {
			return err
		}

		userID, err := s.insertIDTx(ctx, tx,
			`INSERT INTO sys_user (user_name, password, nick_name, avatar, status, remark, create_time, is_deleted)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE)`,
			adminUserName, adminPasswordHash, "超级管理员", "", model.StatusEnabled,
			"系统内置超级管理员账号", now)
		if err != nil {
			return err
		}

		const insertPermission = `INSERT INTO sys_permission (parent_id, name, type, permission_code, path, component,
			 icon, sort, status, create_time, is_deleted)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, FALSE)`

		systemID, err := s.insertIDTx(ctx, tx, insertPermission,
			0, "系统管理", model.PermissionTypeMenu, "system", "/system", "Layout",
			"setting", 1, model.StatusEnabled, now)
		if err != nil {
			return err
		}

		children := []*model.Permission{
			{ParentID: systemID, Name: "用户管理", Type: model.PermissionTypeMenu,
				PermissionCode: "system:user", Path: "user", Component: "/system/user/index",
				Icon: "user", Sort: 1, Status: model.StatusEnabled},
			{ParentID: systemID, Name: "角色管理", Type: model.PermissionTypeMenu,
				PermissionCode: "system:role", Path: "role", Component: "/system/role/index",
				Icon: "peoples", Sort: 2, Status: model.StatusEnabled},
			{ParentID: systemID, Name: "菜单管理", Type: model.PermissionTypeMenu,
				PermissionCode: "system:menu", Path: "menu", Component: "/system/menu/index",
				Icon: "tree-table", Sort: 3, Status: model.StatusEnabled},
			{ParentID: systemID, Name: "缓存管理", Type: model.PermissionTypeButton,
				PermissionCode: "system:cache", Sort: 4, Status: model.StatusEnabled},
		}
		permissionIDs := []int64{systemID}
		for _, p := range children {
			id, err := s.insertIDTx(ctx, tx, insertPermission,
				p.ParentID, p.Name, p.Type, p.PermissionCode, p.Path, p.Component,
				p.Icon, p.Sort, p.Status, now)
			if err != nil {
				return err
			}
			permissionIDs = append(permissionIDs, id)
		}

		if _, err := tx.ExecContext(ctx, s.rebind(
			`INSERT INTO sys_user_role (user_id, role_id, create_time) VALUES ($1, $2, $3)`),
			userID, roleID, now); err != nil {
			return err
		}
		for _, pid := range permissionIDs {
			if _, err := tx.ExecContext(ctx, s.rebind(
				`INSERT INTO sys_role_permission (role_id, permission_id, create_time) VALUES ($1, $2, $3)`),
				roleID, pid, now); err != nil {
				return err
			}
		}
		return nil
	})
}
