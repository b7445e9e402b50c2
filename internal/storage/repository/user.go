package repository

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"tang-admin/internal/model"
)

// 用户查询基础 SQL，软删除过滤只在此处出现
const userBase = `SELECT id, user_name, password, nick_name, avatar, status, remark,
 create_time, update_time, is_deleted
 FROM sys_user WHERE is_deleted = FALSE`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	u := &model.User{}
	var updateTime sql.NullTime
	err := row.Scan(&u.ID, &u.UserName, &u.Password, &u.NickName, &u.Avatar,
		&u.Status, &u.Remark, &u.CreateTime, &updateTime, &u.IsDeleted)
	if err != nil {
		return nil, err
	}
	if updateTime.Valid {
		t := updateTime.Time
		u.UpdateTime = &t
	}
	return u, nil
}

// GetUser 按 ID 查找未删除用户，不存在时返回 nil
func (s *Store) GetUser(ctx context.Context, id int64) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(userBase+` AND id = $1`), id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

// GetUserByUserName 按用户名查找未删除用户，不存在时返回 nil
func (s *Store) GetUserByUserName(ctx context.Context, userName string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(userBase+` AND user_name = $1`), userName)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

// ListUsers 列出未删除用户，keyword 模糊匹配用户名/昵称
func (s *Store) ListUsers(ctx context.Context, keyword string) ([]*model.User, error) {
	query := userBase
	args := []any{}
	if keyword != "" {
		query += ` AND (user_name LIKE $1 OR nick_name LIKE $2)`
		pattern := "%" + keyword + "%"
		args = append(args, pattern, pattern)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// PageUsers 分页列出未删除用户
func (s *Store) PageUsers(ctx context.Context, keyword string, page model.PageRequest) ([]*model.User, int, error) {
	where := ` FROM sys_user WHERE is_deleted = FALSE`
	args := []any{}
	if keyword != "" {
		where += ` AND (user_name LIKE $1 OR nick_name LIKE $2)`
		pattern := "%" + keyword + "%"
		args = append(args, pattern, pattern)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, s.rebind(`SELECT COUNT(*)`+where), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, user_name, password, nick_name, avatar, status, remark,
 create_time, update_time, is_deleted` + where + ` ORDER BY id LIMIT ` + strconv.Itoa(page.PageSize) + ` OFFSET ` + strconv.Itoa(page.Offset())
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

// UserNameExists 检查用户名是否已被其他未删除用户占用
func (s *Store) UserNameExists(ctx context.Context, userName string, excludeID int64) (bool, error) {
	return s.exists(ctx,
		`SELECT COUNT(*) FROM sys_user WHERE user_name = $1 AND id <> $2 AND is_deleted = FALSE`,
		userName, excludeID)
}

// CreateUser 创建用户并回填自增 ID
func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	if u.CreateTime.IsZero() {
		u.CreateTime = time.Now()
	}
	id, err := s.insertID(ctx,
		`INSERT INTO sys_user (user_name, password, nick_name, avatar, status, remark, create_time, is_deleted)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE)`,
		u.UserName, u.Password, u.NickName, u.Avatar, u.Status, u.Remark, u.CreateTime)
	if err != nil {
		return err
	}
	u.ID = id
	return nil
}

// UpdateUser 更新用户资料（不含密码）
func (s *Store) UpdateUser(ctx context.Context, u *model.User) error {
	now := time.Now()
	_, err := s.db.ExecContext(ctx, s.rebind(
		`UPDATE sys_user SET user_name = $1, nick_name = $2, avatar = $3, status = $4,
		 remark = $5, update_time = $6 WHERE id = $7 AND is_deleted = FALSE`),
		u.UserName, u.NickName, u.Avatar, u.Status, u.Remark, now, u.ID)
	if err == nil {
		u.UpdateTime = &now
	}
	return err
}

// UpdateUserPassword 更新用户密码哈希
func (s *Store) UpdateUserPassword(ctx context.Context, id int64, password string) error {
	_, err := s.db.ExecContext(ctx, s.rebind(
		`UPDATE sys_user SET password = $1, update_time = $2 WHERE id = $3 AND is_deleted = FALSE`),
		password, time.Now(), id)
	return err
}

// SoftDeleteUser 软删除用户
func (s *Store) SoftDeleteUser(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, s.rebind(
		`UPDATE sys_user SET is_deleted = TRUE, update_time = $1 WHERE id = $2 AND is_deleted = FALSE`),
		time.Now(), id)
	return err
}

// GetUserRoles 查询用户关联的未删除角色
func (s *Store) GetUserRoles(ctx context.Context, userID int64) ([]*model.Role, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT r.id, r.role_name, r.role_code, r.status, r.remark,
		 r.create_time, r.update_time, r.is_deleted
		 FROM sys_role r
		 INNER JOIN sys_user_role ur ON r.id = ur.role_id
		 WHERE ur.user_id = $1 AND r.is_deleted = FALSE
		 ORDER BY r.id`), userID)
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

// SetUserRoles 全量替换用户的角色集合
//
// 删除+插入在同一事务内执行，失败时整体回滚。
func (s *Store) SetUserRoles(ctx context.Context, userID int64, roleIDs []int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.rebind(
			`DELETE FROM sys_user_role WHERE user_id = $1`), userID); err != nil {
			return err
		}
		now := time.Now()
		for _, roleID := range roleIDs {
			if _, err := tx.ExecContext(ctx, s.rebind(
				`INSERT INTO sys_user_role (user_id, role_id, create_time) VALUES ($1, $2, $3)`),
				userID, roleID, now); err != nil {
				return err
			}
		}
		return nil
	})
}
