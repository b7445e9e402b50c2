package model

import "time"

// Role 系统角色
type Role struct {
	BaseEntity
	RoleName string `json:"roleName" db:"role_name"`
	RoleCode string `json:"roleCode" db:"role_code"`
	Status   int    `json:"status" db:"status"`
	Remark   string `json:"remark,omitempty" db:"remark"`
}

// RolePermission 角色-权限关联
type RolePermission struct {
	ID           int64     `json:"id" db:"id"`
	RoleID       int64     `json:"roleId" db:"role_id"`
	PermissionID int64     `json:"permissionId" db:"permission_id"`
	CreateTime   time.Time `json:"createTime" db:"create_time"`
}
