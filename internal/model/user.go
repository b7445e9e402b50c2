package model

import "time"

// User 系统用户
type User struct {
	BaseEntity
	UserName string `json:"userName" db:"user_name"`
	// 密码(bcrypt 哈希)，永不出现在 JSON 输出中
	Password string `json:"-" db:"password"`
	NickName string `json:"nickName,omitempty" db:"nick_name"`
	Avatar   string `json:"avatar,omitempty" db:"avatar"`
	Status   int    `json:"status" db:"status"`
	Remark   string `json:"remark,omitempty" db:"remark"`
}

// UserRole 用户-角色关联
type UserRole struct {
	ID         int64     `json:"id" db:"id"`
	UserID     int64     `json:"userId" db:"user_id"`
	RoleID     int64     `json:"roleId" db:"role_id"`
	CreateTime time.Time `json:"createTime" db:"create_time"`
}
