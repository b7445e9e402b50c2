// Package model 定义系统实体与通用响应模型
package model

import "time"

// 实体状态(0:禁用,1:启用)
const (
	StatusDisabled = 0
	StatusEnabled  = 1
)

// BaseEntity 所有持久化实体的公共字段
//
// 删除采用软删除：IsDeleted 置位后行对所有查询不可见，
// 唯一性检查也只针对未删除的行。
type BaseEntity struct {
	ID         int64      `json:"id" db:"id"`
	CreateTime time.Time  `json:"createTime" db:"create_time"`
	UpdateTime *time.Time `json:"updateTime,omitempty" db:"update_time"`
	IsDeleted  bool       `json:"isDeleted" db:"is_deleted"`
}
