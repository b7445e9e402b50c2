package model

// 权限类型
const (
	PermissionTypeMenu   = 1
	PermissionTypeButton = 2
)

// Permission 系统权限(菜单/按钮)
//
// ParentID 自引用构成权限树，0 表示根节点。
// 存在子权限或被角色引用的权限不可删除。
type Permission struct {
	BaseEntity
	ParentID       int64  `json:"parentId" db:"parent_id"`
	Name           string `json:"name" db:"name"`
	Type           int    `json:"type" db:"type"`
	PermissionCode string `json:"permissionCode" db:"permission_code"`
	Path           string `json:"path,omitempty" db:"path"`
	Component      string `json:"component,omitempty" db:"component"`
	Icon           string `json:"icon,omitempty" db:"icon"`
	Sort           int    `json:"sort" db:"sort"`
	Status         int    `json:"status" db:"status"`

	// Children 仅用于树形响应，不持久化
	Children []*Permission `json:"children,omitempty" db:"-"`
}

// BuildPermissionTree 将平铺的权限列表构建为树
//
// 输入需按 Sort 排序，输出保持该顺序。
func BuildPermissionTree(permissions []*Permission, parentID int64) []*Permission {
	tree := []*Permission{}
	for _, p := range permissions {
		if p.ParentID == parentID {
			p.Children = BuildPermissionTree(permissions, p.ID)
			tree = append(tree, p)
		}
	}
	return tree
}
