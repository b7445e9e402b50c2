package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func perm(id, parentID int64, code string) *Permission {
	p := &Permission{ParentID: parentID, Name: code, Type: PermissionTypeMenu, PermissionCode: code}
	p.ID = id
	return p
}

func TestBuildPermissionTree(t *testing.T) {
	flat := []*Permission{
		perm(1, 0, "system"),
		perm(2, 1, "system:user"),
		perm(3, 1, "system:role"),
		perm(4, 2, "system:user:add"),
		perm(5, 0, "monitor"),
	}

	tree := BuildPermissionTree(flat, 0)
	require.Len(t, tree, 2)

	system := tree[0]
	assert.Equal(t, "system", system.PermissionCode)
	require.Len(t, system.Children, 2)
	assert.Equal(t, "system:user", system.Children[0].PermissionCode)
	require.Len(t, system.Children[0].Children, 1)
	assert.Equal(t, "system:user:add", system.Children[0].Children[0].PermissionCode)
	assert.Empty(t, system.Children[1].Children)

	assert.Equal(t, "monitor", tree[1].PermissionCode)
	assert.Empty(t, tree[1].Children)
}

func TestBuildPermissionTreePreservesOrder(t *testing.T) {
	// 输入已按 Sort 排序，树各层保持该顺序
	flat := []*Permission{
		perm(3, 0, "c"),
		perm(1, 0, "a"),
		perm(2, 0, "b"),
	}
	tree := BuildPermissionTree(flat, 0)
	require.Len(t, tree, 3)
	assert.Equal(t, "c", tree[0].PermissionCode)
	assert.Equal(t, "a", tree[1].PermissionCode)
	assert.Equal(t, "b", tree[2].PermissionCode)
}

func TestBuildPermissionTreeEmpty(t *testing.T) {
	tree := BuildPermissionTree(nil, 0)
	assert.NotNil(t, tree)
	assert.Empty(t, tree)
}
