package authority

import (
	"strings"

	"github.com/fundwit/go-commons/types"
)

type Role struct {
	ID    string `json:"id" gorm:"primary_key"`
	Title string `json:"title"`
}

type UserRoleBinding struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	UserID types.ID `json:"userId" gorm:"unique_index:uni_user_role"`
	RoleID string   `json:"roleId" gorm:"unique_index:uni_user_role"`
}

type Permission struct {
	ID    string `json:"id" gorm:"primary_key"`
	Title string `json:"title"`
}

type RolePermissionBinding struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	RoleID       string `json:"roleId" gorm:"unique_index:uni_role_perm"`
	PermissionID string `json:"permissionId" gorm:"unique_index:uni_role_perm"`
}

// Roles is a set of canonical role identifiers, the currency of approval decisions.
type Roles []string

func (r Roles) HasRole(role string) bool {
	for _, v := range r {
		if strings.EqualFold(v, role) {
			return true
		}
	}
	return false
}

func (r Roles) HasAnyRole(others Roles) bool {
	for _, o := range others {
		if r.HasRole(o) {
			return true
		}
	}
	return false
}

type Permissions []string

func (c Permissions) HasPermission(perm string) bool {
	for _, v := range c {
		if strings.EqualFold(v, perm) {
			return true
		}
	}
	return false
}

func (c Permissions) HasSystemAdmin() bool {
	return c.HasPermission(SystemAdminPermission.ID)
}
