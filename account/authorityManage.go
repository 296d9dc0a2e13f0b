package account

import (
	"context"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"

	"reliefops/authority"
	"reliefops/bizerror"
	"reliefops/idgen"
	"reliefops/persistence"
	"reliefops/session"
)

var bindingIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

type RoleGranting struct {
	UserID types.ID `json:"userId" binding:"required"`
	RoleID string   `json:"roleId" binding:"required"`
}

// GrantRole binds a role to a user. Administrator only; the user's cached
// permission resolutions are invalidated so the grant is effective at once.
func GrantRole(granting *RoleGranting, sec *session.Context) (*authority.UserRoleBinding, error) {
	if !sec.Perms.HasSystemAdmin() {
		return nil, bizerror.ErrForbidden
	}

	binding := authority.UserRoleBinding{ID: idgen.NextID(bindingIdWorker), UserID: granting.UserID, RoleID: granting.RoleID}
	db := persistence.ActiveDataSourceManager.GormDB(context.Background())
	err := db.Transaction(func(tx *gorm.DB) error {
		role := authority.Role{}
		if err := tx.Where(&authority.Role{ID: granting.RoleID}).First(&role).Error; err != nil {
			return err
		}
		return tx.Create(&binding).Error
	})
	if err != nil {
		return nil, err
	}

	authority.InvalidatePermissionCache(granting.UserID)
	return &binding, nil
}

func RevokeRole(granting *RoleGranting, sec *session.Context) error {
	if !sec.Perms.HasSystemAdmin() {
		return bizerror.ErrForbidden
	}

	db := persistence.ActiveDataSourceManager.GormDB(context.Background())
	if err := db.Model(&authority.UserRoleBinding{}).
		Where(&authority.UserRoleBinding{UserID: granting.UserID, RoleID: granting.RoleID}).
		Delete(&authority.UserRoleBinding{}).Error; err != nil {
		return err
	}

	authority.InvalidatePermissionCache(granting.UserID)
	return nil
}

func QueryRoles(sec *session.Context) (*[]authority.Role, error) {
	var roles []authority.Role
	db := persistence.ActiveDataSourceManager.GormDB(context.Background())
	if err := db.Model(&authority.Role{}).Find(&roles).Error; err != nil {
		return nil, err
	}
	return &roles, nil
}

func QueryPermissions(sec *session.Context) (*[]authority.Permission, error) {
	var perms []authority.Permission
	db := persistence.ActiveDataSourceManager.GormDB(context.Background())
	if err := db.Model(&authority.Permission{}).Find(&perms).Error; err != nil {
		return nil, err
	}
	return &perms, nil
}
