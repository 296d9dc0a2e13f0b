package authority

import (
	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"

	"reliefops/bizerror"
)

// RoleSource supplies roles for an identity from one channel. The resolver
// merges sources by union, so adding an identity provider never shrinks a
// grant obtained through another channel.
type RoleSource interface {
	RolesOf(db *gorm.DB, identity types.ID, claims []ExternalClaim) (Roles, error)
}

// storeRoleSource reads administrator-maintained user role bindings.
type storeRoleSource struct {
}

func (s *storeRoleSource) RolesOf(db *gorm.DB, identity types.ID, claims []ExternalClaim) (Roles, error) {
	var roleIds []string
	if err := db.Model(&UserRoleBinding{}).Where(&UserRoleBinding{UserID: identity}).
		Pluck("role_id", &roleIds).Error; err != nil {
		return nil, err
	}
	return Roles(roleIds), nil
}

// claimRoleSource maps externally-asserted role claims onto the canonical
// role table. A claim that does not map fails the resolution: silently
// dropping it would under-grant, silently passing it through would let an
// identity provider mint roles this system never defined.
type claimRoleSource struct {
}

func (s *claimRoleSource) RolesOf(db *gorm.DB, identity types.ID, claims []ExternalClaim) (Roles, error) {
	if len(claims) == 0 {
		return Roles{}, nil
	}

	var roleRecords []Role
	if err := db.Model(&Role{}).Find(&roleRecords).Error; err != nil {
		return nil, err
	}
	canonical := map[string]string{}
	for _, record := range roleRecords {
		canonical[record.ID] = record.ID
	}

	roles := Roles{}
	for _, claim := range claims {
		roleId, found := canonical[claim.Role]
		if !found {
			return nil, bizerror.ErrUnrecognizedClaim
		}
		roles = append(roles, roleId)
	}
	return roles, nil
}
