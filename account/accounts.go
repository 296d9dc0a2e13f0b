package account

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"

	"reliefops/authority"
	"reliefops/bizerror"
	"reliefops/idgen"
	"reliefops/persistence"
	"reliefops/session"
)

var userIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

func HashSha256(raw string) string {
	h := sha256.New()
	h.Write([]byte(raw))
	sum := h.Sum(nil)
	return hex.EncodeToString(sum)
}

// DefaultAccountConfiguration makes sure an administrator account exists and
// holds the system-admin role.
func DefaultAccountConfiguration() error {
	db := persistence.ActiveDataSourceManager.GormDB(context.Background())
	return db.Transaction(func(tx *gorm.DB) error {
		admin := User{}
		err := tx.Model(&User{}).Where(&User{ID: 1}).First(&admin).Error
		if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
			if err := tx.Save(&User{ID: 1, Name: "admin", Secret: HashSha256("admin123")}).Error; err != nil {
				return err
			}
		}
		return tx.Save(&authority.UserRoleBinding{ID: 1, UserID: 1, RoleID: "system-admin"}).Error
	})
}

func CreateUser(c *UserCreation, sec *session.Context) (*UserInfo, error) {
	if !sec.Perms.HasSystemAdmin() {
		return nil, bizerror.ErrForbidden
	}

	user := User{ID: idgen.NextID(userIdWorker), Name: c.Name, Nickname: c.Nickname, Secret: HashSha256(c.Secret)}
	db := persistence.ActiveDataSourceManager.GormDB(context.Background())
	if err := db.Save(&user).Error; err != nil {
		return nil, err
	}
	return &UserInfo{ID: user.ID, Name: user.Name, Nickname: user.Nickname}, nil
}

func QueryUsers(sec *session.Context) (*[]UserInfo, error) {
	var users []UserInfo
	db := persistence.ActiveDataSourceManager.GormDB(context.Background())
	if err := db.Model(&User{}).Scan(&users).Error; err != nil {
		return nil, err
	}
	return &users, nil
}

func UpdateUser(userId types.ID, c *UserUpdation, sec *session.Context) error {
	if !sec.Perms.HasSystemAdmin() && userId != sec.Identity.ID {
		return bizerror.ErrForbidden
	}

	db := persistence.ActiveDataSourceManager.GormDB(context.Background())
	return db.Model(&User{}).Where(&User{ID: userId}).Update(&User{Nickname: c.Nickname}).Error
}

func UpdateBasicAuthSecret(u *BasicAuthUpdating, sec *session.Context) error {
	db := persistence.ActiveDataSourceManager.GormDB(context.Background())

	user := User{}
	if err := db.Model(&User{}).Where(&User{ID: sec.Identity.ID, Secret: HashSha256(u.OriginalSecret)}).
		Scan(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return bizerror.ErrInvalidPassword
		}
		return err
	}

	return db.Model(&User{}).Where(&User{ID: sec.Identity.ID, Secret: HashSha256(u.OriginalSecret)}).
		Update(&User{Secret: HashSha256(u.NewSecret)}).Error
}
