package session

import (
	"time"

	"github.com/fundwit/go-commons/types"

	"reliefops/authority"
)

type Context struct {
	Token    string                `json:"token"`
	Identity Identity              `json:"identity"`
	Roles    authority.Roles       `json:"roles"`
	Perms    authority.Permissions `json:"perms"`

	SigningTime time.Time `json:"-"`
}

type Identity struct {
	ID       types.ID `json:"id"`
	Name     string   `json:"name"`
	Nickname string   `json:"nickname"`
}

type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (c *Context) HasRole(role string) bool {
	return c.Roles.HasRole(role)
}

func (c *Context) HasPermission(perm string) bool {
	return c.Perms.HasPermission(perm)
}
